package services

import (
	"errors"

	"despachos/rndc"
)

var (
	ErrConfigMissing = errors.New("no active RNDC configuration")
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidDate   = rndc.ErrInvalidDate
	ErrInvalidTime   = rndc.ErrInvalidTime
)
