package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"despachos/models"
	"despachos/rndc"
)

// RowError rejects one line of an import sheet. Line counts the header as 1.
type RowError struct {
	Line   int    `json:"linea"`
	Reason string `json:"motivo"`
}

var requiredColumns = []string{"PLANTA", "GRANJA", "PLACA", "FECHA", "CONDUCTOR", "TONELADAS"}

// ParseCargoOrderCSV reads the batch import sheet. Rows that fail validation
// are reported and left out of the returned inputs. The error is only set
// when the sheet itself is unreadable.
func ParseCargoOrderCSV(r io.Reader) ([]models.CargoOrderInput, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: empty sheet", ErrInvalidInput)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 1 && strings.Contains(header[0], ";") {
		return nil, nil, fmt.Errorf("%w: expected comma separated columns", ErrInvalidInput)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, nil, fmt.Errorf("%w: missing column %s", ErrInvalidInput, c)
		}
	}

	var (
		rows    []models.CargoOrderInput
		rowErrs []RowError
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet: %w", err)
		}
		line, _ := cr.FieldPos(0)
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if blank(record) {
			continue
		}
		row, reason := parseRow(get)
		if reason != "" {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: reason})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(get func(string) string) (models.CargoOrderInput, string) {
	for _, c := range requiredColumns {
		if get(c) == "" {
			return models.CargoOrderInput{}, c + " is empty"
		}
	}
	tonnage, err := strconv.ParseFloat(strings.ReplaceAll(get("TONELADAS"), ",", "."), 64)
	if err != nil || tonnage <= 0 {
		return models.CargoOrderInput{}, fmt.Sprintf("TONELADAS %q is not a positive number", get("TONELADAS"))
	}
	date, err := rndc.NormalizeDate(get("FECHA"))
	if err != nil {
		return models.CargoOrderInput{}, err.Error()
	}
	in := models.CargoOrderInput{
		Plant:        get("PLANTA"),
		Farm:         get("GRANJA"),
		Plate:        strings.ToUpper(get("PLACA")),
		Date:         date,
		PickupTime:   get("HORA_CARGUE"),
		DeliveryTime: get("HORA_DESCARGUE"),
		DriverID:     get("CONDUCTOR"),
		Tonnage:      tonnage,
	}
	for _, t := range []string{in.PickupTime, in.DeliveryTime} {
		if t == "" {
			continue
		}
		if _, err := rndc.NormalizeTime(t); err != nil {
			return models.CargoOrderInput{}, err.Error()
		}
	}
	if q := get("CANTIDAD"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return models.CargoOrderInput{}, fmt.Sprintf("CANTIDAD %q is not an integer", q)
		}
		in.Quantity = n
	}
	return in, ""
}
