package models

import "time"

// Configuration holds the RNDC access credentials and endpoints. Only one
// record is active at a time.
type Configuration struct {
	ID          int64     `json:"id" bson:"_id,omitempty" db:"id"`
	Username    string    `json:"username" bson:"username" db:"username"`
	Password    string    `json:"password,omitempty" bson:"password" db:"password"`
	CompanyNIT  string    `json:"company_nit" bson:"company_nit" db:"company_nit"`
	CompanyName string    `json:"company_name" bson:"company_name" db:"company_name"`
	PrimaryURL  string    `json:"primary_url" bson:"primary_url" db:"primary_url"`
	BackupURL   string    `json:"backup_url" bson:"backup_url" db:"backup_url"`
	TimeoutMS   int       `json:"timeout_ms" bson:"timeout_ms" db:"timeout_ms"`
	Active      bool      `json:"activo" bson:"activo" db:"activo"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// Timeout returns the per-attempt transport timeout, 30s when unset.
func (c *Configuration) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
