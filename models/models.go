package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// User represents the users table. Role is one of client, producer, supplier.
type User struct {
	ID         int       `json:"id" example:"1"`
	Email      string    `json:"email" example:"user@example.com"`
	Password   string    `json:"password" example:""`
	FirstName  string    `json:"first_name" example:"John"`
	LastName   string    `json:"last_name" example:"Doe"`
	Role       string    `json:"role" example:"producer"`
	SupplierID *int      `json:"supplier_id,omitempty" example:"3"`
	Suspended  bool      `json:"suspended" example:"false"`
	CreatedAt  time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt  time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
	LastAccess time.Time `json:"last_access,omitempty" example:"2026-01-15T10:30:00Z"`
}

const (
	RoleClient   = "client"
	RoleProducer = "producer"
	RoleSupplier = "supplier"
)

type Session struct {
	UserID                int       `json:"user_id"`
	SessionID             string    `json:"session_id"`
	HostName              string    `json:"host_name"`
	IPAddress             string    `json:"ip_address"`
	Timestamp             time.Time `json:"timestp"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
}

type DateOnly struct {
	time.Time
}

const dateFormat = "2006-01-02"

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	parsedTime, err := time.Parse(`"`+dateFormat+`"`, string(data))
	if err != nil {
		return err
	}
	d.Time = parsedTime
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(dateFormat))
}

func (d DateOnly) ToTime() time.Time {
	return d.Time
}

// Scan implements the Scanner interface for DateOnly type
func (d *DateOnly) Scan(value interface{}) error {
	if value == nil {
		d.Time = time.Time{}
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		// Keep only the date part
		d.Time = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into DateOnly", v)
	}
}

// Value implements driver.Valuer for database/sql
func (d DateOnly) Value() (driver.Value, error) {
	return d.Time, nil
}
