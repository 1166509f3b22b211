package models

import (
	"time"

	"github.com/lib/pq"
)

// Supplier represents the suppliers table. ServiceCategories holds the
// classifier category tags this supplier covers (text[] in Postgres).
type Supplier struct {
	SupplierID        int               `json:"supplier_id" example:"1"`
	Name              string            `json:"name" example:"PrintPro Ltd"`
	ContactEmail      string            `json:"contact_email" example:"sales@printpro.example"`
	ServiceCategories pq.StringArray    `json:"service_categories" swaggertype:"array,string" example:"Printing,Design"`
	Contacts          []SupplierContact `json:"contacts,omitempty"`
	CreatedAt         time.Time         `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt         time.Time         `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// SupplierContact represents the supplier_contacts table.
type SupplierContact struct {
	ContactID  int    `json:"contact_id" example:"1"`
	SupplierID int    `json:"supplier_id" example:"1"`
	Name       string `json:"name" example:"Jane Miller"`
	Email      string `json:"email" example:"jane@printpro.example"`
	Role       string `json:"role,omitempty" example:"Account Manager"`
	Phone      string `json:"phone,omitempty" example:"+49 30 1234567"`
	IsPrimary  bool   `json:"is_primary" example:"true"`
}
