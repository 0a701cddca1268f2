// internal/models/client.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ManualContact is a company-entered contact. It is a separate entity from
// an authenticated customer profile; the two are merged only at view time.
type ManualContact struct {
	BaseModel
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Phone     string    `json:"phone" gorm:"size:30"`

	// Relationships
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// Client is the read-only projection the dashboard shows: one entry per
// contact regardless of which source it originated from.
type Client struct {
	ID        uuid.UUID    `json:"id"`
	Origin    ClientOrigin `json:"origin"`
	Name      string       `json:"name"`
	Phone     string       `json:"phone"`
	CreatedAt time.Time    `json:"created_at"`
}
