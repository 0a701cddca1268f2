// internal/models/company.go
package models

import (
	"github.com/google/uuid"
)

type Company struct {
	BaseModel
	OwnerID        uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	Slug           string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	WhatsAppNumber string    `json:"whatsapp_number" gorm:"size:30;not null"`
	Description    string    `json:"description" gorm:"type:text"`
	LogoURL        string    `json:"logo_url" gorm:"size:512"`
	// BCP 47 tag and ISO 4217 code driving checkout-message formatting.
	Locale   string `json:"locale" gorm:"size:20;default:'pt-BR'"`
	Currency string `json:"currency" gorm:"size:3;default:'BRL'"`

	// Relationships
	Owner      User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Categories []Category `json:"categories,omitempty" gorm:"foreignKey:CompanyID"`
	Products   []Product  `json:"products,omitempty" gorm:"foreignKey:CompanyID"`
	Orders     []Order    `json:"orders,omitempty" gorm:"foreignKey:CompanyID"`
}

// OwnerSetting holds per-owner dashboard preferences, upserted idempotently.
type OwnerSetting struct {
	BaseModel
	OwnerID      uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex"`
	SoundEnabled bool      `json:"sound_enabled" gorm:"default:true"`
}
