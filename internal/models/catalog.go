// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_categories_company_slug"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Slug      string    `json:"slug" gorm:"size:100;not null;uniqueIndex:idx_categories_company_slug"`

	// Relationships
	Company  Company   `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

// StockUnlimited is the stored sentinel for unbounded stock. Zero blocks
// purchase, positive bounds it. Availability() makes the encoding explicit.
const StockUnlimited = -1

type Product struct {
	BaseModel
	CompanyID     uuid.UUID       `json:"company_id" gorm:"type:uuid;not null;index"`
	CategoryID    *uuid.UUID      `json:"category_id" gorm:"type:uuid;index"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock         int             `json:"stock" gorm:"default:0"`
	Active        bool            `json:"active" gorm:"default:true;index"`
	ImageURL      string          `json:"image_url" gorm:"size:512"`
	GalleryImages pq.StringArray  `json:"gallery_images" gorm:"type:text[]"`

	// Relationships
	Company  Company   `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// Availability decodes the numeric stock sentinel.
type Availability struct {
	unlimited bool
	limit     int
}

func Unavailable() Availability          { return Availability{} }
func Limited(n int) Availability         { return Availability{limit: n} }
func Unlimited() Availability            { return Availability{unlimited: true} }
func (a Availability) IsUnlimited() bool { return a.unlimited }

func (a Availability) IsUnavailable() bool { return !a.unlimited && a.limit <= 0 }

// Limit returns the finite purchasable bound, if there is one.
func (a Availability) Limit() (int, bool) {
	if a.unlimited {
		return 0, false
	}
	return a.limit, true
}

// Allows reports whether qty units can be purchased.
func (a Availability) Allows(qty int) bool {
	if qty <= 0 {
		return false
	}
	return a.unlimited || qty <= a.limit
}

// Clamp bounds qty to the purchasable range [0, limit].
func (a Availability) Clamp(qty int) int {
	if qty < 0 {
		return 0
	}
	if a.unlimited {
		return qty
	}
	if qty > a.limit {
		return a.limit
	}
	return qty
}

func (p *Product) Availability() Availability {
	switch {
	case p.Stock < 0:
		return Unlimited()
	case p.Stock == 0:
		return Unavailable()
	default:
		return Limited(p.Stock)
	}
}
