// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	BaseModel
	OrderNumber string          `json:"order_number" gorm:"uniqueIndex;size:20;not null"`
	CompanyID   uuid.UUID       `json:"company_id" gorm:"type:uuid;not null;index"`
	CustomerID  *uuid.UUID      `json:"customer_id" gorm:"type:uuid;index"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);default:'submitted';index"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Company  Company         `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Customer *User           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []OrderLineItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderLineItem snapshots the unit price at order time. It is immutable
// after creation; historical prices never track the current product price.
type OrderLineItem struct {
	BaseModel
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`

	// Display name resolved at query time, not persisted.
	ProductName string `json:"product_name" gorm:"-"`

	// Relationships
	Order   Order   `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
