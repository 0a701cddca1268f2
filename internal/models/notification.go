// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	CompanyID uuid.UUID        `json:"company_id" gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID        `json:"order_id" gorm:"type:uuid;not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(30);not null;index"`
	Read      bool             `json:"read" gorm:"default:false;index"`
	ReadAt    *time.Time       `json:"read_at"`

	// Relationships
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Order   Order   `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
