package models

import (
	"time"

	"gorm.io/datatypes"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
)

type Purchase struct {
	BaseModel
	UserID   string  `json:"user_id" gorm:"not null;size:36;index:idx_purchase_user_course"`
	CourseID string  `json:"course_id" gorm:"not null;size:36;index:idx_purchase_user_course"`
	User     *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course   *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`

	Amount   float64        `json:"amount" gorm:"not null"`
	Currency string         `json:"currency" gorm:"size:10"`
	Status   PurchaseStatus `json:"status" gorm:"not null;size:20;default:pending;index"`

	// Gateway session id, or a generated id for direct purchases.
	PaymentID      string         `json:"payment_id" gorm:"not null;size:255;uniqueIndex"`
	GatewayPayload datatypes.JSON `json:"-"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

func (Purchase) TableName() string {
	return "purchases"
}

func (p *Purchase) IsCompleted() bool {
	return p.Status == PurchaseCompleted
}
