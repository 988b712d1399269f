package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the lifecycle status of a payment.
type PaymentStatus string

const (
	// PaymentStatusCreated is the initial state, set once the gateway has
	// issued an order and the local record is persisted.
	PaymentStatusCreated PaymentStatus = "created"
	// PaymentStatusSuccess is terminal; reached only via verified callback.
	PaymentStatusSuccess PaymentStatus = "success"
	// PaymentStatusFailed is terminal; reached via a failed verification.
	PaymentStatusFailed PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment represents one payment attempt against the gateway.
//
// UserEmail is a plain copy of the owner's email, not an enforced relation;
// payments outlive whatever happens to the user record.
type Payment struct {
	ID               uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserEmail        string          `json:"user_email" gorm:"size:255;not null;index"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Currency         string          `json:"currency" gorm:"size:3;not null;default:'INR'"`
	Status           PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'created';index"`
	GatewayOrderID   string          `json:"gateway_order_id" gorm:"size:64;not null;uniqueIndex"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty" gorm:"size:64"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
