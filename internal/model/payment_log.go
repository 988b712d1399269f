package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentLog records one verification or creation attempt for a payment.
// All attempts are logged regardless of outcome; this is the server-side
// diagnostic trail and may carry detail that never reaches a client.
type PaymentLog struct {
	ID           uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	PaymentID    uuid.UUID     `json:"payment_id" gorm:"type:char(36);not null;index"`
	Status       PaymentStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage string        `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time     `json:"created_at"`

	// Relations
	Payment Payment `json:"-" gorm:"foreignKey:PaymentID"`
}

// BeforeCreate sets UUID before creating the record.
func (pl *PaymentLog) BeforeCreate(tx *gorm.DB) error {
	if pl.ID == uuid.Nil {
		pl.ID = uuid.New()
	}
	return nil
}
