package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"payflow/internal/model"
)

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	// TransitionStatus moves a payment out of a non-terminal status in a single
	// conditional UPDATE. It returns true when this call performed the
	// transition and false when the record was already terminal, which is how
	// concurrent verification callbacks are serialized without locking.
	TransitionStatus(ctx context.Context, gatewayOrderID string, to model.PaymentStatus, gatewayPaymentID string) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByID finds a payment by ID.
func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByGatewayOrderID finds a payment by the gateway's order identifier.
func (r *paymentRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// TransitionStatus conditionally moves a non-terminal payment to a terminal
// status. The WHERE clause on the prior status makes the transition atomic at
// the database level.
func (r *paymentRepository) TransitionStatus(ctx context.Context, gatewayOrderID string, to model.PaymentStatus, gatewayPaymentID string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if gatewayPaymentID != "" {
		updates["gateway_payment_id"] = gatewayPaymentID
	}
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, model.PaymentStatusCreated).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PaymentLogRepository defines payment log persistence operations.
type PaymentLogRepository interface {
	Create(ctx context.Context, log *model.PaymentLog) error
	CreateBatch(ctx context.Context, logs []model.PaymentLog) error
}

type paymentLogRepository struct {
	db *gorm.DB
}

// NewPaymentLogRepository creates a new payment log repository.
func NewPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &paymentLogRepository{db: db}
}

// Create creates a new payment log entry.
func (r *paymentLogRepository) Create(ctx context.Context, log *model.PaymentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CreateBatch creates multiple payment log entries in a single statement.
func (r *paymentLogRepository) CreateBatch(ctx context.Context, logs []model.PaymentLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}
