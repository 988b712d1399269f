package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"payflow/internal/cache"
	apperrors "payflow/internal/errors"
	"payflow/internal/gateway"
	"payflow/internal/model"
	"payflow/internal/repository"
)

const statusCacheTTL = 24 * time.Hour

// PaymentService orchestrates the payment order lifecycle:
// order creation at the gateway, persistence of the local record, and the
// signature-verified transition to a terminal status.
type PaymentService interface {
	CreateOrder(ctx context.Context, userEmail string, amount decimal.Decimal) (*model.Payment, error)
	VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*model.Payment, error)
	CheckStatus(ctx context.Context, paymentID uuid.UUID) (model.PaymentStatus, error)
}

type paymentService struct {
	paymentRepo    repository.PaymentRepository
	paymentLogRepo repository.PaymentLogRepository
	gateway        gateway.Client
	verifier       *gateway.SignatureVerifier
	cache          *cache.Client
	currency       string
	// Channel for async attempt logging
	logChannel chan model.PaymentLog
}

// NewPaymentService creates a new payment service and starts its log worker.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	paymentLogRepo repository.PaymentLogRepository,
	gw gateway.Client,
	verifier *gateway.SignatureVerifier,
	cacheClient *cache.Client,
) PaymentService {
	service := &paymentService{
		paymentRepo:    paymentRepo,
		paymentLogRepo: paymentLogRepo,
		gateway:        gw,
		verifier:       verifier,
		cache:          cacheClient,
		currency:       "INR",
		logChannel:     make(chan model.PaymentLog, 100),
	}

	go service.logWorker(context.Background())

	return service
}

// logWorker persists payment logs asynchronously in small batches.
func (s *paymentService) logWorker(ctx context.Context) {
	batch := make([]model.PaymentLog, 0, 10)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case log, ok := <-s.logChannel:
			if !ok {
				if len(batch) > 0 {
					_ = s.paymentLogRepo.CreateBatch(ctx, batch)
				}
				return
			}
			batch = append(batch, log)
			if len(batch) >= 10 {
				_ = s.paymentLogRepo.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				_ = s.paymentLogRepo.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

// CreateOrder validates the amount, creates an order at the gateway and
// persists the local record in the created state. The gateway takes minor
// units, so the major-unit amount is shifted by two decimal places here and
// nowhere else.
func (s *paymentService) CreateOrder(ctx context.Context, userEmail string, amount decimal.Decimal) (*model.Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	paymentID := uuid.New()
	minorUnits := amount.Shift(2).Round(0).IntPart()

	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   minorUnits,
		Currency: s.currency,
		Receipt:  "rcpt_" + paymentID.String(),
	})
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:             paymentID,
		UserEmail:      userEmail,
		Amount:         amount,
		Currency:       order.Currency,
		Status:         model.PaymentStatusCreated,
		GatewayOrderID: order.ID,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logAttempt(ctx, payment.ID, model.PaymentStatusCreated, "")

	return payment, nil
}

// VerifyPayment recomputes the callback signature and settles the payment.
//
// A valid signature moves the record created -> success and stores the
// gateway payment id; an invalid one moves it created -> failed. Both
// transitions are conditional updates, so a record that is already terminal
// is never rewritten: a repeated valid callback returns the stored success
// idempotently, and a bad callback can never undo a prior success.
func (s *paymentService) VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*model.Payment, error) {
	if !s.verifier.Verify(gatewayOrderID, gatewayPaymentID, signature) {
		transitioned, err := s.paymentRepo.TransitionStatus(ctx, gatewayOrderID, model.PaymentStatusFailed, "")
		if err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		if transitioned {
			if payment, ferr := s.paymentRepo.FindByGatewayOrderID(ctx, gatewayOrderID); ferr == nil {
				s.cacheStatus(ctx, payment.ID, payment.Status)
				s.logAttempt(ctx, payment.ID, model.PaymentStatusFailed, "signature mismatch")
			}
		}
		return nil, apperrors.ErrSignatureMismatch
	}

	transitioned, err := s.paymentRepo.TransitionStatus(ctx, gatewayOrderID, model.PaymentStatusSuccess, gatewayPaymentID)
	if err != nil {
		return nil, fmt.Errorf("mark payment success: %w", err)
	}

	payment, err := s.paymentRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}

	if transitioned {
		s.cacheStatus(ctx, payment.ID, payment.Status)
		s.logAttempt(ctx, payment.ID, model.PaymentStatusSuccess, "")
	}

	return payment, nil
}

// CheckStatus returns the current status of a payment. Terminal statuses are
// served from the cache when present; everything else hits the database.
func (s *paymentService) CheckStatus(ctx context.Context, paymentID uuid.UUID) (model.PaymentStatus, error) {
	if cached, _ := s.cache.Get(ctx, statusCacheKey(paymentID)); cached != nil {
		return model.PaymentStatus(cached), nil
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrPaymentNotFound
		}
		return "", fmt.Errorf("load payment: %w", err)
	}

	s.cacheStatus(ctx, payment.ID, payment.Status)

	return payment.Status, nil
}

// cacheStatus stores terminal statuses only; a created payment is about to
// change and caching it would serve stale reads.
func (s *paymentService) cacheStatus(ctx context.Context, paymentID uuid.UUID, status model.PaymentStatus) {
	if !status.Terminal() {
		return
	}
	_ = s.cache.Set(ctx, statusCacheKey(paymentID), []byte(status), statusCacheTTL)
}

func statusCacheKey(paymentID uuid.UUID) string {
	return fmt.Sprintf("payment:status:%s", paymentID.String())
}

// logAttempt queues a payment log entry without blocking the request path.
func (s *paymentService) logAttempt(ctx context.Context, paymentID uuid.UUID, status model.PaymentStatus, errorMessage string) {
	log := model.PaymentLog{
		PaymentID:    paymentID,
		Status:       status,
		ErrorMessage: errorMessage,
	}

	select {
	case s.logChannel <- log:
	default:
		// Channel full, log synchronously as fallback
		_ = s.paymentLogRepo.Create(ctx, &log)
	}
}
