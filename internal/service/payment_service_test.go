package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "payflow/internal/errors"
	"payflow/internal/gateway"
	"payflow/internal/model"
)

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) TransitionStatus(ctx context.Context, gatewayOrderID string, to model.PaymentStatus, gatewayPaymentID string) (bool, error) {
	args := m.Called(ctx, gatewayOrderID, to, gatewayPaymentID)
	return args.Bool(0), args.Error(1)
}

// MockPaymentLogRepository is a mock implementation of PaymentLogRepository.
type MockPaymentLogRepository struct {
	mock.Mock
}

func (m *MockPaymentLogRepository) Create(ctx context.Context, log *model.PaymentLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockPaymentLogRepository) CreateBatch(ctx context.Context, logs []model.PaymentLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

// MockGatewayClient is a mock implementation of gateway.Client.
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

const testSecret = "test-secret"

func newTestPaymentService(paymentRepo *MockPaymentRepository, logRepo *MockPaymentLogRepository, gw *MockGatewayClient) PaymentService {
	// The log worker may or may not flush during a short test run.
	logRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	logRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewPaymentService(paymentRepo, logRepo, gw, gateway.NewSignatureVerifier(testSecret), nil)
}

func TestPaymentService_CreateOrder(t *testing.T) {
	t.Run("rejects non-positive amount before calling the gateway", func(t *testing.T) {
		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
			paymentRepo := new(MockPaymentRepository)
			logRepo := new(MockPaymentLogRepository)
			gw := new(MockGatewayClient)
			svc := newTestPaymentService(paymentRepo, logRepo, gw)

			payment, err := svc.CreateOrder(context.Background(), "a@x.com", amount)

			assert.Nil(t, payment)
			assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
			gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	})

	t.Run("converts major units to minor units and persists created record", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		gw.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req gateway.CreateOrderRequest) bool {
			return req.Amount == 50000 && req.Currency == "INR"
		})).Return(&gateway.Order{ID: "order_abc", Amount: 50000, Currency: "INR"}, nil)
		paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)

		payment, err := svc.CreateOrder(context.Background(), "a@x.com", decimal.NewFromInt(500))

		assert.NoError(t, err)
		assert.NotNil(t, payment)
		assert.Equal(t, model.PaymentStatusCreated, payment.Status)
		assert.Equal(t, "order_abc", payment.GatewayOrderID)
		assert.Equal(t, "a@x.com", payment.UserEmail)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(500)))
		gw.AssertExpectations(t)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("propagates gateway unavailability", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, apperrors.ErrGatewayUnavailable)

		payment, err := svc.CreateOrder(context.Background(), "a@x.com", decimal.NewFromInt(10))

		assert.Nil(t, payment)
		assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
		paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	verifier := gateway.NewSignatureVerifier(testSecret)
	orderID := "order_abc"
	gwPaymentID := "pay_xyz"
	validSig := verifier.Sign(orderID, gwPaymentID)

	t.Run("valid signature settles the payment as success", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		paymentRepo.On("TransitionStatus", mock.Anything, orderID, model.PaymentStatusSuccess, gwPaymentID).Return(true, nil)
		paymentRepo.On("FindByGatewayOrderID", mock.Anything, orderID).Return(&model.Payment{
			ID:               uuid.New(),
			Status:           model.PaymentStatusSuccess,
			GatewayOrderID:   orderID,
			GatewayPaymentID: gwPaymentID,
		}, nil)

		payment, err := svc.VerifyPayment(context.Background(), orderID, gwPaymentID, validSig)

		assert.NoError(t, err)
		assert.Equal(t, model.PaymentStatusSuccess, payment.Status)
		assert.Equal(t, gwPaymentID, payment.GatewayPaymentID)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("tampered signature never transitions to success", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		paymentRepo.On("TransitionStatus", mock.Anything, orderID, model.PaymentStatusFailed, "").Return(true, nil)
		paymentRepo.On("FindByGatewayOrderID", mock.Anything, orderID).Return(&model.Payment{
			ID:             uuid.New(),
			Status:         model.PaymentStatusFailed,
			GatewayOrderID: orderID,
		}, nil)

		payment, err := svc.VerifyPayment(context.Background(), orderID, gwPaymentID, "deadbeef")

		assert.Nil(t, payment)
		assert.ErrorIs(t, err, apperrors.ErrSignatureMismatch)
		paymentRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, orderID, model.PaymentStatusSuccess, mock.Anything)
	})

	t.Run("repeated valid callback is idempotent", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		// Second delivery: the record is already terminal, nothing to update.
		paymentRepo.On("TransitionStatus", mock.Anything, orderID, model.PaymentStatusSuccess, gwPaymentID).Return(false, nil)
		paymentRepo.On("FindByGatewayOrderID", mock.Anything, orderID).Return(&model.Payment{
			ID:               uuid.New(),
			Status:           model.PaymentStatusSuccess,
			GatewayOrderID:   orderID,
			GatewayPaymentID: gwPaymentID,
		}, nil)

		payment, err := svc.VerifyPayment(context.Background(), orderID, gwPaymentID, validSig)

		assert.NoError(t, err)
		assert.Equal(t, model.PaymentStatusSuccess, payment.Status)
		assert.Equal(t, gwPaymentID, payment.GatewayPaymentID)
	})

	t.Run("invalid callback after success leaves the record untouched", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		// Conditional update finds no non-terminal row.
		paymentRepo.On("TransitionStatus", mock.Anything, orderID, model.PaymentStatusFailed, "").Return(false, nil)

		payment, err := svc.VerifyPayment(context.Background(), orderID, gwPaymentID, "deadbeef")

		assert.Nil(t, payment)
		assert.ErrorIs(t, err, apperrors.ErrSignatureMismatch)
		paymentRepo.AssertNotCalled(t, "FindByGatewayOrderID", mock.Anything, mock.Anything)
	})

	t.Run("unknown order id fails with not found", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		paymentRepo.On("TransitionStatus", mock.Anything, orderID, model.PaymentStatusSuccess, gwPaymentID).Return(false, nil)
		paymentRepo.On("FindByGatewayOrderID", mock.Anything, orderID).Return(nil, gorm.ErrRecordNotFound)

		payment, err := svc.VerifyPayment(context.Background(), orderID, gwPaymentID, validSig)

		assert.Nil(t, payment)
		assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
	})
}

func TestPaymentService_CheckStatus(t *testing.T) {
	t.Run("returns the stored status", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		paymentID := uuid.New()
		paymentRepo.On("FindByID", mock.Anything, paymentID).Return(&model.Payment{
			ID:     paymentID,
			Status: model.PaymentStatusCreated,
		}, nil)

		status, err := svc.CheckStatus(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.Equal(t, model.PaymentStatusCreated, status)
	})

	t.Run("missing record fails with not found", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		logRepo := new(MockPaymentLogRepository)
		gw := new(MockGatewayClient)
		svc := newTestPaymentService(paymentRepo, logRepo, gw)

		paymentID := uuid.New()
		paymentRepo.On("FindByID", mock.Anything, paymentID).Return(nil, gorm.ErrRecordNotFound)

		status, err := svc.CheckStatus(context.Background(), paymentID)

		assert.Empty(t, status)
		assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
	})
}
