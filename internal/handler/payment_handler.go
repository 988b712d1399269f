package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"payflow/internal/errors"
	"payflow/internal/model"
	"payflow/internal/service"
)

// PaymentHandler handles payment order endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateOrderRequest represents an order creation request.
// Amount is in major units; conversion happens at the gateway boundary.
type CreateOrderRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
	Amount    string `json:"amount" validate:"required"`
}

// CreateOrderResponse carries what the client needs for the redirect.
type CreateOrderResponse struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// VerifyPaymentRequest represents a verification callback.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// VerifyPaymentResponse reports the verification outcome.
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse carries a payment's current status.
type StatusResponse struct {
	Status string `json:"status"`
}

// CreateOrder godoc
// @Summary Create a payment order at the gateway
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order data"
// @Success 200 {object} CreateOrderResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /create-order [post]
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid amount",
			Code:  "INVALID_AMOUNT",
		})
	}

	payment, err := h.paymentService.CreateOrder(c.Request().Context(), req.UserEmail, amount)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, CreateOrderResponse{
		PaymentID: payment.ID.String(),
		OrderID:   payment.GatewayOrderID,
		Amount:    payment.Amount.String(),
		Currency:  payment.Currency,
	})
}

// VerifyPayment godoc
// @Summary Verify a payment callback signature and settle the payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body VerifyPaymentRequest true "Callback data"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /verify-payment [post]
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	payment, err := h.paymentService.VerifyPayment(c.Request().Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	message := "payment verified successfully"
	if payment.Status != model.PaymentStatusSuccess {
		message = "payment is not successful"
	}

	return c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success: payment.Status == model.PaymentStatusSuccess,
		Status:  string(payment.Status),
		Message: message,
	})
}

// CheckStatus godoc
// @Summary Get the current status of a payment
// @Tags payments
// @Produce json
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /check-payment/{paymentId} [get]
func (h *PaymentHandler) CheckStatus(c echo.Context) error {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid payment id",
			Code:  "INVALID_UUID",
		})
	}

	status, err := h.paymentService.CheckStatus(c.Request().Context(), paymentID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: string(status)})
}
