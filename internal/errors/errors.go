package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserAlreadyExists is returned when registering a taken email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidAmount is returned when amount is missing, zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPaymentNotFound is returned when no payment matches the identifier.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrSignatureMismatch is returned when a verification signature does not match.
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	// ErrGatewayUnavailable is returned when the gateway cannot be reached.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected is returned when the gateway rejects the order request.
	ErrGatewayRejected = errors.New("payment gateway rejected the order")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a generic 500; internal detail stays in server logs only.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrPaymentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PAYMENT_NOT_FOUND")
	case errors.Is(err, ErrSignatureMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SIGNATURE_MISMATCH")
	case errors.Is(err, ErrGatewayUnavailable):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "GATEWAY_UNAVAILABLE")
	case errors.Is(err, ErrGatewayRejected):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "GATEWAY_REJECTED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
