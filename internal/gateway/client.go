package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "payflow/internal/errors"
)

// Order is the gateway's view of a created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrderRequest carries the order parameters the gateway expects.
// Amount is in minor units (paise/cents); the caller converts.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Client creates orders against the external payment processor.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
}

type httpClient struct {
	baseURL string
	keyID   string
	secret  string
	http    *http.Client
}

// NewClient builds an HTTP gateway client authenticated with the key pair.
func NewClient(baseURL, keyID, secret string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateOrder posts an order to the processor and returns its identifier.
// Transport failures and 5xx responses surface as ErrGatewayUnavailable,
// 4xx responses as ErrGatewayRejected.
func (c *httpClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: gateway returned %d", apperrors.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: gateway returned %d", apperrors.ErrGatewayRejected, resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: decode order response: %v", apperrors.ErrGatewayUnavailable, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order response missing id", apperrors.ErrGatewayRejected)
	}

	return &order, nil
}
