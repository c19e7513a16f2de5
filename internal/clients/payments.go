package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Purchase outcomes. Only Authorized carries a transaction ID; the core
// consumes the other outcomes as failure paths and never retries a charge
// blindly.
const (
	PurchaseAuthorized = "authorized"
	PurchaseCancelled  = "cancelled"
	PurchasePending    = "pending"
	PurchaseFailed     = "failed"
)

var ErrPurchaseNotAuthorized = errors.New("purchase not authorized")

// PurchaseResult is the outcome of a payment authorization attempt.
type PurchaseResult struct {
	Outcome       string `json:"outcome"`
	TransactionID string `json:"transactionId,omitempty"`
}

// PaymentAuthorizer charges the coordination fee through the platform's
// in-app purchase service. Payment processing itself is out of scope; the
// core only consumes the verified transaction ID or the failure outcome.
type PaymentAuthorizer interface {
	Purchase(ctx context.Context, productID, accountToken string) (PurchaseResult, error)
}

// HTTPPaymentAuthorizer calls the external payment authorization endpoint.
type HTTPPaymentAuthorizer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPPaymentAuthorizer(baseURL string, timeout time.Duration) *HTTPPaymentAuthorizer {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPPaymentAuthorizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type purchaseRequest struct {
	ProductID    string `json:"productId"`
	AccountToken string `json:"accountToken"`
}

func (p *HTTPPaymentAuthorizer) Purchase(ctx context.Context, productID, accountToken string) (PurchaseResult, error) {
	payload, err := json.Marshal(purchaseRequest{ProductID: productID, AccountToken: accountToken})
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("failed to marshal purchase request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/purchase", bytes.NewReader(payload))
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("failed to build purchase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("payment service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PurchaseResult{}, fmt.Errorf("payment service returned %d", resp.StatusCode)
	}

	var result PurchaseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return PurchaseResult{}, fmt.Errorf("failed to decode purchase response: %w", err)
	}
	return result, nil
}
