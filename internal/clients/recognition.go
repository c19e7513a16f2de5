// Package clients holds the service's external boundaries: optical text
// recognition and in-app payment authorization. Both are opaque services
// behind small interfaces so the core can be tested with fakes, and both
// carry bounded timeouts so no transition blocks indefinitely on them.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TextRecognizer turns image bytes into ordered lines of best-guess text.
// Callers treat failures as "no text found" and degrade to a rejected
// disposition rather than blocking the swap.
type TextRecognizer interface {
	Recognize(ctx context.Context, imageBytes []byte) ([]string, error)
}

// HTTPTextRecognizer calls an external OCR endpoint.
type HTTPTextRecognizer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTextRecognizer(baseURL string, timeout time.Duration) *HTTPTextRecognizer {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTextRecognizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type recognizeResponse struct {
	Lines []string `json:"lines"`
}

func (r *HTTPTextRecognizer) Recognize(ctx context.Context, imageBytes []byte) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/recognize", bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognition service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition service returned %d", resp.StatusCode)
	}

	var body recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode recognition response: %w", err)
	}
	return body.Lines, nil
}
