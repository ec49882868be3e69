package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mmynk/splitpay/internal/money"
)

// HTTPExecutor calls an external wallet service to move stablecoin value.
// Transient failures are retried by the underlying client; a non-2xx
// response after retries is reported as a failed transfer.
type HTTPExecutor struct {
	client  *retryablehttp.Client
	baseURL string
	token   string
}

// NewHTTPExecutor creates an executor for the wallet service at baseURL.
// token is sent as a bearer credential on every request.
func NewHTTPExecutor(baseURL, token string) *HTTPExecutor {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = nil // we log the outcome ourselves

	return &HTTPExecutor{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}
}

type transferRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Attempt posts the transfer to the wallet service and treats any non-2xx
// status as failure.
func (e *HTTPExecutor) Attempt(ctx context.Context, from, to string, amount money.Money) error {
	body, err := json.Marshal(transferRequest{
		From:     from,
		To:       to,
		Amount:   amount.Amount,
		Currency: amount.Currency,
	})
	if err != nil {
		return fmt.Errorf("failed to encode transfer request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("wallet service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wallet service rejected transfer: status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
