package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPGateway talks to a real provider over JSON. Provider failures surface
// as upstream errors; nothing here retries, the outbox worker owns that.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) (*HTTPGateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("missing PROVIDER_BASE_URL")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing PROVIDER_API_KEY")
	}
	return &HTTPGateway{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *HTTPGateway) VerifyAccount(ctx context.Context, bankName, accountNumber string) (string, error) {
	if strings.TrimSpace(accountNumber) == "" {
		return "", fmt.Errorf("missing account number")
	}
	var out struct {
		AccountName string `json:"account_name"`
	}
	err := g.post(ctx, "/v1/accounts/resolve", map[string]any{
		"bank_name":      strings.TrimSpace(bankName),
		"account_number": strings.TrimSpace(accountNumber),
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AccountName == "" {
		return "", fmt.Errorf("provider returned empty account name")
	}
	return out.AccountName, nil
}

func (g *HTTPGateway) RegisterMandate(ctx context.Context, in MandateInput) (string, error) {
	if strings.TrimSpace(in.ApplicationID) == "" {
		return "", fmt.Errorf("missing application id")
	}
	var out struct {
		Reference string `json:"reference"`
	}
	err := g.post(ctx, "/v1/mandates", map[string]any{
		"application_id":   strings.TrimSpace(in.ApplicationID),
		"account_number":   strings.TrimSpace(in.AccountNumber),
		"bank_name":        strings.TrimSpace(in.BankName),
		"recurring_amount": in.RecurringAmount.String(),
		"frequency":        strings.TrimSpace(in.Frequency),
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Reference == "" {
		return "", fmt.Errorf("provider returned empty mandate reference")
	}
	return out.Reference, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload map[string]any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("provider response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("provider response decode failed: %w", err)
	}
	return nil
}
