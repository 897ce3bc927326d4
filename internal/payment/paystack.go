package payment

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

type PaystackConfig struct {
	BaseURL   string
	SecretKey string
	Currency  string
	Timeout   time.Duration
}

// PaystackClient initializes transactions against the Paystack REST API.
type PaystackClient struct {
	baseURL   string
	secretKey string
	currency  string
	client    *http.Client
}

func NewPaystackClient(cfg PaystackConfig) *PaystackClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &PaystackClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		currency:  cfg.Currency,
		client:    &http.Client{Timeout: timeout},
	}
}

type initializeBody struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Reference   string            `json:"reference"`
	Currency    string            `json:"currency,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (c *PaystackClient) Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	body, err := json.Marshal(initializeBody{
		Email:       req.Email,
		Amount:      ToMinorUnits(req.Amount),
		Reference:   req.Reference,
		Currency:    c.currency,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: executing request: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGateway, err)
	}

	var out initializeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: unexpected response (status %d): %v", ErrGateway, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !out.Status {
		return nil, fmt.Errorf("%w: initialize rejected (status %d): %s", ErrGateway, resp.StatusCode, out.Message)
	}

	if out.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: initialize returned no authorization url", ErrGateway)
	}

	return &Authorization{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        out.Data.Reference,
	}, nil
}
