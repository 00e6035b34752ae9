package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/model"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const userAgent = "trade-relay/1.0"

// BackendClient client for the copy trade bot backend REST API
type BackendClient struct {
	baseURL string
	client  *http.Client
}

// NewBackendClient creates a new bot backend client
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SetCopyTradeWallet creates or replaces a copy trade rule. The backend
// answers 200 with a plain text message when it could not resubscribe its
// watcher, which is reported as an error.
func (c *BackendClient) SetCopyTradeWallet(ctx context.Context, w model.CopyTradeWallet) (*model.CopyTradeWallet, error) {
	body, err := c.do(ctx, http.MethodPost, "/set_copy_trade_wallet", w)
	if err != nil {
		return nil, fmt.Errorf("failed to set copy trade wallet: %w", err)
	}

	var saved model.CopyTradeWallet
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("failed to set copy trade wallet: %s", strings.TrimSpace(string(body)))
	}
	return &saved, nil
}

// GetCopyTrades lists the copy trade rules of userID.
func (c *BackendClient) GetCopyTrades(ctx context.Context, userID string) ([]model.CopyTradeWallet, error) {
	body, err := c.do(ctx, http.MethodGet, "/get_copy_trades/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get copy trades: %w", err)
	}

	var wallets []model.CopyTradeWallet
	if err := json.Unmarshal(body, &wallets); err != nil {
		return nil, fmt.Errorf("failed to decode copy trades: %w", err)
	}
	return wallets, nil
}

// DeleteCopyTradeWallet removes the rule following copyTradeAddress.
func (c *BackendClient) DeleteCopyTradeWallet(ctx context.Context, userID, copyTradeAddress string) error {
	path := "/delete_copy_trade_wallet/" + url.PathEscape(userID) + "/" + url.PathEscape(copyTradeAddress)
	if _, err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("failed to delete copy trade wallet: %w", err)
	}
	return nil
}

// SetUserSession announces session keys so the backend can sign copy trades.
func (c *BackendClient) SetUserSession(ctx context.Context, s model.UserSession) error {
	if _, err := c.do(ctx, http.MethodPost, "/set_user_session", s); err != nil {
		return fmt.Errorf("failed to set user session: %w", err)
	}
	return nil
}

func (c *BackendClient) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	if c.baseURL == "" {
		return nil, errors.New("bot backend URL is not configured")
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server responded with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
