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
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	jupiterAPI = "https://public.jupiterapi.com"
)

// JupiterClient client for the Jupiter swap aggregator API
type JupiterClient struct {
	baseURL string
	client  *http.Client
}

// NewJupiterClient creates a new Jupiter client. An empty baseURL uses the
// public API; a non-positive timeout uses 15s.
func NewJupiterClient(baseURL string, timeout time.Duration) *JupiterClient {
	if baseURL == "" {
		baseURL = jupiterAPI
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &JupiterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Quote is a route returned by the quote endpoint. Raw is passed back to
// the swap endpoint unchanged.
type Quote struct {
	InAmount  string
	OutAmount string
	Raw       json.RawMessage
}

// SwapResponse response from the swap endpoint
type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}

// GetQuote asks for the best route swapping amount base units of inputMint.
func (c *JupiterClient) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatUint(amount, 10))
	q.Set("slippageBps", strconv.Itoa(slippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	var fields struct {
		InAmount  string `json:"inAmount"`
		OutAmount string `json:"outAmount"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	if fields.Error != "" {
		return nil, fmt.Errorf("quote error: %s", fields.Error)
	}

	return &Quote{InAmount: fields.InAmount, OutAmount: fields.OutAmount, Raw: body}, nil
}

// GetSwapTransaction builds the unsigned swap transaction for quote paid by userPublicKey.
func (c *JupiterClient) GetSwapTransaction(ctx context.Context, quote *Quote, userPublicKey string) (*SwapResponse, error) {
	if quote == nil || len(quote.Raw) == 0 {
		return nil, errors.New("quote is required")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"userPublicKey":    userPublicKey,
		"quoteResponse":    quote.Raw,
		"wrapAndUnwrapSol": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get swap transaction: %w", err)
	}

	var swap SwapResponse
	if err := json.Unmarshal(body, &swap); err != nil {
		return nil, fmt.Errorf("failed to decode swap response: %w", err)
	}
	if swap.SwapTransaction == "" {
		return nil, errors.New("swap response has no transaction")
	}
	return &swap, nil
}

func (c *JupiterClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
