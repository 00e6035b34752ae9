// Package turnkey is a client for the Turnkey custodial signing API.
package turnkey

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/metrics"
	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.turnkey.com"

	solanaDerivationPath = "m/44'/501'/0'/0'"
)

// Client talks to the signer API. Each call is authenticated with the
// credential passed to it, so one Client serves every user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
	now        func() time.Time
}

// NewClient creates a client for baseURL (the public API host when empty).
func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
		now: time.Now,
	}
}

// SignRawPayload signs payload with the key of cred.WalletAddress and returns
// the 64-byte r||s signature. The payload is sent as is, no hash is applied.
func (c *Client) SignRawPayload(ctx context.Context, cred model.UserCredential, payload []byte) ([]byte, error) {
	resp, err := c.submit(ctx, "sign_raw_payload", cred, activitySignRawPayload, signRawPayloadParams{
		SignWith:     cred.WalletAddress,
		Payload:      hex.EncodeToString(payload),
		Encoding:     "PAYLOAD_ENCODING_HEXADECIMAL",
		HashFunction: "HASH_FUNCTION_NOT_APPLICABLE",
	})
	if err != nil {
		metrics.SignRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	result := resp.Activity.Result.SignRawPayloadResult
	if result == nil {
		metrics.SignRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("missing sign raw payload result (activity %s, status %s)",
			resp.Activity.ID, resp.Activity.Status)
	}

	sig, err := hex.DecodeString(result.R + result.S)
	if err != nil {
		metrics.SignRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != 64 {
		metrics.SignRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("invalid signature length: expected 64 bytes, got %d", len(sig))
	}

	metrics.SignRequests.WithLabelValues("ok").Inc()
	return sig, nil
}

// CreateAPIKeys registers keys for userID in the organization of cred and
// returns their IDs.
func (c *Client) CreateAPIKeys(ctx context.Context, cred model.UserCredential, userID string, keys ...NewAPIKey) ([]string, error) {
	if len(keys) == 0 {
		return nil, errors.New("no API keys to create")
	}

	params := createAPIKeysParams{UserID: userID}
	for _, k := range keys {
		params.APIKeys = append(params.APIKeys, apiKeyFromRequest(k))
	}

	resp, err := c.submit(ctx, "create_api_keys", cred, activityCreateAPIKeys, params)
	if err != nil {
		return nil, err
	}
	result := resp.Activity.Result.CreateAPIKeysResult
	if result == nil {
		return nil, fmt.Errorf("missing create api keys result (activity %s, status %s)",
			resp.Activity.ID, resp.Activity.Status)
	}
	return result.APIKeyIDs, nil
}

// CreateSubOrganization creates a sub-organization under the organization of
// cred with a single root user and one Solana account.
func (c *Client) CreateSubOrganization(ctx context.Context, cred model.UserCredential, req SubOrganizationRequest) (SubOrganization, error) {
	walletName := req.WalletName
	if walletName == "" {
		walletName = "Default Solana Wallet"
	}

	params := createSubOrganizationParams{
		SubOrganizationName: req.Name,
		RootUsers: []rootUserParams{{
			UserName:       req.UserName,
			APIKeys:        []apiKeyParams{apiKeyFromRequest(req.APIKey)},
			Authenticators: []struct{}{},
			OauthProviders: []struct{}{},
		}},
		RootQuorumThreshold: 1,
		Wallet: walletParams{
			WalletName: walletName,
			Accounts: []walletAccountParams{{
				Curve:         "CURVE_ED25519",
				PathFormat:    "PATH_FORMAT_BIP32",
				Path:          solanaDerivationPath,
				AddressFormat: "ADDRESS_FORMAT_SOLANA",
			}},
		},
	}

	resp, err := c.submit(ctx, "create_sub_organization", cred, activityCreateSubOrganization, params)
	if err != nil {
		return SubOrganization{}, err
	}
	result := resp.Activity.Result.CreateSubOrganizationResultV7
	if result == nil {
		return SubOrganization{}, fmt.Errorf("missing create sub-organization result (activity %s, status %s)",
			resp.Activity.ID, resp.Activity.Status)
	}

	sub := SubOrganization{
		ID:       result.SubOrganizationID,
		WalletID: result.Wallet.WalletID,
	}
	if len(result.Wallet.Addresses) > 0 {
		sub.WalletAddress = result.Wallet.Addresses[0]
	}
	if len(result.RootUserIDs) > 0 {
		sub.RootUserID = result.RootUserIDs[0]
	}
	return sub, nil
}

func apiKeyFromRequest(k NewAPIKey) apiKeyParams {
	p := apiKeyParams{
		APIKeyName: k.Name,
		PublicKey:  k.PublicKey,
		CurveType:  "API_KEY_CURVE_P256",
	}
	if k.Expiration > 0 {
		p.ExpirationSeconds = strconv.FormatInt(int64(k.Expiration/time.Second), 10)
	}
	return p
}

// submit posts a stamped activity and decodes the response.
func (c *Client) submit(ctx context.Context, endpoint string, cred model.UserCredential, activityType string, params interface{}) (*activityResponse, error) {
	body, err := json.Marshal(activityRequest{
		Type:           activityType,
		TimestampMs:    strconv.FormatInt(c.now().UnixMilli(), 10),
		OrganizationID: cred.OrganizationID,
		Parameters:     params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	stamp, err := Stamp(body, cred.PublicKey, cred.PrivateKey)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/public/v1/submit/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Stamp", stamp)

	c.log.WithFields(logrus.Fields{
		"activity":     activityType,
		"organization": cred.OrganizationID,
	}).Debug("submitting signer activity")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}

	var out activityResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Activity.Status != "" && out.Activity.Status != activityStatusCompleted {
		c.log.WithFields(logrus.Fields{
			"activity": out.Activity.ID,
			"status":   out.Activity.Status,
		}).Warn("signer activity not completed")
	}
	return &out, nil
}
