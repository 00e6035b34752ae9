package turnkey

import (
	"fmt"
	"time"
)

const (
	activitySignRawPayload        = "ACTIVITY_TYPE_SIGN_RAW_PAYLOAD_V2"
	activityCreateAPIKeys         = "ACTIVITY_TYPE_CREATE_API_KEYS_V2"
	activityCreateSubOrganization = "ACTIVITY_TYPE_CREATE_SUB_ORGANIZATION_V7"

	activityStatusCompleted = "ACTIVITY_STATUS_COMPLETED"
)

type activityRequest struct {
	Type           string      `json:"type"`
	TimestampMs    string      `json:"timestampMs"`
	OrganizationID string      `json:"organizationId"`
	Parameters     interface{} `json:"parameters"`
}

type signRawPayloadParams struct {
	SignWith     string `json:"signWith"`
	Payload      string `json:"payload"`
	Encoding     string `json:"encoding"`
	HashFunction string `json:"hashFunction"`
}

type apiKeyParams struct {
	APIKeyName        string `json:"apiKeyName"`
	PublicKey         string `json:"publicKey"`
	CurveType         string `json:"curveType"`
	ExpirationSeconds string `json:"expirationSeconds,omitempty"`
}

type createAPIKeysParams struct {
	APIKeys []apiKeyParams `json:"apiKeys"`
	UserID  string         `json:"userId"`
}

type rootUserParams struct {
	UserName       string         `json:"userName"`
	APIKeys        []apiKeyParams `json:"apiKeys"`
	Authenticators []struct{}     `json:"authenticators"`
	OauthProviders []struct{}     `json:"oauthProviders"`
}

type walletAccountParams struct {
	Curve         string `json:"curve"`
	PathFormat    string `json:"pathFormat"`
	Path          string `json:"path"`
	AddressFormat string `json:"addressFormat"`
}

type walletParams struct {
	WalletName string                `json:"walletName"`
	Accounts   []walletAccountParams `json:"accounts"`
}

type createSubOrganizationParams struct {
	SubOrganizationName string           `json:"subOrganizationName"`
	RootUsers           []rootUserParams `json:"rootUsers"`
	RootQuorumThreshold int              `json:"rootQuorumThreshold"`
	Wallet              walletParams     `json:"wallet"`
}

type activityResponse struct {
	Activity struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Type   string `json:"type"`
		Result struct {
			SignRawPayloadResult *struct {
				R string `json:"r"`
				S string `json:"s"`
				V string `json:"v"`
			} `json:"signRawPayloadResult,omitempty"`
			CreateAPIKeysResult *struct {
				APIKeyIDs []string `json:"apiKeyIds"`
			} `json:"createApiKeysResult,omitempty"`
			CreateSubOrganizationResultV7 *struct {
				SubOrganizationID string `json:"subOrganizationId"`
				Wallet            struct {
					WalletID  string   `json:"walletId"`
					Addresses []string `json:"addresses"`
				} `json:"wallet"`
				RootUserIDs []string `json:"rootUserIds"`
			} `json:"createSubOrganizationResultV7,omitempty"`
		} `json:"result"`
	} `json:"activity"`
}

// APIError is an error response returned by the signer API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("turnkey: status %d", e.StatusCode)
	}
	return fmt.Sprintf("turnkey: status %d: %s", e.StatusCode, e.Message)
}

// NewAPIKey describes an API key to register for a user.
type NewAPIKey struct {
	Name      string
	PublicKey string
	// Zero means the key never expires.
	Expiration time.Duration
}

// SubOrganizationRequest describes a sub-organization with one root user
// and a Solana wallet.
type SubOrganizationRequest struct {
	Name       string
	UserName   string
	APIKey     NewAPIKey
	WalletName string
}

// SubOrganization is the result of CreateSubOrganization.
type SubOrganization struct {
	ID            string
	WalletID      string
	WalletAddress string
	RootUserID    string
}
