package turnkey

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/logger"
	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredential(t *testing.T) model.UserCredential {
	t.Helper()
	pair, err := GenerateAPIKeyPair()
	require.NoError(t, err)
	return model.UserCredential{
		PublicKey:      pair.PublicKey,
		PrivateKey:     pair.PrivateKey,
		OrganizationID: "org-1",
		WalletAddress:  "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
	}
}

// verifyStamp checks the X-Stamp header against body and the credential key.
func verifyStamp(t *testing.T, header string, body []byte, cred model.UserCredential) {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(header)
	require.NoError(t, err)

	var stamp apiStamp
	require.NoError(t, json.Unmarshal(raw, &stamp))
	assert.Equal(t, cred.PublicKey, stamp.PublicKey)
	assert.Equal(t, stampScheme, stamp.Scheme)

	der, err := hex.DecodeString(stamp.Signature)
	require.NoError(t, err)

	priv, err := parsePrivateKey(cred.PrivateKey)
	require.NoError(t, err)
	digest := sha256.Sum256(body)
	assert.True(t, ecdsa.VerifyASN1(&priv.PublicKey, digest[:], der), "stamp signature does not verify")
}

func TestGenerateAPIKeyPair(t *testing.T) {
	pair, err := GenerateAPIKeyPair()
	require.NoError(t, err)

	assert.Len(t, pair.PrivateKey, 64)
	assert.Len(t, pair.PublicKey, 66)
	assert.True(t, strings.HasPrefix(pair.PublicKey, "02") || strings.HasPrefix(pair.PublicKey, "03"))

	priv, err := parsePrivateKey(pair.PrivateKey)
	require.NoError(t, err)
	pub, err := compressedPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, pair.PublicKey, pub)
}

func TestStampRejectsBadKey(t *testing.T) {
	_, err := Stamp([]byte("{}"), "pub", "not-hex")
	assert.Error(t, err)

	_, err = Stamp([]byte("{}"), "pub", "abcd")
	assert.Error(t, err)
}

func TestSignRawPayload(t *testing.T) {
	cred := testCredential(t)
	payload := []byte{0x01, 0x02, 0xff}
	r := strings.Repeat("ab", 32)
	s := strings.Repeat("cd", 32)

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/public/v1/submit/sign_raw_payload", req.URL.Path)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		verifyStamp(t, req.Header.Get("X-Stamp"), body, cred)

		var got struct {
			Type           string               `json:"type"`
			OrganizationID string               `json:"organizationId"`
			TimestampMs    string               `json:"timestampMs"`
			Parameters     signRawPayloadParams `json:"parameters"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, activitySignRawPayload, got.Type)
		assert.Equal(t, "org-1", got.OrganizationID)
		assert.Equal(t, "1700000000000", got.TimestampMs)
		assert.Equal(t, cred.WalletAddress, got.Parameters.SignWith)
		assert.Equal(t, "0102ff", got.Parameters.Payload)
		assert.Equal(t, "PAYLOAD_ENCODING_HEXADECIMAL", got.Parameters.Encoding)
		assert.Equal(t, "HASH_FUNCTION_NOT_APPLICABLE", got.Parameters.HashFunction)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"activity":{"id":"act-1","status":"ACTIVITY_STATUS_COMPLETED",
			"result":{"signRawPayloadResult":{"r":"`+r+`","s":"`+s+`","v":"00"}}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, logger.Discard())
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	sig, err := c.SignRawPayload(context.Background(), cred, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, r+s, hex.EncodeToString(sig))
}

func TestSignRawPayloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "api error is surfaced verbatim",
			status:  http.StatusForbidden,
			body:    `{"code":7,"message":"no valid authentication signals found"}`,
			wantErr: "no valid authentication signals found",
		},
		{
			name:    "plain text error",
			status:  http.StatusInternalServerError,
			body:    "upstream down",
			wantErr: "upstream down",
		},
		{
			name:    "missing result",
			status:  http.StatusOK,
			body:    `{"activity":{"id":"act-2","status":"ACTIVITY_STATUS_PENDING","result":{}}}`,
			wantErr: "missing sign raw payload result",
		},
		{
			name:    "short signature",
			status:  http.StatusOK,
			body:    `{"activity":{"status":"ACTIVITY_STATUS_COMPLETED","result":{"signRawPayloadResult":{"r":"ab","s":"cd"}}}}`,
			wantErr: "invalid signature length",
		},
	}

	cred := testCredential(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, logger.Discard()).
				SignRawPayload(context.Background(), cred, []byte{1})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSignRawPayloadAPIErrorType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":16,"message":"expired api key"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, logger.Discard()).
		SignRawPayload(context.Background(), testCredential(t), []byte{1})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 16, apiErr.Code)
}

func TestCreateAPIKeys(t *testing.T) {
	cred := testCredential(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/public/v1/submit/create_api_keys", req.URL.Path)

		var got struct {
			Type       string              `json:"type"`
			Parameters createAPIKeysParams `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		assert.Equal(t, activityCreateAPIKeys, got.Type)
		assert.Equal(t, "user-1", got.Parameters.UserID)
		require.Len(t, got.Parameters.APIKeys, 1)
		assert.Equal(t, "session-1", got.Parameters.APIKeys[0].APIKeyName)
		assert.Equal(t, "API_KEY_CURVE_P256", got.Parameters.APIKeys[0].CurveType)
		assert.Equal(t, "900", got.Parameters.APIKeys[0].ExpirationSeconds)

		_, _ = io.WriteString(w, `{"activity":{"status":"ACTIVITY_STATUS_COMPLETED",
			"result":{"createApiKeysResult":{"apiKeyIds":["key-1"]}}}}`)
	}))
	defer srv.Close()

	ids, err := NewClient(srv.URL, time.Second, logger.Discard()).CreateAPIKeys(
		context.Background(), cred, "user-1",
		NewAPIKey{Name: "session-1", PublicKey: "02ab", Expiration: 15 * time.Minute},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-1"}, ids)
}

func TestCreateAPIKeysRequiresKeys(t *testing.T) {
	_, err := NewClient("http://unused", time.Second, logger.Discard()).
		CreateAPIKeys(context.Background(), testCredential(t), "user-1")
	assert.Error(t, err)
}

func TestCreateSubOrganization(t *testing.T) {
	cred := testCredential(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/public/v1/submit/create_sub_organization", req.URL.Path)

		var got struct {
			Parameters createSubOrganizationParams `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		assert.Equal(t, "tg-42", got.Parameters.SubOrganizationName)
		assert.Equal(t, 1, got.Parameters.RootQuorumThreshold)
		require.Len(t, got.Parameters.RootUsers, 1)
		assert.Empty(t, got.Parameters.RootUsers[0].APIKeys[0].ExpirationSeconds)
		require.Len(t, got.Parameters.Wallet.Accounts, 1)
		assert.Equal(t, "ADDRESS_FORMAT_SOLANA", got.Parameters.Wallet.Accounts[0].AddressFormat)
		assert.Equal(t, solanaDerivationPath, got.Parameters.Wallet.Accounts[0].Path)

		_, _ = io.WriteString(w, `{"activity":{"status":"ACTIVITY_STATUS_COMPLETED","result":{
			"createSubOrganizationResultV7":{"subOrganizationId":"sub-1",
			"wallet":{"walletId":"w-1","addresses":["Addr1"]},"rootUserIds":["u-1"]}}}}`)
	}))
	defer srv.Close()

	sub, err := NewClient(srv.URL, time.Second, logger.Discard()).CreateSubOrganization(
		context.Background(), cred, SubOrganizationRequest{
			Name:     "tg-42",
			UserName: "tg-42",
			APIKey:   NewAPIKey{Name: "root", PublicKey: "02ab"},
		})
	require.NoError(t, err)
	assert.Equal(t, SubOrganization{ID: "sub-1", WalletID: "w-1", WalletAddress: "Addr1", RootUserID: "u-1"}, sub)
}
