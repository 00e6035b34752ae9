package model

import "time"

// UserCredential is an API key pair for the custodial signer plus the
// on-chain address it is allowed to sign for.
type UserCredential struct {
	PublicKey      string `json:"publicKey"`
	PrivateKey     string `json:"privateKey"`
	OrganizationID string `json:"organizationId"`
	WalletAddress  string `json:"walletAddress"`
}

// SessionCredential is a short-lived API key pair created for a user session.
type SessionCredential struct {
	PublicKey  string    `json:"publicKey"`
	PrivateKey string    `json:"privateKey"`
	ExpiresAt  time.Time `json:"expirationDate"`
}

// Active reports whether the session key is still usable at now.
func (s *SessionCredential) Active(now time.Time) bool {
	return s != nil && s.PublicKey != "" && now.Before(s.ExpiresAt)
}

// UserRecord is the per-user record kept in the key-value store.
type UserRecord struct {
	TelegramUserID string             `json:"tgUserId"`
	UserID         string             `json:"userId"`
	SubOrgID       string             `json:"subOrgId"`
	Credential     UserCredential     `json:"credential"`
	Session        *SessionCredential `json:"sessionApiKeys,omitempty"`
}

// SigningCredential returns the session credential while the session is
// active and the root credential otherwise.
func (u *UserRecord) SigningCredential(now time.Time) UserCredential {
	if u.Session.Active(now) {
		return UserCredential{
			PublicKey:      u.Session.PublicKey,
			PrivateKey:     u.Session.PrivateKey,
			OrganizationID: u.Credential.OrganizationID,
			WalletAddress:  u.Credential.WalletAddress,
		}
	}
	return u.Credential
}

// UserRequest represents request for PUT /users
type UserRequest struct {
	TelegramUserID string `json:"tgUserId"`
	UserID         string `json:"userId"`
	SubOrgID       string `json:"subOrgId"`
	PublicKey      string `json:"publicKey"`
	PrivateKey     string `json:"privateKey"`
	WalletAddress  string `json:"walletAddress"`
}

// SessionRequest represents request for POST /session
type SessionRequest struct {
	TelegramUserID  string `json:"tgUserId"`
	DurationMinutes int    `json:"durationMinutes"`
}

// SessionResponse represents response for POST /session
type SessionResponse struct {
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	Remaining string    `json:"remaining,omitempty"`
}
