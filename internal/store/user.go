package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/crypto"
	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func userKey(telegramUserID string) string {
	return "user_" + telegramUserID
}

// GetUser loads the record of a Telegram user with private keys decrypted.
func (s *Store) GetUser(ctx context.Context, telegramUserID string) (*model.UserRecord, error) {
	raw, err := s.GetItem(ctx, userKey(telegramUserID))
	if err != nil {
		return nil, err
	}

	var rec model.UserRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", telegramUserID, err)
	}

	if rec.Credential.PrivateKey, err = s.open(rec.Credential.PrivateKey); err != nil {
		return nil, fmt.Errorf("failed to open credential of user %s: %w", telegramUserID, err)
	}
	if rec.Session != nil {
		if rec.Session.PrivateKey, err = s.open(rec.Session.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to open session of user %s: %w", telegramUserID, err)
		}
	}
	return &rec, nil
}

// PutUser stores rec with its private keys sealed and indexes its wallet address.
func (s *Store) PutUser(ctx context.Context, rec model.UserRecord) error {
	if rec.TelegramUserID == "" {
		return errors.New("user record has no telegram user id")
	}

	var err error
	if rec.Credential.PrivateKey, err = s.seal(rec.Credential.PrivateKey); err != nil {
		return err
	}
	if rec.Session != nil {
		session := *rec.Session
		if session.PrivateKey, err = s.seal(session.PrivateKey); err != nil {
			return err
		}
		rec.Session = &session
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", rec.TelegramUserID, err)
	}

	oldWallet, err := s.storedWallet(ctx, rec.TelegramUserID)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, itemPrefix+userKey(rec.TelegramUserID), raw, 0)
	if oldWallet != "" && oldWallet != rec.Credential.WalletAddress {
		pipe.Del(ctx, walletKey+oldWallet)
	}
	if rec.Credential.WalletAddress != "" {
		pipe.Set(ctx, walletKey+rec.Credential.WalletAddress, rec.TelegramUserID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store user %s: %w", rec.TelegramUserID, err)
	}
	return nil
}

// storedWallet returns the wallet address currently indexed for a user, if any.
func (s *Store) storedWallet(ctx context.Context, telegramUserID string) (string, error) {
	raw, err := s.GetItem(ctx, userKey(telegramUserID))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var rec model.UserRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return "", fmt.Errorf("failed to decode user %s: %w", telegramUserID, err)
	}
	return rec.Credential.WalletAddress, nil
}

// UserByWallet returns the Telegram user owning walletAddress.
func (s *Store) UserByWallet(ctx context.Context, walletAddress string) (string, error) {
	id, err := s.client.Get(ctx, walletKey+walletAddress).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("wallet %s: %w", walletAddress, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up wallet %s: %w", walletAddress, err)
	}
	return id, nil
}

// SetSession attaches session keys to the user record and mirrors them into
// the user:<id>:session hash read by the bot backend.
func (s *Store) SetSession(ctx context.Context, telegramUserID string, session model.SessionCredential) error {
	rec, err := s.GetUser(ctx, telegramUserID)
	if err != nil {
		return err
	}
	rec.Session = &session
	if err := s.PutUser(ctx, *rec); err != nil {
		return err
	}

	sealed, err := s.seal(session.PrivateKey)
	if err != nil {
		return err
	}
	key := sessionKey(telegramUserID)
	if err := s.client.HSet(ctx, key, map[string]interface{}{
		"user_id":          telegramUserID,
		"session_end_time": session.ExpiresAt.UTC().Format(time.RFC3339),
		"public_key":       session.PublicKey,
		"private_key":      sealed,
	}).Err(); err != nil {
		return fmt.Errorf("failed to store session of user %s: %w", telegramUserID, err)
	}
	if err := s.client.ExpireAt(ctx, key, session.ExpiresAt).Err(); err != nil {
		return fmt.Errorf("failed to set session expiry of user %s: %w", telegramUserID, err)
	}

	s.log.WithFields(logrus.Fields{
		"user":    telegramUserID,
		"expires": session.ExpiresAt.UTC().Format(time.RFC3339),
	}).Info("session stored")
	return nil
}

// ClearSession drops the session keys of a user.
func (s *Store) ClearSession(ctx context.Context, telegramUserID string) error {
	rec, err := s.GetUser(ctx, telegramUserID)
	if err != nil {
		return err
	}
	rec.Session = nil
	if err := s.PutUser(ctx, *rec); err != nil {
		return err
	}
	if err := s.client.Del(ctx, sessionKey(telegramUserID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session of user %s: %w", telegramUserID, err)
	}
	return nil
}

func sessionKey(userID string) string {
	return fmt.Sprintf("user:%s:session", userID)
}

func (s *Store) seal(v string) (string, error) {
	if v == "" || crypto.IsSealed(v) {
		return v, nil
	}
	sealed, err := s.sealer.SealString(v)
	if err != nil {
		return "", fmt.Errorf("failed to seal key: %w", err)
	}
	return sealed, nil
}

func (s *Store) open(v string) (string, error) {
	if !crypto.IsSealed(v) {
		return v, nil
	}
	return s.sealer.OpenString(v)
}
