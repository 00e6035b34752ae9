package solana

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/store"
)

// PutUser stores the record of a provisioned user. An existing session is kept.
func (s *Service) PutUser(ctx context.Context, telegramUserID string, req *model.UserRequest) error {
	if telegramUserID == "" {
		return invalidf("user id is required")
	}
	if req.TelegramUserID != "" && req.TelegramUserID != telegramUserID {
		return invalidf("tgUserId does not match path")
	}
	if !isValidSolanaAddress(req.WalletAddress) {
		return invalidf("invalid walletAddress")
	}
	if req.SubOrgID == "" || req.UserID == "" {
		return invalidf("subOrgId and userId are required")
	}
	if key, err := hex.DecodeString(req.PrivateKey); err != nil || len(key) != 32 {
		return invalidf("privateKey must be a 32-byte hex P-256 key")
	}
	if req.PublicKey == "" {
		return invalidf("publicKey is required")
	}

	rec := model.UserRecord{
		TelegramUserID: telegramUserID,
		UserID:         req.UserID,
		SubOrgID:       req.SubOrgID,
		Credential: model.UserCredential{
			PublicKey:      req.PublicKey,
			PrivateKey:     req.PrivateKey,
			OrganizationID: req.SubOrgID,
			WalletAddress:  req.WalletAddress,
		},
	}

	existing, err := s.Users.GetUser(ctx, telegramUserID)
	switch {
	case err == nil:
		rec.Session = existing.Session
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	if err := s.Users.PutUser(ctx, rec); err != nil {
		return err
	}
	s.log.WithField("user", telegramUserID).Info("user stored")
	return nil
}
