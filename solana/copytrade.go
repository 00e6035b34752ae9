package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/trade-relay/internal/common"
	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/signer"

	"github.com/sirupsen/logrus"
)

// SetCopyTrade saves a copy trade rule on the backend and mirrors it locally.
func (s *Service) SetCopyTrade(ctx context.Context, w model.CopyTradeWallet) (*model.CopyTradeWallet, error) {
	if w.UserID == "" {
		return nil, invalidf("user_id is required")
	}
	if !isValidSolanaAddress(w.CopyTradeAddress) {
		return nil, invalidf("invalid copy_trade_address")
	}
	if w.AccountAddress != "" && !isValidSolanaAddress(w.AccountAddress) {
		return nil, invalidf("invalid account_address")
	}
	if _, err := common.SOLToLamports(w.BuyAmount); err != nil {
		return nil, invalidf("invalid buy_amount: %v", err)
	}
	switch w.Status {
	case "":
		w.Status = model.CopyTradeStatusActive
	case model.CopyTradeStatusActive, model.CopyTradeStatusInactive:
	default:
		return nil, invalidf("status must be %s or %s", model.CopyTradeStatusActive, model.CopyTradeStatusInactive)
	}

	saved, err := s.Backend.SetCopyTradeWallet(ctx, w)
	if err != nil {
		return nil, err
	}
	if err := s.Users.PutCopyTrade(ctx, *saved); err != nil {
		s.log.WithError(err).Warn("copy trade rule saved on backend but not mirrored")
	}
	return saved, nil
}

// ListCopyTrades returns the rules of a user from the backend, falling back
// to the local mirror when the backend is unreachable.
func (s *Service) ListCopyTrades(ctx context.Context, userID string) ([]model.CopyTradeWallet, error) {
	if userID == "" {
		return nil, invalidf("user_id is required")
	}

	wallets, err := s.Backend.GetCopyTrades(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user", userID).Warn("backend unavailable, serving mirrored copy trades")
		local, lerr := s.Users.ListCopyTrades(ctx, userID)
		if lerr != nil {
			return nil, errors.Join(err, lerr)
		}
		return local, nil
	}

	if err := s.Users.ReplaceCopyTrades(ctx, userID, wallets); err != nil {
		s.log.WithError(err).Warn("failed to refresh copy trade mirror")
	}
	return wallets, nil
}

// DeleteCopyTrade removes a rule on the backend and from the mirror.
func (s *Service) DeleteCopyTrade(ctx context.Context, userID, copyTradeAddress string) error {
	if userID == "" || copyTradeAddress == "" {
		return invalidf("user_id and copy_trade_address are required")
	}
	if err := s.Backend.DeleteCopyTradeWallet(ctx, userID, copyTradeAddress); err != nil {
		return err
	}
	return s.Users.DeleteCopyTrade(ctx, userID, copyTradeAddress)
}

// HandleCopyTrade signs and submits the swap of a copy_trade event. The
// user is the one named in the event or, failing that, the owner of the
// fee payer wallet.
func (s *Service) HandleCopyTrade(ctx context.Context, ev model.CopyTradeEvent) error {
	userID := ev.UserID
	if userID == "" {
		tx, err := signer.Decode(ev.SwapTransaction)
		if err != nil {
			return err
		}
		payer, err := signer.FeePayer(tx)
		if err != nil {
			return err
		}
		if userID, err = s.Users.UserByWallet(ctx, payer.String()); err != nil {
			return fmt.Errorf("no user for fee payer %s: %w", payer, err)
		}
	}

	cred, err := s.credential(ctx, userID)
	if err != nil {
		return err
	}

	result := s.SignAndSend(ctx, ev.SwapTransaction, cred)
	log := s.log.WithFields(logrus.Fields{
		"user":     userID,
		"attempts": result.Attempts,
	})
	if !result.Success {
		log.WithField("error", result.Error).Error("copy trade not executed")
		return errors.New(result.Error)
	}
	log.WithField("signature", result.Signature).Info("copy trade executed")
	return nil
}
