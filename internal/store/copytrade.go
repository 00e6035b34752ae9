package store

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/trade-relay/internal/model"
)

func copyTradeKey(userID, copyTradeAddress string) string {
	return fmt.Sprintf("user:%s:copy_trade_wallet:%s", userID, copyTradeAddress)
}

// PutCopyTrade stores a copy trade rule in the hash layout the bot backend uses.
func (s *Store) PutCopyTrade(ctx context.Context, w model.CopyTradeWallet) error {
	if w.UserID == "" || w.CopyTradeAddress == "" {
		return fmt.Errorf("copy trade rule needs user_id and copy_trade_address")
	}
	err := s.client.HSet(ctx, copyTradeKey(w.UserID, w.CopyTradeAddress), map[string]interface{}{
		"user_id":            w.UserID,
		"wallet_id":          w.WalletID,
		"account_address":    w.AccountAddress,
		"buy_amount":         w.BuyAmount,
		"status":             w.Status,
		"copy_trade_address": w.CopyTradeAddress,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store copy trade rule: %w", err)
	}
	return nil
}

// DeleteCopyTrade removes the rule of userID following copyTradeAddress.
func (s *Store) DeleteCopyTrade(ctx context.Context, userID, copyTradeAddress string) error {
	if err := s.client.Del(ctx, copyTradeKey(userID, copyTradeAddress)).Err(); err != nil {
		return fmt.Errorf("failed to delete copy trade rule: %w", err)
	}
	return nil
}

// ListCopyTrades returns every rule of userID.
func (s *Store) ListCopyTrades(ctx context.Context, userID string) ([]model.CopyTradeWallet, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, copyTradeKey(userID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list copy trade rules: %w", err)
	}

	wallets := make([]model.CopyTradeWallet, 0, len(keys))
	for _, key := range keys {
		h, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read copy trade rule %s: %w", key, err)
		}
		if len(h) == 0 {
			continue
		}
		wallets = append(wallets, model.CopyTradeWallet{
			UserID:           h["user_id"],
			WalletID:         h["wallet_id"],
			AccountAddress:   h["account_address"],
			BuyAmount:        h["buy_amount"],
			CopyTradeAddress: h["copy_trade_address"],
			Status:           h["status"],
		})
	}
	return wallets, nil
}

// ReplaceCopyTrades makes the stored rules of userID equal to wallets.
func (s *Store) ReplaceCopyTrades(ctx context.Context, userID string, wallets []model.CopyTradeWallet) error {
	current, err := s.ListCopyTrades(ctx, userID)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		w.UserID = userID
		if err := s.PutCopyTrade(ctx, w); err != nil {
			return err
		}
		keep[w.CopyTradeAddress] = true
	}
	for _, w := range current {
		if !keep[w.CopyTradeAddress] {
			if err := s.DeleteCopyTrade(ctx, userID, w.CopyTradeAddress); err != nil {
				return err
			}
		}
	}
	return nil
}
