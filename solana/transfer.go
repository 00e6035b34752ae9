package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/trade-relay/internal/common"
	"github.com/AlexZinkM/trade-relay/internal/model"
)

const (
	solFeeLamports = 5000 // Fee in lamports (0.000005 SOL)
)

// Transfer sends SOL from the wallet of a user.
func (s *Service) Transfer(ctx context.Context, req *model.TransferRequest) (model.SubmissionResult, error) {
	// Validate recipient address
	if !isValidSolanaAddress(req.ToAddress) {
		return model.SubmissionResult{}, invalidf("invalid Solana address")
	}

	// Convert amount to lamports (string-based, no float precision loss)
	lamports, err := common.SOLToLamports(req.Amount)
	if err != nil {
		return model.SubmissionResult{}, invalidf("invalid amount: %v", err)
	}
	if lamports == 0 {
		return model.SubmissionResult{}, invalidf("amount must be greater than zero")
	}

	cred, err := s.credential(ctx, req.TelegramUserID)
	if err != nil {
		return model.SubmissionResult{}, err
	}

	balance, err := s.Chain.GetBalance(ctx, cred.WalletAddress)
	if err != nil {
		return model.SubmissionResult{}, fmt.Errorf("failed to check balance: %w", err)
	}

	// Check SOL sufficiency (amount + fee) without overflowing the sum
	if lamports > balance || balance-lamports < solFeeLamports {
		// Calculate max amount user can send
		var maxLamports uint64
		if balance > solFeeLamports {
			maxLamports = balance - solFeeLamports
		}
		return model.SubmissionResult{}, invalidf("insufficient SOL balance. Transaction fee: %s SOL. Max you can send: %s SOL",
			common.LamportsToSOL(solFeeLamports), common.LamportsToSOL(maxLamports))
	}

	tx, err := s.Chain.BuildTransfer(ctx, cred.WalletAddress, req.ToAddress, lamports)
	if err != nil {
		return model.SubmissionResult{}, err
	}

	return s.SignAndSendTransaction(ctx, tx, cred), nil
}
