package solana

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/trade-relay/internal/common"
	"github.com/AlexZinkM/trade-relay/internal/model"
)

// GetBalance gets the SOL balance of address and its USD value
func (s *Service) GetBalance(ctx context.Context, address string) (*model.SolanaBalanceResponse, error) {
	if !isValidSolanaAddress(address) {
		return nil, invalidf("invalid Solana address")
	}

	lamports, err := s.Chain.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}

	// Convert to display string (no float precision loss)
	sol := common.LamportsToSOL(lamports)

	rate, err := s.Prices.GetSOLtoUSDrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}

	// Calculate USD (use float only for display, not for critical operations)
	solFloat, _ := strconv.ParseFloat(sol, 64)
	usd := fmt.Sprintf("%.2f", solFloat*rate)

	return &model.SolanaBalanceResponse{
		Address: address,
		SOL:     sol,
		Rate:    strconv.FormatFloat(rate, 'f', 2, 64),
		USD:     usd,
	}, nil
}
