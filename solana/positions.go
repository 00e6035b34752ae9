package solana

import (
	"context"
	"sort"

	"github.com/AlexZinkM/trade-relay/internal/model"
)

// GetPositions lists the SPL token balances of address, largest raw amount first.
func (s *Service) GetPositions(ctx context.Context, address string) (*model.PositionsResponse, error) {
	if !isValidSolanaAddress(address) {
		return nil, invalidf("invalid Solana address")
	}

	tokens, err := s.Chain.GetTokenBalances(ctx, address)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if len(a.Amount) != len(b.Amount) {
			return len(a.Amount) > len(b.Amount)
		}
		return a.Amount > b.Amount
	})

	return &model.PositionsResponse{
		Address: address,
		Tokens:  tokens,
	}, nil
}
