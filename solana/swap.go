package solana

import (
	"context"
	"math"

	"github.com/AlexZinkM/trade-relay/internal/common"
	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	solMint = "So11111111111111111111111111111111111111112"

	defaultTokenDecimals = 6
	defaultSlippageBps   = 50
)

// Swap quotes and executes a token swap through the aggregator.
func (s *Service) Swap(ctx context.Context, req *model.SwapRequest) (model.SubmissionResult, error) {
	if !isValidSolanaAddress(req.InputMint) || !isValidSolanaAddress(req.OutputMint) {
		return model.SubmissionResult{}, invalidf("invalid mint address")
	}
	if req.InputMint == req.OutputMint {
		return model.SubmissionResult{}, invalidf("input and output mint must differ")
	}

	decimals := req.Decimals
	if decimals <= 0 {
		decimals = defaultTokenDecimals
		if req.InputMint == solMint {
			decimals = common.SOLDecimals
		}
	}
	amount, err := common.ParseUnits(req.Amount, decimals)
	if err != nil || amount == 0 {
		return model.SubmissionResult{}, invalidf("invalid amount %q", req.Amount)
	}

	slippageBps := defaultSlippageBps
	if req.Slippage > 0 {
		if req.Slippage > 100 {
			return model.SubmissionResult{}, invalidf("slippage must not exceed 100%%")
		}
		slippageBps = int(math.Round(req.Slippage * 100))
	}

	cred, err := s.credential(ctx, req.TelegramUserID)
	if err != nil {
		return model.SubmissionResult{}, err
	}

	quote, err := s.Router.GetQuote(ctx, req.InputMint, req.OutputMint, amount, slippageBps)
	if err != nil {
		return model.SubmissionResult{}, err
	}
	swap, err := s.Router.GetSwapTransaction(ctx, quote, cred.WalletAddress)
	if err != nil {
		return model.SubmissionResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"input_mint":  req.InputMint,
		"output_mint": req.OutputMint,
		"in_amount":   amount,
		"out_amount":  quote.OutAmount,
	}).Info("swap quoted")
	return s.SignAndSend(ctx, swap.SwapTransaction, cred), nil
}
