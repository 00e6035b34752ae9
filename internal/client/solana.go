package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/submit"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrBlockHeightExceeded is returned when the blockhash a transaction was
// confirmed against expired before the transaction landed.
var ErrBlockHeightExceeded = errors.New("block height exceeded")

// SolanaOptions tunes the RPC adapter.
type SolanaOptions struct {
	Commitment     rpc.CommitmentType
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	HTTPTimeout    time.Duration
}

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient *rpc.Client
	opts      SolanaOptions
	log       *logrus.Logger
}

// NewSolanaClient creates a new Solana client for rpcURL.
func NewSolanaClient(rpcURL string, opts SolanaOptions, log *logrus.Logger) *SolanaClient {
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 60 * time.Second
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout:   opts.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	rpcClient := rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(rpcURL, &jsonrpc.RPCClientOpts{
		HTTPClient: httpClient,
	}))

	return &SolanaClient{
		rpcClient: rpcClient,
		opts:      opts,
		log:       log,
	}
}

// SendRawTransaction submits a signed, serialized transaction. Preflight
// simulation runs at the configured commitment.
func (c *SolanaClient) SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error) {
	sig, err := c.rpcClient.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.opts.Commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// GetLatestBlockhash returns the latest blockhash and its expiry height.
func (c *SolanaClient) GetLatestBlockhash(ctx context.Context) (submit.BlockRef, error) {
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, c.opts.Commitment)
	if err != nil {
		return submit.BlockRef{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if recent == nil || recent.Value == nil {
		return submit.BlockRef{}, errors.New("empty latest blockhash response")
	}
	return submit.BlockRef{
		Blockhash:            recent.Value.Blockhash,
		LastValidBlockHeight: recent.Value.LastValidBlockHeight,
	}, nil
}

// ConfirmTransaction polls the signature status until the transaction
// reaches the configured commitment. An execution error reported by the
// cluster is returned in Confirmation.Err, not as an error. An error is
// returned when the blockhash expires or the confirm timeout passes.
func (c *SolanaClient) ConfirmTransaction(ctx context.Context, sig solana.Signature, ref submit.BlockRef) (submit.Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		done, conf, err := c.pollStatus(ctx, sig, ref)
		if done {
			return conf, err
		}
		if err != nil {
			c.log.WithError(err).WithField("signature", sig.String()).Debug("signature status poll failed")
		}

		select {
		case <-ctx.Done():
			return submit.Confirmation{}, fmt.Errorf("transaction %s not confirmed: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *SolanaClient) pollStatus(ctx context.Context, sig solana.Signature, ref submit.BlockRef) (bool, submit.Confirmation, error) {
	statuses, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, submit.Confirmation{}, err
	}

	if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
		status := statuses.Value[0]
		if status.Err != nil {
			return true, submit.Confirmation{Err: status.Err}, nil
		}
		if reached(status.ConfirmationStatus, c.opts.Commitment) {
			return true, submit.Confirmation{}, nil
		}
		return false, submit.Confirmation{}, nil
	}

	if ref.LastValidBlockHeight == 0 {
		return false, submit.Confirmation{}, nil
	}
	height, err := c.rpcClient.GetBlockHeight(ctx, c.opts.Commitment)
	if err != nil {
		return false, submit.Confirmation{}, err
	}
	if height > ref.LastValidBlockHeight {
		return true, submit.Confirmation{}, fmt.Errorf("transaction %s: %w (height %d > %d)",
			sig, ErrBlockHeightExceeded, height, ref.LastValidBlockHeight)
	}
	return false, submit.Confirmation{}, nil
}

func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	default:
		return false
	}
}

// GetBalance gets SOL balance in lamports for address.
func (c *SolanaClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid Solana address: %w", err)
	}

	balance, err := c.rpcClient.GetBalance(ctx, owner, c.opts.Commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// tokenAccountInfo is the jsonParsed data of an SPL token account.
type tokenAccountInfo struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount         string `json:"amount"`
				Decimals       int    `json:"decimals"`
				UiAmountString string `json:"uiAmountString"`
			} `json:"tokenAmount"`
		} `json:"info"`
		Type string `json:"type"`
	} `json:"parsed"`
}

// GetTokenBalances lists the non-empty SPL token accounts of address.
func (c *SolanaClient) GetTokenBalances(ctx context.Context, address string) ([]model.TokenBalance, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana address: %w", err)
	}

	programID := solana.TokenProgramID
	out, err := c.rpcClient.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: c.opts.Commitment,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts: %w", err)
	}

	balances := make([]model.TokenBalance, 0, len(out.Value))
	for _, acc := range out.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		var info tokenAccountInfo
		if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &info); err != nil {
			return nil, fmt.Errorf("failed to parse token account %s: %w", acc.Pubkey, err)
		}
		amount := info.Parsed.Info.TokenAmount
		if amount.Amount == "" || amount.Amount == "0" {
			continue
		}
		balances = append(balances, model.TokenBalance{
			Mint:         info.Parsed.Info.Mint,
			Account:      acc.Pubkey.String(),
			Amount:       amount.Amount,
			UIAmount:     amount.UiAmountString,
			Decimals:     amount.Decimals,
			RentLamports: acc.Account.Lamports,
		})
	}
	return balances, nil
}

// BuildTransfer creates an unsigned SOL transfer paid by from.
func (c *SolanaClient) BuildTransfer(ctx context.Context, from, to string, lamports uint64) (*solana.Transaction, error) {
	fromPubkey, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	toPubkey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	if lamports == 0 {
		return nil, errors.New("amount must be greater than zero")
	}

	recent, err := c.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, fromPubkey, toPubkey).Build()},
		recent.Blockhash,
		solana.TransactionPayer(fromPubkey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}
