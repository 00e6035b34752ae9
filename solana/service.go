// Package solana implements the wallet, trading and copy trade operations
// on top of the custodial signer and the submission retrier.
package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/client"
	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/signer"
	"github.com/AlexZinkM/trade-relay/internal/submit"
	"github.com/AlexZinkM/trade-relay/internal/turnkey"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ErrInvalidRequest marks request validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// Chain is the blockchain RPC endpoint.
type Chain interface {
	submit.RPC
	GetBalance(ctx context.Context, address string) (uint64, error)
	GetTokenBalances(ctx context.Context, address string) ([]model.TokenBalance, error)
	BuildTransfer(ctx context.Context, from, to string, lamports uint64) (*solana.Transaction, error)
}

// PriceSource quotes SOL in USD.
type PriceSource interface {
	GetSOLtoUSDrate(ctx context.Context) (float64, error)
}

// SwapRouter builds swap transactions.
type SwapRouter interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*client.Quote, error)
	GetSwapTransaction(ctx context.Context, quote *client.Quote, userPublicKey string) (*client.SwapResponse, error)
}

// Backend is the copy trade bot backend.
type Backend interface {
	SetCopyTradeWallet(ctx context.Context, w model.CopyTradeWallet) (*model.CopyTradeWallet, error)
	GetCopyTrades(ctx context.Context, userID string) ([]model.CopyTradeWallet, error)
	DeleteCopyTradeWallet(ctx context.Context, userID, copyTradeAddress string) error
	SetUserSession(ctx context.Context, s model.UserSession) error
}

// KeyIssuer registers API keys with the custodial signer.
type KeyIssuer interface {
	CreateAPIKeys(ctx context.Context, cred model.UserCredential, userID string, keys ...turnkey.NewAPIKey) ([]string, error)
}

// Users is the per-user store.
type Users interface {
	GetUser(ctx context.Context, telegramUserID string) (*model.UserRecord, error)
	PutUser(ctx context.Context, rec model.UserRecord) error
	UserByWallet(ctx context.Context, walletAddress string) (string, error)
	SetSession(ctx context.Context, telegramUserID string, session model.SessionCredential) error
	ClearSession(ctx context.Context, telegramUserID string) error
	PutCopyTrade(ctx context.Context, w model.CopyTradeWallet) error
	DeleteCopyTrade(ctx context.Context, userID, copyTradeAddress string) error
	ListCopyTrades(ctx context.Context, userID string) ([]model.CopyTradeWallet, error)
	ReplaceCopyTrades(ctx context.Context, userID string, wallets []model.CopyTradeWallet) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Chain     Chain
	Prices    PriceSource
	Router    SwapRouter
	Backend   Backend
	Keys      KeyIssuer
	Users     Users
	Signer    *signer.Adapter
	Submitter *submit.Submitter
}

// Service is safe for concurrent use.
type Service struct {
	Deps
	log *logrus.Logger
	now func() time.Time
}

// NewService creates a Service.
func NewService(deps Deps, log *logrus.Logger) *Service {
	return &Service{Deps: deps, log: log, now: time.Now}
}

// credential returns the signing credential of a user: the session key
// while the session lasts, the root key otherwise.
func (s *Service) credential(ctx context.Context, telegramUserID string) (model.UserCredential, error) {
	if telegramUserID == "" {
		return model.UserCredential{}, invalidf("tgUserId is required")
	}
	rec, err := s.Users.GetUser(ctx, telegramUserID)
	if err != nil {
		return model.UserCredential{}, err
	}
	return rec.SigningCredential(s.now()), nil
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// isValidSolanaAddress validates a Solana address
func isValidSolanaAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}
