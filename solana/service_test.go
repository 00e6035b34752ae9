package solana

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/client"
	"github.com/AlexZinkM/trade-relay/internal/logger"
	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/signer"
	"github.com/AlexZinkM/trade-relay/internal/store"
	"github.com/AlexZinkM/trade-relay/internal/submit"
	"github.com/AlexZinkM/trade-relay/internal/turnkey"

	"github.com/alicebob/miniredis/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "42"
	testRootKey = "0f3c6d1f8e2a4b7c9d0e1f2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e"
)

var errUnavailable = errors.New("service unavailable")

// fakeChain accepts every transaction unless scripted otherwise and returns
// the first signature of the transaction as its id.
type fakeChain struct {
	mu sync.Mutex

	sendErrs   []error
	onChainErr interface{}
	balance    uint64
	tokens     []model.TokenBalance

	sends     int
	sent      []*solana.Transaction
	transfers []uint64
}

func (c *fakeChain) SendRawTransaction(_ context.Context, raw []byte) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.sends
	c.sends++
	if i < len(c.sendErrs) && c.sendErrs[i] != nil {
		return solana.Signature{}, c.sendErrs[i]
	}
	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return solana.Signature{}, err
	}
	c.sent = append(c.sent, tx)
	return tx.Signatures[0], nil
}

func (c *fakeChain) GetLatestBlockhash(context.Context) (submit.BlockRef, error) {
	return submit.BlockRef{Blockhash: solana.Hash{4, 2}, LastValidBlockHeight: 500}, nil
}

func (c *fakeChain) ConfirmTransaction(context.Context, solana.Signature, submit.BlockRef) (submit.Confirmation, error) {
	return submit.Confirmation{Err: c.onChainErr}, nil
}

func (c *fakeChain) GetBalance(context.Context, string) (uint64, error) {
	return c.balance, nil
}

func (c *fakeChain) GetTokenBalances(context.Context, string) ([]model.TokenBalance, error) {
	return c.tokens, nil
}

func (c *fakeChain) BuildTransfer(_ context.Context, from, to string, lamports uint64) (*solana.Transaction, error) {
	c.mu.Lock()
	c.transfers = append(c.transfers, lamports)
	c.mu.Unlock()
	return transferTx(solana.MustPublicKeyFromBase58(from), solana.MustPublicKeyFromBase58(to), lamports)
}

type fakePrices struct{ rate float64 }

func (p fakePrices) GetSOLtoUSDrate(context.Context) (float64, error) { return p.rate, nil }

type fakeRouter struct {
	swapTx      string
	amount      uint64
	slippageBps int
	user        string
}

func (r *fakeRouter) GetQuote(_ context.Context, _, _ string, amount uint64, slippageBps int) (*client.Quote, error) {
	r.amount = amount
	r.slippageBps = slippageBps
	return &client.Quote{InAmount: "1", OutAmount: "2", Raw: []byte(`{}`)}, nil
}

func (r *fakeRouter) GetSwapTransaction(_ context.Context, _ *client.Quote, userPublicKey string) (*client.SwapResponse, error) {
	r.user = userPublicKey
	return &client.SwapResponse{SwapTransaction: r.swapTx}, nil
}

type fakeBackend struct {
	err      error
	wallets  map[string]model.CopyTradeWallet
	sessions []model.UserSession
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{wallets: map[string]model.CopyTradeWallet{}}
}

func (b *fakeBackend) SetCopyTradeWallet(_ context.Context, w model.CopyTradeWallet) (*model.CopyTradeWallet, error) {
	if b.err != nil {
		return nil, b.err
	}
	w.WalletID = "wallet-" + w.CopyTradeAddress[:4]
	b.wallets[w.CopyTradeAddress] = w
	return &w, nil
}

func (b *fakeBackend) GetCopyTrades(_ context.Context, userID string) ([]model.CopyTradeWallet, error) {
	if b.err != nil {
		return nil, b.err
	}
	var out []model.CopyTradeWallet
	for _, w := range b.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (b *fakeBackend) DeleteCopyTradeWallet(_ context.Context, _, copyTradeAddress string) error {
	if b.err != nil {
		return b.err
	}
	delete(b.wallets, copyTradeAddress)
	return nil
}

func (b *fakeBackend) SetUserSession(_ context.Context, s model.UserSession) error {
	if b.err != nil {
		return b.err
	}
	b.sessions = append(b.sessions, s)
	return nil
}

type fakeKeys struct {
	cred   model.UserCredential
	userID string
	keys   []turnkey.NewAPIKey
}

func (k *fakeKeys) CreateAPIKeys(_ context.Context, cred model.UserCredential, userID string, keys ...turnkey.NewAPIKey) ([]string, error) {
	k.cred = cred
	k.userID = userID
	k.keys = append(k.keys, keys...)
	return []string{"api-key-1"}, nil
}

// keySigner stands in for the custodial signer with a local key.
type keySigner struct {
	key   solana.PrivateKey
	calls int
	creds []model.UserCredential
}

func (s *keySigner) SignRawPayload(_ context.Context, cred model.UserCredential, payload []byte) ([]byte, error) {
	s.calls++
	s.creds = append(s.creds, cred)
	sig, err := s.key.Sign(payload)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

type fixture struct {
	svc     *Service
	chain   *fakeChain
	router  *fakeRouter
	backend *fakeBackend
	keys    *fakeKeys
	remote  *keySigner
	store   *store.Store
	wallet  solana.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	st, err := store.New(ctx, store.Options{Addr: mr.Addr(), ScryptN: 1 << 10}, []byte("test-pass"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	wallet := solana.NewWallet().PrivateKey
	require.NoError(t, st.PutUser(ctx, model.UserRecord{
		TelegramUserID: testUserID,
		UserID:         "user-1",
		SubOrgID:       "sub-1",
		Credential: model.UserCredential{
			PublicKey:      "02aa",
			PrivateKey:     testRootKey,
			OrganizationID: "sub-1",
			WalletAddress:  wallet.PublicKey().String(),
		},
	}))

	f := &fixture{
		chain:   &fakeChain{},
		router:  &fakeRouter{},
		backend: newFakeBackend(),
		keys:    &fakeKeys{},
		remote:  &keySigner{key: wallet},
		store:   st,
		wallet:  wallet,
	}

	sub, err := submit.New(f.chain, submit.Policy{MaxAttempts: 3, Delay: time.Millisecond, Strategy: submit.StrategyFixed}, logger.Discard())
	require.NoError(t, err)

	f.svc = NewService(Deps{
		Chain:     f.chain,
		Prices:    fakePrices{rate: 100},
		Router:    f.router,
		Backend:   f.backend,
		Keys:      f.keys,
		Users:     st,
		Signer:    signer.New(f.remote, logger.Discard()),
		Submitter: sub,
	}, logger.Discard())
	return f
}

func transferTx(from, to solana.PublicKey, lamports uint64) (*solana.Transaction, error) {
	return solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		solana.Hash{7, 7, 7},
		solana.TransactionPayer(from),
	)
}

func encodeTx(t *testing.T, tx *solana.Transaction) string {
	t.Helper()
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func (f *fixture) unsignedTransfer(t *testing.T) string {
	t.Helper()
	tx, err := transferTx(f.wallet.PublicKey(), solana.NewWallet().PublicKey(), 1000)
	require.NoError(t, err)
	return encodeTx(t, tx)
}
