package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("connection reset by peer")

// fakeRPC replays scripted send results; every send gets a fresh signature.
type fakeRPC struct {
	mu sync.Mutex

	sendErrs    []error
	confirmErrs []error
	onChainErr  interface{}

	sends    int
	confirms int
	sent     [][]byte
	sigs     []solana.Signature
	hash     solana.Hash
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{hash: solana.Hash{1, 2, 3}}
}

func (f *fakeRPC) SendRawTransaction(_ context.Context, raw []byte) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.sends
	f.sends++
	f.sent = append(f.sent, raw)
	if i < len(f.sendErrs) && f.sendErrs[i] != nil {
		return solana.Signature{}, f.sendErrs[i]
	}
	var sig solana.Signature
	sig[0] = byte(f.sends)
	sig[63] = raw[0]
	f.sigs = append(f.sigs, sig)
	return sig, nil
}

func (f *fakeRPC) GetLatestBlockhash(context.Context) (BlockRef, error) {
	return BlockRef{Blockhash: f.hash, LastValidBlockHeight: 100}, nil
}

func (f *fakeRPC) ConfirmTransaction(_ context.Context, _ solana.Signature, _ BlockRef) (Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.confirms
	f.confirms++
	if i < len(f.confirmErrs) && f.confirmErrs[i] != nil {
		return Confirmation{}, f.confirmErrs[i]
	}
	return Confirmation{Err: f.onChainErr}, nil
}

func testPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, Delay: time.Millisecond, Strategy: StrategyFixed}
}

func newTestSubmitter(t *testing.T, rpc RPC, attempts int) *Submitter {
	t.Helper()
	s, err := New(rpc, testPolicy(attempts), logger.Discard())
	require.NoError(t, err)
	return s
}

func TestSubmitFailFailSucceed(t *testing.T) {
	rpc := newFakeRPC()
	rpc.sendErrs = []error{errNetwork, errNetwork}

	receipt, err := newTestSubmitter(t, rpc, 3).Submit(context.Background(), []byte{7})

	require.NoError(t, err)
	assert.Equal(t, 3, rpc.sends)
	assert.Equal(t, 1, rpc.confirms)
	assert.Equal(t, 3, receipt.Attempts)
	assert.Equal(t, rpc.sigs[0], receipt.Signature)
	assert.Equal(t, rpc.hash, receipt.BlockHash)
}

func TestSubmitAlwaysFails(t *testing.T) {
	rpc := newFakeRPC()
	rpc.sendErrs = []error{errNetwork, errNetwork, errNetwork, errNetwork}

	receipt, err := newTestSubmitter(t, rpc, 3).Submit(context.Background(), []byte{7})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, errNetwork)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, rpc.sends)
	assert.Equal(t, 0, rpc.confirms)
	assert.Equal(t, 3, receipt.Attempts)
}

func TestSubmitResolvesAtAttemptK(t *testing.T) {
	for k := 1; k <= 4; k++ {
		rpc := newFakeRPC()
		for i := 1; i < k; i++ {
			rpc.sendErrs = append(rpc.sendErrs, errNetwork)
		}

		receipt, err := newTestSubmitter(t, rpc, 4).Submit(context.Background(), []byte{9})

		require.NoError(t, err, "k=%d", k)
		assert.Equal(t, k, rpc.sends, "k=%d", k)
		assert.Equal(t, k, receipt.Attempts, "k=%d", k)
		// Only the k-th send returned a signature.
		require.Len(t, rpc.sigs, 1)
		assert.Equal(t, rpc.sigs[0], receipt.Signature)
	}
}

func TestSubmitConfirmTransportErrorIsRetried(t *testing.T) {
	rpc := newFakeRPC()
	rpc.confirmErrs = []error{errors.New("block height exceeded")}

	receipt, err := newTestSubmitter(t, rpc, 3).Submit(context.Background(), []byte{1})

	require.NoError(t, err)
	assert.Equal(t, 2, rpc.sends)
	assert.Equal(t, 2, rpc.confirms)
	assert.Equal(t, rpc.sigs[1], receipt.Signature)
}

func TestSubmitOnChainErrorIsTerminal(t *testing.T) {
	rpc := newFakeRPC()
	rpc.onChainErr = map[string]interface{}{
		"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 1}},
	}

	receipt, err := newTestSubmitter(t, rpc, 3).Submit(context.Background(), []byte{1})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOnChain)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "InstructionError")
	assert.Equal(t, 1, rpc.sends)
	assert.Equal(t, 1, receipt.Attempts)
	assert.Equal(t, rpc.sigs[0], receipt.Signature)
}

func TestSubmitIsNotIdempotent(t *testing.T) {
	rpc := newFakeRPC()
	s := newTestSubmitter(t, rpc, 3)

	// Two envelopes for the same logical transfer, signed twice.
	first, err := s.Submit(context.Background(), []byte{1})
	require.NoError(t, err)
	second, err := s.Submit(context.Background(), []byte{2})
	require.NoError(t, err)

	assert.Equal(t, 2, rpc.sends)
	assert.NotEqual(t, first.Signature, second.Signature)
}

func TestSubmitSingleAttempt(t *testing.T) {
	rpc := newFakeRPC()
	rpc.sendErrs = []error{errNetwork}

	_, err := newTestSubmitter(t, rpc, 1).Submit(context.Background(), []byte{1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 1 attempts")
	assert.Equal(t, 1, rpc.sends)
}

func TestSubmitCanceledDuringBackoff(t *testing.T) {
	rpc := newFakeRPC()
	rpc.sendErrs = []error{errNetwork, errNetwork, errNetwork}

	s, err := New(rpc, Policy{MaxAttempts: 3, Delay: time.Hour}, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = s.Submit(ctx, []byte{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "canceled after 1 attempts")
	assert.Equal(t, 1, rpc.sends)
}

func TestNewRejectsInvalidPolicy(t *testing.T) {
	_, err := New(newFakeRPC(), Policy{MaxAttempts: 0}, logger.Discard())
	assert.Error(t, err)

	_, err = New(nil, DefaultPolicy(), logger.Discard())
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "confirming", StateConfirming.String())
	assert.Equal(t, "state(42)", State(42).String())
}
