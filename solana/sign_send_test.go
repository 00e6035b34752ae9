package solana

import (
	"context"
	"testing"

	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
		TelegramUserID: testUserID,
		Transaction:    f.unsignedTransfer(t),
	})

	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, f.remote.calls)
	require.Len(t, f.chain.sent, 1)
	assert.Equal(t, f.chain.sent[0].Signatures[0].String(), result.Signature)
	assert.NoError(t, f.chain.sent[0].VerifySignatures())
	assert.NotEmpty(t, result.BlockHash)
}

func TestSubmitInvalidEncoding(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
		TelegramUserID: testUserID,
		Transaction:    "not-base64!!",
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid")
	assert.Empty(t, result.Signature)
	assert.Equal(t, 0, f.remote.calls)
	assert.Equal(t, 0, f.chain.sends)
}

func TestSubmitRetriesExhausted(t *testing.T) {
	f := newFixture(t)
	f.chain.sendErrs = []error{errUnavailable, errUnavailable, errUnavailable}

	result, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
		TelegramUserID: testUserID,
		Transaction:    f.unsignedTransfer(t),
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed after 3 attempts")
	assert.Empty(t, result.Signature)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, f.chain.sends)
	assert.Equal(t, 1, f.remote.calls)
}

func TestSubmitRetriedUntilAccepted(t *testing.T) {
	f := newFixture(t)
	f.chain.sendErrs = []error{errUnavailable, errUnavailable}

	result, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
		TelegramUserID: testUserID,
		Transaction:    f.unsignedTransfer(t),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, f.chain.sends)
}

func TestSubmitOnChainFailure(t *testing.T) {
	f := newFixture(t)
	f.chain.onChainErr = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	result, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
		TelegramUserID: testUserID,
		Transaction:    f.unsignedTransfer(t),
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "InstructionError")
	assert.Equal(t, 1, f.chain.sends)
}

func TestSubmitTwiceSendsTwice(t *testing.T) {
	f := newFixture(t)
	encoded := f.unsignedTransfer(t)

	for i := 0; i < 2; i++ {
		result, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
			TelegramUserID: testUserID,
			Transaction:    encoded,
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
	}
	assert.Equal(t, 2, f.chain.sends)
	assert.Equal(t, 2, f.remote.calls)
}

func TestSubmitUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), &model.SubmitRequest{
		TelegramUserID: "nobody",
		Transaction:    f.unsignedTransfer(t),
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Submit(context.Background(), &model.SubmitRequest{Transaction: "AA=="})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, f.remote.calls)
}
