// Package submit sends signed transactions to a Solana RPC endpoint and waits
// for confirmation, retrying transport failures under a bounded Policy.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BlockRef is the freshness marker a confirmation is bound to.
type BlockRef struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Confirmation is the result of a confirmation request. Err is the
// on-chain execution error, nil when the transaction succeeded.
type Confirmation struct {
	Err interface{}
}

// RPC is the part of the blockchain RPC endpoint the submitter needs.
// Implementations must be safe for concurrent use.
type RPC interface {
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	GetLatestBlockhash(ctx context.Context) (BlockRef, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, ref BlockRef) (Confirmation, error)
}

// State is a step of a single submission.
type State int

const (
	StatePending State = iota
	StateSending
	StateConfirming
	StateRetrying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSending:
		return "sending"
	case StateConfirming:
		return "confirming"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Receipt describes a submission. Attempts is set on failure too;
// Signature is set whenever a send was accepted by the endpoint.
type Receipt struct {
	Signature solana.Signature
	BlockHash solana.Hash
	Attempts  int
}

// Submitter runs the send/confirm loop. One Submitter may serve any number
// of concurrent submissions.
type Submitter struct {
	rpc    RPC
	policy Policy
	log    *logrus.Logger
}

// New creates a Submitter. The policy is validated here so Submit never
// sees a bound below one attempt.
func New(rpc RPC, policy Policy, log *logrus.Logger) (*Submitter, error) {
	if rpc == nil {
		return nil, errors.New("rpc client is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	return &Submitter{rpc: rpc, policy: policy, log: log}, nil
}

// Policy returns the retry policy in use.
func (s *Submitter) Policy() Policy {
	return s.policy
}

// Submit sends raw (a fully signed, serialized transaction) and waits for
// confirmation. Transport failures are retried until Policy.MaxAttempts
// sends were made; an on-chain execution error ends the loop at once.
//
// Submit is not idempotent: every call sends its envelope, and two envelopes
// for the same logical transfer land as two transactions.
func (s *Submitter) Submit(ctx context.Context, raw []byte) (Receipt, error) {
	sub := &submission{
		log:   s.log.WithField("submission", uuid.NewString()),
		state: StatePending,
	}
	start := time.Now()
	defer func() {
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		sub.receipt.Attempts = attempt

		err := s.attempt(ctx, sub, raw)
		if err == nil {
			sub.transition(StateSucceeded)
			metrics.SubmissionResults.WithLabelValues("succeeded").Inc()
			sub.log.WithFields(logrus.Fields{
				"signature": sub.receipt.Signature.String(),
				"attempts":  attempt,
			}).Info("transaction confirmed")
			return sub.receipt, nil
		}

		if errors.Is(err, ErrOnChain) {
			sub.transition(StateFailed)
			metrics.SubmissionResults.WithLabelValues("on_chain_error").Inc()
			sub.log.WithError(err).Error("transaction failed on-chain, not retrying")
			return sub.receipt, err
		}

		lastErr = err
		if attempt == s.policy.MaxAttempts {
			break
		}

		delay := s.policy.Backoff(attempt)
		sub.transition(StateRetrying)
		sub.log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("transaction attempt failed, retrying")

		if err := wait(ctx, delay); err != nil {
			sub.transition(StateFailed)
			metrics.SubmissionResults.WithLabelValues("canceled").Inc()
			return sub.receipt, fmt.Errorf("submission canceled after %d attempts: %w", attempt, err)
		}
	}

	sub.transition(StateFailed)
	metrics.SubmissionResults.WithLabelValues("retries_exhausted").Inc()
	err := fmt.Errorf("%w: transaction failed after %d attempts: %w",
		ErrRetriesExhausted, sub.receipt.Attempts, lastErr)
	sub.log.WithError(err).Error("giving up on transaction")
	return sub.receipt, err
}

// attempt performs one Sending -> Confirming pass.
func (s *Submitter) attempt(ctx context.Context, sub *submission, raw []byte) error {
	sub.transition(StateSending)
	metrics.SubmissionAttempts.Inc()

	sig, err := s.rpc.SendRawTransaction(ctx, raw)
	if err != nil {
		return transportError("send", err)
	}
	// The endpoint accepted the bytes; the signature identifies the
	// transaction but does not mean it executed.
	sub.receipt.Signature = sig

	sub.transition(StateConfirming)
	ref, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return transportError("latest blockhash", err)
	}

	conf, err := s.rpc.ConfirmTransaction(ctx, sig, ref)
	if err != nil {
		return transportError("confirm", err)
	}
	if conf.Err != nil {
		return onChainError(sig.String(), conf.Err)
	}

	sub.receipt.BlockHash = ref.Blockhash
	return nil
}

type submission struct {
	log     *logrus.Entry
	state   State
	receipt Receipt
}

func (s *submission) transition(to State) {
	s.log.WithFields(logrus.Fields{
		"from": s.state.String(),
		"to":   to.String(),
	}).Debug("submission state")
	s.state = to
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
