// Package signer attaches custodial signatures to serialized Solana transactions.
package signer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidEncoding is returned for input that is not a base64 encoded
	// transaction. No remote call is made.
	ErrInvalidEncoding = errors.New("invalid transaction encoding")

	// ErrSigner wraps failures of the custodial signer and signature placement.
	ErrSigner = errors.New("signer error")
)

const signatureLength = 64

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// RemoteSigner produces a raw ed25519 signature over payload for the wallet
// of cred. The custodial client implements it.
type RemoteSigner interface {
	SignRawPayload(ctx context.Context, cred model.UserCredential, payload []byte) ([]byte, error)
}

// Adapter signs transactions through a RemoteSigner.
type Adapter struct {
	remote RemoteSigner
	log    *logrus.Logger
}

// New creates an Adapter.
func New(remote RemoteSigner, log *logrus.Logger) *Adapter {
	return &Adapter{remote: remote, log: log}
}

// Decode parses a base64 encoded legacy or v0 transaction.
func Decode(encoded string) (*solana.Transaction, error) {
	if !base64Pattern.MatchString(encoded) {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidEncoding)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to deserialize transaction: %w", ErrInvalidEncoding, err)
	}
	return tx, nil
}

// Sign decodes encoded and signs it for cred.WalletAddress. Exactly one
// remote call is made for well-formed input; the signer error, if any, is
// returned without retry.
func (a *Adapter) Sign(ctx context.Context, encoded string, cred model.UserCredential) (*solana.Transaction, error) {
	tx, err := Decode(encoded)
	if err != nil {
		return nil, err
	}
	if err := a.SignTransaction(ctx, tx, cred); err != nil {
		return nil, err
	}
	return tx, nil
}

// SignTransaction signs tx in place for cred.WalletAddress.
func (a *Adapter) SignTransaction(ctx context.Context, tx *solana.Transaction, cred model.UserCredential) error {
	wallet, err := solana.PublicKeyFromBase58(cred.WalletAddress)
	if err != nil {
		return fmt.Errorf("%w: invalid wallet address %q: %w", ErrSigner, cred.WalletAddress, err)
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}

	raw, err := a.remote.SignRawPayload(ctx, cred, message)
	if err != nil {
		a.log.WithError(err).WithField("wallet", cred.WalletAddress).Error("remote sign failed")
		return fmt.Errorf("%w: %w", ErrSigner, err)
	}
	if len(raw) != signatureLength {
		return fmt.Errorf("%w: signature must be %d bytes, got %d", ErrSigner, signatureLength, len(raw))
	}

	idx, ok := signerIndex(tx, wallet)
	if !ok {
		return fmt.Errorf("%w: %s is not a required signer of the transaction", ErrSigner, wallet)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	for len(tx.Signatures) < required {
		tx.Signatures = append(tx.Signatures, solana.Signature{})
	}
	copy(tx.Signatures[idx][:], raw)

	a.log.WithFields(logrus.Fields{
		"wallet":    cred.WalletAddress,
		"index":     idx,
		"signature": tx.Signatures[idx].String(),
	}).Debug("transaction signed")
	return nil
}

// signerIndex finds wallet among the required signers of tx.
func signerIndex(tx *solana.Transaction, wallet solana.PublicKey) (int, bool) {
	required := int(tx.Message.Header.NumRequiredSignatures)
	for i, key := range tx.Message.AccountKeys {
		if i >= required {
			break
		}
		if key.Equals(wallet) {
			return i, true
		}
	}
	return 0, false
}

// FeePayer returns the first account of a decoded transaction.
func FeePayer(tx *solana.Transaction) (solana.PublicKey, error) {
	if len(tx.Message.AccountKeys) == 0 {
		return solana.PublicKey{}, fmt.Errorf("%w: transaction has no accounts", ErrInvalidEncoding)
	}
	return tx.Message.AccountKeys[0], nil
}
