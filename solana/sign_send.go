package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// SignAndSend signs a base64 encoded transaction for cred and submits it.
// Every failure is reported in the result; callers branch on Success.
func (s *Service) SignAndSend(ctx context.Context, encoded string, cred model.UserCredential) model.SubmissionResult {
	tx, err := s.Signer.Sign(ctx, encoded, cred)
	if err != nil {
		s.log.WithError(err).WithField("wallet", cred.WalletAddress).Warn("transaction not signed")
		return model.Failed(err, 0)
	}
	return s.send(ctx, tx)
}

// SignAndSendTransaction is SignAndSend for a transaction built in process.
func (s *Service) SignAndSendTransaction(ctx context.Context, tx *solana.Transaction, cred model.UserCredential) model.SubmissionResult {
	if err := s.Signer.SignTransaction(ctx, tx, cred); err != nil {
		s.log.WithError(err).WithField("wallet", cred.WalletAddress).Warn("transaction not signed")
		return model.Failed(err, 0)
	}
	return s.send(ctx, tx)
}

// Submit signs and sends a transaction built by the caller for a stored user.
func (s *Service) Submit(ctx context.Context, req *model.SubmitRequest) (model.SubmissionResult, error) {
	cred, err := s.credential(ctx, req.TelegramUserID)
	if err != nil {
		return model.SubmissionResult{}, err
	}
	return s.SignAndSend(ctx, req.Transaction, cred), nil
}

func (s *Service) send(ctx context.Context, tx *solana.Transaction) model.SubmissionResult {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return model.Failed(fmt.Errorf("failed to serialize transaction: %w", err), 0)
	}

	receipt, err := s.Submitter.Submit(ctx, raw)
	if err != nil {
		return model.Failed(err, receipt.Attempts)
	}

	s.log.WithFields(logrus.Fields{
		"signature": receipt.Signature.String(),
		"attempts":  receipt.Attempts,
	}).Info("transaction submitted")

	return model.SubmissionResult{
		Success:   true,
		Signature: receipt.Signature.String(),
		BlockHash: receipt.BlockHash.String(),
		Attempts:  receipt.Attempts,
	}
}
