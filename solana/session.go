package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/turnkey"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultSessionMinutes = 15
	maxSessionMinutes     = 24 * 60

	// sent to the backend in place of session fields when no session exists
	noSession = "null"
)

// StartSession creates a short-lived API key for a user and announces it to
// the backend so copy trades can be signed while the user is away.
func (s *Service) StartSession(ctx context.Context, req *model.SessionRequest) (*model.SessionResponse, error) {
	minutes := req.DurationMinutes
	if minutes == 0 {
		minutes = defaultSessionMinutes
	}
	if minutes < 0 || minutes > maxSessionMinutes {
		return nil, invalidf("durationMinutes must be between 1 and %d", maxSessionMinutes)
	}
	if req.TelegramUserID == "" {
		return nil, invalidf("tgUserId is required")
	}

	rec, err := s.Users.GetUser(ctx, req.TelegramUserID)
	if err != nil {
		return nil, err
	}

	pair, err := turnkey.GenerateAPIKeyPair()
	if err != nil {
		return nil, err
	}

	duration := time.Duration(minutes) * time.Minute
	name := fmt.Sprintf("relay_session_%s_%s", req.TelegramUserID, uuid.NewString()[:8])
	if _, err := s.Keys.CreateAPIKeys(ctx, rec.Credential, rec.UserID, turnkey.NewAPIKey{
		Name:       name,
		PublicKey:  pair.PublicKey,
		Expiration: duration,
	}); err != nil {
		return nil, fmt.Errorf("failed to create session key: %w", err)
	}

	session := model.SessionCredential{
		PublicKey:  pair.PublicKey,
		PrivateKey: pair.PrivateKey,
		ExpiresAt:  s.now().Add(duration).UTC(),
	}
	if err := s.Users.SetSession(ctx, req.TelegramUserID, session); err != nil {
		return nil, err
	}

	if err := s.Backend.SetUserSession(ctx, model.UserSession{
		UserID:         req.TelegramUserID,
		SessionEndTime: session.ExpiresAt.Format(time.RFC3339),
		PublicKey:      session.PublicKey,
		PrivateKey:     session.PrivateKey,
	}); err != nil {
		// the backend never learned of the key, so it must not sign either
		if cerr := s.Users.ClearSession(ctx, req.TelegramUserID); cerr != nil {
			s.log.WithError(cerr).WithField("user", req.TelegramUserID).Error("failed to drop unannounced session")
		}
		return nil, fmt.Errorf("failed to announce session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user":    req.TelegramUserID,
		"key":     name,
		"expires": session.ExpiresAt.Format(time.RFC3339),
	}).Info("session started")

	return s.sessionResponse(&session), nil
}

// SessionStatus reports the session of a user, expiring it when its time is up.
func (s *Service) SessionStatus(ctx context.Context, telegramUserID string) (*model.SessionResponse, error) {
	if telegramUserID == "" {
		return nil, invalidf("tgUserId is required")
	}
	rec, err := s.Users.GetUser(ctx, telegramUserID)
	if err != nil {
		return nil, err
	}

	if rec.Session.Active(s.now()) {
		return s.sessionResponse(rec.Session), nil
	}
	if rec.Session != nil {
		if err := s.EndSession(ctx, telegramUserID); err != nil {
			return nil, err
		}
	}
	return &model.SessionResponse{Active: false}, nil
}

// EndSession drops the session key locally and on the backend. The key
// itself expires at the signer on its own.
func (s *Service) EndSession(ctx context.Context, telegramUserID string) error {
	if telegramUserID == "" {
		return invalidf("tgUserId is required")
	}
	if err := s.Users.ClearSession(ctx, telegramUserID); err != nil {
		return err
	}
	if err := s.Backend.SetUserSession(ctx, model.UserSession{
		UserID:         telegramUserID,
		SessionEndTime: noSession,
		PublicKey:      noSession,
		PrivateKey:     noSession,
	}); err != nil {
		return err
	}
	s.log.WithField("user", telegramUserID).Info("session ended")
	return nil
}

func (s *Service) sessionResponse(session *model.SessionCredential) *model.SessionResponse {
	remaining := session.ExpiresAt.Sub(s.now()).Round(time.Second)
	return &model.SessionResponse{
		Active:    true,
		ExpiresAt: session.ExpiresAt,
		Remaining: remaining.String(),
	}
}
