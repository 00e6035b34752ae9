package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/skip2/go-qrcode"
)

// GetWallet returns the deposit address of a user with its QR code.
func (s *Service) GetWallet(ctx context.Context, telegramUserID string) (*model.WalletResponse, error) {
	if telegramUserID == "" {
		return nil, invalidf("user_id is required")
	}
	rec, err := s.Users.GetUser(ctx, telegramUserID)
	if err != nil {
		return nil, err
	}

	address := rec.Credential.WalletAddress
	qrCode, err := generateQRCode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &model.WalletResponse{
		Address: address,
		QR:      qrCode,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
