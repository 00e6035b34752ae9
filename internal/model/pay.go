package model

// TransferRequest represents request for POST /solana/transfer
type TransferRequest struct {
	TelegramUserID string `json:"tgUserId"`
	ToAddress      string `json:"toAddress"`
	Amount         string `json:"amount"`
}

// SwapRequest represents request for POST /solana/swap
type SwapRequest struct {
	TelegramUserID string  `json:"tgUserId"`
	InputMint      string  `json:"inputMint"`
	OutputMint     string  `json:"outputMint"`
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	Slippage       float64 `json:"slippage"` // percent
}
