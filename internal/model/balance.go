package model

// SolanaBalanceResponse represents response for GET /solana/balance
type SolanaBalanceResponse struct {
	Address string `json:"address"`
	SOL     string `json:"sol"`
	Rate    string `json:"sol_usd_rate"`
	USD     string `json:"sol_amount_in_usd"`
}

// TokenBalance is a single SPL token position of a wallet.
type TokenBalance struct {
	Mint         string `json:"mint"`
	Account      string `json:"account"`
	Amount       string `json:"amount"`
	UIAmount     string `json:"uiAmount"`
	Decimals     int    `json:"decimals"`
	RentLamports uint64 `json:"rentLamports"`
}

// PositionsResponse represents response for GET /solana/positions
type PositionsResponse struct {
	Address string         `json:"address"`
	Tokens  []TokenBalance `json:"tokens"`
}

// WalletResponse represents response for GET /solana/wallet
type WalletResponse struct {
	Address string `json:"address"`
	QR      string `json:"QR"`
}
