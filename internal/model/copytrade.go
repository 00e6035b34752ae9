package model

// CopyTradeWallet is a copy trade rule: follow CopyTradeAddress with the
// user's AccountAddress, buying BuyAmount SOL per trade.
type CopyTradeWallet struct {
	UserID           string `json:"user_id"`
	WalletID         string `json:"wallet_id"`
	AccountAddress   string `json:"account_address"`
	BuyAmount        string `json:"buy_amount"`
	CopyTradeAddress string `json:"copy_trade_address"`
	Status           string `json:"status"`
}

const (
	CopyTradeStatusActive   = "active"
	CopyTradeStatusInactive = "inactive"
)

// Active reports whether the rule is enabled.
func (w CopyTradeWallet) Active() bool {
	return w.Status == CopyTradeStatusActive
}

// UserSession is the session announcement sent to the bot backend.
type UserSession struct {
	UserID         string `json:"user_id"`
	SessionEndTime string `json:"session_end_time"`
	PublicKey      string `json:"public_key"`
	PrivateKey     string `json:"private_key"`
}
