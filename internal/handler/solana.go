package handler

import (
	"context"
	"net/http"

	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/sirupsen/logrus"
)

// TradeService is the set of operations served over HTTP.
type TradeService interface {
	GetWallet(ctx context.Context, telegramUserID string) (*model.WalletResponse, error)
	GetBalance(ctx context.Context, address string) (*model.SolanaBalanceResponse, error)
	GetPositions(ctx context.Context, address string) (*model.PositionsResponse, error)
	Swap(ctx context.Context, req *model.SwapRequest) (model.SubmissionResult, error)
	Transfer(ctx context.Context, req *model.TransferRequest) (model.SubmissionResult, error)
	Submit(ctx context.Context, req *model.SubmitRequest) (model.SubmissionResult, error)

	SetCopyTrade(ctx context.Context, w model.CopyTradeWallet) (*model.CopyTradeWallet, error)
	ListCopyTrades(ctx context.Context, userID string) ([]model.CopyTradeWallet, error)
	DeleteCopyTrade(ctx context.Context, userID, copyTradeAddress string) error

	StartSession(ctx context.Context, req *model.SessionRequest) (*model.SessionResponse, error)
	SessionStatus(ctx context.Context, telegramUserID string) (*model.SessionResponse, error)
	EndSession(ctx context.Context, telegramUserID string) error

	PutUser(ctx context.Context, telegramUserID string, req *model.UserRequest) error
}

// SolanaHandler serves the trading API
type SolanaHandler struct {
	svc TradeService
	log *logrus.Logger
}

// NewSolanaHandler creates a new SolanaHandler
func NewSolanaHandler(svc TradeService, log *logrus.Logger) *SolanaHandler {
	return &SolanaHandler{svc: svc, log: log}
}

// GetWallet handles GET /solana/wallet
// @Summary      Get wallet
// @Description  Gets the deposit address of a user with a QR code (base64 PNG)
// @Tags         solana
// @Produce      json
// @Param        user_id  query     string  true  "Telegram user ID"
// @Success      200      {object}  model.WalletResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /solana/wallet [get]
func (h *SolanaHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	wallet, err := h.svc.GetWallet(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// GetBalance handles GET /solana/balance
// @Summary      Get wallet balance (USD = SOL * rate)
// @Description  Gets SOL balance of an address with its SOL/USD rate
// @Tags         solana
// @Produce      json
// @Param        address  query     string  true  "Solana address"
// @Success      200      {object}  model.SolanaBalanceResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /solana/balance [get]
func (h *SolanaHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// GetPositions handles GET /solana/positions
// @Summary      Get token positions
// @Description  Lists SPL token balances of an address
// @Tags         solana
// @Produce      json
// @Param        address  query     string  true  "Solana address"
// @Success      200      {object}  model.PositionsResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /solana/positions [get]
func (h *SolanaHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	positions, err := h.svc.GetPositions(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

// Swap handles POST /solana/swap
// @Summary      Swap tokens
// @Description  Quotes a swap through the aggregator, signs it and submits it with retries
// @Tags         solana
// @Accept       json
// @Produce      json
// @Param        request  body      model.SwapRequest  true  "Swap data"
// @Success      200      {object}  model.SubmissionResult
// @Failure      400      {object}  model.ErrorResponse
// @Router       /solana/swap [post]
func (h *SolanaHandler) Swap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SwapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.Swap(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Transfer handles POST /solana/transfer
// @Summary      Send SOL
// @Description  Sends SOL from the wallet of a user to the specified address
// @Tags         solana
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  true  "Transfer data"
// @Success      200      {object}  model.SubmissionResult
// @Failure      400      {object}  model.ErrorResponse
// @Router       /solana/transfer [post]
func (h *SolanaHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.Transfer(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Submit handles POST /solana/submit
// @Summary      Sign and send a transaction
// @Description  Signs a base64 encoded transaction for a user and submits it with retries
// @Tags         solana
// @Accept       json
// @Produce      json
// @Param        request  body      model.SubmitRequest  true  "Transaction"
// @Success      200      {object}  model.SubmissionResult
// @Failure      404      {object}  model.ErrorResponse
// @Router       /solana/submit [post]
func (h *SolanaHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
