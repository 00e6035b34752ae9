package handler

import (
	"net/http"

	"github.com/AlexZinkM/trade-relay/internal/model"
)

// CopyTrades handles GET, POST and DELETE /copytrades
func (h *SolanaHandler) CopyTrades(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCopyTrades(w, r)
	case http.MethodPost:
		h.setCopyTrade(w, r)
	case http.MethodDelete:
		h.deleteCopyTrade(w, r)
	default:
		http.Error(w, "Method not allowed. Should be GET, POST or DELETE", http.StatusMethodNotAllowed)
	}
}

// listCopyTrades
// @Summary      List copy trades
// @Tags         copytrades
// @Produce      json
// @Param        user_id  query     string  true  "Telegram user ID"
// @Success      200      {array}   model.CopyTradeWallet
// @Router       /copytrades [get]
func (h *SolanaHandler) listCopyTrades(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.svc.ListCopyTrades(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if wallets == nil {
		wallets = []model.CopyTradeWallet{}
	}
	writeJSON(w, http.StatusOK, wallets)
}

// setCopyTrade
// @Summary      Create or update a copy trade
// @Tags         copytrades
// @Accept       json
// @Produce      json
// @Param        request  body      model.CopyTradeWallet  true  "Copy trade rule"
// @Success      200      {object}  model.CopyTradeWallet
// @Failure      400      {object}  model.ErrorResponse
// @Router       /copytrades [post]
func (h *SolanaHandler) setCopyTrade(w http.ResponseWriter, r *http.Request) {
	var req model.CopyTradeWallet
	if !decodeBody(w, r, &req) {
		return
	}
	saved, err := h.svc.SetCopyTrade(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// deleteCopyTrade
// @Summary      Delete a copy trade
// @Tags         copytrades
// @Param        user_id             query  string  true  "Telegram user ID"
// @Param        copy_trade_address  query  string  true  "Followed wallet"
// @Success      204
// @Router       /copytrades [delete]
func (h *SolanaHandler) deleteCopyTrade(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.svc.DeleteCopyTrade(r.Context(), q.Get("user_id"), q.Get("copy_trade_address")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
