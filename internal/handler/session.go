package handler

import (
	"net/http"

	"github.com/AlexZinkM/trade-relay/internal/model"
)

// Session handles POST, GET and DELETE /session
func (h *SolanaHandler) Session(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.startSession(w, r)
	case http.MethodGet:
		h.sessionStatus(w, r)
	case http.MethodDelete:
		h.endSession(w, r)
	default:
		http.Error(w, "Method not allowed. Should be POST, GET or DELETE", http.StatusMethodNotAllowed)
	}
}

// startSession
// @Summary      Start a signing session
// @Description  Creates a short-lived API key so copy trades can be signed without the user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.SessionRequest  true  "Session data"
// @Success      200      {object}  model.SessionResponse
// @Router       /session [post]
func (h *SolanaHandler) startSession(w http.ResponseWriter, r *http.Request) {
	var req model.SessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.StartSession(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// sessionStatus
// @Summary      Get session status
// @Tags         session
// @Produce      json
// @Param        user_id  query     string  true  "Telegram user ID"
// @Success      200      {object}  model.SessionResponse
// @Router       /session [get]
func (h *SolanaHandler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.SessionStatus(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// endSession
// @Summary      End the session
// @Tags         session
// @Param        user_id  query  string  true  "Telegram user ID"
// @Success      204
// @Router       /session [delete]
func (h *SolanaHandler) endSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndSession(r.Context(), r.URL.Query().Get("user_id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutUser handles PUT /users/{id}
// @Summary      Store a user
// @Description  Stores the signer credential and wallet of a provisioned user
// @Tags         users
// @Accept       json
// @Param        id       path  string             true  "Telegram user ID"
// @Param        request  body  model.UserRequest  true  "User data"
// @Success      204
// @Failure      400      {object}  model.ErrorResponse
// @Router       /users/{id} [put]
func (h *SolanaHandler) PutUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed. Should be PUT", http.StatusMethodNotAllowed)
		return
	}

	var req model.UserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.PutUser(r.Context(), r.PathValue("id"), &req); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
