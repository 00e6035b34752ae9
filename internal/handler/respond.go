package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/store"
	"github.com/AlexZinkM/trade-relay/solana"

	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// writeServiceError maps service errors to a status code.
func writeServiceError(w http.ResponseWriter, log *logrus.Logger, err error) {
	switch {
	case errors.Is(err, solana.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return false
	}
	return true
}
