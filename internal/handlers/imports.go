package handlers

import (
	"encoding/json"
	"net/http"

	"splitcircle/internal/middleware"
	"splitcircle/internal/services"
)

type importRequest struct {
	CircleID     string                         `json:"circle_id"`
	Transactions []services.ExternalTransaction `json:"transactions"`
}

func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.CircleID == "" {
		respondError(w, http.StatusBadRequest, "circle_id is required")
		return
	}
	if len(req.Transactions) == 0 {
		respondError(w, http.StatusBadRequest, "transactions are required")
		return
	}
	result, err := h.importService.Import(r.Context(), userID, req.CircleID, req.Transactions)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
