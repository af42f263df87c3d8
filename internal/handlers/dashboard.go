package handlers

import (
	"net/http"

	"splitcircle/internal/middleware"
	"splitcircle/internal/money"
)

// Dashboard aggregates the authenticated user's circles, recent activity, and
// balance totals into one response.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circles, err := h.circles.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load circles")
		return
	}
	recent, err := h.expenses.ListRecentByUser(r.Context(), userID, 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load recent expenses")
		return
	}
	net, err := h.balanceService.NetBalance(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute balance")
		return
	}
	outstanding, err := h.balanceService.OutstandingBalance(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute balance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"circles":             circles,
		"recent_expenses":     recent,
		"net_balance":         money.Format(net),
		"outstanding_balance": money.Format(outstanding),
	})
}
