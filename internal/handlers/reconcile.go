package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"splitcircle/internal/middleware"
	"splitcircle/internal/models"
	"splitcircle/internal/money"
)

// ReconcileLedger scans every expense in a circle and compares the stored
// amount against the sum of its obligations. Differences beyond the rounding
// epsilon indicate a ledger that drifted out of balance.
func (h *Handler) ReconcileLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	if _, err := h.circleService.Authorize(r.Context(), userID, circleID, models.RoleAdmin); err != nil {
		respondServiceError(w, err)
		return
	}
	type reconRow struct {
		ExpenseID     string          `db:"expense_id"`
		ExpenseAmount decimal.Decimal `db:"expense_amount"`
		ObligationSum decimal.Decimal `db:"obligation_sum"`
		Difference    decimal.Decimal `db:"difference"`
	}
	var rows []reconRow
	query := `
		SELECT e.id AS expense_id,
		       ABS(e.amount) AS expense_amount,
		       COALESCE(SUM(o.amount), 0) AS obligation_sum,
		       (ABS(e.amount) - COALESCE(SUM(o.amount), 0)) AS difference
		FROM expenses e
		LEFT JOIN obligations o ON o.expense_id = e.id
		WHERE e.circle_id = $1
		GROUP BY e.id, e.amount
		ORDER BY e.id
	`
	if err := h.reconcileDB.SelectContext(r.Context(), &rows, query, circleID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile ledger")
		return
	}
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"expense_id":     row.ExpenseID,
			"expense_amount": money.Format(row.ExpenseAmount),
			"obligation_sum": money.Format(row.ObligationSum),
			"difference":     money.Format(row.Difference),
			"balanced":       money.WithinEpsilon(row.Difference, decimal.Zero),
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
