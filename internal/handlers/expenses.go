package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"splitcircle/internal/middleware"
	"splitcircle/internal/models"
	"splitcircle/internal/money"
	"splitcircle/internal/services"
	"splitcircle/internal/split"
	"splitcircle/internal/validator"
)

type shareRequest struct {
	UserID     string  `json:"user_id"`
	Amount     *string `json:"amount"`
	Percentage *string `json:"percentage"`
}

type createExpenseRequest struct {
	Name        string         `json:"name"`
	Amount      string         `json:"amount"`
	Date        string         `json:"date"`
	Category    *string        `json:"category"`
	Description *string        `json:"description"`
	SplitType   string         `json:"split_type"`
	Splits      []shareRequest `json:"splits"`
}

func parseShares(reqs []shareRequest) ([]split.ShareInput, error) {
	inputs := make([]split.ShareInput, 0, len(reqs))
	for _, s := range reqs {
		in := split.ShareInput{UserID: s.UserID}
		if s.Amount != nil {
			amount, err := money.Parse(*s.Amount)
			if err != nil {
				return nil, err
			}
			in.Amount = &amount
		}
		if s.Percentage != nil {
			pct, err := decimal.NewFromString(*s.Percentage)
			if err != nil {
				return nil, money.ErrInvalidAmount
			}
			in.Percentage = &pct
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date := time.Now().UTC()
	if req.Date != "" {
		date, err = validator.ParseDate(req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	splits, err := parseShares(req.Splits)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	expense, err := h.expenseService.Create(r.Context(), userID, circleID, services.CreateExpenseInput{
		Name:        req.Name,
		Amount:      amount,
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
		SplitType:   models.SplitType(req.SplitType),
		Splits:      splits,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	if _, err := h.circleService.Authorize(r.Context(), userID, circleID, models.RoleMember); err != nil {
		respondServiceError(w, err)
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	expenses, err := h.expenses.ListByCircle(r.Context(), circleID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load expenses")
		return
	}
	total, err := h.expenses.CountByCircle(r.Context(), circleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load expenses")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	expenseID := chi.URLParam(r, "expenseID")
	expense, err := h.expenseService.Get(r.Context(), userID, circleID, expenseID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

type updateExpenseRequest struct {
	Name        *string        `json:"name"`
	Amount      *string        `json:"amount"`
	Date        *string        `json:"date"`
	Category    *string        `json:"category"`
	Description *string        `json:"description"`
	SplitType   *string        `json:"split_type"`
	Splits      []shareRequest `json:"splits"`
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	expenseID := chi.URLParam(r, "expenseID")
	var req updateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input := services.UpdateExpenseInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Name != nil {
		if err := validator.ValidateName(*req.Name); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Amount != nil {
		amount, err := money.ParsePositive(*req.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.Amount = &amount
	}
	if req.Date != nil {
		date, err := validator.ParseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.Date = &date
	}
	if req.SplitType != nil {
		splitType := models.SplitType(*req.SplitType)
		input.SplitType = &splitType
	}
	if req.Splits != nil {
		splits, err := parseShares(req.Splits)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.Splits = splits
	}
	expense, err := h.expenseService.Update(r.Context(), userID, circleID, expenseID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	expenseID := chi.URLParam(r, "expenseID")
	if err := h.expenseService.Delete(r.Context(), userID, circleID, expenseID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type updateObligationRequest struct {
	IsPaid *bool `json:"is_paid"`
}

func (h *Handler) UpdateObligation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	expenseID := chi.URLParam(r, "expenseID")
	obligationID := chi.URLParam(r, "obligationID")
	var req updateObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.IsPaid == nil {
		respondError(w, http.StatusBadRequest, "is_paid is required")
		return
	}
	obligation, err := h.expenseService.SetObligationPaid(r.Context(), userID, circleID, expenseID, obligationID, *req.IsPaid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, obligation)
}
