package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"splitcircle/internal/middleware"
	"splitcircle/internal/models"
	"splitcircle/internal/services"
	"splitcircle/internal/store"
	"splitcircle/internal/validator"
)

func (h *Handler) ListCircles(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, circles)
}

type createCircleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (h *Handler) CreateCircle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createCircleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Color != nil {
		if err := validator.ValidateColor(*req.Color); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	circle, err := h.circleService.Create(r.Context(), userID, services.CreateCircleInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, circle)
}

// GetCircle returns the circle with its member roster, the most recent
// expenses, and per-member obligation totals in one payload.
func (h *Handler) GetCircle(w http.ResponseWriter, r *http.Request) {
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
	circle, err := h.circles.GetByID(r.Context(), circleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	members, err := h.members.ListByCircle(r.Context(), circleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load members")
		return
	}
	expenses, err := h.expenses.ListByCircle(r.Context(), circleID, 10, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load expenses")
		return
	}
	balances, err := h.balanceService.CircleBalances(r.Context(), userID, circleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"circle":          circle,
		"members":         members,
		"recent_expenses": expenses,
		"balances":        balances,
	})
}

type updateCircleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (h *Handler) UpdateCircle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	var req updateCircleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name != nil {
		if err := validator.ValidateName(*req.Name); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Color != nil {
		if err := validator.ValidateColor(*req.Color); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	circle, err := h.circleService.Update(r.Context(), userID, circleID, store.CircleUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, circle)
}

func (h *Handler) DeleteCircle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	if err := h.circleService.Delete(r.Context(), userID, circleID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) CircleBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	circleID := chi.URLParam(r, "circleID")
	balances, err := h.balanceService.CircleBalances(r.Context(), userID, circleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
