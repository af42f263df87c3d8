package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lib/pq"

	"splitcircle/internal/services"
	"splitcircle/internal/split"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondErrorCode(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

// respondServiceError maps domain error kinds onto HTTP statuses and stable
// codes so clients can tell an authorization failure from a broken invariant.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		respondErrorCode(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, services.ErrForbidden):
		respondErrorCode(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, services.ErrNotFriends):
		respondErrorCode(w, http.StatusForbidden, "not_friends", services.ErrNotFriends.Error())
	case errors.Is(err, services.ErrLastAdmin):
		respondErrorCode(w, http.StatusBadRequest, "last_admin", services.ErrLastAdmin.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		respondErrorCode(w, http.StatusConflict, "already_member", services.ErrAlreadyMember.Error())
	case errors.Is(err, split.ErrInputRequired):
		respondErrorCode(w, http.StatusBadRequest, "invalid_split_input", split.ErrInputRequired.Error())
	case errors.Is(err, split.ErrInvariantViolation):
		respondErrorCode(w, http.StatusBadRequest, "invariant_violation", split.ErrInvariantViolation.Error())
	case errors.Is(err, split.ErrNoMembers), errors.Is(err, split.ErrUnknownSplitType):
		respondErrorCode(w, http.StatusBadRequest, "invalid_split_input", err.Error())
	default:
		if isUniqueViolation(err) {
			respondErrorCode(w, http.StatusConflict, "conflict", "duplicate entry")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
