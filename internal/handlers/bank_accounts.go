package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"splitcircle/internal/middleware"
	"splitcircle/internal/store"
)

func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.bankAccounts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load bank accounts")
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

type createBankAccountRequest struct {
	Institution       string `json:"institution"`
	AccountName       string `json:"account_name"`
	AccountType       string `json:"account_type"`
	Mask              string `json:"mask"`
	AccessToken       string `json:"access_token"`
	ExternalItemID    string `json:"external_item_id"`
	ExternalAccountID string `json:"external_account_id"`
}

func (h *Handler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Institution == "" || req.AccountName == "" || req.AccessToken == "" {
		respondError(w, http.StatusBadRequest, "institution, account_name and access_token are required")
		return
	}
	accountID := uuid.NewString()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.bankAccounts.Create(r.Context(), tx, store.BankAccountInput{
			ID:                accountID,
			UserID:            userID,
			Institution:       req.Institution,
			AccountName:       req.AccountName,
			AccountType:       req.AccountType,
			Mask:              req.Mask,
			AccessToken:       req.AccessToken,
			ExternalItemID:    req.ExternalItemID,
			ExternalAccountID: req.ExternalAccountID,
		})
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	account, err := h.bankAccounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load bank account")
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

func (h *Handler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "accountID")
	account, err := h.bankAccounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if account.UserID != userID {
		respondErrorCode(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.bankAccounts.Delete(r.Context(), tx, accountID)
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
