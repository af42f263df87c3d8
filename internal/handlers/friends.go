package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"splitcircle/internal/middleware"
	"splitcircle/internal/models"
	"splitcircle/internal/validator"
)

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	friends, err := h.friends.ListFriends(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load friends")
		return
	}
	sent, err := h.friends.ListPendingSent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load friend requests")
		return
	}
	received, err := h.friends.ListPendingReceived(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load friend requests")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"friends":           friends,
		"requests_sent":     sent,
		"requests_received": received,
	})
}

type friendRequestRequest struct {
	Email string `json:"email"`
}

func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req friendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	receiver, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondErrorCode(w, http.StatusNotFound, "not_found", "no user with that email")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to send friend request")
		return
	}
	if receiver.ID == userID {
		respondError(w, http.StatusBadRequest, "cannot befriend yourself")
		return
	}
	already, err := h.friends.AreFriends(r.Context(), userID, receiver.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to send friend request")
		return
	}
	if already {
		respondErrorCode(w, http.StatusConflict, "already_friends", "already friends")
		return
	}
	for _, pair := range [][2]string{{userID, receiver.ID}, {receiver.ID, userID}} {
		pending, err := h.friends.HasPendingRequest(r.Context(), pair[0], pair[1])
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to send friend request")
			return
		}
		if pending {
			respondErrorCode(w, http.StatusConflict, "request_pending", "a request is already pending")
			return
		}
	}
	requestID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.friends.CreateRequest(r.Context(), tx, requestID, userID, receiver.ID)
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"request_id": requestID})
}

type respondFriendRequestRequest struct {
	Action string `json:"action"`
}

// RespondFriendRequest lets the receiver accept or decline a pending request.
// Accepting writes both directed friendship rows with the status change in
// one transaction.
func (h *Handler) RespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requestID := chi.URLParam(r, "requestID")
	var req respondFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Action != "accept" && req.Action != "decline" {
		respondError(w, http.StatusBadRequest, "action must be accept or decline")
		return
	}
	request, err := h.friends.GetRequestByID(r.Context(), requestID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if request.ReceiverID != userID {
		respondErrorCode(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	if request.Status != models.FriendRequestPending {
		respondErrorCode(w, http.StatusConflict, "already_resolved", "request already resolved")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if req.Action == "decline" {
			return h.friends.SetRequestStatus(r.Context(), tx, requestID, models.FriendRequestDeclined)
		}
		if err := h.friends.SetRequestStatus(r.Context(), tx, requestID, models.FriendRequestAccepted); err != nil {
			return err
		}
		return h.friends.CreateFriendship(r.Context(), tx, uuid.NewString(), uuid.NewString(), request.SenderID, request.ReceiverID)
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	status := "accepted"
	if req.Action == "decline" {
		status = "declined"
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	friendID := chi.URLParam(r, "friendID")
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.friends.DeleteFriendship(r.Context(), tx, userID, friendID)
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
