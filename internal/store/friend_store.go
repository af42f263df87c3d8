package store

import (
	"context"
	"time"

	"splitcircle/internal/models"
)

type FriendStore struct {
	db DB
}

func NewFriendStore(db DB) *FriendStore {
	return &FriendStore{db: db}
}

type FriendWithUser struct {
	FriendshipID string    `db:"friendship_id" json:"friendship_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RequestWithUser struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Avatar    *string   `db:"avatar" json:"avatar,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (s *FriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2
		)
	`, userID, otherID)
	return exists, err
}

func (s *FriendStore) ListFriends(ctx context.Context, userID string) ([]FriendWithUser, error) {
	var rows []FriendWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT f.id AS friendship_id, u.id AS user_id, u.name, u.email, u.avatar, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *FriendStore) ListPendingSent(ctx context.Context, userID string) ([]RequestWithUser, error) {
	var rows []RequestWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id, u.id AS user_id, u.name, u.email, u.avatar, r.created_at
		FROM friend_requests r
		JOIN users u ON u.id = r.receiver_id
		WHERE r.sender_id = $1 AND r.status = 'PENDING'
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *FriendStore) ListPendingReceived(ctx context.Context, userID string) ([]RequestWithUser, error) {
	var rows []RequestWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id, u.id AS user_id, u.name, u.email, u.avatar, r.created_at
		FROM friend_requests r
		JOIN users u ON u.id = r.sender_id
		WHERE r.receiver_id = $1 AND r.status = 'PENDING'
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *FriendStore) CreateRequest(ctx context.Context, tx Execer, id, senderID, receiverID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO friend_requests (id, sender_id, receiver_id, status)
		VALUES ($1, $2, $3, 'PENDING')
	`, id, senderID, receiverID)
	return err
}

func (s *FriendStore) GetRequestByID(ctx context.Context, requestID string) (models.FriendRequest, error) {
	var row models.FriendRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT id, sender_id, receiver_id, status, created_at
		FROM friend_requests
		WHERE id = $1
	`, requestID)
	return row, err
}

func (s *FriendStore) HasPendingRequest(ctx context.Context, senderID, receiverID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE sender_id = $1 AND receiver_id = $2 AND status = 'PENDING'
		)
	`, senderID, receiverID)
	return exists, err
}

func (s *FriendStore) SetRequestStatus(ctx context.Context, tx Execer, requestID string, status models.FriendRequestStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE friend_requests SET status = $1 WHERE id = $2
	`, status, requestID)
	return err
}

// CreateFriendship inserts both directed rows so either side can list the
// other.
func (s *FriendStore) CreateFriendship(ctx context.Context, tx Execer, firstID, secondID, userA, userB string) error {
	query := `
		INSERT INTO friendships (id, user_id, friend_id)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, query, firstID, userA, userB); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, query, secondID, userB, userA)
	return err
}

func (s *FriendStore) DeleteFriendship(ctx context.Context, tx Execer, userID, friendID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
	return err
}

func (s *FriendStore) DeleteByUser(ctx context.Context, tx Execer, userID string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM friend_requests WHERE sender_id = $1 OR receiver_id = $1
	`, userID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		DELETE FROM friendships WHERE user_id = $1 OR friend_id = $1
	`, userID)
	return err
}
