package store

import (
	"context"

	"splitcircle/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type credentialRow struct {
	ID           string `db:"id"`
	PasswordHash string `db:"password_hash"`
}

func (s *UserStore) Create(ctx context.Context, tx Execer, id, name, email, passwordHash string) error {
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, id, name, email, passwordHash)
	return err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, avatar, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return row, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, avatar, created_at
		FROM users
		WHERE email = $1
	`, email)
	return row, err
}

func (s *UserStore) GetCredentialsByEmail(ctx context.Context, email string) (string, string, error) {
	var row credentialRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, password_hash
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return "", "", err
	}
	return row.ID, row.PasswordHash, nil
}

func (s *UserStore) UpdatePhone(ctx context.Context, tx Execer, userID string, phone *string) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET phone = $1 WHERE id = $2`, phone, userID)
	return err
}

func (s *UserStore) Delete(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}
