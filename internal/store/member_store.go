package store

import (
	"context"
	"time"

	"splitcircle/internal/models"
)

type MemberStore struct {
	db DB
}

func NewMemberStore(db DB) *MemberStore {
	return &MemberStore{db: db}
}

type MemberWithUser struct {
	ID       string      `db:"id" json:"id"`
	CircleID string      `db:"circle_id" json:"circle_id"`
	UserID   string      `db:"user_id" json:"user_id"`
	Role     models.Role `db:"role" json:"role"`
	JoinedAt time.Time   `db:"joined_at" json:"joined_at"`
	Name     string      `db:"name" json:"name"`
	Email    string      `db:"email" json:"email"`
	Avatar   *string     `db:"avatar" json:"avatar,omitempty"`
}

func (s *MemberStore) Add(ctx context.Context, tx Execer, id, circleID, userID string, role models.Role) error {
	query := `
		INSERT INTO circle_members (id, circle_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, id, circleID, userID, role)
	return err
}

func (s *MemberStore) Get(ctx context.Context, circleID, userID string) (models.CircleMember, error) {
	var row models.CircleMember
	err := s.db.GetContext(ctx, &row, `
		SELECT id, circle_id, user_id, role, joined_at
		FROM circle_members
		WHERE circle_id = $1 AND user_id = $2
	`, circleID, userID)
	return row, err
}

func (s *MemberStore) GetByID(ctx context.Context, circleID, memberID string) (models.CircleMember, error) {
	var row models.CircleMember
	err := s.db.GetContext(ctx, &row, `
		SELECT id, circle_id, user_id, role, joined_at
		FROM circle_members
		WHERE circle_id = $1 AND id = $2
	`, circleID, memberID)
	return row, err
}

// ListByCircle returns members in join order. Equal splits depend on this
// ordering: leftover cents go to the earliest members.
func (s *MemberStore) ListByCircle(ctx context.Context, circleID string) ([]MemberWithUser, error) {
	var rows []MemberWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.id, m.circle_id, m.user_id, m.role, m.joined_at,
		       u.name, u.email, u.avatar
		FROM circle_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.circle_id = $1
		ORDER BY m.joined_at, m.id
	`, circleID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *MemberStore) CountAdmins(ctx context.Context, q Getter, circleID string) (int, error) {
	var count int
	err := q.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM circle_members
		WHERE circle_id = $1 AND role = 'ADMIN'
	`, circleID)
	return count, err
}

func (s *MemberStore) SetRole(ctx context.Context, tx Execer, memberID string, role models.Role) error {
	_, err := tx.ExecContext(ctx, `UPDATE circle_members SET role = $1 WHERE id = $2`, role, memberID)
	return err
}

func (s *MemberStore) Remove(ctx context.Context, tx Execer, memberID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM circle_members WHERE id = $1`, memberID)
	return err
}

func (s *MemberStore) DeleteByCircle(ctx context.Context, tx Execer, circleID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM circle_members WHERE circle_id = $1`, circleID)
	return err
}

func (s *MemberStore) DeleteByUser(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM circle_members WHERE user_id = $1`, userID)
	return err
}
