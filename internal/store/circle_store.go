package store

import (
	"context"

	"splitcircle/internal/models"
)

type CircleStore struct {
	db DB
}

func NewCircleStore(db DB) *CircleStore {
	return &CircleStore{db: db}
}

type CircleInput struct {
	ID          string
	Name        string
	Description *string
	Color       *string
}

type CircleUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

type CircleSummary struct {
	models.Circle
	MemberCount  int `db:"member_count" json:"member_count"`
	ExpenseCount int `db:"expense_count" json:"expense_count"`
}

func (s *CircleStore) Create(ctx context.Context, tx Execer, input CircleInput) error {
	query := `
		INSERT INTO circles (id, name, description, color)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Name, input.Description, input.Color)
	return err
}

func (s *CircleStore) GetByID(ctx context.Context, circleID string) (models.Circle, error) {
	var row models.Circle
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, color, is_active, created_at, updated_at
		FROM circles
		WHERE id = $1
	`, circleID)
	return row, err
}

func (s *CircleStore) Update(ctx context.Context, tx Execer, circleID string, update CircleUpdate) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE circles
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    color = COALESCE($3, color),
		    updated_at = NOW()
		WHERE id = $4
	`, update.Name, update.Description, update.Color, circleID)
	return err
}

func (s *CircleStore) Touch(ctx context.Context, tx Execer, circleID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE circles SET updated_at = NOW() WHERE id = $1`, circleID)
	return err
}

func (s *CircleStore) Delete(ctx context.Context, tx Execer, circleID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM circles WHERE id = $1`, circleID)
	return err
}

// ListByUser returns the caller's active circles with member and expense
// counts, most recently updated first.
func (s *CircleStore) ListByUser(ctx context.Context, userID string) ([]CircleSummary, error) {
	var rows []CircleSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.name, c.description, c.color, c.is_active, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id) AS member_count,
		       (SELECT COUNT(*) FROM expenses e WHERE e.circle_id = c.id) AS expense_count
		FROM circles c
		WHERE c.is_active = TRUE
		  AND EXISTS (SELECT 1 FROM circle_members m WHERE m.circle_id = c.id AND m.user_id = $1)
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSoleMemberCircleIDs returns circles where the user is the only member,
// used by account erasure to drop orphaned circles.
func (s *CircleStore) ListSoleMemberCircleIDs(ctx context.Context, tx Selecter, userID string) ([]string, error) {
	var ids []string
	err := tx.SelectContext(ctx, &ids, `
		SELECT c.id
		FROM circles c
		WHERE EXISTS (SELECT 1 FROM circle_members m WHERE m.circle_id = c.id AND m.user_id = $1)
		  AND (SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id) = 1
	`, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
