package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
)

type ExpenseStore struct {
	db DB
}

func NewExpenseStore(db DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

type ExpenseInput struct {
	ID          string
	CircleID    string
	CreatedBy   string
	Name        string
	Amount      decimal.Decimal
	Date        time.Time
	Category    *string
	Description *string
	SplitType   models.SplitType
}

type ExpenseUpdate struct {
	Name        *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Category    *string
	Description *string
	SplitType   *models.SplitType
}

func (s *ExpenseStore) Create(ctx context.Context, tx Execer, input ExpenseInput) error {
	query := `
		INSERT INTO expenses (id, circle_id, created_by, name, amount, date, category, description, split_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.CircleID, input.CreatedBy, input.Name, input.Amount,
		input.Date, input.Category, input.Description, input.SplitType,
	)
	return err
}

func (s *ExpenseStore) GetByID(ctx context.Context, circleID, expenseID string) (models.Expense, error) {
	var row models.Expense
	err := s.db.GetContext(ctx, &row, `
		SELECT id, circle_id, created_by, name, amount, date, category, description,
		       split_type, is_settled, created_at, updated_at
		FROM expenses
		WHERE id = $1 AND circle_id = $2
	`, expenseID, circleID)
	return row, err
}

func (s *ExpenseStore) Update(ctx context.Context, tx Execer, expenseID string, update ExpenseUpdate) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE expenses
		SET name = COALESCE($1, name),
		    amount = COALESCE($2, amount),
		    date = COALESCE($3, date),
		    category = COALESCE($4, category),
		    description = COALESCE($5, description),
		    split_type = COALESCE($6, split_type),
		    updated_at = NOW()
		WHERE id = $7
	`, update.Name, update.Amount, update.Date, update.Category, update.Description, update.SplitType, expenseID)
	return err
}

// SetSettled persists the derived settled flag. Callers must run it in the
// same transaction as the obligation update it follows.
func (s *ExpenseStore) SetSettled(ctx context.Context, tx Execer, expenseID string, settled bool) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE expenses SET is_settled = $1, updated_at = NOW() WHERE id = $2
	`, settled, expenseID)
	return err
}

func (s *ExpenseStore) Delete(ctx context.Context, tx Execer, expenseID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	return err
}

func (s *ExpenseStore) DeleteByCircle(ctx context.Context, tx Execer, circleID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE circle_id = $1`, circleID)
	return err
}

func (s *ExpenseStore) DeleteByCreator(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE created_by = $1`, userID)
	return err
}

func (s *ExpenseStore) ListByCircle(ctx context.Context, circleID string, limit, offset int) ([]models.Expense, error) {
	var rows []models.Expense
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, circle_id, created_by, name, amount, date, category, description,
		       split_type, is_settled, created_at, updated_at
		FROM expenses
		WHERE circle_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`, circleID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ExpenseStore) CountByCircle(ctx context.Context, circleID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM expenses WHERE circle_id = $1`, circleID)
	return count, err
}

// ListRecentByUser feeds the dashboard: the latest expenses from any circle
// the user belongs to.
func (s *ExpenseStore) ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.Expense, error) {
	var rows []models.Expense
	err := s.db.SelectContext(ctx, &rows, `
		SELECT e.id, e.circle_id, e.created_by, e.name, e.amount, e.date, e.category,
		       e.description, e.split_type, e.is_settled, e.created_at, e.updated_at
		FROM expenses e
		WHERE EXISTS (
			SELECT 1 FROM circle_members m
			WHERE m.circle_id = e.circle_id AND m.user_id = $1
		)
		ORDER BY e.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
