package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
)

type ObligationStore struct {
	db DB
}

func NewObligationStore(db DB) *ObligationStore {
	return &ObligationStore{db: db}
}

type ObligationInput struct {
	ID         string
	ExpenseID  string
	UserID     string
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

func (s *ObligationStore) InsertMany(ctx context.Context, tx Execer, inputs []ObligationInput) error {
	query := `
		INSERT INTO obligations (id, expense_id, user_id, amount, percentage)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, input := range inputs {
		if _, err := tx.ExecContext(ctx, query, input.ID, input.ExpenseID, input.UserID, input.Amount, input.Percentage); err != nil {
			return err
		}
	}
	return nil
}

func (s *ObligationStore) GetByID(ctx context.Context, expenseID, obligationID string) (models.Obligation, error) {
	var row models.Obligation
	err := s.db.GetContext(ctx, &row, `
		SELECT id, expense_id, user_id, amount, percentage, is_paid, paid_at
		FROM obligations
		WHERE id = $1 AND expense_id = $2
	`, obligationID, expenseID)
	return row, err
}

// ListByExpense takes a Selecter so it can run inside the settlement
// transaction that recomputes the settled flag; a nil Selecter falls back to
// the pool.
func (s *ObligationStore) ListByExpense(ctx context.Context, q Selecter, expenseID string) ([]models.Obligation, error) {
	if q == nil {
		q = s.db
	}
	var rows []models.Obligation
	err := q.SelectContext(ctx, &rows, `
		SELECT id, expense_id, user_id, amount, percentage, is_paid, paid_at
		FROM obligations
		WHERE expense_id = $1
		ORDER BY id
	`, expenseID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ObligationStore) SetPaid(ctx context.Context, tx Execer, obligationID string, isPaid bool, paidAt *time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE obligations SET is_paid = $1, paid_at = $2 WHERE id = $3
	`, isPaid, paidAt, obligationID)
	return err
}

func (s *ObligationStore) DeleteByExpense(ctx context.Context, tx Execer, expenseID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM obligations WHERE expense_id = $1`, expenseID)
	return err
}

func (s *ObligationStore) DeleteByCircle(ctx context.Context, tx Execer, circleID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM obligations
		WHERE expense_id IN (SELECT id FROM expenses WHERE circle_id = $1)
	`, circleID)
	return err
}

func (s *ObligationStore) DeleteByUser(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM obligations WHERE user_id = $1`, userID)
	return err
}

func (s *ObligationStore) DeleteByExpenseCreator(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM obligations
		WHERE expense_id IN (SELECT id FROM expenses WHERE created_by = $1)
	`, userID)
	return err
}

// SumByUser folds a user's obligations across every circle into one signed
// figure. Imported expenses keep the bank's sign on the expense row while
// their obligations are stored unsigned, so the fold normalizes with ABS and
// the result reads: positive means the user is net obligated.
func (s *ObligationStore) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM obligations
		WHERE user_id = $1
	`, userID)
	return sum, err
}

func (s *ObligationStore) SumUnpaidByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM obligations
		WHERE user_id = $1 AND is_paid = FALSE
	`, userID)
	return sum, err
}

type MemberBalanceRow struct {
	UserID string          `db:"user_id" json:"user_id"`
	Unpaid decimal.Decimal `db:"unpaid" json:"unpaid"`
	Total  decimal.Decimal `db:"total" json:"total"`
}

// SumByCircle returns each member's obligation totals for the circle view.
func (s *ObligationStore) SumByCircle(ctx context.Context, circleID string) ([]MemberBalanceRow, error) {
	var rows []MemberBalanceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.user_id,
		       COALESCE(SUM(ABS(o.amount)) FILTER (WHERE NOT o.is_paid), 0) AS unpaid,
		       COALESCE(SUM(ABS(o.amount)), 0) AS total
		FROM obligations o
		JOIN expenses e ON e.id = o.expense_id
		WHERE e.circle_id = $1
		GROUP BY o.user_id
	`, circleID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
