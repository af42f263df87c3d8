package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"splitcircle/internal/db"
	"splitcircle/internal/models"
	"splitcircle/internal/split"
	"splitcircle/internal/store"
	"splitcircle/internal/validator"
)

// ImportDate accepts the provider's date either as an RFC3339 timestamp or a
// bare calendar date like "2024-01-15".
type ImportDate struct {
	time.Time
}

func (d *ImportDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := validator.ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// ExternalTransaction is one transaction as delivered by the bank-data
// provider. The provider-assigned ID is the dedup key.
type ExternalTransaction struct {
	ID          string          `json:"transaction_id"`
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        ImportDate      `json:"date"`
	Name        string          `json:"name"`
	Category    []string        `json:"category,omitempty"`
	Pending     bool            `json:"pending"`
	Institution string          `json:"institution"`
}

type ImportResult struct {
	Imported  []ExpenseWithObligations `json:"imported"`
	FailedIDs []string                 `json:"failed_ids"`
}

// ImportService maps externally-sourced transactions into expenses. Each
// retained transaction becomes exactly one equal-split expense; the batch is
// deduplicated on provider id within a single call only — re-importing an
// overlapping range on a later call creates duplicates.
type ImportService struct {
	txRunner    db.TxRunner
	guard       Authorizer
	circles     CircleStore
	members     MemberStore
	expenses    ExpenseStore
	obligations ObligationStore
}

func NewImportService(txRunner db.TxRunner, guard Authorizer, circles CircleStore, members MemberStore, expenses ExpenseStore, obligations ObligationStore) *ImportService {
	return &ImportService{
		txRunner:    txRunner,
		guard:       guard,
		circles:     circles,
		members:     members,
		expenses:    expenses,
		obligations: obligations,
	}
}

// Import creates one expense per retained external transaction, split
// equally across the circle's members at import time. Each expense and its
// obligations commit atomically, but the batch tolerates partial failure: a
// failed transaction is logged and recorded, and the rest proceed. Imported
// obligations are never marked paid, whatever the provider's pending flag
// says.
func (s *ImportService) Import(ctx context.Context, actorID, circleID string, txns []ExternalTransaction) (ImportResult, error) {
	if _, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember); err != nil {
		return ImportResult{}, err
	}
	members, err := s.members.ListByCircle(ctx, circleID)
	if err != nil {
		return ImportResult{}, err
	}
	memberIDs := make([]string, 0, len(members))
	for _, member := range members {
		memberIDs = append(memberIDs, member.UserID)
	}

	result := ImportResult{FailedIDs: []string{}}
	seen := make(map[string]struct{}, len(txns))
	for _, txn := range txns {
		// First occurrence wins within the batch.
		if _, dup := seen[txn.ID]; dup {
			continue
		}
		seen[txn.ID] = struct{}{}

		imported, err := s.importOne(ctx, actorID, circleID, memberIDs, txn)
		if err != nil {
			log.Printf("import: transaction %s failed: %v", txn.ID, err)
			result.FailedIDs = append(result.FailedIDs, txn.ID)
			continue
		}
		result.Imported = append(result.Imported, imported)
	}
	return result, nil
}

func (s *ImportService) importOne(ctx context.Context, actorID, circleID string, memberIDs []string, txn ExternalTransaction) (ExpenseWithObligations, error) {
	// Shares are derived from the unsigned amount; the expense row keeps the
	// provider's sign.
	shares, err := split.Compute(txn.Amount.Abs(), models.SplitEqual, memberIDs, nil)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	if err := split.Validate(txn.Amount.Abs(), models.SplitEqual, shares); err != nil {
		return ExpenseWithObligations{}, err
	}

	var category *string
	if len(txn.Category) > 0 {
		joined := strings.Join(txn.Category, ", ")
		category = &joined
	}
	description := "Imported from " + txn.Institution

	expenseID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.expenses.Create(ctx, tx, store.ExpenseInput{
			ID:          expenseID,
			CircleID:    circleID,
			CreatedBy:   actorID,
			Name:        txn.Name,
			Amount:      txn.Amount,
			Date:        txn.Date.Time,
			Category:    category,
			Description: &description,
			SplitType:   models.SplitEqual,
		}); err != nil {
			return err
		}
		if err := s.obligations.InsertMany(ctx, tx, obligationInputs(expenseID, shares)); err != nil {
			return err
		}
		return s.circles.Touch(ctx, tx, circleID)
	})
	if err != nil {
		return ExpenseWithObligations{}, err
	}

	expense, err := s.expenses.GetByID(ctx, circleID, expenseID)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	obligations, err := s.obligations.ListByExpense(ctx, nil, expenseID)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	return ExpenseWithObligations{Expense: expense, Obligations: obligations}, nil
}
