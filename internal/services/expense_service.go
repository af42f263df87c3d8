package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/money"
	"splitcircle/internal/split"
	"splitcircle/internal/store"

	"splitcircle/internal/db"
	"splitcircle/internal/websocket"
)

// ExpenseService turns expense intents into persisted expenses with
// obligations, and tracks obligation payment state. Every multi-row write
// happens inside one transaction: an expense is never visible without its
// obligations, and the settled flag always matches the obligations under it.
type ExpenseService struct {
	txRunner    db.TxRunner
	guard       Authorizer
	circles     CircleStore
	members     MemberStore
	expenses    ExpenseStore
	obligations ObligationStore
	hub         SettlementHub
}

func NewExpenseService(txRunner db.TxRunner, guard Authorizer, circles CircleStore, members MemberStore, expenses ExpenseStore, obligations ObligationStore, hub SettlementHub) *ExpenseService {
	return &ExpenseService{
		txRunner:    txRunner,
		guard:       guard,
		circles:     circles,
		members:     members,
		expenses:    expenses,
		obligations: obligations,
		hub:         hub,
	}
}

type CreateExpenseInput struct {
	Name        string
	Amount      decimal.Decimal
	Date        time.Time
	Category    *string
	Description *string
	SplitType   models.SplitType
	Splits      []split.ShareInput
}

type UpdateExpenseInput struct {
	Name        *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Category    *string
	Description *string
	SplitType   *models.SplitType
	Splits      []split.ShareInput
}

type ExpenseWithObligations struct {
	models.Expense
	Obligations []models.Obligation `json:"obligations"`
}

// Create authorizes the caller, derives shares, validates the ledger
// invariant, and persists expense plus obligations atomically. Nothing is
// written if derivation or validation fails.
func (s *ExpenseService) Create(ctx context.Context, actorID, circleID string, input CreateExpenseInput) (ExpenseWithObligations, error) {
	if _, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember); err != nil {
		return ExpenseWithObligations{}, err
	}
	memberIDs, err := s.memberIDs(ctx, circleID)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	shares, err := split.Compute(input.Amount, input.SplitType, memberIDs, input.Splits)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	if err := split.Validate(input.Amount, input.SplitType, shares); err != nil {
		return ExpenseWithObligations{}, err
	}

	expenseID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.expenses.Create(ctx, tx, store.ExpenseInput{
			ID:          expenseID,
			CircleID:    circleID,
			CreatedBy:   actorID,
			Name:        input.Name,
			Amount:      input.Amount,
			Date:        input.Date,
			Category:    input.Category,
			Description: input.Description,
			SplitType:   input.SplitType,
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
	return s.Get(ctx, actorID, circleID, expenseID)
}

func (s *ExpenseService) Get(ctx context.Context, actorID, circleID, expenseID string) (ExpenseWithObligations, error) {
	if _, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember); err != nil {
		return ExpenseWithObligations{}, err
	}
	expense, err := s.expenses.GetByID(ctx, circleID, expenseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExpenseWithObligations{}, ErrNotFound
		}
		return ExpenseWithObligations{}, err
	}
	obligations, err := s.obligations.ListByExpense(ctx, nil, expenseID)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	return ExpenseWithObligations{Expense: expense, Obligations: obligations}, nil
}

// Update patches expense fields. When splits, split type or amount change,
// the old obligations are discarded and regenerated in the same transaction;
// regenerated obligations start unpaid, so the expense reverts to unsettled.
func (s *ExpenseService) Update(ctx context.Context, actorID, circleID, expenseID string, input UpdateExpenseInput) (ExpenseWithObligations, error) {
	member, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember)
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	expense, err := s.expenses.GetByID(ctx, circleID, expenseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExpenseWithObligations{}, ErrNotFound
		}
		return ExpenseWithObligations{}, err
	}
	if expense.CreatedBy != actorID && member.Role != models.RoleAdmin {
		return ExpenseWithObligations{}, ErrForbidden
	}

	amount := expense.Amount
	if input.Amount != nil {
		amount = *input.Amount
	}
	splitType := expense.SplitType
	if input.SplitType != nil {
		splitType = *input.SplitType
	}
	regenerate := input.Splits != nil || input.Amount != nil || input.SplitType != nil

	var shares []split.Share
	if regenerate {
		memberIDs, err := s.memberIDs(ctx, circleID)
		if err != nil {
			return ExpenseWithObligations{}, err
		}
		shares, err = split.Compute(amount, splitType, memberIDs, input.Splits)
		if err != nil {
			return ExpenseWithObligations{}, err
		}
		if err := split.Validate(amount, splitType, shares); err != nil {
			return ExpenseWithObligations{}, err
		}
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.expenses.Update(ctx, tx, expenseID, store.ExpenseUpdate{
			Name:        input.Name,
			Amount:      input.Amount,
			Date:        input.Date,
			Category:    input.Category,
			Description: input.Description,
			SplitType:   input.SplitType,
		}); err != nil {
			return err
		}
		if !regenerate {
			return nil
		}
		if err := s.obligations.DeleteByExpense(ctx, tx, expenseID); err != nil {
			return err
		}
		if err := s.obligations.InsertMany(ctx, tx, obligationInputs(expenseID, shares)); err != nil {
			return err
		}
		return s.expenses.SetSettled(ctx, tx, expenseID, false)
	})
	if err != nil {
		return ExpenseWithObligations{}, err
	}
	return s.Get(ctx, actorID, circleID, expenseID)
}

// Delete removes the expense and its obligations atomically. Only the
// expense's creator or a circle admin may delete.
func (s *ExpenseService) Delete(ctx context.Context, actorID, circleID, expenseID string) error {
	member, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember)
	if err != nil {
		return err
	}
	expense, err := s.expenses.GetByID(ctx, circleID, expenseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if expense.CreatedBy != actorID && member.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.obligations.DeleteByExpense(ctx, tx, expenseID); err != nil {
			return err
		}
		return s.expenses.Delete(ctx, tx, expenseID)
	})
}

// SetObligationPaid flips one obligation between unpaid and paid, settable by
// the obligated user or a circle admin. The expense's settled flag is
// recomputed as the AND over all its obligations and written in the same
// transaction, so a reader never sees the two disagree. Repeating a
// transition is a no-op: marking an already-paid obligation paid keeps its
// original paid_at.
func (s *ExpenseService) SetObligationPaid(ctx context.Context, actorID, circleID, expenseID, obligationID string, isPaid bool) (models.Obligation, error) {
	member, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember)
	if err != nil {
		return models.Obligation{}, err
	}
	if _, err := s.expenses.GetByID(ctx, circleID, expenseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Obligation{}, ErrNotFound
		}
		return models.Obligation{}, err
	}
	obligation, err := s.obligations.GetByID(ctx, expenseID, obligationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Obligation{}, ErrNotFound
		}
		return models.Obligation{}, err
	}
	if obligation.UserID != actorID && member.Role != models.RoleAdmin {
		return models.Obligation{}, ErrForbidden
	}
	if obligation.IsPaid == isPaid {
		return obligation, nil
	}

	var paidAt *time.Time
	if isPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	settled := false
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.obligations.SetPaid(ctx, tx, obligationID, isPaid, paidAt); err != nil {
			return err
		}
		siblings, err := s.obligations.ListByExpense(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		settled = true
		for _, sibling := range siblings {
			paid := sibling.IsPaid
			if sibling.ID == obligationID {
				paid = isPaid
			}
			if !paid {
				settled = false
				break
			}
		}
		return s.expenses.SetSettled(ctx, tx, expenseID, settled)
	})
	if err != nil {
		return models.Obligation{}, err
	}

	obligation.IsPaid = isPaid
	obligation.PaidAt = paidAt
	s.broadcastSettlement(ctx, circleID, expenseID, obligation, settled)
	return obligation, nil
}

// broadcastSettlement pushes the state change to every connected member of
// the circle. Best effort, after commit.
func (s *ExpenseService) broadcastSettlement(ctx context.Context, circleID, expenseID string, obligation models.Obligation, settled bool) {
	if s.hub == nil {
		return
	}
	members, err := s.members.ListByCircle(ctx, circleID)
	if err != nil {
		return
	}
	update := websocket.SettlementUpdate{
		CircleID:       circleID,
		ExpenseID:      expenseID,
		ObligationID:   obligation.ID,
		UserID:         obligation.UserID,
		Amount:         money.Format(obligation.Amount),
		IsPaid:         obligation.IsPaid,
		ExpenseSettled: settled,
	}
	for _, member := range members {
		s.hub.BroadcastSettlement(member.UserID, update)
	}
}

func (s *ExpenseService) memberIDs(ctx context.Context, circleID string) ([]string, error) {
	members, err := s.members.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	return ids, nil
}

func obligationInputs(expenseID string, shares []split.Share) []store.ObligationInput {
	inputs := make([]store.ObligationInput, 0, len(shares))
	for _, share := range shares {
		inputs = append(inputs, store.ObligationInput{
			ID:         uuid.NewString(),
			ExpenseID:  expenseID,
			UserID:     share.UserID,
			Amount:     share.Amount,
			Percentage: share.Percentage,
		})
	}
	return inputs
}
