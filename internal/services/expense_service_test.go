package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/store"
)

func TestCreateExpenseEqualSplit(t *testing.T) {
	var inserted []store.ObligationInput
	members := stubMemberStore{
		listByCircleFn: func(context.Context, string) ([]store.MemberWithUser, error) {
			return memberList("u1", "u2", "u3"), nil
		},
	}
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, members, stubExpenseStore{}, stubObligationStore{
		insertManyFn: func(_ context.Context, _ store.Execer, inputs []store.ObligationInput) error {
			inserted = inputs
			return nil
		},
	}, nil)
	_, err := service.Create(context.Background(), "u1", "circle-1", CreateExpenseInput{
		Name:      "Dinner",
		Amount:    decimal.RequireFromString("100.00"),
		Date:      time.Now(),
		SplitType: models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(inserted) != 3 {
		t.Fatalf("expected 3 obligations, got %d", len(inserted))
	}
	total := decimal.Zero
	for _, in := range inserted {
		total = total.Add(in.Amount)
	}
	if !total.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("obligations sum to %s, want 100.00", total)
	}
	// Remainder cent goes to the earliest member by join order.
	if !inserted[0].Amount.Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("first obligation %s, want 33.34", inserted[0].Amount)
	}
}

func TestCreateExpenseNonMember(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{
		authorizeFn: func(context.Context, string, string, models.Role) (models.CircleMember, error) {
			return models.CircleMember{}, ErrNotFound
		},
	}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{
		createFn: func(context.Context, store.Execer, store.ExpenseInput) error {
			t.Fatalf("unexpected expense insert")
			return nil
		},
	}, stubObligationStore{}, nil)
	_, err := service.Create(context.Background(), "outsider", "circle-1", CreateExpenseInput{
		Amount:    decimal.RequireFromString("10.00"),
		SplitType: models.SplitEqual,
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateExpenseForbiddenForOtherMember(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{
		authorizeFn: func(_ context.Context, userID, circleID string, _ models.Role) (models.CircleMember, error) {
			return models.CircleMember{UserID: userID, CircleID: circleID, Role: models.RoleMember}, nil
		},
	}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{
		getByIDFn: func(_ context.Context, circleID, expenseID string) (models.Expense, error) {
			return models.Expense{ID: expenseID, CircleID: circleID, CreatedBy: "creator"}, nil
		},
	}, stubObligationStore{}, nil)
	_, err := service.Update(context.Background(), "bystander", "circle-1", "exp-1", UpdateExpenseInput{
		Name: stringPtr("renamed"),
	})
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateExpenseAmountRegeneratesObligations(t *testing.T) {
	deleted := false
	var inserted []store.ObligationInput
	var settledTo *bool
	members := stubMemberStore{
		listByCircleFn: func(context.Context, string) ([]store.MemberWithUser, error) {
			return memberList("u1", "u2"), nil
		},
	}
	newAmount := decimal.RequireFromString("80.00")
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, members, stubExpenseStore{
		getByIDFn: func(_ context.Context, circleID, expenseID string) (models.Expense, error) {
			return models.Expense{
				ID: expenseID, CircleID: circleID, CreatedBy: "u1",
				Amount: decimal.RequireFromString("50.00"), SplitType: models.SplitEqual,
				IsSettled: true,
			}, nil
		},
		setSettledFn: func(_ context.Context, _ store.Execer, _ string, settled bool) error {
			settledTo = &settled
			return nil
		},
	}, stubObligationStore{
		deleteByExpenseFn: func(context.Context, store.Execer, string) error {
			deleted = true
			return nil
		},
		insertManyFn: func(_ context.Context, _ store.Execer, inputs []store.ObligationInput) error {
			inserted = inputs
			return nil
		},
	}, nil)
	_, err := service.Update(context.Background(), "u1", "circle-1", "exp-1", UpdateExpenseInput{
		Amount: decimalPtr(newAmount),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !deleted {
		t.Fatalf("expected old obligations deleted")
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 regenerated obligations, got %d", len(inserted))
	}
	for _, in := range inserted {
		if !in.Amount.Equal(decimal.RequireFromString("40.00")) {
			t.Fatalf("obligation %s, want 40.00", in.Amount)
		}
	}
	if settledTo == nil || *settledTo {
		t.Fatalf("expected expense reset to unsettled")
	}
}

func TestUpdateExpenseNameOnlyKeepsObligations(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{
		getByIDFn: func(_ context.Context, circleID, expenseID string) (models.Expense, error) {
			return models.Expense{ID: expenseID, CircleID: circleID, CreatedBy: "u1"}, nil
		},
	}, stubObligationStore{
		deleteByExpenseFn: func(context.Context, store.Execer, string) error {
			t.Fatalf("unexpected obligation delete")
			return nil
		},
	}, nil)
	if _, err := service.Update(context.Background(), "u1", "circle-1", "exp-1", UpdateExpenseInput{
		Name: stringPtr("renamed"),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
}

func TestDeleteExpenseByAdminWhoIsNotCreator(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{
		authorizeFn: func(_ context.Context, userID, circleID string, _ models.Role) (models.CircleMember, error) {
			return models.CircleMember{UserID: userID, CircleID: circleID, Role: models.RoleAdmin}, nil
		},
	}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{
		getByIDFn: func(_ context.Context, circleID, expenseID string) (models.Expense, error) {
			return models.Expense{ID: expenseID, CircleID: circleID, CreatedBy: "someone-else"}, nil
		},
	}, stubObligationStore{}, nil)
	if err := service.Delete(context.Background(), "admin", "circle-1", "exp-1"); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestSetObligationPaidForbiddenForOtherMember(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{}, stubObligationStore{
		getByIDFn: func(_ context.Context, expenseID, obligationID string) (models.Obligation, error) {
			return models.Obligation{ID: obligationID, ExpenseID: expenseID, UserID: "debtor"}, nil
		},
	}, nil)
	_, err := service.SetObligationPaid(context.Background(), "bystander", "circle-1", "exp-1", "ob-1", true)
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSetObligationPaidIdempotent(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{}, stubObligationStore{
		getByIDFn: func(_ context.Context, expenseID, obligationID string) (models.Obligation, error) {
			return models.Obligation{ID: obligationID, ExpenseID: expenseID, UserID: "debtor", IsPaid: true}, nil
		},
		setPaidFn: func(context.Context, store.Execer, string, bool, *time.Time) error {
			t.Fatalf("unexpected SetPaid for repeated transition")
			return nil
		},
	}, nil)
	obligation, err := service.SetObligationPaid(context.Background(), "debtor", "circle-1", "exp-1", "ob-1", true)
	if err != nil {
		t.Fatalf("repeat mark-paid failed: %v", err)
	}
	if !obligation.IsPaid {
		t.Fatalf("expected obligation to stay paid")
	}
}

func TestSetObligationPaidSettlesExpense(t *testing.T) {
	var settled *bool
	hub := &stubHub{}
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, stubMemberStore{
		listByCircleFn: func(context.Context, string) ([]store.MemberWithUser, error) {
			return memberList("debtor", "other"), nil
		},
	}, stubExpenseStore{
		setSettledFn: func(_ context.Context, _ store.Execer, _ string, value bool) error {
			settled = &value
			return nil
		},
	}, stubObligationStore{
		getByIDFn: func(_ context.Context, expenseID, obligationID string) (models.Obligation, error) {
			return models.Obligation{ID: obligationID, ExpenseID: expenseID, UserID: "debtor", Amount: decimal.RequireFromString("12.50")}, nil
		},
		listByExpenseFn: func(_ context.Context, _ store.Selecter, expenseID string) ([]models.Obligation, error) {
			return []models.Obligation{
				{ID: "ob-1", ExpenseID: expenseID, UserID: "debtor"},
				{ID: "ob-2", ExpenseID: expenseID, UserID: "other", IsPaid: true},
			}, nil
		},
	}, hub)
	obligation, err := service.SetObligationPaid(context.Background(), "debtor", "circle-1", "exp-1", "ob-1", true)
	if err != nil {
		t.Fatalf("mark-paid failed: %v", err)
	}
	if !obligation.IsPaid || obligation.PaidAt == nil {
		t.Fatalf("expected paid obligation with paid_at set")
	}
	if settled == nil || !*settled {
		t.Fatalf("expected expense marked settled with last obligation paid")
	}
	if len(hub.calls) != 2 {
		t.Fatalf("expected broadcast to both members, got %d", len(hub.calls))
	}
	if !hub.calls[0].ExpenseSettled {
		t.Fatalf("expected settled flag in broadcast")
	}
}

func TestUnmarkObligationClearsSettled(t *testing.T) {
	var settled *bool
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{
		setSettledFn: func(_ context.Context, _ store.Execer, _ string, value bool) error {
			settled = &value
			return nil
		},
	}, stubObligationStore{
		getByIDFn: func(_ context.Context, expenseID, obligationID string) (models.Obligation, error) {
			now := time.Now()
			return models.Obligation{ID: obligationID, ExpenseID: expenseID, UserID: "debtor", IsPaid: true, PaidAt: &now}, nil
		},
		listByExpenseFn: func(_ context.Context, _ store.Selecter, expenseID string) ([]models.Obligation, error) {
			return []models.Obligation{
				{ID: "ob-1", ExpenseID: expenseID, UserID: "debtor", IsPaid: true},
				{ID: "ob-2", ExpenseID: expenseID, UserID: "other", IsPaid: true},
			}, nil
		},
	}, nil)
	obligation, err := service.SetObligationPaid(context.Background(), "debtor", "circle-1", "exp-1", "ob-1", false)
	if err != nil {
		t.Fatalf("unmark failed: %v", err)
	}
	if obligation.IsPaid || obligation.PaidAt != nil {
		t.Fatalf("expected unpaid obligation with paid_at cleared")
	}
	if settled == nil || *settled {
		t.Fatalf("expected expense reverted to unsettled")
	}
}

func TestSetObligationPaidMissingExpense(t *testing.T) {
	service := NewExpenseService(fakeTxRunner{}, stubAuthorizer{}, stubCircleStore{}, stubMemberStore{}, stubExpenseStore{
		getByIDFn: func(context.Context, string, string) (models.Expense, error) {
			return models.Expense{}, sql.ErrNoRows
		},
	}, stubObligationStore{}, nil)
	if _, err := service.SetObligationPaid(context.Background(), "debtor", "circle-1", "exp-x", "ob-1", true); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
