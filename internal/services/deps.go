package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/store"
	"splitcircle/internal/websocket"
)

type CircleStore interface {
	Create(ctx context.Context, tx store.Execer, input store.CircleInput) error
	GetByID(ctx context.Context, circleID string) (models.Circle, error)
	Update(ctx context.Context, tx store.Execer, circleID string, update store.CircleUpdate) error
	Touch(ctx context.Context, tx store.Execer, circleID string) error
	Delete(ctx context.Context, tx store.Execer, circleID string) error
}

type MemberStore interface {
	Add(ctx context.Context, tx store.Execer, id, circleID, userID string, role models.Role) error
	Get(ctx context.Context, circleID, userID string) (models.CircleMember, error)
	GetByID(ctx context.Context, circleID, memberID string) (models.CircleMember, error)
	ListByCircle(ctx context.Context, circleID string) ([]store.MemberWithUser, error)
	CountAdmins(ctx context.Context, q store.Getter, circleID string) (int, error)
	SetRole(ctx context.Context, tx store.Execer, memberID string, role models.Role) error
	Remove(ctx context.Context, tx store.Execer, memberID string) error
	DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error
}

type ExpenseStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ExpenseInput) error
	GetByID(ctx context.Context, circleID, expenseID string) (models.Expense, error)
	Update(ctx context.Context, tx store.Execer, expenseID string, update store.ExpenseUpdate) error
	SetSettled(ctx context.Context, tx store.Execer, expenseID string, settled bool) error
	Delete(ctx context.Context, tx store.Execer, expenseID string) error
	DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error
}

type ObligationStore interface {
	InsertMany(ctx context.Context, tx store.Execer, inputs []store.ObligationInput) error
	GetByID(ctx context.Context, expenseID, obligationID string) (models.Obligation, error)
	ListByExpense(ctx context.Context, q store.Selecter, expenseID string) ([]models.Obligation, error)
	SetPaid(ctx context.Context, tx store.Execer, obligationID string, isPaid bool, paidAt *time.Time) error
	DeleteByExpense(ctx context.Context, tx store.Execer, expenseID string) error
	DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error
}

type BalanceStore interface {
	SumByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	SumUnpaidByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	SumByCircle(ctx context.Context, circleID string) ([]store.MemberBalanceRow, error)
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type FriendStore interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

// Authorizer is the membership guard expense and import flows depend on.
type Authorizer interface {
	Authorize(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error)
}

type SettlementHub interface {
	BroadcastSettlement(userID string, update websocket.SettlementUpdate)
}
