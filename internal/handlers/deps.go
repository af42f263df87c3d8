package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/services"
	"splitcircle/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash string) error
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (string, string, error)
}

type CircleStore interface {
	GetByID(ctx context.Context, circleID string) (models.Circle, error)
	ListByUser(ctx context.Context, userID string) ([]store.CircleSummary, error)
}

type MemberStore interface {
	ListByCircle(ctx context.Context, circleID string) ([]store.MemberWithUser, error)
}

type ExpenseStore interface {
	ListByCircle(ctx context.Context, circleID string, limit, offset int) ([]models.Expense, error)
	CountByCircle(ctx context.Context, circleID string) (int, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.Expense, error)
}

type BankAccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.BankAccountInput) error
	GetByID(ctx context.Context, accountID string) (models.BankAccount, error)
	ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error)
	Delete(ctx context.Context, tx store.Execer, accountID string) error
}

type FriendStore interface {
	ListFriends(ctx context.Context, userID string) ([]store.FriendWithUser, error)
	ListPendingSent(ctx context.Context, userID string) ([]store.RequestWithUser, error)
	ListPendingReceived(ctx context.Context, userID string) ([]store.RequestWithUser, error)
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	HasPendingRequest(ctx context.Context, senderID, receiverID string) (bool, error)
	CreateRequest(ctx context.Context, tx store.Execer, id, senderID, receiverID string) error
	GetRequestByID(ctx context.Context, requestID string) (models.FriendRequest, error)
	SetRequestStatus(ctx context.Context, tx store.Execer, requestID string, status models.FriendRequestStatus) error
	CreateFriendship(ctx context.Context, tx store.Execer, firstID, secondID, userA, userB string) error
	DeleteFriendship(ctx context.Context, tx store.Execer, userID, friendID string) error
}

type CircleService interface {
	Authorize(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error)
	Create(ctx context.Context, creatorID string, input services.CreateCircleInput) (models.Circle, error)
	Update(ctx context.Context, actorID, circleID string, update store.CircleUpdate) (models.Circle, error)
	Delete(ctx context.Context, actorID, circleID string) error
	RemoveMember(ctx context.Context, actorID, circleID, memberID string) error
	Leave(ctx context.Context, actorID, circleID string) error
	PromoteMember(ctx context.Context, actorID, circleID, memberID string) error
	Invite(ctx context.Context, actorID, circleID, email string) (models.CircleMember, error)
}

type ExpenseService interface {
	Create(ctx context.Context, actorID, circleID string, input services.CreateExpenseInput) (services.ExpenseWithObligations, error)
	Get(ctx context.Context, actorID, circleID, expenseID string) (services.ExpenseWithObligations, error)
	Update(ctx context.Context, actorID, circleID, expenseID string, input services.UpdateExpenseInput) (services.ExpenseWithObligations, error)
	Delete(ctx context.Context, actorID, circleID, expenseID string) error
	SetObligationPaid(ctx context.Context, actorID, circleID, expenseID, obligationID string, isPaid bool) (models.Obligation, error)
}

type ImportService interface {
	Import(ctx context.Context, actorID, circleID string, txns []services.ExternalTransaction) (services.ImportResult, error)
}

type BalanceService interface {
	NetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	OutstandingBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	CircleBalances(ctx context.Context, actorID, circleID string) ([]store.MemberBalanceRow, error)
}

type UserService interface {
	UpdatePhone(ctx context.Context, userID string, phone *string) error
	DeleteAccount(ctx context.Context, userID string) error
}
