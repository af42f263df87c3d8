package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"splitcircle/internal/db"
	"splitcircle/internal/store"
)

type erasureUserStore interface {
	UpdatePhone(ctx context.Context, tx store.Execer, userID string, phone *string) error
	Delete(ctx context.Context, tx store.Execer, userID string) error
}

type erasureMemberStore interface {
	DeleteByUser(ctx context.Context, tx store.Execer, userID string) error
	DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error
}

type erasureExpenseStore interface {
	DeleteByCreator(ctx context.Context, tx store.Execer, userID string) error
	DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error
}

type erasureObligationStore interface {
	DeleteByUser(ctx context.Context, tx store.Execer, userID string) error
	DeleteByExpenseCreator(ctx context.Context, tx store.Execer, userID string) error
	DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error
}

type erasureCircleStore interface {
	ListSoleMemberCircleIDs(ctx context.Context, tx store.Selecter, userID string) ([]string, error)
	Delete(ctx context.Context, tx store.Execer, circleID string) error
}

type erasureFriendStore interface {
	DeleteByUser(ctx context.Context, tx store.Execer, userID string) error
}

type erasureBankAccountStore interface {
	DeleteByUser(ctx context.Context, tx store.Execer, userID string) error
}

// UserService covers the account-scoped mutations: profile updates and full
// account erasure.
type UserService struct {
	txRunner     db.TxRunner
	users        erasureUserStore
	members      erasureMemberStore
	expenses     erasureExpenseStore
	obligations  erasureObligationStore
	circles      erasureCircleStore
	friends      erasureFriendStore
	bankAccounts erasureBankAccountStore
}

func NewUserService(txRunner db.TxRunner, users erasureUserStore, members erasureMemberStore, expenses erasureExpenseStore, obligations erasureObligationStore, circles erasureCircleStore, friends erasureFriendStore, bankAccounts erasureBankAccountStore) *UserService {
	return &UserService{
		txRunner:     txRunner,
		users:        users,
		members:      members,
		expenses:     expenses,
		obligations:  obligations,
		circles:      circles,
		friends:      friends,
		bankAccounts: bankAccounts,
	}
}

func (s *UserService) UpdatePhone(ctx context.Context, userID string, phone *string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.users.UpdatePhone(ctx, tx, userID, phone)
	})
}

// DeleteAccount erases everything referencing the user in one transaction,
// child rows first: obligations, expenses the user created (with their
// obligations), memberships, circles left without any member, the social
// graph, bank linkages, and finally the user row.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		orphanedCircles, err := s.circles.ListSoleMemberCircleIDs(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := s.obligations.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.obligations.DeleteByExpenseCreator(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.expenses.DeleteByCreator(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.members.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		for _, circleID := range orphanedCircles {
			if err := s.obligations.DeleteByCircle(ctx, tx, circleID); err != nil {
				return err
			}
			if err := s.expenses.DeleteByCircle(ctx, tx, circleID); err != nil {
				return err
			}
			if err := s.members.DeleteByCircle(ctx, tx, circleID); err != nil {
				return err
			}
			if err := s.circles.Delete(ctx, tx, circleID); err != nil {
				return err
			}
		}
		if err := s.friends.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.bankAccounts.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.users.Delete(ctx, tx, userID)
	})
}
