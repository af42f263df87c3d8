package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"splitcircle/internal/db"
	"splitcircle/internal/models"
	"splitcircle/internal/store"
)

// CircleService owns circle lifecycle and membership, including the guard
// every other flow authorizes through.
type CircleService struct {
	txRunner    db.TxRunner
	circles     CircleStore
	members     MemberStore
	expenses    ExpenseStore
	obligations ObligationStore
	users       UserStore
	friends     FriendStore
}

func NewCircleService(txRunner db.TxRunner, circles CircleStore, members MemberStore, expenses ExpenseStore, obligations ObligationStore, users UserStore, friends FriendStore) *CircleService {
	return &CircleService{
		txRunner:    txRunner,
		circles:     circles,
		members:     members,
		expenses:    expenses,
		obligations: obligations,
		users:       users,
		friends:     friends,
	}
}

// Authorize checks the caller's membership in a circle. Non-members get
// ErrNotFound rather than ErrForbidden so circle existence is never leaked;
// members lacking the required role get ErrForbidden.
func (s *CircleService) Authorize(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error) {
	member, err := s.members.Get(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CircleMember{}, ErrNotFound
		}
		return models.CircleMember{}, err
	}
	if required == models.RoleAdmin && member.Role != models.RoleAdmin {
		return models.CircleMember{}, ErrForbidden
	}
	return member, nil
}

type CreateCircleInput struct {
	Name        string
	Description *string
	Color       *string
}

// Create inserts the circle with its creator as the sole ADMIN member, in one
// transaction.
func (s *CircleService) Create(ctx context.Context, creatorID string, input CreateCircleInput) (models.Circle, error) {
	circleID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.circles.Create(ctx, tx, store.CircleInput{
			ID:          circleID,
			Name:        input.Name,
			Description: input.Description,
			Color:       input.Color,
		}); err != nil {
			return err
		}
		return s.members.Add(ctx, tx, uuid.NewString(), circleID, creatorID, models.RoleAdmin)
	})
	if err != nil {
		return models.Circle{}, err
	}
	return s.circles.GetByID(ctx, circleID)
}

func (s *CircleService) Update(ctx context.Context, actorID, circleID string, update store.CircleUpdate) (models.Circle, error) {
	if _, err := s.Authorize(ctx, actorID, circleID, models.RoleAdmin); err != nil {
		return models.Circle{}, err
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.circles.Update(ctx, tx, circleID, update)
	})
	if err != nil {
		return models.Circle{}, err
	}
	return s.circles.GetByID(ctx, circleID)
}

// Delete removes a circle and everything it owns. The cascade order —
// obligations, expenses, members, circle — runs inside one transaction so no
// orphaned rows are ever visible.
func (s *CircleService) Delete(ctx context.Context, actorID, circleID string) error {
	if _, err := s.Authorize(ctx, actorID, circleID, models.RoleAdmin); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.obligations.DeleteByCircle(ctx, tx, circleID); err != nil {
			return err
		}
		if err := s.expenses.DeleteByCircle(ctx, tx, circleID); err != nil {
			return err
		}
		if err := s.members.DeleteByCircle(ctx, tx, circleID); err != nil {
			return err
		}
		return s.circles.Delete(ctx, tx, circleID)
	})
}

// RemoveMember removes a member by membership id. Removing an ADMIN is
// rejected with ErrLastAdmin unless another admin remains.
func (s *CircleService) RemoveMember(ctx context.Context, actorID, circleID, memberID string) error {
	if _, err := s.Authorize(ctx, actorID, circleID, models.RoleAdmin); err != nil {
		return err
	}
	target, err := s.members.GetByID(ctx, circleID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if target.Role == models.RoleAdmin {
			admins, err := s.members.CountAdmins(ctx, tx, circleID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		return s.members.Remove(ctx, tx, target.ID)
	})
}

// Leave is self-removal, under the same last-admin invariant.
func (s *CircleService) Leave(ctx context.Context, actorID, circleID string) error {
	member, err := s.Authorize(ctx, actorID, circleID, models.RoleMember)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if member.Role == models.RoleAdmin {
			admins, err := s.members.CountAdmins(ctx, tx, circleID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		return s.members.Remove(ctx, tx, member.ID)
	})
}

// PromoteMember raises an existing member to ADMIN.
func (s *CircleService) PromoteMember(ctx context.Context, actorID, circleID, memberID string) error {
	if _, err := s.Authorize(ctx, actorID, circleID, models.RoleAdmin); err != nil {
		return err
	}
	target, err := s.members.GetByID(ctx, circleID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if target.Role == models.RoleAdmin {
		return nil
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.members.SetRole(ctx, tx, target.ID, models.RoleAdmin)
	})
}

// Invite adds an existing user to the circle by email. Only friends of the
// inviter may be invited.
func (s *CircleService) Invite(ctx context.Context, actorID, circleID, email string) (models.CircleMember, error) {
	if _, err := s.Authorize(ctx, actorID, circleID, models.RoleAdmin); err != nil {
		return models.CircleMember{}, err
	}
	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CircleMember{}, ErrNotFound
		}
		return models.CircleMember{}, err
	}
	if target.ID != actorID {
		friends, err := s.friends.AreFriends(ctx, actorID, target.ID)
		if err != nil {
			return models.CircleMember{}, err
		}
		if !friends {
			return models.CircleMember{}, ErrNotFriends
		}
	}
	memberID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.members.Add(ctx, tx, memberID, circleID, target.ID, models.RoleMember)
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.CircleMember{}, ErrAlreadyMember
		}
		return models.CircleMember{}, err
	}
	return s.members.GetByID(ctx, circleID, memberID)
}
