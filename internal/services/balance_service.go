package services

import (
	"context"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/store"
)

// BalanceService folds obligations into net exposure figures. Reads only, no
// locking: a balance read racing a settlement update may be momentarily
// stale, which is acceptable.
type BalanceService struct {
	guard       Authorizer
	obligations BalanceStore
}

func NewBalanceService(guard Authorizer, obligations BalanceStore) *BalanceService {
	return &BalanceService{guard: guard, obligations: obligations}
}

// NetBalance is the signed sum of the user's obligations across all circles,
// positive meaning the user is net obligated. Amount signs are normalized in
// the fold (imported expenses carry the bank's sign; manual ones are always
// positive), so both kinds aggregate consistently.
func (s *BalanceService) NetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.obligations.SumByUser(ctx, userID)
}

// OutstandingBalance restricts the fold to unpaid obligations.
func (s *BalanceService) OutstandingBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.obligations.SumUnpaidByUser(ctx, userID)
}

// CircleBalances reports each member's obligation totals within one circle.
func (s *BalanceService) CircleBalances(ctx context.Context, actorID, circleID string) ([]store.MemberBalanceRow, error) {
	if _, err := s.guard.Authorize(ctx, actorID, circleID, models.RoleMember); err != nil {
		return nil, err
	}
	return s.obligations.SumByCircle(ctx, circleID)
}
