package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/store"
	"splitcircle/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubCircleStore struct {
	createFn              func(ctx context.Context, tx store.Execer, input store.CircleInput) error
	getByIDFn             func(ctx context.Context, circleID string) (models.Circle, error)
	updateFn              func(ctx context.Context, tx store.Execer, circleID string, update store.CircleUpdate) error
	touchFn               func(ctx context.Context, tx store.Execer, circleID string) error
	deleteFn              func(ctx context.Context, tx store.Execer, circleID string) error
	listSoleMemberByUsrFn func(ctx context.Context, tx store.Selecter, userID string) ([]string, error)
}

func (s stubCircleStore) Create(ctx context.Context, tx store.Execer, input store.CircleInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubCircleStore) GetByID(ctx context.Context, circleID string) (models.Circle, error) {
	if s.getByIDFn == nil {
		return models.Circle{ID: circleID}, nil
	}
	return s.getByIDFn(ctx, circleID)
}

func (s stubCircleStore) Update(ctx context.Context, tx store.Execer, circleID string, update store.CircleUpdate) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, circleID, update)
}

func (s stubCircleStore) Touch(ctx context.Context, tx store.Execer, circleID string) error {
	if s.touchFn == nil {
		return nil
	}
	return s.touchFn(ctx, tx, circleID)
}

func (s stubCircleStore) Delete(ctx context.Context, tx store.Execer, circleID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, circleID)
}

func (s stubCircleStore) ListSoleMemberCircleIDs(ctx context.Context, tx store.Selecter, userID string) ([]string, error) {
	if s.listSoleMemberByUsrFn == nil {
		return nil, nil
	}
	return s.listSoleMemberByUsrFn(ctx, tx, userID)
}

type stubMemberStore struct {
	addFn            func(ctx context.Context, tx store.Execer, id, circleID, userID string, role models.Role) error
	getFn            func(ctx context.Context, circleID, userID string) (models.CircleMember, error)
	getByIDFn        func(ctx context.Context, circleID, memberID string) (models.CircleMember, error)
	listByCircleFn   func(ctx context.Context, circleID string) ([]store.MemberWithUser, error)
	countAdminsFn    func(ctx context.Context, q store.Getter, circleID string) (int, error)
	setRoleFn        func(ctx context.Context, tx store.Execer, memberID string, role models.Role) error
	removeFn         func(ctx context.Context, tx store.Execer, memberID string) error
	deleteByCircleFn func(ctx context.Context, tx store.Execer, circleID string) error
	deleteByUserFn   func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubMemberStore) Add(ctx context.Context, tx store.Execer, id, circleID, userID string, role models.Role) error {
	if s.addFn == nil {
		return nil
	}
	return s.addFn(ctx, tx, id, circleID, userID, role)
}

func (s stubMemberStore) Get(ctx context.Context, circleID, userID string) (models.CircleMember, error) {
	if s.getFn == nil {
		return models.CircleMember{CircleID: circleID, UserID: userID, Role: models.RoleMember}, nil
	}
	return s.getFn(ctx, circleID, userID)
}

func (s stubMemberStore) GetByID(ctx context.Context, circleID, memberID string) (models.CircleMember, error) {
	if s.getByIDFn == nil {
		return models.CircleMember{ID: memberID, CircleID: circleID}, nil
	}
	return s.getByIDFn(ctx, circleID, memberID)
}

func (s stubMemberStore) ListByCircle(ctx context.Context, circleID string) ([]store.MemberWithUser, error) {
	if s.listByCircleFn == nil {
		return nil, nil
	}
	return s.listByCircleFn(ctx, circleID)
}

func (s stubMemberStore) CountAdmins(ctx context.Context, q store.Getter, circleID string) (int, error) {
	if s.countAdminsFn == nil {
		return 1, nil
	}
	return s.countAdminsFn(ctx, q, circleID)
}

func (s stubMemberStore) SetRole(ctx context.Context, tx store.Execer, memberID string, role models.Role) error {
	if s.setRoleFn == nil {
		return nil
	}
	return s.setRoleFn(ctx, tx, memberID, role)
}

func (s stubMemberStore) Remove(ctx context.Context, tx store.Execer, memberID string) error {
	if s.removeFn == nil {
		return nil
	}
	return s.removeFn(ctx, tx, memberID)
}

func (s stubMemberStore) DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error {
	if s.deleteByCircleFn == nil {
		return nil
	}
	return s.deleteByCircleFn(ctx, tx, circleID)
}

func (s stubMemberStore) DeleteByUser(ctx context.Context, tx store.Execer, userID string) error {
	if s.deleteByUserFn == nil {
		return nil
	}
	return s.deleteByUserFn(ctx, tx, userID)
}

type stubExpenseStore struct {
	createFn          func(ctx context.Context, tx store.Execer, input store.ExpenseInput) error
	getByIDFn         func(ctx context.Context, circleID, expenseID string) (models.Expense, error)
	updateFn          func(ctx context.Context, tx store.Execer, expenseID string, update store.ExpenseUpdate) error
	setSettledFn      func(ctx context.Context, tx store.Execer, expenseID string, settled bool) error
	deleteFn          func(ctx context.Context, tx store.Execer, expenseID string) error
	deleteByCircleFn  func(ctx context.Context, tx store.Execer, circleID string) error
	deleteByCreatorFn func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubExpenseStore) Create(ctx context.Context, tx store.Execer, input store.ExpenseInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubExpenseStore) GetByID(ctx context.Context, circleID, expenseID string) (models.Expense, error) {
	if s.getByIDFn == nil {
		return models.Expense{ID: expenseID, CircleID: circleID}, nil
	}
	return s.getByIDFn(ctx, circleID, expenseID)
}

func (s stubExpenseStore) Update(ctx context.Context, tx store.Execer, expenseID string, update store.ExpenseUpdate) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, expenseID, update)
}

func (s stubExpenseStore) SetSettled(ctx context.Context, tx store.Execer, expenseID string, settled bool) error {
	if s.setSettledFn == nil {
		return nil
	}
	return s.setSettledFn(ctx, tx, expenseID, settled)
}

func (s stubExpenseStore) Delete(ctx context.Context, tx store.Execer, expenseID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, expenseID)
}

func (s stubExpenseStore) DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error {
	if s.deleteByCircleFn == nil {
		return nil
	}
	return s.deleteByCircleFn(ctx, tx, circleID)
}

func (s stubExpenseStore) DeleteByCreator(ctx context.Context, tx store.Execer, userID string) error {
	if s.deleteByCreatorFn == nil {
		return nil
	}
	return s.deleteByCreatorFn(ctx, tx, userID)
}

type stubObligationStore struct {
	insertManyFn             func(ctx context.Context, tx store.Execer, inputs []store.ObligationInput) error
	getByIDFn                func(ctx context.Context, expenseID, obligationID string) (models.Obligation, error)
	listByExpenseFn          func(ctx context.Context, q store.Selecter, expenseID string) ([]models.Obligation, error)
	setPaidFn                func(ctx context.Context, tx store.Execer, obligationID string, isPaid bool, paidAt *time.Time) error
	deleteByExpenseFn        func(ctx context.Context, tx store.Execer, expenseID string) error
	deleteByCircleFn         func(ctx context.Context, tx store.Execer, circleID string) error
	deleteByUserFn           func(ctx context.Context, tx store.Execer, userID string) error
	deleteByExpenseCreatorFn func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubObligationStore) InsertMany(ctx context.Context, tx store.Execer, inputs []store.ObligationInput) error {
	if s.insertManyFn == nil {
		return nil
	}
	return s.insertManyFn(ctx, tx, inputs)
}

func (s stubObligationStore) GetByID(ctx context.Context, expenseID, obligationID string) (models.Obligation, error) {
	if s.getByIDFn == nil {
		return models.Obligation{ID: obligationID, ExpenseID: expenseID}, nil
	}
	return s.getByIDFn(ctx, expenseID, obligationID)
}

func (s stubObligationStore) ListByExpense(ctx context.Context, q store.Selecter, expenseID string) ([]models.Obligation, error) {
	if s.listByExpenseFn == nil {
		return nil, nil
	}
	return s.listByExpenseFn(ctx, q, expenseID)
}

func (s stubObligationStore) SetPaid(ctx context.Context, tx store.Execer, obligationID string, isPaid bool, paidAt *time.Time) error {
	if s.setPaidFn == nil {
		return nil
	}
	return s.setPaidFn(ctx, tx, obligationID, isPaid, paidAt)
}

func (s stubObligationStore) DeleteByExpense(ctx context.Context, tx store.Execer, expenseID string) error {
	if s.deleteByExpenseFn == nil {
		return nil
	}
	return s.deleteByExpenseFn(ctx, tx, expenseID)
}

func (s stubObligationStore) DeleteByCircle(ctx context.Context, tx store.Execer, circleID string) error {
	if s.deleteByCircleFn == nil {
		return nil
	}
	return s.deleteByCircleFn(ctx, tx, circleID)
}

func (s stubObligationStore) DeleteByUser(ctx context.Context, tx store.Execer, userID string) error {
	if s.deleteByUserFn == nil {
		return nil
	}
	return s.deleteByUserFn(ctx, tx, userID)
}

func (s stubObligationStore) DeleteByExpenseCreator(ctx context.Context, tx store.Execer, userID string) error {
	if s.deleteByExpenseCreatorFn == nil {
		return nil
	}
	return s.deleteByExpenseCreatorFn(ctx, tx, userID)
}

type stubBalanceStore struct {
	sumByUserFn       func(ctx context.Context, userID string) (decimal.Decimal, error)
	sumUnpaidByUserFn func(ctx context.Context, userID string) (decimal.Decimal, error)
	sumByCircleFn     func(ctx context.Context, circleID string) ([]store.MemberBalanceRow, error)
}

func (s stubBalanceStore) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.sumByUserFn == nil {
		return decimal.Zero, nil
	}
	return s.sumByUserFn(ctx, userID)
}

func (s stubBalanceStore) SumUnpaidByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.sumUnpaidByUserFn == nil {
		return decimal.Zero, nil
	}
	return s.sumUnpaidByUserFn(ctx, userID)
}

func (s stubBalanceStore) SumByCircle(ctx context.Context, circleID string) ([]store.MemberBalanceRow, error) {
	if s.sumByCircleFn == nil {
		return nil, nil
	}
	return s.sumByCircleFn(ctx, circleID)
}

type stubUserStore struct {
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{Email: email}, nil
	}
	return s.getByEmailFn(ctx, email)
}

type stubFriendStore struct {
	areFriendsFn func(ctx context.Context, userID, otherID string) (bool, error)
}

func (s stubFriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	if s.areFriendsFn == nil {
		return true, nil
	}
	return s.areFriendsFn(ctx, userID, otherID)
}

type stubAuthorizer struct {
	authorizeFn func(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error)
}

func (s stubAuthorizer) Authorize(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error) {
	if s.authorizeFn == nil {
		return models.CircleMember{CircleID: circleID, UserID: userID, Role: models.RoleMember}, nil
	}
	return s.authorizeFn(ctx, userID, circleID, required)
}

type stubHub struct {
	calls []websocket.SettlementUpdate
}

func (s *stubHub) BroadcastSettlement(_ string, update websocket.SettlementUpdate) {
	s.calls = append(s.calls, update)
}

func memberList(userIDs ...string) []store.MemberWithUser {
	members := make([]store.MemberWithUser, 0, len(userIDs))
	for i, id := range userIDs {
		members = append(members, store.MemberWithUser{
			ID:       "m-" + id,
			UserID:   id,
			Role:     models.RoleMember,
			JoinedAt: time.Unix(int64(i), 0),
		})
	}
	return members
}

func stringPtr(s string) *string { return &s }

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
