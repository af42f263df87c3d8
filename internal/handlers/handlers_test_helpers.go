package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"splitcircle/internal/config"
	"splitcircle/internal/middleware"
	"splitcircle/internal/models"
	"splitcircle/internal/services"
	"splitcircle/internal/store"
	"splitcircle/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubReconcileDB struct {
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
}

func (s stubReconcileDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

type stubUserStore struct {
	createFn         func(ctx context.Context, tx store.Execer, id, name, email, passwordHash string) error
	getByIDFn        func(ctx context.Context, userID string) (models.User, error)
	getByEmailFn     func(ctx context.Context, email string) (models.User, error)
	getCredentialsFn func(ctx context.Context, email string) (string, string, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, name, email, passwordHash)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{Email: email}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetCredentialsByEmail(ctx context.Context, email string) (string, string, error) {
	if s.getCredentialsFn == nil {
		return "", "", nil
	}
	return s.getCredentialsFn(ctx, email)
}

type stubCircleStore struct {
	getByIDFn    func(ctx context.Context, circleID string) (models.Circle, error)
	listByUserFn func(ctx context.Context, userID string) ([]store.CircleSummary, error)
}

func (s stubCircleStore) GetByID(ctx context.Context, circleID string) (models.Circle, error) {
	if s.getByIDFn == nil {
		return models.Circle{ID: circleID}, nil
	}
	return s.getByIDFn(ctx, circleID)
}

func (s stubCircleStore) ListByUser(ctx context.Context, userID string) ([]store.CircleSummary, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubMemberStore struct {
	listByCircleFn func(ctx context.Context, circleID string) ([]store.MemberWithUser, error)
}

func (s stubMemberStore) ListByCircle(ctx context.Context, circleID string) ([]store.MemberWithUser, error) {
	if s.listByCircleFn == nil {
		return nil, nil
	}
	return s.listByCircleFn(ctx, circleID)
}

type stubExpenseStore struct {
	listByCircleFn     func(ctx context.Context, circleID string, limit, offset int) ([]models.Expense, error)
	countByCircleFn    func(ctx context.Context, circleID string) (int, error)
	listRecentByUserFn func(ctx context.Context, userID string, limit int) ([]models.Expense, error)
}

func (s stubExpenseStore) ListByCircle(ctx context.Context, circleID string, limit, offset int) ([]models.Expense, error) {
	if s.listByCircleFn == nil {
		return nil, nil
	}
	return s.listByCircleFn(ctx, circleID, limit, offset)
}

func (s stubExpenseStore) CountByCircle(ctx context.Context, circleID string) (int, error) {
	if s.countByCircleFn == nil {
		return 0, nil
	}
	return s.countByCircleFn(ctx, circleID)
}

func (s stubExpenseStore) ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.Expense, error) {
	if s.listRecentByUserFn == nil {
		return nil, nil
	}
	return s.listRecentByUserFn(ctx, userID, limit)
}

type stubBankAccountStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.BankAccountInput) error
	getByIDFn    func(ctx context.Context, accountID string) (models.BankAccount, error)
	listByUserFn func(ctx context.Context, userID string) ([]models.BankAccount, error)
	deleteFn     func(ctx context.Context, tx store.Execer, accountID string) error
}

func (s stubBankAccountStore) Create(ctx context.Context, tx store.Execer, input store.BankAccountInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubBankAccountStore) GetByID(ctx context.Context, accountID string) (models.BankAccount, error) {
	if s.getByIDFn == nil {
		return models.BankAccount{ID: accountID}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubBankAccountStore) ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubBankAccountStore) Delete(ctx context.Context, tx store.Execer, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, accountID)
}

type stubFriendStore struct {
	listFriendsFn         func(ctx context.Context, userID string) ([]store.FriendWithUser, error)
	listPendingSentFn     func(ctx context.Context, userID string) ([]store.RequestWithUser, error)
	listPendingReceivedFn func(ctx context.Context, userID string) ([]store.RequestWithUser, error)
	areFriendsFn          func(ctx context.Context, userID, otherID string) (bool, error)
	hasPendingRequestFn   func(ctx context.Context, senderID, receiverID string) (bool, error)
	createRequestFn       func(ctx context.Context, tx store.Execer, id, senderID, receiverID string) error
	getRequestByIDFn      func(ctx context.Context, requestID string) (models.FriendRequest, error)
	setRequestStatusFn    func(ctx context.Context, tx store.Execer, requestID string, status models.FriendRequestStatus) error
	createFriendshipFn    func(ctx context.Context, tx store.Execer, firstID, secondID, userA, userB string) error
	deleteFriendshipFn    func(ctx context.Context, tx store.Execer, userID, friendID string) error
}

func (s stubFriendStore) ListFriends(ctx context.Context, userID string) ([]store.FriendWithUser, error) {
	if s.listFriendsFn == nil {
		return nil, nil
	}
	return s.listFriendsFn(ctx, userID)
}

func (s stubFriendStore) ListPendingSent(ctx context.Context, userID string) ([]store.RequestWithUser, error) {
	if s.listPendingSentFn == nil {
		return nil, nil
	}
	return s.listPendingSentFn(ctx, userID)
}

func (s stubFriendStore) ListPendingReceived(ctx context.Context, userID string) ([]store.RequestWithUser, error) {
	if s.listPendingReceivedFn == nil {
		return nil, nil
	}
	return s.listPendingReceivedFn(ctx, userID)
}

func (s stubFriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	if s.areFriendsFn == nil {
		return false, nil
	}
	return s.areFriendsFn(ctx, userID, otherID)
}

func (s stubFriendStore) HasPendingRequest(ctx context.Context, senderID, receiverID string) (bool, error) {
	if s.hasPendingRequestFn == nil {
		return false, nil
	}
	return s.hasPendingRequestFn(ctx, senderID, receiverID)
}

func (s stubFriendStore) CreateRequest(ctx context.Context, tx store.Execer, id, senderID, receiverID string) error {
	if s.createRequestFn == nil {
		return nil
	}
	return s.createRequestFn(ctx, tx, id, senderID, receiverID)
}

func (s stubFriendStore) GetRequestByID(ctx context.Context, requestID string) (models.FriendRequest, error) {
	if s.getRequestByIDFn == nil {
		return models.FriendRequest{ID: requestID}, nil
	}
	return s.getRequestByIDFn(ctx, requestID)
}

func (s stubFriendStore) SetRequestStatus(ctx context.Context, tx store.Execer, requestID string, status models.FriendRequestStatus) error {
	if s.setRequestStatusFn == nil {
		return nil
	}
	return s.setRequestStatusFn(ctx, tx, requestID, status)
}

func (s stubFriendStore) CreateFriendship(ctx context.Context, tx store.Execer, firstID, secondID, userA, userB string) error {
	if s.createFriendshipFn == nil {
		return nil
	}
	return s.createFriendshipFn(ctx, tx, firstID, secondID, userA, userB)
}

func (s stubFriendStore) DeleteFriendship(ctx context.Context, tx store.Execer, userID, friendID string) error {
	if s.deleteFriendshipFn == nil {
		return nil
	}
	return s.deleteFriendshipFn(ctx, tx, userID, friendID)
}

type stubCircleService struct {
	authorizeFn     func(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error)
	createFn        func(ctx context.Context, creatorID string, input services.CreateCircleInput) (models.Circle, error)
	updateFn        func(ctx context.Context, actorID, circleID string, update store.CircleUpdate) (models.Circle, error)
	deleteFn        func(ctx context.Context, actorID, circleID string) error
	removeMemberFn  func(ctx context.Context, actorID, circleID, memberID string) error
	leaveFn         func(ctx context.Context, actorID, circleID string) error
	promoteMemberFn func(ctx context.Context, actorID, circleID, memberID string) error
	inviteFn        func(ctx context.Context, actorID, circleID, email string) (models.CircleMember, error)
}

func (s stubCircleService) Authorize(ctx context.Context, userID, circleID string, required models.Role) (models.CircleMember, error) {
	if s.authorizeFn == nil {
		return models.CircleMember{UserID: userID, CircleID: circleID, Role: models.RoleMember}, nil
	}
	return s.authorizeFn(ctx, userID, circleID, required)
}

func (s stubCircleService) Create(ctx context.Context, creatorID string, input services.CreateCircleInput) (models.Circle, error) {
	if s.createFn == nil {
		return models.Circle{Name: input.Name}, nil
	}
	return s.createFn(ctx, creatorID, input)
}

func (s stubCircleService) Update(ctx context.Context, actorID, circleID string, update store.CircleUpdate) (models.Circle, error) {
	if s.updateFn == nil {
		return models.Circle{ID: circleID}, nil
	}
	return s.updateFn(ctx, actorID, circleID, update)
}

func (s stubCircleService) Delete(ctx context.Context, actorID, circleID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, actorID, circleID)
}

func (s stubCircleService) RemoveMember(ctx context.Context, actorID, circleID, memberID string) error {
	if s.removeMemberFn == nil {
		return nil
	}
	return s.removeMemberFn(ctx, actorID, circleID, memberID)
}

func (s stubCircleService) Leave(ctx context.Context, actorID, circleID string) error {
	if s.leaveFn == nil {
		return nil
	}
	return s.leaveFn(ctx, actorID, circleID)
}

func (s stubCircleService) PromoteMember(ctx context.Context, actorID, circleID, memberID string) error {
	if s.promoteMemberFn == nil {
		return nil
	}
	return s.promoteMemberFn(ctx, actorID, circleID, memberID)
}

func (s stubCircleService) Invite(ctx context.Context, actorID, circleID, email string) (models.CircleMember, error) {
	if s.inviteFn == nil {
		return models.CircleMember{CircleID: circleID}, nil
	}
	return s.inviteFn(ctx, actorID, circleID, email)
}

type stubExpenseService struct {
	createFn            func(ctx context.Context, actorID, circleID string, input services.CreateExpenseInput) (services.ExpenseWithObligations, error)
	getFn               func(ctx context.Context, actorID, circleID, expenseID string) (services.ExpenseWithObligations, error)
	updateFn            func(ctx context.Context, actorID, circleID, expenseID string, input services.UpdateExpenseInput) (services.ExpenseWithObligations, error)
	deleteFn            func(ctx context.Context, actorID, circleID, expenseID string) error
	setObligationPaidFn func(ctx context.Context, actorID, circleID, expenseID, obligationID string, isPaid bool) (models.Obligation, error)
}

func (s stubExpenseService) Create(ctx context.Context, actorID, circleID string, input services.CreateExpenseInput) (services.ExpenseWithObligations, error) {
	if s.createFn == nil {
		return services.ExpenseWithObligations{}, nil
	}
	return s.createFn(ctx, actorID, circleID, input)
}

func (s stubExpenseService) Get(ctx context.Context, actorID, circleID, expenseID string) (services.ExpenseWithObligations, error) {
	if s.getFn == nil {
		return services.ExpenseWithObligations{}, nil
	}
	return s.getFn(ctx, actorID, circleID, expenseID)
}

func (s stubExpenseService) Update(ctx context.Context, actorID, circleID, expenseID string, input services.UpdateExpenseInput) (services.ExpenseWithObligations, error) {
	if s.updateFn == nil {
		return services.ExpenseWithObligations{}, nil
	}
	return s.updateFn(ctx, actorID, circleID, expenseID, input)
}

func (s stubExpenseService) Delete(ctx context.Context, actorID, circleID, expenseID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, actorID, circleID, expenseID)
}

func (s stubExpenseService) SetObligationPaid(ctx context.Context, actorID, circleID, expenseID, obligationID string, isPaid bool) (models.Obligation, error) {
	if s.setObligationPaidFn == nil {
		return models.Obligation{ID: obligationID, IsPaid: isPaid}, nil
	}
	return s.setObligationPaidFn(ctx, actorID, circleID, expenseID, obligationID, isPaid)
}

type stubImportService struct {
	importFn func(ctx context.Context, actorID, circleID string, txns []services.ExternalTransaction) (services.ImportResult, error)
}

func (s stubImportService) Import(ctx context.Context, actorID, circleID string, txns []services.ExternalTransaction) (services.ImportResult, error) {
	if s.importFn == nil {
		return services.ImportResult{}, nil
	}
	return s.importFn(ctx, actorID, circleID, txns)
}

type stubBalanceService struct {
	netBalanceFn         func(ctx context.Context, userID string) (decimal.Decimal, error)
	outstandingBalanceFn func(ctx context.Context, userID string) (decimal.Decimal, error)
	circleBalancesFn     func(ctx context.Context, actorID, circleID string) ([]store.MemberBalanceRow, error)
}

func (s stubBalanceService) NetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.netBalanceFn == nil {
		return decimal.Zero, nil
	}
	return s.netBalanceFn(ctx, userID)
}

func (s stubBalanceService) OutstandingBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.outstandingBalanceFn == nil {
		return decimal.Zero, nil
	}
	return s.outstandingBalanceFn(ctx, userID)
}

func (s stubBalanceService) CircleBalances(ctx context.Context, actorID, circleID string) ([]store.MemberBalanceRow, error) {
	if s.circleBalancesFn == nil {
		return nil, nil
	}
	return s.circleBalancesFn(ctx, actorID, circleID)
}

type stubUserService struct {
	updatePhoneFn   func(ctx context.Context, userID string, phone *string) error
	deleteAccountFn func(ctx context.Context, userID string) error
}

func (s stubUserService) UpdatePhone(ctx context.Context, userID string, phone *string) error {
	if s.updatePhoneFn == nil {
		return nil
	}
	return s.updatePhoneFn(ctx, userID, phone)
}

func (s stubUserService) DeleteAccount(ctx context.Context, userID string) error {
	if s.deleteAccountFn == nil {
		return nil
	}
	return s.deleteAccountFn(ctx, userID)
}

type handlerDeps struct {
	reconcileDB    store.Selecter
	txRunner       fakeTxRunner
	users          UserStore
	circles        CircleStore
	members        MemberStore
	expenses       ExpenseStore
	bankAccounts   BankAccountStore
	friends        FriendStore
	circleService  CircleService
	expenseService ExpenseService
	importService  ImportService
	balanceService BalanceService
	userService    UserService
}

func newTestHandler(deps handlerDeps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	if deps.reconcileDB == nil {
		deps.reconcileDB = stubReconcileDB{}
	}
	if deps.users == nil {
		deps.users = stubUserStore{}
	}
	if deps.circles == nil {
		deps.circles = stubCircleStore{}
	}
	if deps.members == nil {
		deps.members = stubMemberStore{}
	}
	if deps.expenses == nil {
		deps.expenses = stubExpenseStore{}
	}
	if deps.bankAccounts == nil {
		deps.bankAccounts = stubBankAccountStore{}
	}
	if deps.friends == nil {
		deps.friends = stubFriendStore{}
	}
	if deps.circleService == nil {
		deps.circleService = stubCircleService{}
	}
	if deps.expenseService == nil {
		deps.expenseService = stubExpenseService{}
	}
	if deps.importService == nil {
		deps.importService = stubImportService{}
	}
	if deps.balanceService == nil {
		deps.balanceService = stubBalanceService{}
	}
	if deps.userService == nil {
		deps.userService = stubUserService{}
	}
	return New(deps.reconcileDB, deps.txRunner, cfg, deps.users, deps.circles, deps.members, deps.expenses, deps.bankAccounts, deps.friends, deps.circleService, deps.expenseService, deps.importService, deps.balanceService, deps.userService, websocket.NewHub())
}

func authedRequest(method, target string, body *strings.Reader, userID string) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func stringPtr(value string) *string {
	return &value
}
