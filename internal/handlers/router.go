package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"splitcircle/internal/config"
	"splitcircle/internal/db"
	"splitcircle/internal/middleware"
	"splitcircle/internal/store"
	"splitcircle/internal/websocket"
)

type Handler struct {
	reconcileDB    store.Selecter
	txRunner       db.TxRunner
	cfg            config.Config
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
	hub            *websocket.Hub
}

func New(reconcileDB store.Selecter, txRunner db.TxRunner, cfg config.Config, users UserStore, circles CircleStore, members MemberStore, expenses ExpenseStore, bankAccounts BankAccountStore, friends FriendStore, circleService CircleService, expenseService ExpenseService, importService ImportService, balanceService BalanceService, userService UserService, hub *websocket.Hub) *Handler {
	return &Handler{
		reconcileDB:    reconcileDB,
		txRunner:       txRunner,
		cfg:            cfg,
		users:          users,
		circles:        circles,
		members:        members,
		expenses:       expenses,
		bankAccounts:   bankAccounts,
		friends:        friends,
		circleService:  circleService,
		expenseService: expenseService,
		importService:  importService,
		balanceService: balanceService,
		userService:    userService,
		hub:            hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))

		r.Route("/circles", func(r chi.Router) {
			r.Get("/", h.ListCircles)
			r.Post("/", h.CreateCircle)
			r.Route("/{circleID}", func(r chi.Router) {
				r.Get("/", h.GetCircle)
				r.Patch("/", h.UpdateCircle)
				r.Delete("/", h.DeleteCircle)
				r.Post("/leave", h.LeaveCircle)
				r.Post("/invite", h.InviteMember)
				r.Get("/balances", h.CircleBalances)
				r.Get("/reconcile", h.ReconcileLedger)
				r.Delete("/members/{memberID}", h.RemoveMember)
				r.Patch("/members/{memberID}", h.PromoteMember)
				r.Route("/transactions", func(r chi.Router) {
					r.Get("/", h.ListExpenses)
					r.Post("/", h.CreateExpense)
					r.Get("/{expenseID}", h.GetExpense)
					r.Patch("/{expenseID}", h.UpdateExpense)
					r.Delete("/{expenseID}", h.DeleteExpense)
					r.Patch("/{expenseID}/splits/{obligationID}", h.UpdateObligation)
				})
			})
		})

		r.Post("/transactions/import", h.ImportTransactions)
		r.Get("/dashboard", h.Dashboard)

		r.Route("/bank-accounts", func(r chi.Router) {
			r.Get("/", h.ListBankAccounts)
			r.Post("/", h.CreateBankAccount)
			r.Delete("/{accountID}", h.DeleteBankAccount)
		})

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", h.ListFriends)
			r.Post("/", h.SendFriendRequest)
			r.Patch("/requests/{requestID}", h.RespondFriendRequest)
			r.Delete("/{friendID}", h.RemoveFriend)
		})

		r.Patch("/user/phone", h.UpdatePhone)
		r.Delete("/user", h.DeleteAccount)
	})

	router.Get("/ws/settlements", h.WSSettlements)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
