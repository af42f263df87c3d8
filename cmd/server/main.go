package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"splitcircle/internal/config"
	"splitcircle/internal/db"
	"splitcircle/internal/handlers"
	"splitcircle/internal/services"
	"splitcircle/internal/store"
	"splitcircle/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	circles := store.NewCircleStore(database)
	members := store.NewMemberStore(database)
	expenses := store.NewExpenseStore(database)
	obligations := store.NewObligationStore(database)
	bankAccounts := store.NewBankAccountStore(database)
	friends := store.NewFriendStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	circleService := services.NewCircleService(txRunner, circles, members, expenses, obligations, users, friends)
	expenseService := services.NewExpenseService(txRunner, circleService, circles, members, expenses, obligations, hub)
	importService := services.NewImportService(txRunner, circleService, circles, members, expenses, obligations)
	balanceService := services.NewBalanceService(circleService, obligations)
	userService := services.NewUserService(txRunner, users, members, expenses, obligations, circles, friends, bankAccounts)

	handler := handlers.New(database, txRunner, cfg, users, circles, members, expenses, bankAccounts, friends, circleService, expenseService, importService, balanceService, userService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("splitcircle API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
