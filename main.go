package main

//go:generate swag init

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/satheeshds/cashpilot/auth"
	"github.com/satheeshds/cashpilot/config"
	"github.com/satheeshds/cashpilot/db"
	_ "github.com/satheeshds/cashpilot/docs"
	"github.com/satheeshds/cashpilot/handlers"
	"github.com/satheeshds/cashpilot/ledger"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title           CashPilot API
// @version         1.0.0
// @description     Personal finance backend: accounts, transfers, payments, categories and spending summaries.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Configure structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	// Open database
	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	if err := db.Migrate(pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Set shared collaborators for handlers
	store := db.NewStore(pool)
	handlers.Ledger = ledger.NewService(store, logger)
	handlers.Accounts = store
	handlers.Users = store
	handlers.Tokens = auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL())
	handlers.Passwords = auth.Passwords{Cost: cfg.Security.BcryptCost}
	handlers.Mailer = auth.LogMailer{Logger: logger}
	handlers.ResetCodeTTL = cfg.ResetCodeTTL()

	r := handlers.Routes()

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
