package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/akhilmv/statementiq/internal/config"
	"github.com/akhilmv/statementiq/internal/export"
	appHttp "github.com/akhilmv/statementiq/internal/http"
	exportHandler "github.com/akhilmv/statementiq/internal/http/export"
	queueHandler "github.com/akhilmv/statementiq/internal/http/queue"
	reconcileHandler "github.com/akhilmv/statementiq/internal/http/reconcile"
	sessionHandler "github.com/akhilmv/statementiq/internal/http/session"
	statementHandler "github.com/akhilmv/statementiq/internal/http/statement"
	"github.com/akhilmv/statementiq/internal/parseclient"
	"github.com/akhilmv/statementiq/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		parser        = parseclient.New(cfg.Parser.URL)
		sessionStore  = session.NewStore(cfg.Session.TTL)
		exportService = export.NewService()
	)

	var (
		sessionH   = sessionHandler.NewHandler(sessionStore, parser)
		queueH     = queueHandler.NewHandler(sessionH.Resolve)
		statementH = statementHandler.NewHandler(sessionH.Resolve)
		reconcileH = reconcileHandler.NewHandler(sessionH.Resolve)
		exportH    = exportHandler.NewHandler(sessionH.Resolve, exportService)
	)

	router := appHttp.New(sessionH, queueH, statementH, reconcileH, exportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port, "parser", cfg.Parser.URL)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
