package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"komo-backend/internal/config"
	"komo-backend/internal/handlers"
	"komo-backend/internal/responder"
	"komo-backend/internal/router"
	"komo-backend/internal/services"
	"komo-backend/internal/static"
	"komo-backend/internal/websocket"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port      int
		staticDir string
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "komo-server",
		Short: "Komo AI local chat responder",
		Long: `Serves a keyword-driven chat endpoint at /chat and static files
from a document root. Configuration comes from the environment (and a .env
file if present); flags override it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("static-dir") {
				cfg.StaticDir = staticDir
			}
			if flags.Changed("rules") {
				cfg.RulesFile = rulesFile
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3040, "listen port")
	cmd.Flags().StringVar(&staticDir, "static-dir", ".", "document root for static files")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rule table replacing the built-in one")

	return cmd
}

func run(cfg *config.Config) error {
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("🚀 Starting Komo AI server...", "env", cfg.Env)

	// ──── Step 1: Rule Table ────
	rules := responder.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := responder.LoadRules(cfg.RulesFile)
		if err != nil {
			slog.Error("✗ Rule table failed to load", "path", cfg.RulesFile, "error", err)
			return err
		}
		rules = loaded
	}
	chatResponder := responder.New(rules)
	slog.Info("✓ Rule table ready", "rules", chatResponder.RuleNames())

	// ──── Step 2: Services & Handlers ────
	chatService := services.NewChatService(chatResponder)
	chatHandler := handlers.NewChatHandler(chatService, cfg.MaxBodyBytes)
	wsHub := websocket.NewHub(chatService, cfg.MaxBodyBytes)
	staticHandler := static.New(cfg.StaticDir, cfg.IndexFile)
	slog.Info("✓ Serving static files", "root", cfg.StaticDir, "index", cfg.IndexFile)

	// ──── Step 3: Start HTTP Server ────
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(chatHandler, wsHub, staticHandler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutting down...")
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("graceful shutdown incomplete", "error", err)
		}
	}()

	fmt.Printf("Komo AI Server running at http://localhost:%d\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop the server")

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("✗ Server error", "error", err)
		return err
	}

	<-stopped
	fmt.Println("\nServer stopped.")
	return nil
}
