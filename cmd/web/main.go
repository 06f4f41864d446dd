// Command web runs the server-rendered job board client.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"jobdesk/internal/cache"
	"jobdesk/internal/client"
	"jobdesk/internal/config"
	"jobdesk/internal/handler/web"
	"jobdesk/internal/middleware"
	"jobdesk/internal/render"
	"jobdesk/internal/session"
	"jobdesk/internal/version"
	webassets "jobdesk/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "jobdesk web - job board web client\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_SESSION_SECRET   Session signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_API_URL          API service base URL (default: http://localhost:8000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_API_TIMEOUT      API request timeout (default: 10s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_SESSION_DB_PATH  Session store path (default: ./data/sessions.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_WEB_PORT         Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_ENV              Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("jobdesk web %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.LoadWeb()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	sessionDB, err := sql.Open("sqlite", cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() { _ = sessionDB.Close() }()

	if err := session.EnsureSchema(sessionDB); err != nil {
		return fmt.Errorf("preparing session store: %w", err)
	}
	sessions := session.New(sessionDB, cfg.IsDevelopment())

	templates, err := fs.Sub(webassets.Templates, "templates")
	if err != nil {
		return fmt.Errorf("locating templates: %w", err)
	}
	renderer, err := render.New(templates, sessions)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	api := client.New(cfg.APIBaseURL, cfg.APITimeout)

	jobCache := cache.NewMemoryCache(time.Minute)
	defer func() { _ = jobCache.Close() }()

	handler := web.NewHandler(api, sessions, renderer, cfg.APIBaseURL, jobCache)

	csrfCfg := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           handler.Router(csrfCfg),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting web server", "addr", cfg.ServerAddr(), "env", cfg.Env, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
