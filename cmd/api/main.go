// Command api runs the job board API service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobdesk/internal/auth"
	"jobdesk/internal/config"
	"jobdesk/internal/handler/api"
	"jobdesk/internal/logging"
	"jobdesk/internal/scheduler"
	"jobdesk/internal/service"
	"jobdesk/internal/store"
	"jobdesk/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "jobdesk api - job board API service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_TOKEN_SECRET   Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_DB_DRIVER      Database driver: sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_DB_PATH        SQLite database path (default: ./data/jobdesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_MYSQL_DSN      MySQL DSN, needs parseTime=true (mysql driver only)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_API_PORT       Server port (default: 8000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_UPLOADS_DIR    Stored resume directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_DO_SEED        Create the default admin account (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOBDESK_ENV            Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("jobdesk api %s\n", version.Get())
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

	cfg, err := config.LoadAPI()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})
	slog.SetDefault(slog.New(textHandler))

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Upgrade the logger so WARN and ERROR records also land in the
	// audit event table.
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	resumes, err := service.NewResumeService(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("creating resume service: %w", err)
	}

	sched := scheduler.New(db, resumes, slog.Default())
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	handler := api.NewHandler(db, issuer, resumes)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           handler.Router(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Allow for resume uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting api server", "addr", cfg.ServerAddr(), "env", cfg.Env, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openDatabase opens the configured store and runs migrations. When MySQL
// is configured but never becomes reachable, the service falls back to
// the local SQLite store rather than refusing to start.
func openDatabase(cfg *config.API) (*sql.DB, error) {
	if cfg.UseMySQL() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		db, err := store.NewMySQL(ctx, cfg.MySQLDSN)
		if err == nil {
			if err := store.Migrate(db, store.DriverMySQL); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrating mysql: %w", err)
			}
			slog.Info("connected to mysql")
			return db, nil
		}
		slog.Warn("mysql unreachable, falling back to sqlite", "error", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if err := store.Migrate(db, store.DriverSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}
	return db, nil
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
