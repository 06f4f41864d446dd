package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"jobdesk/internal/service"
	"jobdesk/internal/store"
)

func testScheduler(t *testing.T) (*Scheduler, *sql.DB, string) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db, store.DriverSQLite); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	uploadDir := t.TempDir()
	resumes, err := service.NewResumeService(uploadDir)
	if err != nil {
		t.Fatalf("creating resume service: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(db, resumes, logger), db, uploadDir
}

func insertEvent(t *testing.T, db *sql.DB, createdAt time.Time) {
	t.Helper()
	_, err := store.New(db).CreateEvent(context.Background(), store.CreateEventParams{
		Level:     store.EventLevelWarning,
		Category:  store.EventCategorySystem,
		Message:   "test event",
		Metadata:  "{}",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("inserting event: %v", err)
	}
}

func writeResumeFile(t *testing.T, dir, name string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("setting mod time: %v", err)
	}
}

func insertApplication(t *testing.T, db *sql.DB, cvFilename string) {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)

	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		Role:         "client",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	job, err := q.CreateJob(ctx, store.CreateJobParams{
		Title:       "Backend Engineer",
		Description: "Go services",
		Company:     "Acme",
		Location:    "Remote",
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("creating job: %v", err)
	}

	_, err = q.CreateApplication(ctx, store.CreateApplicationParams{
		JobID:      job.ID,
		UserID:     user.ID,
		CvFilename: cvFilename,
		AppliedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("creating application: %v", err)
	}
}

func TestPurgeEvents(t *testing.T) {
	s, db, _ := testScheduler(t)

	now := time.Now().UTC()
	insertEvent(t, db, now.Add(-60*24*time.Hour))
	insertEvent(t, db, now.Add(-1*time.Hour))

	if err := s.PurgeEvents(); err != nil {
		t.Fatalf("PurgeEvents: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].CreatedAt.UTC().Before(now.Add(-24 * time.Hour)) {
		t.Errorf("surviving event is the old one: %v", events[0].CreatedAt)
	}
}

func TestSweepOrphanedResumes(t *testing.T) {
	s, db, uploadDir := testScheduler(t)

	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	// Referenced and old: kept
	writeResumeFile(t, uploadDir, "cv_aaa_kept.pdf", old)
	insertApplication(t, db, "cv_aaa_kept.pdf")
	// Unreferenced and old: removed
	writeResumeFile(t, uploadDir, "cv_bbb_orphan.pdf", old)
	// Unreferenced but fresh: kept by the grace period
	writeResumeFile(t, uploadDir, "cv_ccc_recent.pdf", fresh)
	// Old but not a resume file: never touched
	writeResumeFile(t, uploadDir, "notes.txt", old)

	if err := s.SweepOrphanedResumes(); err != nil {
		t.Fatalf("SweepOrphanedResumes: %v", err)
	}

	for _, name := range []string{"cv_aaa_kept.pdf", "cv_ccc_recent.pdf", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(uploadDir, name)); err != nil {
			t.Errorf("%s should have survived the sweep: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(uploadDir, "cv_bbb_orphan.pdf")); !os.IsNotExist(err) {
		t.Error("cv_bbb_orphan.pdf should have been removed")
	}
}

func TestStartStop(t *testing.T) {
	s, _, _ := testScheduler(t)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
