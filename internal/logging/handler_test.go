package logging

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"jobdesk/internal/store"
)

func testDB(t *testing.T) *sql.DB {
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
	return db
}

func recentEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListRecentEvents(context.Background(), 100)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	return events
}

func newTestLogger(db *sql.DB) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db)), &buf
}

func TestWarnPersistsEvent(t *testing.T) {
	db := testDB(t)
	logger, buf := newTestLogger(db)

	logger.Warn("resume upload rejected", "filename", "cv.docx")

	if !strings.Contains(buf.String(), "resume upload rejected") {
		t.Error("record not forwarded to inner handler")
	}

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Level != store.EventLevelWarning {
		t.Errorf("Level = %q, want %q", e.Level, store.EventLevelWarning)
	}
	if e.Category != store.EventCategoryApplication {
		t.Errorf("Category = %q, want %q", e.Category, store.EventCategoryApplication)
	}
	if e.Message != "resume upload rejected" {
		t.Errorf("Message = %q", e.Message)
	}
	if !strings.Contains(e.Metadata, `"filename":"cv.docx"`) {
		t.Errorf("Metadata = %q, missing filename", e.Metadata)
	}
}

func TestInfoNotPersisted(t *testing.T) {
	db := testDB(t)
	logger, buf := newTestLogger(db)

	logger.Info("starting api server")

	if !strings.Contains(buf.String(), "starting api server") {
		t.Error("record not forwarded to inner handler")
	}
	if events := recentEvents(t, db); len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestErrorLevel(t *testing.T) {
	db := testDB(t)
	logger, _ := newTestLogger(db)

	logger.Error("database unreachable")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != store.EventLevelError {
		t.Errorf("Level = %q, want %q", events[0].Level, store.EventLevelError)
	}
}

func TestExplicitCategory(t *testing.T) {
	db := testDB(t)
	logger, _ := newTestLogger(db)

	logger.Warn("cleanup behind schedule", "category", store.EventCategorySystem)

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != store.EventCategorySystem {
		t.Errorf("Category = %q, want %q", events[0].Category, store.EventCategorySystem)
	}
	if strings.Contains(events[0].Metadata, "category") {
		t.Errorf("Metadata = %q, category should be extracted", events[0].Metadata)
	}
}

func TestCategoryInference(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"login rejected", store.EventCategoryAuth},
		{"token verification failed", store.EventCategoryAuth},
		{"application insert failed", store.EventCategoryApplication},
		{"job delete failed", store.EventCategoryJob},
		{"user delete failed", store.EventCategoryUser},
		{"disk almost full", store.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			db := testDB(t)
			logger, _ := newTestLogger(db)

			logger.Warn(tt.message)

			events := recentEvents(t, db)
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", events[0].Category, tt.want)
			}
		})
	}
}

func TestUserIDAttr(t *testing.T) {
	db := testDB(t)
	logger, _ := newTestLogger(db)

	logger.Warn("user delete failed", "user_id", int64(7))

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !events[0].UserID.Valid || events[0].UserID.Int64 != 7 {
		t.Errorf("UserID = %+v, want 7", events[0].UserID)
	}
	if strings.Contains(events[0].Metadata, "user_id") {
		t.Errorf("Metadata = %q, user_id should be extracted", events[0].Metadata)
	}
}

func TestInsertFailureReported(t *testing.T) {
	db := testDB(t)
	logger, buf := newTestLogger(db)

	// A closed database makes every insert fail.
	if err := db.Close(); err != nil {
		t.Fatalf("closing database: %v", err)
	}

	logger.Warn("login rejected")

	out := buf.String()
	if !strings.Contains(out, "login rejected") {
		t.Error("record not forwarded to inner handler")
	}
	if !strings.Contains(out, "persisting audit event") {
		t.Errorf("inner log = %q, missing insert failure report", out)
	}
}

func TestWithAttrsPersists(t *testing.T) {
	db := testDB(t)
	logger, _ := newTestLogger(db)

	logger.With("request_id", "abc123").Warn("job delete failed")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
}

func TestCustomThreshold(t *testing.T) {
	db := testDB(t)
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewEventLogHandlerWithLevel(inner, db, slog.LevelInfo))

	logger.Info("login succeeded")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != store.EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, store.EventLevelInfo)
	}
}

func TestMetadataEscaping(t *testing.T) {
	db := testDB(t)
	logger, _ := newTestLogger(db)

	logger.Warn("resume upload rejected", "filename", `weird"name.pdf`)

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !strings.Contains(events[0].Metadata, `weird\"name.pdf`) {
		t.Errorf("Metadata = %q, quote not escaped", events[0].Metadata)
	}
}
