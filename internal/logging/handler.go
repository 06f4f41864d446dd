// Package logging provides a slog handler that mirrors warnings and
// errors into the audit event table.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"jobdesk/internal/store"
)

// EventLogHandler wraps another slog.Handler and additionally persists
// records at WARN level and above as audit events.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewEventLogHandler creates a handler that forwards every record to inner
// and writes WARN and ERROR records to the events table.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// NewEventLogHandlerWithLevel creates a handler with a custom persistence
// threshold.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeEvent(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
	}
}

// writeEvent persists a record as an audit event. A background context is
// used so the event survives request cancellation. Insert failures are
// reported through the wrapped handler so they are never lost silently.
func (h *EventLogHandler) writeEvent(ctx context.Context, r slog.Record) {
	_, err := h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  eventCategory(r),
		Message:   r.Message,
		UserID:    recordUserID(r),
		Metadata:  recordMetadata(r),
		CreatedAt: r.Time,
	})
	if err != nil {
		failure := slog.NewRecord(time.Now(), slog.LevelError, "persisting audit event", 0)
		failure.AddAttrs(slog.Any("error", err), slog.String("event_message", r.Message))
		_ = h.inner.Handle(ctx, failure)
	}
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return store.EventLevelError
	case level >= slog.LevelWarn:
		return store.EventLevelWarning
	default:
		return store.EventLevelInfo
	}
}

// eventCategory reads an explicit "category" attribute, falling back to a
// guess from the message text.
func eventCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "token") || strings.Contains(msg, "auth"):
		return store.EventCategoryAuth
	case strings.Contains(msg, "application") || strings.Contains(msg, "resume") || strings.Contains(msg, "upload"):
		return store.EventCategoryApplication
	case strings.Contains(msg, "job"):
		return store.EventCategoryJob
	case strings.Contains(msg, "user") || strings.Contains(msg, "register"):
		return store.EventCategoryUser
	default:
		return store.EventCategorySystem
	}
}

// recordUserID extracts a "user_id" attribute when present.
func recordUserID(r slog.Record) sql.NullInt64 {
	var userID sql.NullInt64

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "user_id" {
			if v, ok := a.Value.Any().(int64); ok {
				userID = sql.NullInt64{Int64: v, Valid: true}
			}
			return false
		}
		return true
	})

	return userID
}

// recordMetadata collects the remaining attributes into a flat JSON object.
func recordMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" || a.Key == "user_id" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})

	sb.WriteString("}")
	return sb.String()
}

func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
