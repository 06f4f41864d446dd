// Package session manages web client sessions backed by SQLite.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys for the signed-in user's cached identity and API token.
const (
	keyToken    = "access_token"
	keyUserID   = "user_id"
	keyUsername = "username"
	keyRole     = "role"
)

// EnsureSchema creates the sessions table sqlite3store expects. The web
// client owns its session database, so there is no migration runner here.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);
	`)
	return err
}

// New creates a session manager backed by the sessions table in db.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// Identity is the signed-in user's cached profile plus their API token.
type Identity struct {
	Token    string
	UserID   int64
	Username string
	Role     string
}

// SignIn stores the identity in the session. The session token is renewed
// first so a pre-login session cannot be fixed onto the new identity.
func SignIn(ctx context.Context, sm *scs.SessionManager, id Identity) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, keyToken, id.Token)
	sm.Put(ctx, keyUserID, id.UserID)
	sm.Put(ctx, keyUsername, id.Username)
	sm.Put(ctx, keyRole, id.Role)
	return nil
}

// SignOut destroys the session and everything in it.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// Current returns the signed-in identity, or false when nobody is signed in.
func Current(ctx context.Context, sm *scs.SessionManager) (Identity, bool) {
	token := sm.GetString(ctx, keyToken)
	if token == "" {
		return Identity{}, false
	}
	return Identity{
		Token:    token,
		UserID:   sm.GetInt64(ctx, keyUserID),
		Username: sm.GetString(ctx, keyUsername),
		Role:     sm.GetString(ctx, keyRole),
	}, true
}

// IsAdmin reports whether the signed-in user's cached role is admin. This
// is a display hint only; the API verifies the token on every call.
func IsAdmin(ctx context.Context, sm *scs.SessionManager) bool {
	return sm.GetString(ctx, keyRole) == "admin"
}
