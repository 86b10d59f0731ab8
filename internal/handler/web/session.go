package web

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"dispatch/internal/infra/db"
)

const (
	sessionUserKey  = "uid"
	sessionFlashKey = "flashes"
)

// Flash is a one-shot message shown on the next rendered page. Level is a
// bootstrap alert style without the "alert-" prefix.
type Flash struct {
	Level   string
	Message string
}

func init() {
	gob.Register([]Flash{})
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	IdleTimeout  time.Duration
	SecureCookie bool
}

// NewSessionManager returns a session manager persisting to the sessions
// table of the application database.
func NewSessionManager(sqlDB *sql.DB, dialect db.Dialect, cfg SessionConfig) *scs.SessionManager {
	sm := scs.New()
	if dialect == db.Postgres {
		sm.Store = postgresstore.New(sqlDB)
	} else {
		sm.Store = sqlite3store.New(sqlDB)
	}
	sm.Lifetime = cfg.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 14 * 24 * time.Hour
	}
	sm.IdleTimeout = cfg.IdleTimeout
	sm.Cookie.Name = "dispatch_session"
	sm.Cookie.HttpOnly = true
	// Lax keeps cross-site POSTs from carrying the cookie; every state
	// change in the UI is a POST.
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.SecureCookie
	return sm
}

func (a *App) flash(ctx context.Context, level, msg string) {
	flashes, _ := a.sessions.Get(ctx, sessionFlashKey).([]Flash)
	a.sessions.Put(ctx, sessionFlashKey, append(flashes, Flash{Level: level, Message: msg}))
}

func (a *App) popFlashes(ctx context.Context) []Flash {
	flashes, _ := a.sessions.Pop(ctx, sessionFlashKey).([]Flash)
	return flashes
}

// login binds the user to a fresh session token.
func (a *App) login(ctx context.Context, userID int64) error {
	if err := a.sessions.RenewToken(ctx); err != nil {
		return err
	}
	a.sessions.Put(ctx, sessionUserKey, userID)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	a.sessions.Remove(ctx, sessionUserKey)
	return a.sessions.RenewToken(ctx)
}
