// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/sailmap/internal/database"
	"github.com/tomtom215/sailmap/internal/logging"
)

type contextKey string

const userIDContextKey contextKey = "auth_user_id"

// SessionStore persists login sessions. Satisfied by *database.DB.
type SessionStore interface {
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*database.Session, error)
	GetSession(ctx context.Context, id string) (*database.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	CookieName string
	SessionTTL time.Duration
	Secure     bool
}

// SessionMiddleware resolves session cookies and manages their lifecycle.
type SessionMiddleware struct {
	store  SessionStore
	config SessionConfig
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(store SessionStore, config SessionConfig) *SessionMiddleware {
	if config.CookieName == "" {
		config.CookieName = "sailmap_session"
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	return &SessionMiddleware{store: store, config: config}
}

// Authenticate records the session's user id in the request context when
// the request carries a valid session cookie. Requests without one continue
// anonymously.
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := m.sessionID(r)
		if sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.GetSession(r.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				logging.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StartSession creates a session for userID and sets the cookie. Any
// session the request already carried is deleted first so that a session
// id is never reused across a login.
func (m *SessionMiddleware) StartSession(w http.ResponseWriter, r *http.Request, userID string) (*database.Session, error) {
	if old := m.sessionID(r); old != "" {
		//nolint:errcheck // best effort; the old session may already be gone
		_ = m.store.DeleteSession(r.Context(), old)
	}

	session, err := m.store.CreateSession(r.Context(), userID, m.config.SessionTTL)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, m.cookie(session.ID, int(m.config.SessionTTL.Seconds())))
	return session, nil
}

// EndSession deletes the request's session and clears the cookie.
func (m *SessionMiddleware) EndSession(w http.ResponseWriter, r *http.Request) error {
	if id := m.sessionID(r); id != "" {
		if err := m.store.DeleteSession(r.Context(), id); err != nil {
			return err
		}
	}
	http.SetCookie(w, m.cookie("", -1))
	return nil
}

// CookieName returns the session cookie name.
func (m *SessionMiddleware) CookieName() string {
	return m.config.CookieName
}

func (m *SessionMiddleware) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (m *SessionMiddleware) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.config.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CurrentUserID returns the logged-in user's id, if any.
func CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying userID, as Authenticate would.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
