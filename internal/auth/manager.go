package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNoSession = errors.New("no session")

type CookieOptions struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// SessionManager ties a SessionStore to the browser cookie. Sessions use a
// rolling expiry: every authenticated request pushes ExpiresAt out by TTL.
type SessionManager struct {
	store  SessionStore
	codec  *CookieCodec
	ttl    time.Duration
	cookie CookieOptions
}

func NewSessionManager(store SessionStore, codec *CookieCodec, ttl time.Duration, cookie CookieOptions) *SessionManager {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	return &SessionManager{store: store, codec: codec, ttl: ttl, cookie: cookie}
}

func (m *SessionManager) Store() SessionStore {
	return m.store
}

// Start creates a session for the user and sets the cookie on w.
func (m *SessionManager) Start(ctx context.Context, w http.ResponseWriter, userID uint, email, role string) (*Session, error) {
	session := NewSession(userID, email, role, m.ttl)

	if err := m.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	value, err := m.codec.Encode(session.ID)
	if err != nil {
		_ = m.store.Delete(ctx, session.ID)
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}

	m.setCookie(w, value, int(m.ttl.Seconds()))
	return session, nil
}

// Load resolves the request's cookie to a live session.
func (m *SessionManager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookie.Name)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return nil, err
	}

	return m.store.Get(r.Context(), id)
}

// Refresh extends the session by TTL and re-issues the cookie max-age.
func (m *SessionManager) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request, session *Session) error {
	if err := m.store.Touch(ctx, session.ID, time.Now().Add(m.ttl)); err != nil {
		return err
	}

	if cookie, err := r.Cookie(m.cookie.Name); err == nil {
		m.setCookie(w, cookie.Value, int(m.ttl.Seconds()))
	}
	return nil
}

// Destroy deletes the request's session, if any, and always clears the cookie.
func (m *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.setCookie(w, "", -1)

	cookie, err := r.Cookie(m.cookie.Name)
	if err != nil || cookie.Value == "" {
		return nil
	}

	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return nil
	}

	return m.store.Delete(ctx, id)
}

// DestroyUser drops every session belonging to userID.
func (m *SessionManager) DestroyUser(ctx context.Context, userID uint) (int, error) {
	return m.store.DeleteByUserID(ctx, userID)
}

func (m *SessionManager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   m.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: m.cookie.SameSite,
	})
}
