// internal/app/system/authprovider/memory.go
package authprovider

import (
	"context"
	"sync"
	"time"

	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/normalize"
	"github.com/google/uuid"
)

// Memory is an in-process Provider for tests and local tooling. Passwords
// are kept in plain text.
type Memory struct {
	hub

	mu        sync.Mutex
	users     map[string]memUser // by email
	sessions  map[string]Session
	ttl       time.Duration
	failLimit int
	failures  map[string]int
}

type memUser struct {
	uid      string
	password string
}

// NewMemory creates an empty Memory provider.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]memUser),
		sessions:  make(map[string]Session),
		ttl:       24 * time.Hour,
		failLimit: 5,
		failures:  make(map[string]int),
	}
}

// AddUser registers an identity with a fixed uid.
func (m *Memory) AddUser(uid, email, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[normalize.Email(email)] = memUser{uid: uid, password: password}
}

// SignIn implements Provider.
func (m *Memory) SignIn(_ context.Context, email, password string) (Session, error) {
	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}

	m.mu.Lock()
	if m.failures[email] >= m.failLimit {
		m.mu.Unlock()
		return Session{}, ErrTooManyRequests
	}
	u, ok := m.users[email]
	if !ok || u.password != password {
		m.failures[email]++
		m.mu.Unlock()
		return Session{}, ErrInvalidCredential
	}
	delete(m.failures, email)
	s := m.openLocked(Identity{UID: u.uid, Email: email})
	m.mu.Unlock()

	m.publish(Event{Kind: SignedIn, SessionID: s.ID, Identity: s.Identity})
	return s, nil
}

// SignUp implements Provider.
func (m *Memory) SignUp(_ context.Context, email, password string) (Session, error) {
	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}

	m.mu.Lock()
	if _, exists := m.users[email]; exists {
		m.mu.Unlock()
		return Session{}, ErrEmailInUse
	}
	uid := uuid.NewString()
	m.users[email] = memUser{uid: uid, password: password}
	s := m.openLocked(Identity{UID: uid, Email: email})
	m.mu.Unlock()

	m.publish(Event{Kind: SignedIn, SessionID: s.ID, Identity: s.Identity})
	return s, nil
}

func (m *Memory) openLocked(id Identity) Session {
	now := time.Now().UTC()
	s := Session{ID: uuid.NewString(), Identity: id, CreatedAt: now, ExpiresAt: now.Add(m.ttl)}
	m.sessions[s.ID] = s
	return s
}

// SignOut implements Provider.
func (m *Memory) SignOut(_ context.Context, sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		m.publish(Event{Kind: SignedOut, SessionID: sessionID, Identity: s.Identity})
	}
	return nil
}

// Lookup implements Provider.
func (m *Memory) Lookup(_ context.Context, sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || time.Now().After(s.ExpiresAt) {
		return Session{}, ErrSessionExpired
	}
	return s, nil
}

// RevokeUser implements Provider.
func (m *Memory) RevokeUser(_ context.Context, uid string) error {
	m.mu.Lock()
	var ended []Session
	for id, s := range m.sessions {
		if s.Identity.UID == uid {
			ended = append(ended, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range ended {
		m.publish(Event{Kind: SignedOut, SessionID: s.ID, Identity: s.Identity})
	}
	return nil
}

// DeleteUser implements Provider.
func (m *Memory) DeleteUser(ctx context.Context, uid string) error {
	if err := m.RevokeUser(ctx, uid); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, u := range m.users {
		if u.uid == uid {
			delete(m.users, email)
		}
	}
	return nil
}
