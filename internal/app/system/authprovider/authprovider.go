// Package authprovider defines the identity service the application signs
// users in against, and the events it publishes when sessions change.
package authprovider

import (
	"context"
	"sync"
	"time"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// Identity is the provider-side view of a user.
type Identity struct {
	UID   string
	Email string
}

// Session is an authenticated session. ID is the opaque token stored in the
// session cookie.
type Session struct {
	ID        string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// EventKind distinguishes session-change events.
type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Event reports a session change.
type Event struct {
	Kind      EventKind
	SessionID string
	Identity  Identity
}

// Provider signs users in and out.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	// SignUp creates the identity and signs it in.
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, sessionID string) error
	// Lookup returns the live session for id or ErrSessionExpired.
	Lookup(ctx context.Context, sessionID string) (Session, error)
	// RevokeUser ends every session of uid.
	RevokeUser(ctx context.Context, uid string) error
	// DeleteUser ends every session of uid and removes its identity, so the
	// email can sign up again.
	DeleteUser(ctx context.Context, uid string) error
	// Subscribe registers fn for session-change events. Handlers run
	// synchronously on the goroutine that caused the change and must not block.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// hub fans events out to subscribers.
type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func (h *hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]func(Event))
	}
	id := h.next
	h.next++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) publish(ev Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
