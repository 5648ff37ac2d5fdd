// Package authtest wires an in-memory auth provider, session resolver and
// session manager for handler tests.
package authtest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/session"
	"github.com/condopay/condopay/internal/domain/models"
	"go.uber.org/zap"
)

// CookieName is the session cookie name used by Stack.
const CookieName = "test-session"

// Profiles is an in-memory session.ProfileFetcher.
type Profiles struct {
	mu sync.Mutex
	m  map[string]models.User
}

// Put stores or replaces u.
func (p *Profiles) Put(u models.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]models.User)
	}
	p.m[u.ID] = u
}

// FetchProfile implements session.ProfileFetcher.
func (p *Profiles) FetchProfile(_ context.Context, uid string) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.m[uid]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return &u, nil
}

// Stack is a running auth setup.
type Stack struct {
	Provider   *authprovider.Memory
	Profiles   *Profiles
	Resolver   *session.Resolver
	SessionMgr *auth.SessionManager
}

// New starts a Stack. When fetcher is nil profiles are served from
// Stack.Profiles. The resolver is disposed when the test ends.
func New(t *testing.T, fetcher session.ProfileFetcher) *Stack {
	t.Helper()

	st := &Stack{Provider: authprovider.NewMemory(), Profiles: &Profiles{}}
	if fetcher == nil {
		fetcher = st.Profiles
	}

	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", CookieName, "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	st.Resolver = session.New(st.Provider, fetcher, logger)
	st.Resolver.Start(context.Background())
	t.Cleanup(st.Resolver.Dispose)

	sm.Attach(st.Provider, st.Resolver)
	st.SessionMgr = sm
	return st
}

// SignIn registers u with password in the provider (and in Profiles), signs
// in and returns the session cookie.
func (s *Stack) SignIn(t *testing.T, u models.User, password string) *http.Cookie {
	t.Helper()
	s.Provider.AddUser(u.ID, u.Email, password)
	s.Profiles.Put(u)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sess, err := s.Provider.SignIn(ctx, u.Email, password)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	s.Resolver.Wait(ctx, sess.ID)

	rec := httptest.NewRecorder()
	if err := s.SessionMgr.Issue(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return SessionCookie(t, rec)
}

// SessionCookie returns the session cookie set on rec.
func SessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

// Serve wraps h with session loading.
func (s *Stack) Serve(h http.Handler) http.Handler {
	return s.SessionMgr.LoadSession(h)
}
