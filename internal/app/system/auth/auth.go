// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/session"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

const tokenKey = "token"

// DefaultLoadWait bounds how long LoadSession waits for a profile that is
// still being resolved before handing the request to the guards.
const DefaultLoadWait = 2 * time.Second

// SessionManager owns the session cookie and resolves it to a session.State
// for each request.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	provider authprovider.Provider
	resolver *session.Resolver
	loadWait time.Duration
	log      *zap.Logger
}

// NewSessionManager builds the cookie store. secure controls the Secure flag
// and SameSite mode: Secure+None in production, Lax for local http.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "condopay-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:    store,
		name:     name,
		loadWait: DefaultLoadWait,
		log:      logger,
	}, nil
}

// Attach connects the provider and resolver used by LoadSession.
func (m *SessionManager) Attach(p authprovider.Provider, r *session.Resolver) {
	m.provider = p
	m.resolver = r
}

// SetLoadWait overrides DefaultLoadWait. Zero disables waiting.
func (m *SessionManager) SetLoadWait(d time.Duration) {
	m.loadWait = d
}

// Resolver returns the attached resolver.
func (m *SessionManager) Resolver() *session.Resolver {
	return m.resolver
}

// Issue stores the session token in the cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, r *http.Request, s authprovider.Session) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[tokenKey] = s.ID
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Token returns the session token carried by r's cookie.
func (m *SessionManager) Token(r *http.Request) string {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return ""
	}
	s, _ := sess.Values[tokenKey].(string)
	return s
}

// LoadSession resolves the cookie to a session.State and stores it in the
// request context. Expired tokens clear the cookie.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.provider == nil || m.resolver == nil {
			next.ServeHTTP(w, r)
			return
		}
		token := m.Token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		s, err := m.provider.Lookup(r.Context(), token)
		if err != nil {
			if authprovider.IsCode(err, authprovider.CodeSessionExpired) {
				_ = m.Clear(w, r)
			} else {
				m.log.Warn("session lookup failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		st := m.resolver.Ensure(s)
		if st.Loading && m.loadWait > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), m.loadWait)
			st = m.resolver.Wait(ctx, s.ID)
			cancel()
		}

		ctx := context.WithValue(r.Context(), tokenCtxKey, token)
		ctx = context.WithValue(ctx, stateCtxKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helpers                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the request-scoped view of the signed-in user.
type SessionUser struct {
	ID         string
	Name       string
	Email      string
	Role       string
	BuildingID string
	UnitNo     string
}

// IsAdmin reports whether the user has the admin role.
func (u *SessionUser) IsAdmin() bool {
	return strings.EqualFold(u.Role, models.RoleAdmin)
}

type ctxKey string

const (
	stateCtxKey ctxKey = "sessionState"
	tokenCtxKey ctxKey = "sessionToken"
)

// CurrentState returns the resolved session state and whether the request
// carried a live session.
func CurrentState(r *http.Request) (session.State, bool) {
	st, ok := r.Context().Value(stateCtxKey).(session.State)
	return st, ok
}

// CurrentUser returns the signed-in user, or false while signed out or still
// loading.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	st, ok := CurrentState(r)
	if !ok || st.Loading || st.User == nil {
		return nil, false
	}
	u := st.User
	role := u.Role
	if st.IsAdmin {
		role = models.RoleAdmin
	}
	return &SessionUser{
		ID:         u.ID,
		Name:       u.FullName(),
		Email:      u.Email,
		Role:       role,
		BuildingID: u.BuildingID,
		UnitNo:     u.UnitNo,
	}, true
}

// SessionToken returns the token of the request's session, if any.
func SessionToken(r *http.Request) string {
	s, _ := r.Context().Value(tokenCtxKey).(string)
	return s
}

// WithTestState injects st into the request context, bypassing LoadSession.
func WithTestState(r *http.Request, st session.State) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), stateCtxKey, st))
}

// WithTestUser injects a resolved user into the request context.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	first, last, _ := strings.Cut(u.Name, " ")
	st := session.State{
		User: &models.User{
			ID:         u.ID,
			Email:      u.Email,
			FirstName:  first,
			LastName:   last,
			Role:       u.Role,
			BuildingID: u.BuildingID,
			UnitNo:     u.UnitNo,
		},
		IsAdmin: strings.EqualFold(u.Role, models.RoleAdmin),
	}
	return WithTestState(r, st)
}
