// internal/app/system/authprovider/mongo.go
package authprovider

import (
	"context"
	"errors"
	"time"

	"github.com/condopay/condopay/internal/app/store/identities"
	"github.com/condopay/condopay/internal/app/store/sessions"
	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/normalize"
	"github.com/condopay/condopay/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

// Mongo is a Provider backed by the auth_identities and auth_sessions
// collections.
type Mongo struct {
	hub

	ids     *identities.Store
	sess    *sessions.Store
	limiter *ratelimit.LoginLimiter
	ttl     time.Duration
	log     *zap.Logger
}

// NewMongo creates a Mongo provider. Sessions last ttl. limiter throttles
// sign-in attempts per account.
func NewMongo(db *mongo.Database, limiter *ratelimit.LoginLimiter, ttl time.Duration, logger *zap.Logger) *Mongo {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Mongo{
		ids:     identities.New(db),
		sess:    sessions.New(db),
		limiter: limiter,
		ttl:     ttl,
		log:     logger,
	}
}

// SignIn implements Provider.
func (p *Mongo) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}

	ok, err := p.limiter.AccountAllow(ctx, email)
	if err != nil {
		p.log.Warn("login throttle unavailable", zap.Error(err))
	} else if !ok {
		return Session{}, ErrTooManyRequests
	}

	id, err := p.ids.GetByEmail(ctx, email)
	if errors.Is(err, identities.ErrNotFound) {
		return Session{}, ErrInvalidCredential
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredential
	}

	s, err := p.open(ctx, id, sessions.CreatedBySignIn)
	if err != nil {
		return Session{}, err
	}
	if err := p.ids.TouchLogin(ctx, id.ID); err != nil {
		p.log.Warn("failed to record last login", zap.String("uid", id.ID), zap.Error(err))
	}
	if err := p.limiter.AccountReset(ctx, email); err != nil {
		p.log.Warn("failed to reset login throttle", zap.Error(err))
	}
	return s, nil
}

// SignUp implements Provider.
func (p *Mongo) SignUp(ctx context.Context, email, password string) (Session, error) {
	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Session{}, err
	}
	id, err := p.ids.Create(ctx, email, string(hash))
	if errors.Is(err, identities.ErrDuplicateEmail) {
		return Session{}, ErrEmailInUse
	}
	if err != nil {
		return Session{}, err
	}
	return p.open(ctx, id, sessions.CreatedBySignUp)
}

func (p *Mongo) open(ctx context.Context, id identities.Identity, createdBy string) (Session, error) {
	row, err := p.sess.Create(ctx, id.ID, id.Email, createdBy, p.ttl)
	if err != nil {
		return Session{}, err
	}
	s := toSession(row)
	p.publish(Event{Kind: SignedIn, SessionID: s.ID, Identity: s.Identity})
	return s, nil
}

// SignOut implements Provider. Unknown sessions are ignored.
func (p *Mongo) SignOut(ctx context.Context, sessionID string) error {
	row, err := p.sess.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := p.sess.Close(ctx, sessionID, sessions.EndSignOut); err != nil {
		return err
	}
	p.publish(Event{Kind: SignedOut, SessionID: sessionID, Identity: Identity{UID: row.UserID, Email: row.Email}})
	return nil
}

// Lookup implements Provider.
func (p *Mongo) Lookup(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, ErrSessionExpired
	}
	row, err := p.sess.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return Session{}, ErrSessionExpired
	}
	if err != nil {
		return Session{}, err
	}
	return toSession(row), nil
}

// RevokeUser implements Provider.
func (p *Mongo) RevokeUser(ctx context.Context, uid string) error {
	ids, err := p.sess.CloseAllForUser(ctx, uid, sessions.EndRevoked)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p.publish(Event{Kind: SignedOut, SessionID: id, Identity: Identity{UID: uid}})
	}
	return nil
}

// DeleteUser implements Provider.
func (p *Mongo) DeleteUser(ctx context.Context, uid string) error {
	if err := p.RevokeUser(ctx, uid); err != nil {
		return err
	}
	return p.ids.Delete(ctx, uid)
}

// ExpireSessions closes sessions past their expiry and publishes a sign-out
// event for each. It returns how many were closed.
func (p *Mongo) ExpireSessions(ctx context.Context, now time.Time) (int, error) {
	ids, err := p.sess.CloseExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		p.publish(Event{Kind: SignedOut, SessionID: id})
	}
	return len(ids), nil
}

// EnsureIndexes creates the provider's indexes.
func (p *Mongo) EnsureIndexes(ctx context.Context) error {
	if err := p.ids.EnsureIndexes(ctx); err != nil {
		return err
	}
	return p.sess.EnsureIndexes(ctx)
}

func toSession(row sessions.Session) Session {
	return Session{
		ID:        row.ID,
		Identity:  Identity{UID: row.UserID, Email: row.Email},
		CreatedAt: row.LoginAt,
		ExpiresAt: row.ExpiresAt,
	}
}
