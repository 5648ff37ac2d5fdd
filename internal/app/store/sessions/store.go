// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session creation sources
const (
	CreatedBySignIn = "sign_in"
	CreatedBySignUp = "sign_up"
)

// End reasons
const (
	EndSignOut = "sign_out"
	EndExpired = "expired"
	EndRevoked = "revoked"
)

// ErrNotFound is returned for unknown, ended or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is a signed-in browser session. ID is the opaque token carried in
// the session cookie.
type Session struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`
	Email  string `bson:"email"`

	LoginAt      time.Time  `bson:"login_at"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	ExpiresAt    time.Time  `bson:"expires_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`

	CreatedBy string `bson:"created_by,omitempty"`
	EndReason string `bson:"end_reason,omitempty"`
}

// Store manages auth sessions.
type Store struct {
	c *mongo.Collection
}

// New creates a sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("auth_sessions")}
}

// EnsureIndexes creates the per-user index and a TTL index that lets the
// server purge sessions a day after they expire.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_auth_sessions_user"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_auth_sessions_expires").SetExpireAfterSeconds(86400),
		},
	})
	return err
}

// Create opens a session for userID valid for ttl.
func (s *Store) Create(ctx context.Context, userID, email, createdBy string, ttl time.Duration) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Email:        email,
		LoginAt:      now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(ttl),
		CreatedBy:    createdBy,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get returns an open, unexpired session.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{
		"_id":        id,
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Touch records activity on a session.
func (s *Store) Touch(ctx context.Context, id string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	return err
}

// Close ends a session with the given reason.
// Closing an already closed or unknown session is not an error.
func (s *Store) Close(ctx context.Context, id, reason string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": reason}},
	)
	return err
}

// CloseAllForUser ends every open session of userID and returns their ids.
func (s *Store) CloseAllForUser(ctx context.Context, userID, reason string) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "logout_at": nil},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	now := time.Now().UTC()
	_, err = s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": reason}},
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CloseExpired marks open sessions past their expiry as ended and returns
// their ids.
func (s *Store) CloseExpired(ctx context.Context, now time.Time) ([]string, error) {
	filter := bson.M{"logout_at": nil, "expires_at": bson.M{"$lte": now}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	_, err = s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "logout_at": nil},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": EndExpired}},
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
