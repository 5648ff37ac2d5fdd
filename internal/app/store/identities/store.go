// internal/app/store/identities/store.go
package identities

import (
	"context"
	"errors"
	"time"

	"github.com/condopay/condopay/internal/app/system/normalize"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no identity matches.
	ErrNotFound = errors.New("identity not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("an identity with this email already exists")
)

// Identity is an email/password credential. ID is the UID shared with the
// user profile.
type Identity struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	LastLoginAt  time.Time `bson:"last_login_at,omitempty"`
}

// Store manages credentials.
type Store struct {
	c *mongo.Collection
}

// New creates an identities Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("auth_identities")}
}

// EnsureIndexes makes email unique.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_auth_identities_email").SetUnique(true),
	})
	return err
}

// Create stores a new identity with a fresh UID.
func (s *Store) Create(ctx context.Context, email, passwordHash string) (Identity, error) {
	id := Identity{
		ID:           uuid.NewString(),
		Email:        normalize.Email(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, id); err != nil {
		if wafflemongo.IsDup(err) {
			return Identity{}, ErrDuplicateEmail
		}
		return Identity{}, err
	}
	return id, nil
}

// GetByEmail loads an identity by email.
func (s *Store) GetByEmail(ctx context.Context, email string) (Identity, error) {
	var id Identity
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	return id, nil
}

// EmailExists reports whether email is registered.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// TouchLogin records a successful sign-in.
func (s *Store) TouchLogin(ctx context.Context, id string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login_at": time.Now().UTC()}})
	return err
}

// Delete removes an identity.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
