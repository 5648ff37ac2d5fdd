package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/condopay/condopay/internal/app/system/normalize"
	"github.com/condopay/condopay/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no profile matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUserName is returned when the user name is already taken.
	ErrDuplicateUserName = errors.New("a user with this username already exists")
	// ErrDuplicateID is returned when a profile already exists for the UID.
	ErrDuplicateID = errors.New("a profile already exists for this account")

	errBadRole   = errors.New(`role must be "admin"|"tenant"`)
	errBadStatus = errors.New(`status must be "active"|"pending"|"inactive"`)
	errNoID      = errors.New("user id is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique user name index and the roster index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_users_user_name_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
		{
			Keys: bson.D{
				{Key: "building_id", Value: 1},
				{Key: "role", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_users_building_role_created"),
		},
	})
	return err
}

// IsValidRole reports whether role is admin or tenant.
func IsValidRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleTenant
}

// IsValidStatus reports whether status is one of the profile statuses.
func IsValidStatus(status string) bool {
	switch status {
	case models.StatusActive, models.StatusPending, models.StatusInactive:
		return true
	}
	return false
}

// Create inserts a profile after normalizing and validating fields.
// Role defaults to tenant and status to active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		return models.User{}, errNoID
	}
	u.Email = normalize.Email(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.UserNameCI = text.Fold(u.UserName)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Role == "" {
		u.Role = models.RoleTenant
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if !IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if !IsValidStatus(u.Status) {
		return models.User{}, errBadStatus
	}
	if u.MonthlyRent < 0 {
		u.MonthlyRent = 0
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			if s.c.FindOne(ctx, bson.M{"_id": u.ID}).Err() == nil {
				return models.User{}, ErrDuplicateID
			}
			return models.User{}, ErrDuplicateUserName
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByID loads a profile by UID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a profile by email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByIDs returns the profiles whose UID is in ids. Missing ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.list(ctx, bson.M{"_id": bson.M{"$in": ids}}, 0)
}

// UserNameExists reports whether any profile uses userName (case-insensitive).
func (s *Store) UserNameExists(ctx context.Context, userName string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_name_ci": text.Fold(userName)},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// NextUserName returns base if unused, otherwise base1, base2, ... whichever
// is free first.
func (s *Store) NextUserName(ctx context.Context, base string) (string, error) {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := normalize.UserNameCandidate(base, n)
		taken, err := s.UserNameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// ListTenants returns the tenants assigned to buildingID, newest first.
func (s *Store) ListTenants(ctx context.Context, buildingID string) ([]models.User, error) {
	return s.list(ctx, bson.M{"building_id": buildingID, "role": models.RoleTenant}, 0)
}

// RecentTenants returns up to limit tenants of buildingID by creation time.
func (s *Store) RecentTenants(ctx context.Context, buildingID string, limit int64) ([]models.User, error) {
	return s.list(ctx, bson.M{"building_id": buildingID, "role": models.RoleTenant}, limit)
}

func (s *Store) list(ctx context.Context, filter bson.M, limit int64) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildingIDs returns every building that has at least one tenant.
func (s *Store) BuildingIDs(ctx context.Context) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "building_id", bson.M{
		"role":        models.RoleTenant,
		"building_id": bson.M{"$nin": bson.A{"", nil}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// SetTenantStatus updates the status of a tenant in buildingID.
func (s *Store) SetTenantStatus(ctx context.Context, buildingID, uid, status string) error {
	status = normalize.Status(status)
	if !IsValidStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": uid, "building_id": buildingID, "role": models.RoleTenant},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Promote makes uid an admin of buildingID.
func (s *Store) Promote(ctx context.Context, uid, buildingID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{
			"role":        models.RoleAdmin,
			"building_id": buildingID,
			"updated_at":  time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTenant removes a tenant profile from buildingID.
// Returns the number of documents deleted (0 or 1).
func (s *Store) DeleteTenant(ctx context.Context, buildingID, uid string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": uid, "building_id": buildingID, "role": models.RoleTenant})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
