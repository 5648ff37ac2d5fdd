package userstore

import (
	"context"
	"errors"

	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher loads the profile fields the session resolver needs.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a Fetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchProfile returns the profile for uid, or ErrNotFound.
func (f *Fetcher) FetchProfile(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	proj := options.FindOne().SetProjection(bson.M{
		"_id":              1,
		"email":            1,
		"user_name":        1,
		"first_name":       1,
		"last_name":        1,
		"phone_number":     1,
		"role":             1,
		"status":           1,
		"building_id":      1,
		"unit_no":          1,
		"monthly_rent":     1,
		"lease_start_date": 1,
		"lease_end_date":   1,
		"created_at":       1,
		"updated_at":       1,
	})

	var u models.User
	if err := f.users.FindOne(ctx, bson.M{"_id": uid}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
