// Package paymentqueries provides read-only queries that span the users and
// payments collections for one building.
package paymentqueries

import (
	"context"
	"fmt"

	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Snapshot is the active tenants and every payment of a building, as read at
// one time.
type Snapshot struct {
	Tenants  []models.User
	Payments []models.Payment
}

// BuildingSnapshot loads the active tenants and the payments of buildingID.
// Pending and inactive tenants are left out, so they never count toward the
// stats, the overdue list or reminders. Payments are sorted newest first.
func BuildingSnapshot(ctx context.Context, db *mongo.Database, buildingID string) (Snapshot, error) {
	snap := Snapshot{Tenants: []models.User{}, Payments: []models.Payment{}}

	cur, err := db.Collection("users").Find(ctx, bson.M{
		"role":        models.RoleTenant,
		"building_id": buildingID,
		"status":      models.StatusActive,
	})
	if err != nil {
		return snap, fmt.Errorf("find tenants: %w", err)
	}
	if err := cur.All(ctx, &snap.Tenants); err != nil {
		return snap, fmt.Errorf("decode tenants: %w", err)
	}

	cur, err = db.Collection("payments").Find(ctx,
		bson.M{"building_id": buildingID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return snap, fmt.Errorf("find payments: %w", err)
	}
	if err := cur.All(ctx, &snap.Payments); err != nil {
		return snap, fmt.Errorf("decode payments: %w", err)
	}

	return snap, nil
}

// TenantCounts are the tenant totals shown on the admin overview.
type TenantCounts struct {
	Total   int64 `json:"totalTenants"`
	Active  int64 `json:"activeTenants"`
	Pending int64 `json:"pendingApprovals"`
}

// CountTenantsByStatus groups the tenants of buildingID by status.
// A tenant whose status is neither active nor inactive counts as pending.
func CountTenantsByStatus(ctx context.Context, db *mongo.Database, buildingID string) (TenantCounts, error) {
	var out TenantCounts

	pipeline := []bson.M{
		{"$match": bson.M{"role": models.RoleTenant, "building_id": buildingID}},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}

	cur, err := db.Collection("users").Aggregate(ctx, pipeline)
	if err != nil {
		return out, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return out, err
		}
		out.Total += row.Count
		switch row.Status {
		case models.StatusActive:
			out.Active += row.Count
		case models.StatusInactive:
		default:
			out.Pending += row.Count
		}
	}
	return out, cur.Err()
}
