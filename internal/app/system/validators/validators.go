// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("payments", paymentsSchema())
	ensure("discounts", discountsSchema())
	ensure("reminders", remindersSchema())
	ensure("receipts", receiptsSchema())

	ensure("auth_identities", nil)
	ensure("auth_sessions", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection makes sure name exists; created is true only when this
// call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErrorMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

var number = bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "email", "user_name", "role", "status"},
			"properties": bson.M{
				"_id":          nonBlank,
				"email":        nonBlank,
				"user_name":    nonBlank,
				"user_name_ci": nonBlank,
				"role":         bson.M{"enum": bson.A{"admin", "tenant"}},
				"status":       bson.M{"enum": bson.A{"active", "pending", "inactive"}},
				"building_id":  bson.M{"bsonType": "string"},
				"unit_no":      bson.M{"bsonType": "string"},
				"monthly_rent": number,
			},
		},
	}
}

func paymentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"tenant_id", "building_id", "monthly_rent", "status", "timestamp"},
			"properties": bson.M{
				"tenant_id":    nonBlank,
				"building_id":  nonBlank,
				"monthly_rent": number,
				"status":       bson.M{"enum": bson.A{"completed", "pending", "failed", "disputed"}},
				"timestamp":    bson.M{"bsonType": "date"},
				"payment_date": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func discountsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"payment_id", "tenant_id", "building_id", "amount", "original_amount", "created_at"},
			"properties": bson.M{
				"payment_id":      bson.M{"bsonType": "objectId"},
				"tenant_id":       nonBlank,
				"building_id":     nonBlank,
				"amount":          number,
				"original_amount": number,
				"created_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}

func remindersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"tenant_id", "building_id", "channel", "day", "created_at"},
			"properties": bson.M{
				"tenant_id":    nonBlank,
				"building_id":  nonBlank,
				"amount":       number,
				"days_overdue": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"channel":      bson.M{"enum": bson.A{"manual", "scheduled"}},
				"day":          bson.M{"bsonType": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func receiptsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"payment_id", "tenant_id", "amount", "transaction_id", "issued_at"},
			"properties": bson.M{
				"payment_id":     bson.M{"bsonType": "objectId"},
				"tenant_id":      nonBlank,
				"amount":         number,
				"transaction_id": nonBlank,
				"issued_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}
