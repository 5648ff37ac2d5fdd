// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/condopay/condopay/internal/app/store/audit"
	"github.com/condopay/condopay/internal/app/store/discounts"
	"github.com/condopay/condopay/internal/app/store/identities"
	paymentstore "github.com/condopay/condopay/internal/app/store/payments"
	"github.com/condopay/condopay/internal/app/store/receipts"
	"github.com/condopay/condopay/internal/app/store/reminders"
	"github.com/condopay/condopay/internal/app/store/sessions"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Ensurer is implemented by every store that owns indexes.
type Ensurer interface {
	EnsureIndexes(ctx context.Context) error
}

// Target names the collection an Ensurer manages.
type Target struct {
	Collection string
	Ensurer    Ensurer
}

// Targets lists every collection with indexes, in creation order.
func Targets(db *mongo.Database) []Target {
	return []Target{
		{"users", userstore.New(db)},
		{"payments", paymentstore.New(db)},
		{"discounts", discounts.New(db)},
		{"reminders", reminders.New(db)},
		{"receipts", receipts.New(db)},
		{"auth_identities", identities.New(db)},
		{"auth_sessions", sessions.New(db)},
		{"audit_events", audit.New(db)},
	}
}

/*
EnsureAll is called at startup. Each EnsureIndexes is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	return Ensure(ctx, Targets(db))
}

// Ensure runs every target and joins the failures.
func Ensure(ctx context.Context, targets []Target) error {
	var problems []string

	for _, t := range targets {
		start := time.Now()
		if err := t.Ensurer.EnsureIndexes(ctx); err != nil {
			if isOptionsConflictErr(err) {
				zap.L().Warn("index exists with different options; drop it and restart",
					zap.String("collection", t.Collection),
					zap.Error(err))
			}
			problems = append(problems, t.Collection+": "+err.Error())
			continue
		}
		zap.L().Info("indexes ensured",
			zap.String("collection", t.Collection),
			zap.String("took", time.Since(start).String()))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Mongo/DocDB returns IndexOptionsConflict or IndexKeySpecsConflict when an
// index with the same name or keys exists with different options.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "IndexKeySpecsConflict")
}
