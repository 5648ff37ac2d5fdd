// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"time"

	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/ratelimit"
	"github.com/condopay/condopay/internal/app/system/session"
	"github.com/condopay/condopay/internal/app/system/tasks"
	"github.com/condopay/condopay/internal/app/system/workers"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client // nil when redis_addr is blank

	// Services is allocated by ConnectDB and filled in by Startup. The hooks
	// receive DBDeps by value, so the pointer is how later hooks see it.
	Services *Services
}

// Services are the long-lived runtime components built at startup.
type Services struct {
	Location  *time.Location
	Limiter   *ratelimit.LoginLimiter
	Provider  *authprovider.Mongo
	Resolver  *session.Resolver
	Audit     *auditlog.Logger
	Reminders *tasks.Reminders
	Scheduler *tasks.Scheduler
	Cleanup   *workers.SessionCleanup
}
