// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/condopay/condopay/internal/app/store/audit"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/adminops"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/ratelimit"
	"github.com/condopay/condopay/internal/app/system/session"
	"github.com/condopay/condopay/internal/app/system/tasks"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the auth provider and session resolver, starts the background workers and
// promotes the bootstrap admin.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc := deps.Services
	if svc == nil {
		return errors.New("startup: DBDeps.Services is nil")
	}

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return err
	}
	svc.Location = loc

	svc.Limiter = loginLimiter(deps)
	svc.Audit = auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	svc.Provider = authprovider.NewMongo(deps.MongoDatabase, svc.Limiter, appCfg.SessionTTL, logger)
	svc.Resolver = session.New(svc.Provider, userstore.NewFetcher(deps.MongoDatabase), logger)
	svc.Resolver.Start(context.Background())

	svc.Reminders = tasks.NewReminders(deps.MongoDatabase, svc.Audit, logger).InLocation(loc)
	svc.Scheduler = tasks.NewScheduler(loc, logger)
	if err := svc.Scheduler.Add(svc.Reminders.Job(appCfg.ReminderCron)); err != nil {
		return err
	}
	svc.Scheduler.Start()

	svc.Cleanup = workers.NewSessionCleanup(svc.Provider, logger, appCfg.SessionCleanupInterval)
	svc.Cleanup.Start()

	if appCfg.AdminEmail != "" {
		users := userstore.New(deps.MongoDatabase)
		if err := ensureBootstrapAdmin(ctx, users, svc.Audit, appCfg.AdminEmail, appCfg.AdminBuilding, logger); err != nil {
			return err
		}
	}

	return nil
}

// loginLimiter shares attempt counters across instances when Redis is
// configured and keeps them in memory otherwise.
func loginLimiter(deps DBDeps) *ratelimit.LoginLimiter {
	if deps.Redis == nil {
		return ratelimit.NewLoginLimiter()
	}
	return ratelimit.NewLoginLimiterWith(
		ratelimit.NewRedis(deps.Redis, "condopay:", 10, time.Minute),
		ratelimit.NewRedis(deps.Redis, "condopay:", 5, 5*time.Minute),
	)
}

// ensureBootstrapAdmin promotes the configured admin. A missing account is
// logged and skipped so a fresh deployment can start before the admin has
// registered.
func ensureBootstrapAdmin(ctx context.Context, users *userstore.Store, audit *auditlog.Logger, email, buildingID string, logger *zap.Logger) error {
	u, changed, err := adminops.PromoteAdmin(ctx, users, audit, email, buildingID, "startup")
	switch {
	case errors.Is(err, adminops.ErrNotRegistered):
		logger.Warn("bootstrap admin has not registered yet", zap.String("email", email))
		return nil
	case err != nil:
		logger.Error("bootstrap admin promotion failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if changed {
		logger.Info("bootstrap admin promoted",
			zap.String("user_id", u.ID),
			zap.String("building_id", buildingID))
	}
	return nil
}
