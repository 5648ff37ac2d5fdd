// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	adminfeature "github.com/condopay/condopay/internal/app/features/admin"
	auditlogfeature "github.com/condopay/condopay/internal/app/features/auditlog"
	dashboardfeature "github.com/condopay/condopay/internal/app/features/dashboard"
	errorsfeature "github.com/condopay/condopay/internal/app/features/errors"
	healthfeature "github.com/condopay/condopay/internal/app/features/health"
	loginfeature "github.com/condopay/condopay/internal/app/features/login"
	logoutfeature "github.com/condopay/condopay/internal/app/features/logout"
	paymentsfeature "github.com/condopay/condopay/internal/app/features/payments"
	registerfeature "github.com/condopay/condopay/internal/app/features/register"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for CondoPay.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed, so deps.Services is populated.
//
// The session middleware runs on every request and puts the resolved
// session state in the context; each feature router applies its own guard.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.Services
	if svc == nil || svc.Provider == nil {
		return nil, errors.New("build handler: startup did not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.Attach(svc.Provider, svc.Resolver)
	sessionMgr.SetLoadWait(appCfg.SessionLoadWait)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Global session middleware: resolves the cookie into session state.
	r.Use(sessionMgr.LoadSession)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Get("/forbidden", errorsHandler.Forbidden)

	// Authentication: sign-in lives at the root, registration is two steps.
	loginHandler := loginfeature.NewHandler(svc.Provider, sessionMgr, errLog, svc.Audit, logger)
	loginfeature.MountRoutes(r, loginHandler, sessionMgr, svc.Limiter)

	drafts := registerfeature.NewDrafts(appCfg.SessionKey, secure)
	registerHandler := registerfeature.NewHandler(db, svc.Provider, sessionMgr, drafts, errLog, svc.Audit, logger)
	registerfeature.MountRoutes(r, registerHandler, sessionMgr)

	logoutHandler := logoutfeature.NewHandler(svc.Provider, sessionMgr, svc.Audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Role-dependent dashboard
	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Building administration, with the activity feed nested under it
	adminHandler := adminfeature.NewHandler(db, svc.Provider, svc.Reminders, svc.Location, errLog, svc.Audit, logger)
	adminRouter := adminfeature.Routes(adminHandler, sessionMgr)
	activityHandler := auditlogfeature.NewHandler(db, errLog, logger)
	adminRouter.Mount("/activity", auditlogfeature.Routes(activityHandler, sessionMgr))
	r.Mount("/admin", adminRouter)

	// Tenant payments
	paymentsHandler := paymentsfeature.NewHandler(db, errLog, logger)
	r.Mount("/payments", paymentsfeature.Routes(paymentsHandler, sessionMgr))

	return r, nil
}
