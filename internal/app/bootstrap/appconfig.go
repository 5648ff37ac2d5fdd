// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for CondoPay.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent app-level
// configuration, not WAFFLE core configuration; ports, TLS, logging and CORS
// stay in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey             string        // Secret key for signing session and draft cookies
	SessionName            string        // Cookie name for sessions (default: condopay-session)
	SessionDomain          string        // Cookie domain (blank means current host)
	SessionTTL             time.Duration // Lifetime of a signed-in session
	SessionLoadWait        time.Duration // How long a request waits for the profile fetch
	SessionCleanupInterval time.Duration // How often expired sessions are closed

	// Redis (optional). When RedisAddr is blank, login throttling is in-memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Reminders
	ReminderCron string // cron spec for the daily overdue reminder job
	Timezone     string // IANA zone for the cron schedule and month filters

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Bootstrap admin, promoted on startup when both are set
	AdminEmail    string
	AdminBuilding string

	// Handler timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
