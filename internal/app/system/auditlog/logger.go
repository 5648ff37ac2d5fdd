// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/condopay/condopay/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in, sign-out and registration events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for building admin actions (tenant status, payments, reminders).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// ValidSetting reports whether v is a recognised Config value. Blank means "all".
func ValidSetting(v string) bool {
	switch v {
	case "", "all", "db", "log", "off":
		return true
	}
	return false
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.BuildingID != "" {
		fields = append(fields, zap.String("building_id", event.BuildingID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, buildingID, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLoginSuccess,
		UserID:     userID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details:    map[string]string{"email": email},
	})
}

// LoginFailed logs a rejected sign-in. reason is the provider error code.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": email},
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID, buildingID string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLogout,
		UserID:     userID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
	})
}

// Registered logs a completed tenant registration.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID, buildingID, unitNo string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventRegistered,
		UserID:     userID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details:    map[string]string{"unit_no": unitNo},
	})
}

// --- Admin Events ---

// TenantStatusChanged logs an admin changing a tenant's account status.
func (l *Logger) TenantStatusChanged(ctx context.Context, r *http.Request, actorID, tenantID, buildingID, oldStatus, newStatus string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventTenantStatusChanged,
		UserID:     tenantID,
		ActorID:    actorID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details: map[string]string{
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	})
}

// TenantRemoved logs an admin deleting a tenant.
func (l *Logger) TenantRemoved(ctx context.Context, r *http.Request, actorID, tenantID, buildingID, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventTenantRemoved,
		UserID:     tenantID,
		ActorID:    actorID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details:    map[string]string{"email": email},
	})
}

// PaymentMarkedPaid logs an admin marking a payment as paid.
func (l *Logger) PaymentMarkedPaid(ctx context.Context, r *http.Request, actorID, tenantID, buildingID, paymentID, transactionID string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventPaymentMarkedPaid,
		UserID:     tenantID,
		ActorID:    actorID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details: map[string]string{
			"payment_id":     paymentID,
			"transaction_id": transactionID,
		},
	})
}

// DiscountApplied logs an admin reducing a payment amount.
func (l *Logger) DiscountApplied(ctx context.Context, r *http.Request, actorID, tenantID, buildingID, paymentID string, oldAmount, newAmount float64) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventDiscountApplied,
		UserID:     tenantID,
		ActorID:    actorID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details: map[string]string{
			"payment_id": paymentID,
			"old_amount": fmt.Sprintf("%.2f", oldAmount),
			"new_amount": fmt.Sprintf("%.2f", newAmount),
		},
	})
}

// RemindersSent logs an admin triggering overdue reminders by hand.
func (l *Logger) RemindersSent(ctx context.Context, r *http.Request, actorID, buildingID string, count int) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventRemindersSent,
		ActorID:    actorID,
		BuildingID: buildingID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details:    map[string]string{"count": strconv.Itoa(count)},
	})
}

// AdminPromoted logs a user being granted the admin role outside the web UI.
// source is "cli" or "startup".
func (l *Logger) AdminPromoted(ctx context.Context, userID, buildingID, email, source string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventAdminPromoted,
		UserID:     userID,
		BuildingID: buildingID,
		Success:    true,
		Details:    map[string]string{"email": email, "source": source},
	})
}

// --- System Events ---

// RemindersScheduled logs a scheduled reminder run for one building.
func (l *Logger) RemindersScheduled(ctx context.Context, buildingID string, count int) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategorySystem,
		EventType:  audit.EventRemindersScheduled,
		BuildingID: buildingID,
		Success:    true,
		Details:    map[string]string{"count": strconv.Itoa(count)},
	})
}
