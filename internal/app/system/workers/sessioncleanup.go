// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionExpirer closes sessions whose expiry is before now and reports how
// many were closed. authprovider.Mongo implements it.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context, now time.Time) (int, error)
}

// SessionCleanup is a background worker that ends expired sessions so
// sign-out notifications reach the session resolver before the TTL index
// removes the records.
type SessionCleanup struct {
	expirer  SessionExpirer
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker that runs every interval.
func NewSessionCleanup(expirer SessionExpirer, logger *zap.Logger, interval time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionCleanup{
		expirer:  expirer,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *SessionCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.expirer.ExpireSessions(ctx, time.Now())
	if err != nil {
		w.log.Error("failed to expire sessions", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("expired sessions closed", zap.Int("count", count))
	}
}
