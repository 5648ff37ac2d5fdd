// Package session tracks, per signed-in session, the user profile and admin
// flag the rest of the application authorizes against.
//
// The Resolver listens to provider session-change events. On sign-in it marks
// the session loading and fetches the profile in the background; on sign-out
// it clears the session. Results that arrive after Dispose or after a newer
// event for the same session are discarded.
package session

import (
	"context"
	"sync"

	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/domain/models"
	"go.uber.org/zap"
)

// ProfileFetcher loads a user profile by UID.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, uid string) (*models.User, error)
}

// State is what guards and handlers see for a session.
type State struct {
	User    *models.User
	IsAdmin bool
	Loading bool
}

type entry struct {
	state State
	gen   uint64
	done  chan struct{} // closed when state stops loading or is superseded
}

// Resolver maps session IDs to resolved profiles.
type Resolver struct {
	provider authprovider.Provider
	profiles ProfileFetcher
	log      *zap.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	unsub    func()
	started  bool
	disposed bool

	wg sync.WaitGroup
}

// New creates a Resolver. Call Start to begin receiving events.
func New(provider authprovider.Provider, profiles ProfileFetcher, logger *zap.Logger) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		provider: provider,
		profiles: profiles,
		log:      logger,
		entries:  make(map[string]*entry),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to provider events. Profile fetches are cancelled when ctx
// ends or Dispose is called.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.disposed {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.cancel()
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	unsub := r.provider.Subscribe(r.handle)

	r.mu.Lock()
	r.unsub = unsub
	r.mu.Unlock()
}

// Dispose unsubscribes, cancels in-flight fetches and waits for them.
func (r *Resolver) Dispose() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.disposed = true
	unsub := r.unsub
	r.unsub = nil
	r.cancel()
	for _, e := range r.entries {
		closeDone(e)
	}
	r.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	r.wg.Wait()
}

// State returns the current state for sessionID. Unknown sessions are
// signed out.
func (r *Resolver) State(sessionID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		return e.state
	}
	return State{}
}

// Ensure starts resolving s if the resolver has not seen it yet (for
// example after a restart) and returns the current state.
func (r *Resolver) Ensure(s authprovider.Session) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[s.ID]; ok {
		return e.state
	}
	if r.disposed {
		return State{}
	}
	return r.beginLocked(s.ID, s.Identity).state
}

// Resolve is Ensure followed by Wait.
func (r *Resolver) Resolve(ctx context.Context, s authprovider.Session) State {
	if st := r.Ensure(s); !st.Loading {
		return st
	}
	return r.Wait(ctx, s.ID)
}

// Refresh refetches the profile of s under a new generation and waits for
// the result. Used after the profile document changes.
func (r *Resolver) Refresh(ctx context.Context, s authprovider.Session) State {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return State{}
	}
	r.beginLocked(s.ID, s.Identity)
	r.mu.Unlock()
	return r.Wait(ctx, s.ID)
}

// Wait blocks until sessionID is no longer loading or ctx ends, and returns
// the state at that point.
func (r *Resolver) Wait(ctx context.Context, sessionID string) State {
	for {
		r.mu.Lock()
		e, ok := r.entries[sessionID]
		if !ok {
			r.mu.Unlock()
			return State{}
		}
		if !e.state.Loading || r.disposed {
			st := e.state
			r.mu.Unlock()
			return st
		}
		done := e.done
		r.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return r.State(sessionID)
		}
	}
}

func (r *Resolver) handle(ev authprovider.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}

	switch ev.Kind {
	case authprovider.SignedIn:
		r.beginLocked(ev.SessionID, ev.Identity)
	case authprovider.SignedOut:
		if e, ok := r.entries[ev.SessionID]; ok {
			closeDone(e)
			delete(r.entries, ev.SessionID)
		}
	}
}

// beginLocked marks sessionID loading under a new generation and starts the
// profile fetch.
func (r *Resolver) beginLocked(sessionID string, id authprovider.Identity) *entry {
	if old, ok := r.entries[sessionID]; ok {
		closeDone(old)
	}
	r.gen++
	e := &entry{
		state: State{Loading: true},
		gen:   r.gen,
		done:  make(chan struct{}),
	}
	r.entries[sessionID] = e

	r.wg.Add(1)
	go r.fetch(r.ctx, sessionID, e.gen, id)
	return e
}

func (r *Resolver) fetch(ctx context.Context, sessionID string, gen uint64, id authprovider.Identity) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	st := State{}
	u, err := r.profiles.FetchProfile(ctx, id.UID)
	if err != nil || u == nil {
		if ctx.Err() == nil {
			r.log.Warn("profile fetch failed; using minimal profile",
				zap.String("uid", id.UID), zap.Error(err))
		}
		st.User = &models.User{ID: id.UID, Email: id.Email}
	} else {
		st.User = u
		st.IsAdmin = u.IsAdmin()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	e, ok := r.entries[sessionID]
	if !ok || e.gen != gen {
		r.log.Debug("discarding stale profile result", zap.String("session", sessionID))
		return
	}
	e.state = st
	closeDone(e)
}

func closeDone(e *entry) {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}
