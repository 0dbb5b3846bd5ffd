package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cockpit/internal/api"
	"cockpit/internal/platform/metrics"
	dErrors "cockpit/pkg/domain-errors"
)

// refreshKey is the single-flight key; there is exactly one kind of refresh.
const refreshKey = "session-refresh"

// RefreshFunc issues the wire refresh call and returns the renewed session.
type RefreshFunc func(ctx context.Context) (Session, error)

// RefreshViaAPI builds a RefreshFunc on top of the API client. The request
// is marked as the refresh call itself so its own 401 never recurses into
// another refresh.
func RefreshViaAPI(client *api.Client) RefreshFunc {
	return func(ctx context.Context) (Session, error) {
		var payload bootstrapPayload
		if err := client.Post(ctx, "/v1/auth/refresh", nil, &payload, api.AsRefreshCall()); err != nil {
			return Session{}, err
		}
		return payload.toSession()
	}
}

// Coordinator keeps the session valid without ever issuing concurrent
// refresh calls. Two refreshes racing against the backend can invalidate
// each other's credential, so the in-flight call itself is the lock: every
// concurrent caller, reactive or proactive, attaches to it and shares its
// outcome.
type Coordinator struct {
	store   *Store
	refresh RefreshFunc
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	lead    time.Duration

	broadcast    *LogoutBroadcast
	clearContext func()

	mu          sync.Mutex
	timer       *time.Timer
	expired     chan struct{}
	expiredOnce *sync.Once
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

// WithRefreshLead sets how long before expiry the proactive refresh fires.
// Default 60 seconds.
func WithRefreshLead(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.lead = d
		}
	}
}

// WithLogoutBroadcast wires the cross-process logout signal.
func WithLogoutBroadcast(b *LogoutBroadcast) CoordinatorOption {
	return func(c *Coordinator) { c.broadcast = b }
}

// WithContextClearer registers the persisted-tenant-context cleanup invoked
// on logout and terminal session expiry, so a later login cannot see the
// previous user's tenant.
func WithContextClearer(fn func()) CoordinatorOption {
	return func(c *Coordinator) { c.clearContext = fn }
}

// NewCoordinator creates a refresh coordinator over the given store.
func NewCoordinator(store *Store, refresh RefreshFunc, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:       store,
		refresh:     refresh,
		logger:      slog.Default(),
		lead:        60 * time.Second,
		expired:     make(chan struct{}),
		expiredOnce: &sync.Once{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession installs a freshly bootstrapped session (login, signup, or
// session exchange) and arms the proactive refresh timer.
func (c *Coordinator) StartSession(sess Session) {
	c.store.Set(sess)
	c.mu.Lock()
	c.expired = make(chan struct{})
	c.expiredOnce = &sync.Once{}
	c.mu.Unlock()
	c.schedule(sess)
}

// Refresh renews the session. Concurrent callers share one in-flight call
// and resolve with its outcome; exactly one wire refresh is issued.
// Implements api.Refresher for the client's reactive 401 path.
func (c *Coordinator) Refresh(ctx context.Context) error {
	_, err, shared := c.group.Do(refreshKey, func() (any, error) {
		if c.metrics != nil {
			c.metrics.RefreshAttempts.Inc()
		}
		sess, err := c.refresh(ctx)
		if err != nil {
			if c.metrics != nil {
				c.metrics.RefreshFailures.Inc()
			}
			if dErrors.HasCode(err, dErrors.CodeSessionExpired) {
				c.expire(ctx)
			}
			return nil, err
		}
		c.store.Set(sess)
		return sess, nil
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.DebugContext(ctx, "joined in-flight session refresh")
	}
	// Scheduling happens outside the single-flight call so an immediate
	// re-refresh cannot join the call that just completed.
	c.schedule(c.store.Current())
	return nil
}

// schedule arms the proactive timer to fire lead before expiry. When the
// remaining time is already inside the lead window (clock skew, process
// woken from sleep) it refreshes immediately instead of arming a
// negative-delay timer.
func (c *Coordinator) schedule(sess Session) {
	if !sess.Authenticated {
		return
	}
	delay := time.Until(sess.ExpiresAt) - c.lead

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	if delay <= 0 {
		c.timer = nil
		c.mu.Unlock()
		go func() {
			if err := c.Refresh(context.Background()); err != nil {
				c.logger.Warn("immediate proactive refresh failed", "error", err)
			}
		}()
		return
	}
	c.timer = time.AfterFunc(delay, func() {
		if err := c.Refresh(context.Background()); err != nil {
			c.logger.Warn("proactive refresh failed", "error", err)
		}
	})
	c.mu.Unlock()
}

// expire handles terminal refresh failure: the long-lived credential is
// gone. Clears the session, clears persisted tenant context, announces the
// logout to sibling processes, and closes the expiry channel exactly once.
func (c *Coordinator) expire(ctx context.Context) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	once := c.expiredOnce
	ch := c.expired
	c.mu.Unlock()

	once.Do(func() {
		c.store.Clear()
		if c.clearContext != nil {
			c.clearContext()
		}
		if c.broadcast != nil {
			if err := c.broadcast.Announce(); err != nil {
				c.logger.Warn("announcing logout", "error", err)
			}
		}
		if c.metrics != nil {
			c.metrics.SessionsExpired.Inc()
		}
		c.logger.InfoContext(ctx, "session expired, cleared local state")
		close(ch)
	})
}

// Expired returns a channel closed when the current session terminally
// expires. Observers branch on it once; repeated observation does not
// re-trigger logout logic.
func (c *Coordinator) Expired() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Logout clears local session state on explicit user logout and announces
// it to sibling processes. The wire logout call is the caller's
// responsibility; local state is destroyed regardless of its outcome.
func (c *Coordinator) Logout() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.store.Clear()
	if c.clearContext != nil {
		c.clearContext()
	}
	if c.broadcast != nil {
		if err := c.broadcast.Announce(); err != nil {
			c.logger.Warn("announcing logout", "error", err)
		}
	}
}

// Stop disarms the proactive timer. For process shutdown.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
