package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cockpit/pkg/domain-errors"
	"cockpit/pkg/domain"
	"cockpit/pkg/testutil"
)

func validSession() Session {
	return Session{
		UserID:        domain.NewUserID(),
		ExpiresAt:     time.Now().Add(time.Hour),
		ExpiresIn:     time.Hour,
		Authenticated: true,
	}
}

// Issuing many refreshes concurrently results in exactly one underlying
// refresh call; every caller resolves with the same renewed session.
func TestRefresh_SingleFlight(t *testing.T) {
	store := NewStore()
	var calls atomic.Int32
	renewed := validSession()
	gate := make(chan struct{})

	coord := NewCoordinator(store, func(ctx context.Context) (Session, error) {
		calls.Add(1)
		<-gate // hold the call open so every goroutine overlaps it
		return renewed, nil
	})

	started := make(chan struct{}, 32)
	done := make(chan *testutil.ConcurrentResult, 1)
	go func() {
		done <- testutil.RunConcurrent(32, func(int) error {
			started <- struct{}{}
			return coord.Refresh(context.Background())
		})
	}()

	for i := 0; i < 32; i++ {
		<-started
	}
	// Give the goroutines a beat to reach the in-flight call, then release.
	time.Sleep(20 * time.Millisecond)
	close(gate)

	result := <-done
	assert.Equal(t, int32(32), result.Successes)
	assert.Equal(t, int32(1), calls.Load(), "exactly one wire refresh")
	assert.Equal(t, renewed.UserID, store.Current().UserID)
}

func TestRefresh_SequentialCallsEachHitTheWire(t *testing.T) {
	store := NewStore()
	var calls atomic.Int32
	coord := NewCoordinator(store, func(ctx context.Context) (Session, error) {
		calls.Add(1)
		return validSession(), nil
	})

	require.NoError(t, coord.Refresh(context.Background()))
	require.NoError(t, coord.Refresh(context.Background()))
	assert.Equal(t, int32(2), calls.Load(), "single-flight shares in-flight calls only")
}

func TestRefresh_TerminalFailureClearsEverythingOnce(t *testing.T) {
	store := NewStore()
	store.Set(validSession())

	var cleared atomic.Int32
	coord := NewCoordinator(store,
		func(ctx context.Context) (Session, error) {
			return Session{}, dErrors.New(dErrors.CodeSessionExpired, "refresh token expired")
		},
		WithContextClearer(func() { cleared.Add(1) }),
	)

	err := coord.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSessionExpired))
	assert.False(t, store.Authenticated())
	assert.Equal(t, int32(1), cleared.Load())

	select {
	case <-coord.Expired():
	default:
		t.Fatal("expired channel not closed")
	}

	// A second terminal failure must not re-trigger the logout logic.
	_ = coord.Refresh(context.Background())
	assert.Equal(t, int32(1), cleared.Load())
}

func TestRefresh_GenericFailureIsNotTerminal(t *testing.T) {
	store := NewStore()
	store.Set(validSession())

	coord := NewCoordinator(store, func(ctx context.Context) (Session, error) {
		return Session{}, dErrors.New(dErrors.CodeServerError, "backend down")
	})

	err := coord.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, store.Authenticated(), "a transient refresh failure keeps the session")

	select {
	case <-coord.Expired():
		t.Fatal("expired channel closed on a transient failure")
	default:
	}
}

func TestProactive_TimerFiresBeforeExpiry(t *testing.T) {
	store := NewStore()
	refreshed := make(chan struct{}, 1)

	coord := NewCoordinator(store,
		func(ctx context.Context) (Session, error) {
			select {
			case refreshed <- struct{}{}:
			default:
			}
			return validSession(), nil
		},
		WithRefreshLead(50*time.Millisecond),
	)

	sess := validSession()
	sess.ExpiresAt = time.Now().Add(80 * time.Millisecond)
	coord.StartSession(sess)
	defer coord.Stop()

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("proactive refresh never fired")
	}
}

func TestProactive_InsideLeadWindowRefreshesImmediately(t *testing.T) {
	store := NewStore()
	refreshed := make(chan struct{}, 1)

	coord := NewCoordinator(store,
		func(ctx context.Context) (Session, error) {
			select {
			case refreshed <- struct{}{}:
			default:
			}
			return validSession(), nil
		},
		WithRefreshLead(time.Minute),
	)

	// Remaining time is already inside the lead window: no negative-delay
	// timer, refresh runs now.
	sess := validSession()
	sess.ExpiresAt = time.Now().Add(time.Second)
	coord.StartSession(sess)
	defer coord.Stop()

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("immediate refresh never fired")
	}
}

func TestStartSession_ResetsExpiredChannel(t *testing.T) {
	store := NewStore()
	coord := NewCoordinator(store, func(ctx context.Context) (Session, error) {
		return Session{}, dErrors.New(dErrors.CodeSessionExpired, "gone")
	})

	store.Set(validSession())
	_ = coord.Refresh(context.Background())
	select {
	case <-coord.Expired():
	default:
		t.Fatal("expected expiry")
	}

	coord.StartSession(validSession())
	defer coord.Stop()
	select {
	case <-coord.Expired():
		t.Fatal("fresh session must have an open expiry channel")
	default:
	}
}

func TestLogout_ClearsStateAndContext(t *testing.T) {
	store := NewStore()
	store.Set(validSession())

	var cleared atomic.Int32
	coord := NewCoordinator(store,
		func(ctx context.Context) (Session, error) { return validSession(), nil },
		WithContextClearer(func() { cleared.Add(1) }),
	)

	coord.Logout()
	assert.False(t, store.Authenticated())
	assert.Equal(t, int32(1), cleared.Load())
}
