package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// markerFile is the short-lived logout signal written into the shared state
// directory. Other processes sharing the directory observe it and stop
// issuing now-invalid requests.
const markerFile = "logout.signal"

// markerTTL is how long the marker stays on disk before removal.
const markerTTL = 100 * time.Millisecond

// LogoutBroadcast treats the shared state directory as a simple broadcast
// channel: write a marker, delete it shortly after. Watchers poll and
// deduplicate, so repeated signals are idempotent.
type LogoutBroadcast struct {
	dir    string
	logger *slog.Logger
}

// NewLogoutBroadcast creates a broadcaster over the given state directory.
func NewLogoutBroadcast(stateDir string, logger *slog.Logger) *LogoutBroadcast {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogoutBroadcast{dir: stateDir, logger: logger}
}

func (b *LogoutBroadcast) path() string {
	return filepath.Join(b.dir, markerFile)
}

// Announce writes the logout marker and schedules its removal. The marker
// content is unique per announcement so watchers can deduplicate.
func (b *LogoutBroadcast) Announce() error {
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(b.path(), []byte(uuid.NewString()), 0o600); err != nil {
		return err
	}
	time.AfterFunc(markerTTL, func() {
		if err := os.Remove(b.path()); err != nil && !os.IsNotExist(err) {
			b.logger.Warn("removing logout marker", "error", err)
		}
	})
	return nil
}

// Watch polls for logout markers until ctx is done, invoking fn once per
// distinct announcement. A marker observed twice (or re-announced with the
// same content) does not re-trigger fn.
func (b *LogoutBroadcast) Watch(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	var lastSeen string
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			raw, err := os.ReadFile(b.path())
			if err != nil {
				continue
			}
			token := string(raw)
			if token == "" || token == lastSeen {
				continue
			}
			lastSeen = token
			fn()
		}
	}
}
