package tenantctx

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// contextFile is the durable slug pair under the installation state dir.
const contextFile = "context.json"

// PersistStore durably stores the last resolved slug pair. The file is
// shared across processes and externally mutable: Load reads it fresh every
// time, and callers always revalidate the pair against live memberships.
type PersistStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewPersistStore creates a store rooted at the installation state dir.
func NewPersistStore(stateDir string, logger *slog.Logger) *PersistStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStore{path: filepath.Join(stateDir, contextFile), logger: logger}
}

// Load returns the persisted pair, reporting false when none is stored or
// the file is unreadable. A corrupt file is treated as absent, not fatal.
func (s *PersistStore) Load() (PersistedContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return PersistedContext{}, false
	}
	var pc PersistedContext
	if err := json.Unmarshal(raw, &pc); err != nil {
		s.logger.Warn("discarding corrupt persisted context", "error", err)
		return PersistedContext{}, false
	}
	if pc.TenantSlug == "" {
		return PersistedContext{}, false
	}
	return pc, true
}

// Save stores the winning slug pair for the next session.
func (s *PersistStore) Save(pc PersistedContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(pc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Clear removes the stored pair. Called on logout so a later login cannot
// see the previous user's tenant name.
func (s *PersistStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("clearing persisted context", "error", err)
	}
}
