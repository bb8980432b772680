package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"etfdesk/internal/checklist"
	"etfdesk/internal/domain"
)

// Options configures a Manager.
type Options struct {
	IdleTTL       time.Duration // 0 keeps sessions until deleted
	SeedWatchlist []string
	Logger        *slog.Logger
}

// Manager creates, finds and expires sessions.
type Manager struct {
	checklist *checklist.Checklist
	seed      []string
	idleTTL   time.Duration
	now       func() time.Time
	log       *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose sessions share the immutable checklist
// cl.
func NewManager(cl *checklist.Checklist, opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "sessions")

	seed := make([]string, 0, len(opts.SeedWatchlist))
	for i, sym := range opts.SeedWatchlist {
		if domain.NormalizeSymbol(sym) == "" {
			log.Warn("skipping blank watchlist seed", "index", i)
			continue
		}
		seed = append(seed, sym)
	}
	return &Manager{
		checklist: cl,
		seed:      seed,
		idleTTL:   opts.IdleTTL,
		now:       time.Now,
		log:       log,
		sessions:  make(map[string]*Session),
	}
}

// Checklist returns the checklist shared by all sessions.
func (m *Manager) Checklist() *checklist.Checklist {
	return m.checklist
}

// Create starts a new empty session.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.now(), m.checklist, m.seed)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.Info("session created", "session", s.ID)
	return s
}

// Get returns the session with id and marks it as seen.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	s.touch(m.now())
	return s, nil
}

// Delete ends a session, discarding its state.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	delete(m.sessions, id)
	m.log.Info("session ended", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle longer than the configured TTL and returns how
// many were removed.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.log.Info("expired idle sessions", "count", n, "remaining", len(m.sessions))
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
