// Package session holds per-user dashboard state. Each Session owns its own
// ledger, watchlist and checklist ticks; nothing is shared between sessions
// and nothing outlives the process.
package session

import (
	"fmt"
	"sync"
	"time"

	"etfdesk/internal/checklist"
	"etfdesk/internal/domain"
	"etfdesk/internal/journal"
	"etfdesk/internal/watchlist"
)

// Session is one user's in-memory dashboard state.
type Session struct {
	ID      string
	Created time.Time

	ledger    *journal.Ledger
	watchlist *watchlist.Watchlist
	checklist *checklist.Checklist

	mu       sync.Mutex
	checked  map[checklist.TaskKey]bool
	lastSeen time.Time
}

func newSession(id string, now time.Time, cl *checklist.Checklist, seed []string) *Session {
	return &Session{
		ID:        id,
		Created:   now,
		ledger:    journal.NewLedger(),
		watchlist: watchlist.New(seed...),
		checklist: cl,
		checked:   make(map[checklist.TaskKey]bool),
		lastSeen:  now,
	}
}

// AddTrade validates in and appends the resulting trade to the ledger.
func (s *Session) AddTrade(in journal.TradeInput) (domain.Trade, error) {
	t, err := journal.NewTrade(in)
	if err != nil {
		return domain.Trade{}, err
	}
	s.ledger.Append(t)
	return t, nil
}

// Trades returns a snapshot of the ledger.
func (s *Session) Trades() []domain.Trade {
	return s.ledger.Snapshot()
}

// Summary computes statistics over the current ledger.
func (s *Session) Summary() journal.Summary {
	return journal.Summarize(s.ledger.Snapshot())
}

// Watchlist returns the session watchlist.
func (s *Session) Watchlist() *watchlist.Watchlist {
	return s.watchlist
}

// TaskStatus is one checklist task with its tick state.
type TaskStatus struct {
	Task string `json:"task"`
	Done bool   `json:"done"`
}

// SectionStatus is one checklist section with task states in order.
type SectionStatus struct {
	Label string       `json:"label"`
	Tasks []TaskStatus `json:"tasks"`
}

// SetTask ticks or unticks a checklist task.
func (s *Session) SetTask(section, task string, done bool) error {
	if !s.checklist.Has(section, task) {
		return fmt.Errorf("checklist task %q in %q: %w", task, section, domain.ErrNotFound)
	}
	k := checklist.Key(section, task)
	s.mu.Lock()
	if done {
		s.checked[k] = true
	} else {
		delete(s.checked, k)
	}
	s.mu.Unlock()
	return nil
}

// ChecklistStatus returns every task with its tick state, in checklist
// order.
func (s *Session) ChecklistStatus() []SectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	secs := s.checklist.Sections()
	out := make([]SectionStatus, len(secs))
	for i, sec := range secs {
		st := SectionStatus{Label: sec.Label, Tasks: make([]TaskStatus, len(sec.Tasks))}
		for j, task := range sec.Tasks {
			st.Tasks[j] = TaskStatus{Task: task, Done: s.checked[checklist.Key(sec.Label, task)]}
		}
		out[i] = st
	}
	return out
}

// LastSeen returns the time of the most recent lookup.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}
