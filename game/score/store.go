package score

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxEntries is the size of the high-score table
const MaxEntries = 10

// MaxNameLength bounds player names
const MaxNameLength = 32

var (
	ErrScoreNotRecorded = errors.New("score not recorded")
	ErrInvalidEntry     = errors.New("invalid score entry")
)

// Entry is one row of the high-score table
type Entry struct {
	ID           string    `json:"id"`
	PlayerName   string    `json:"player_name"`
	Score        int       `json:"score"`
	Level        int       `json:"level"`
	RuleCategory string    `json:"rule_category,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Date         time.Time `json:"date"`
}

// Store persists high scores
type Store interface {
	// Add records an entry and returns it with ID and date filled in. rank is the
	// 1-based table position, or 0 when the entry did not make the table.
	Add(entry Entry) (saved Entry, rank int, err error)

	// Top returns up to limit entries, best first
	Top(limit int) ([]Entry, error)
}

// Validate checks an entry before it is stored
func (e Entry) Validate() error {
	name := strings.TrimSpace(e.PlayerName)
	if name == "" {
		return fmt.Errorf("%w: player name is required", ErrInvalidEntry)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: player name longer than %d characters", ErrInvalidEntry, MaxNameLength)
	}
	if e.Score < 0 {
		return fmt.Errorf("%w: score must not be negative", ErrInvalidEntry)
	}
	if e.Level < 1 {
		return fmt.Errorf("%w: level must be at least 1", ErrInvalidEntry)
	}
	return nil
}

// prepare fills ID and date and normalizes the name
func prepare(e Entry) Entry {
	e.PlayerName = strings.TrimSpace(e.PlayerName)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	return e
}

// insert adds e to table, sorts best first, trims to MaxEntries and reports e's rank
func insert(table []Entry, e Entry) ([]Entry, int) {
	table = append(table, e)
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Score > table[j].Score
	})
	if len(table) > MaxEntries {
		table = table[:MaxEntries]
	}
	for i, row := range table {
		if row.ID == e.ID {
			return table, i + 1
		}
	}
	return table, 0
}

func top(table []Entry, limit int) []Entry {
	if limit <= 0 || limit > len(table) {
		limit = len(table)
	}
	out := make([]Entry, limit)
	copy(out, table[:limit])
	return out
}

// MemoryStore keeps the table in memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add records an entry
func (m *MemoryStore) Add(entry Entry) (Entry, int, error) {
	if err := entry.Validate(); err != nil {
		return Entry{}, 0, err
	}
	entry = prepare(entry)

	m.mu.Lock()
	defer m.mu.Unlock()

	var rank int
	m.entries, rank = insert(m.entries, entry)
	return entry, rank, nil
}

// Top returns up to limit entries, best first
func (m *MemoryStore) Top(limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return top(m.entries, limit), nil
}
