package session

import (
	"errors"
	"sync"
	"time"

	"chouine/server/engine"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrCapacity     = errors.New("too many games in progress")
)

// Record is a stored game. Callers hold the record's lock while reading or mutating Game.
type Record struct {
	sync.Mutex
	Game      *engine.Game
	Seed      int64
	CreatedAt time.Time
	Reported  bool
}

// Repository stores games by id. Get returns the shared record, so the lock on it
// serializes every request for that game.
type Repository interface {
	Get(id string) (*Record, error)
	Put(rec *Record) error
	Delete(id string) error
}

// MemoryRepository keeps games in process memory. With a positive limit, adding a game
// to a full repository evicts the oldest finished game, or fails with ErrCapacity.
type MemoryRepository struct {
	mu    sync.RWMutex
	games map[string]*Record
	order []string
	limit int
}

func NewMemoryRepository(limit int) *MemoryRepository {
	return &MemoryRepository{games: map[string]*Record{}, limit: limit}
}

func (m *MemoryRepository) Get(id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return rec, nil
}

func (m *MemoryRepository) Put(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := rec.Game.ID
	if _, ok := m.games[id]; ok {
		m.games[id] = rec
		return nil
	}
	if m.limit > 0 && len(m.games) >= m.limit && !m.evictFinished() {
		return ErrCapacity
	}
	m.games[id] = rec
	m.order = append(m.order, id)
	return nil
}

func (m *MemoryRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}
	m.remove(id)
	return nil
}

func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// evictFinished drops the oldest finished game. Records locked by a request are skipped.
func (m *MemoryRepository) evictFinished() bool {
	for _, id := range m.order {
		rec := m.games[id]
		if !rec.TryLock() {
			continue
		}
		over := rec.Game.Over()
		rec.Unlock()
		if over {
			m.remove(id)
			return true
		}
	}
	return false
}

func (m *MemoryRepository) remove(id string) {
	delete(m.games, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
