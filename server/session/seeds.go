package session

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"sync"
	"time"
)

// SeedStream derives per-game deck seeds from one base seed (splitmix64), so a run
// started from the same base deals the same games in the same order.
type SeedStream struct {
	mu    sync.Mutex
	state uint64
}

func NewSeedStream(base uint64) *SeedStream { return &SeedStream{state: base} }

func (s *SeedStream) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return int64(z)
}

// SecureBaseSeed mixes crypto randomness with the clock and pid.
func SecureBaseSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())
	}
	return uint64(time.Now().UnixNano()) ^ 0xA5A5A5A5A5A5A5A5
}

// BaseSeed returns configured when non-zero, otherwise a fresh secure seed.
func BaseSeed(configured int64) uint64 {
	if configured != 0 {
		return uint64(configured)
	}
	return SecureBaseSeed()
}
