package dice

import (
	"math/rand"
	"sync"
)

// Source supplies uniformly distributed integers in [0, n).
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic source for seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// SequenceSource replays forced die faces before falling back to a seeded
// source. A forced face is clamped into [1, n] for the die being rolled.
type SequenceSource struct {
	mu       sync.Mutex
	faces    []int
	fallback Source
}

// NewSequenceSource returns a source that yields faces in order.
func NewSequenceSource(fallback Source, faces ...int) *SequenceSource {
	if fallback == nil {
		fallback = NewSource(1)
	}
	return &SequenceSource{faces: append([]int(nil), faces...), fallback: fallback}
}

// Push appends forced faces to the queue.
func (s *SequenceSource) Push(faces ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = append(s.faces, faces...)
}

// Pending reports how many forced faces remain.
func (s *SequenceSource) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces)
}

// Intn returns the next forced face minus one, so rollDie reports it as-is.
func (s *SequenceSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faces) == 0 {
		return s.fallback.Intn(n)
	}
	face := s.faces[0]
	s.faces = s.faces[1:]
	if face < 1 {
		face = 1
	}
	if face > n {
		face = n
	}
	return face - 1
}
