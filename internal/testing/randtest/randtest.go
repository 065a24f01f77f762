// Package randtest provides scripted randomness for deterministic game tests.
package randtest

import "sync"

// Scripted replays queued values and falls back to fixed defaults once a
// queue is drained. It is safe for concurrent use.
type Scripted struct {
	mu sync.Mutex

	Floats []float64
	Ints   []int
	Int64s []int64

	DefaultFloat float64
	DefaultInt   int
	DefaultInt64 int64
}

// NoEvents returns a source whose Float64 rolls never fall under a small
// probability and whose IntN always picks the first bucket.
func NoEvents() *Scripted {
	return &Scripted{DefaultFloat: 0.999999}
}

// Always returns a source whose Float64 always yields f
func Always(f float64) *Scripted {
	return &Scripted{DefaultFloat: f}
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return s.DefaultFloat
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.DefaultInt
	if len(s.Ints) > 0 {
		v = s.Ints[0]
		s.Ints = s.Ints[1:]
	}
	if v >= n {
		return n - 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func (s *Scripted) Int64() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Int64s) == 0 {
		return s.DefaultInt64
	}
	v := s.Int64s[0]
	s.Int64s = s.Int64s[1:]
	return v
}
