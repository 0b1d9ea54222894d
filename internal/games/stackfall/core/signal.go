package core

import (
	"sync/atomic"
)

// Signal is a synchronous observer list. Handlers run in connection order
// on the emitting goroutine; the returned disconnect func removes exactly
// the handler it was created for and is safe to call more than once.
type Signal[T any] struct {
	handlers []signalHandler[T]
	nextID   uint64
}

type signalHandler[T any] struct {
	id uint64
	fn func(T)
}

// Connect registers fn and returns its disconnect function.
func (s *Signal[T]) Connect(fn func(T)) (disconnect func()) {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, signalHandler[T]{id: id, fn: fn})

	return func() {
		for i, h := range s.handlers {
			if h.id == id {
				s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every connected handler with v.
// Handlers connected or disconnected during Emit take effect on the next Emit.
func (s *Signal[T]) Emit(v T) {
	if len(s.handlers) == 0 {
		return
	}
	snapshot := s.handlers
	for _, h := range snapshot {
		h.fn(v)
	}
}

// Len returns the number of connected handlers.
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}

// Reset disconnects every handler.
func (s *Signal[T]) Reset() {
	s.handlers = nil
}

// GameOver is the process-wide game-over flag. It is written by the
// player-death collaborator and only read by the core.
type GameOver struct {
	flag atomic.Bool
}

// Set raises the flag.
func (g *GameOver) Set() {
	g.flag.Store(true)
}

// IsSet reports whether the game is over. A nil flag is never set.
func (g *GameOver) IsSet() bool {
	if g == nil {
		return false
	}
	return g.flag.Load()
}

// Reset clears the flag for a new run.
func (g *GameOver) Reset() {
	g.flag.Store(false)
}
