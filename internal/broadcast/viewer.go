// Package broadcast runs one shared simulation and fans its frames out to
// any number of viewers. It knows nothing about SSH or Bubble Tea; the TUI
// layer bridges sessions through ChannelViewer.
package broadcast

import (
	"sync"

	"github.com/vovakirdan/stackfall/internal/core"
)

// ViewerID identifies a connected viewer.
type ViewerID string

// Frame is one rendered state of the shared run.
type Frame struct {
	Tick    uint64
	Run     int // how many runs the channel has started, 1 for the first
	Screen  *core.Screen
	State   core.GameState
	Events  []string
	Viewers int
}

// Viewer is the transport-neutral interface for receiving frames.
type Viewer interface {
	// ID returns the unique viewer identifier.
	ID() ViewerID

	// Send delivers a frame asynchronously. Must be non-blocking.
	Send(f Frame)

	// Done returns a channel that closes when the viewer leaves.
	Done() <-chan struct{}
}

// ChannelViewer is a Viewer backed by a buffered channel.
type ChannelViewer struct {
	id       ViewerID
	frames   chan Frame
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelViewer creates a channel-based viewer. bufferSize controls how
// many frames can queue before old ones are dropped.
func NewChannelViewer(id ViewerID, bufferSize int) *ChannelViewer {
	if bufferSize < 1 {
		bufferSize = 4
	}
	return &ChannelViewer{
		id:     id,
		frames: make(chan Frame, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the viewer identifier.
func (v *ChannelViewer) ID() ViewerID {
	return v.id
}

// Send queues a frame. If the buffer is full the oldest frame is dropped;
// a slow viewer skips frames rather than stalling the run.
func (v *ChannelViewer) Send(f Frame) {
	select {
	case <-v.done:
		return
	default:
	}

	select {
	case v.frames <- f:
	default:
		select {
		case <-v.frames:
		default:
		}
		select {
		case v.frames <- f:
		default:
		}
	}
}

// Frames returns the channel frames arrive on.
func (v *ChannelViewer) Frames() <-chan Frame {
	return v.frames
}

// Done returns the done channel.
func (v *ChannelViewer) Done() <-chan struct{} {
	return v.done
}

// Close marks the viewer as gone. Safe to call multiple times.
func (v *ChannelViewer) Close() {
	v.doneOnce.Do(func() {
		close(v.done)
	})
}

// viewerSet tracks connected viewers. Safe for concurrent use.
type viewerSet struct {
	mu      sync.RWMutex
	viewers map[ViewerID]Viewer
}

func newViewerSet() *viewerSet {
	return &viewerSet{viewers: make(map[ViewerID]Viewer)}
}

func (s *viewerSet) add(v Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[v.ID()] = v
}

func (s *viewerSet) remove(id ViewerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.viewers, id)
}

func (s *viewerSet) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.viewers)
}

// broadcast sends f to every viewer and drops those that have left.
func (s *viewerSet) broadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.viewers {
		select {
		case <-v.Done():
			delete(s.viewers, id)
			continue
		default:
		}
		v.Send(f)
	}
}
