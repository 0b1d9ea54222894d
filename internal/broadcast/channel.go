package broadcast

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/registry"
)

// Config holds the shared run settings.
type Config struct {
	Runtime      core.RuntimeConfig // screen size, tick rate and first seed
	FrameEvery   int                // render one frame per this many ticks
	RestartDelay time.Duration      // pause on the final frame before the next run
}

// Result describes a finished shared run.
type Result struct {
	Run   int
	Seed  int64
	Ticks uint64
	State core.GameState
}

// Channel is the authoritative loop of one shared run. It owns the game;
// viewers only ever see cloned screens.
type Channel struct {
	game    registry.Game
	cfg     Config
	viewers *viewerSet
	logger  *log.Logger

	inputMu   sync.Mutex
	lastInput core.InputFrame
	inputChan chan core.InputFrame

	screen *core.Screen
	tick   uint64
	run    int
	seed   int64

	done     chan struct{}
	doneOnce sync.Once
}

// NewChannel creates a channel around game. A nil logger discards.
func NewChannel(game registry.Game, cfg Config, logger *log.Logger) *Channel {
	if cfg.Runtime.TickRate <= 0 {
		cfg.Runtime.TickRate = 60
	}
	if cfg.FrameEvery < 1 {
		cfg.FrameEvery = 1
	}
	if cfg.Runtime.Seed == 0 {
		cfg.Runtime.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Channel{
		game:      game,
		cfg:       cfg,
		viewers:   newViewerSet(),
		logger:    logger,
		lastInput: core.NewInputFrame(),
		inputChan: make(chan core.InputFrame, 64),
		screen:    core.NewScreen(cfg.Runtime.ScreenW, cfg.Runtime.ScreenH),
		done:      make(chan struct{}),
	}
}

// GameID returns the mode the channel runs.
func (c *Channel) GameID() string {
	return c.game.ID()
}

// Join adds a viewer. It receives frames from the next render on.
func (c *Channel) Join(v Viewer) {
	c.viewers.add(v)
	c.logger.Info("viewer joined", "viewer", v.ID(), "viewers", c.viewers.count())
}

// Leave removes a viewer.
func (c *Channel) Leave(id ViewerID) {
	c.viewers.remove(id)
	c.logger.Info("viewer left", "viewer", id, "viewers", c.viewers.count())
}

// ViewerCount returns the number of connected viewers.
func (c *Channel) ViewerCount() int {
	return c.viewers.count()
}

// SendInput queues viewer input for the next tick. Inputs from all viewers
// are merged. Non-blocking; input is dropped when the queue is full. The
// frame must not be modified after the call.
func (c *Channel) SendInput(in core.InputFrame) {
	select {
	case c.inputChan <- in:
	default:
	}
}

// Run drives the shared run until ctx is cancelled or Stop is called.
// onFinish, if set, is called from the loop goroutine whenever a run ends;
// the next run starts after RestartDelay with the following seed.
func (c *Channel) Run(ctx context.Context, onFinish func(Result)) {
	defer c.Stop()

	c.start(c.cfg.Runtime.Seed)

	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.Runtime.TickRate))
	defer ticker.Stop()

	var restartAt time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case now := <-ticker.C:
			if !restartAt.IsZero() {
				c.drainInputs()
				if now.Before(restartAt) {
					continue
				}
				restartAt = time.Time{}
				c.start(c.seed + 1)
				continue
			}

			if finished := c.step(); finished {
				res := Result{Run: c.run, Seed: c.seed, Ticks: c.tick, State: c.game.State()}
				c.logger.Info("shared run finished", "run", res.Run, "score", res.State.Score, "won", res.State.Won)
				if onFinish != nil {
					onFinish(res)
				}
				restartAt = now.Add(c.cfg.RestartDelay)
			}
		}
	}
}

func (c *Channel) start(seed int64) {
	c.seed = seed
	c.run++
	c.tick = 0
	c.inputMu.Lock()
	c.lastInput.Clear()
	c.inputMu.Unlock()

	rt := c.cfg.Runtime
	rt.Seed = seed
	c.game.Reset(rt)
	c.logger.Info("shared run started", "run", c.run, "mode", c.game.ID(), "seed", seed)
	c.render(nil)
}

// step runs one tick and reports whether the run just ended.
func (c *Channel) step() bool {
	c.drainInputs()

	c.inputMu.Lock()
	in := core.NewInputFrame()
	for a, pressed := range c.lastInput.Actions {
		if pressed {
			in.Set(a)
		}
	}
	c.lastInput.Clear()
	c.inputMu.Unlock()

	res := c.game.Step(in)
	c.tick++

	over := res.State.GameOver
	if over || len(res.Events) > 0 || c.tick%uint64(c.cfg.FrameEvery) == 0 {
		c.render(res.Events)
	}
	return over
}

func (c *Channel) drainInputs() {
	c.inputMu.Lock()
	defer c.inputMu.Unlock()

	for {
		select {
		case in := <-c.inputChan:
			for action, pressed := range in.Actions {
				// restarting or quitting is not up to a single viewer
				if pressed && action != core.ActionRestart && action != core.ActionQuit {
					c.lastInput.Set(action)
				}
			}
		default:
			return
		}
	}
}

func (c *Channel) render(events []string) {
	c.screen.Clear()
	c.game.Render(c.screen)
	c.viewers.broadcast(Frame{
		Tick:    c.tick,
		Run:     c.run,
		Screen:  c.screen.Clone(),
		State:   c.game.State(),
		Events:  events,
		Viewers: c.viewers.count(),
	})
}

// Stop ends the loop. Safe to call multiple times.
func (c *Channel) Stop() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// Done returns a channel that closes when the loop has been stopped.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}
