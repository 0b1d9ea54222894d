// Package stackfall provides the stacked-enemy shooter as registry modes.
// The simulation itself lives in the core subpackage; this package maps
// settings onto it, feeds it viewer input and draws a top-down radar.
package stackfall

import (
	"fmt"

	platformcore "github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
	"github.com/vovakirdan/stackfall/internal/registry"
	"github.com/vovakirdan/stackfall/internal/storage"
)

// Mode IDs used by the registry, the CLI and run storage.
const (
	CampaignID = "campaign"
	EndlessID  = "endless"
)

const (
	maxSpeed  = 8
	maxEvents = 6
)

// Game runs one stackfall world per Reset.
type Game struct {
	mode  core.Mode
	id    string
	title string

	settings Settings
	world    *core.World
	loadErr  error

	seed    int64
	dt      float64
	screenW int
	screenH int

	startLevel int
	levelSet   bool // startLevel overrides the package setting

	tick    uint64
	paused  bool
	speed   int
	pending []string // events since the last Step
	recent  []string // last few events, newest last
}

func init() {
	registry.Register(CampaignID, func() registry.Game {
		return NewCampaign()
	})
	registry.Register(EndlessID, func() registry.Game {
		return NewEndless()
	})
}

// NewCampaign creates the level-by-level mode.
func NewCampaign() *Game {
	return &Game{mode: core.ModeCampaign, id: CampaignID, title: "Stackfall Campaign", speed: 1}
}

// NewEndless creates the survival mode.
func NewEndless() *Game {
	return &Game{mode: core.ModeEndless, id: EndlessID, title: "Stackfall Endless", speed: 1}
}

// ID returns the mode identifier.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.title
}

// Description summarizes the mode for listings.
func (g *Game) Description() string {
	if g.mode == core.ModeEndless {
		return "Waves grow until the defense falls"
	}
	return "Level by level, each closed by a boss"
}

// Reset loads settings and starts a fresh world. Screen sizes in cells
// are scaled by the configured cell size for the projector; a zero size
// keeps the configured virtual screen.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	g.seed = cfg.Seed
	g.dt = cfg.Dt()
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tick = 0
	g.paused = false
	g.speed = 1
	g.pending = nil
	g.recent = nil
	g.world = nil

	g.settings, g.loadErr = LoadSettings()
	if g.loadErr != nil {
		return
	}
	if g.mode == core.ModeCampaign && len(g.settings.Levels) == 0 {
		g.loadErr = fmt.Errorf("no levels found")
		return
	}

	start := selectedStartLevel
	if g.levelSet {
		start = g.startLevel
	}
	wc := g.settings.WorldConfig(g.mode, g.seed, start)
	g.world = core.NewWorld(wc, logger)
	g.world.Orchestrator().Events.Connect(g.onEvent)
	g.world.Defense().LivesChanged.Connect(g.onLives)
	g.resizeWorld()
	g.world.Start()

	if g.mode == core.ModeEndless {
		g.note("endless run started")
	}
}

// SelectLevel sets the 1-indexed campaign level the next Reset starts at,
// overriding SetStartLevel for this game only.
func (g *Game) SelectLevel(level int) {
	g.startLevel = level
	g.levelSet = true
}

// Resize updates the terminal size the spawn bounds are computed for.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	g.resizeWorld()
}

func (g *Game) resizeWorld() {
	if g.world == nil || g.screenW <= 0 || g.screenH <= 0 {
		return
	}
	sc := g.settings.Shooter.Screen
	g.world.Resize(g.screenW*sc.CellWidth, fieldRows(g.screenH)*sc.CellHeight)
}

// Step advances the game by one tick, or by several at raised speed.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	g.tick++

	if in.Has(platformcore.ActionRestart) {
		g.Reset(platformcore.RuntimeConfig{
			Seed:     g.seed + 1,
			ScreenW:  g.screenW,
			ScreenH:  g.screenH,
			TickRate: int(1/g.dt + 0.5),
		})
		return g.result()
	}
	if g.world == nil {
		return g.result()
	}

	if in.Has(platformcore.ActionPause) {
		g.paused = !g.paused
	}
	if in.Has(platformcore.ActionFaster) && g.speed < maxSpeed {
		g.speed *= 2
	}
	if in.Has(platformcore.ActionSlower) && g.speed > 1 {
		g.speed /= 2
	}

	if g.world.Done() || g.paused {
		return g.result()
	}

	if in.Has(platformcore.ActionFail) {
		g.world.Fail()
	}
	if in.Has(platformcore.ActionNextLevel) && g.mode == core.ModeCampaign {
		// skips the rest of the current level
		g.world.Orchestrator().StartNextLevel()
	}
	if in.Has(platformcore.ActionSpawn) {
		if n := g.world.Loop().SpawnRandomNow(); n > 0 {
			g.note(fmt.Sprintf("manual wave: %d stacks", n))
		}
	}

	for i := 0; i < g.speed && !g.world.Done(); i++ {
		g.world.Tick(g.dt)
	}

	return g.result()
}

func (g *Game) result() platformcore.StepResult {
	res := platformcore.StepResult{State: g.State(), Events: g.pending}
	g.pending = nil
	return res
}

// State returns the current status.
func (g *Game) State() platformcore.GameState {
	if g.world == nil {
		return platformcore.GameState{GameOver: true, Phase: "error"}
	}
	snap := g.world.Snapshot()
	st := platformcore.GameState{
		Score:    snap.Stats.Score,
		GameOver: g.world.Done(),
		Won:      snap.Outcome == core.OutcomeWon,
		Paused:   g.paused,
		Phase:    snap.Phase.String(),
	}
	if g.mode == core.ModeCampaign {
		st.Level = snap.Level + 1
	} else {
		st.Phase = fmt.Sprintf("wave level %d", snap.LoopLevel)
	}
	return st
}

// World returns the running world, nil when settings failed to load.
func (g *Game) World() *core.World {
	return g.world
}

// Err returns the error that prevented the last Reset from starting a world.
func (g *Game) Err() error {
	return g.loadErr
}

// Speed returns the simulation speed multiplier.
func (g *Game) Speed() int {
	return g.speed
}

// Recent returns the last few notable events, oldest first.
func (g *Game) Recent() []string {
	out := make([]string, len(g.recent))
	copy(out, g.recent)
	return out
}

// Summary describes the run for storage.
func (g *Game) Summary() Summary {
	if g.world == nil {
		return Summary{Mode: g.id, Seed: g.seed, Outcome: core.OutcomeLost.String()}
	}
	st := g.world.Stats()
	return Summary{
		Mode:          g.id,
		Seed:          g.seed,
		Outcome:       g.world.Outcome().String(),
		LevelsCleared: st.LevelsCleared,
		Score:         st.Score,
		StacksKilled:  st.StacksKilled,
		BlocksKilled:  st.BlocksKilled,
		BossesKilled:  st.BossesKilled,
		Escapes:       st.Escapes,
		Spawned:       st.Spawned,
		Seconds:       st.Elapsed,
		Accuracy:      g.world.Accuracy(),
	}
}

// Summary is the end-of-run record.
type Summary struct {
	Mode          string
	Seed          int64
	Outcome       string
	LevelsCleared int
	Score         int
	StacksKilled  int
	BlocksKilled  int
	BossesKilled  int
	Escapes       int
	Spawned       int
	Seconds       float64
	Accuracy      float64
}

// RunRecord converts the summary into a storage row.
func (g *Game) RunRecord() storage.Run {
	s := g.Summary()
	return storage.Run{
		Mode:          s.Mode,
		Seed:          s.Seed,
		Outcome:       s.Outcome,
		LevelsCleared: s.LevelsCleared,
		Score:         s.Score,
		StacksKilled:  s.StacksKilled,
		BlocksKilled:  s.BlocksKilled,
		BossesKilled:  s.BossesKilled,
		Escapes:       s.Escapes,
		Spawned:       s.Spawned,
		Seconds:       s.Seconds,
		Accuracy:      s.Accuracy,
	}
}

func (g *Game) onEvent(ev core.Event) {
	name := g.levelName(ev.Level)
	switch ev.Kind {
	case core.EventLevelStarted:
		g.note("level " + name + " started")
	case core.EventBossSpawned:
		if lvl, ok := g.world.Orchestrator().Level(); ok && lvl.Boss != nil {
			g.note(lvl.Boss.Name + " approaches")
		}
	case core.EventLevelCompleted:
		g.note("level " + name + " complete")
	case core.EventLevelFailed:
		if g.mode == core.ModeEndless {
			g.note("run ended")
			return
		}
		g.note("level " + name + " failed")
	}
}

func (g *Game) onLives(lives int) {
	if lives > 0 {
		g.note(fmt.Sprintf("stack escaped, %d lives left", lives))
	}
}

func (g *Game) levelName(i int) string {
	if i < 0 || i >= len(g.settings.Levels) {
		return fmt.Sprintf("#%d", i+1)
	}
	return g.settings.Levels[i].Name
}

func (g *Game) note(msg string) {
	g.pending = append(g.pending, msg)
	g.recent = append(g.recent, msg)
	if len(g.recent) > maxEvents {
		g.recent = g.recent[len(g.recent)-maxEvents:]
	}
}
