package core

import (
	"math"

	"github.com/charmbracelet/log"
)

// Mode selects how a World progresses.
type Mode uint8

const (
	// ModeCampaign plays the configured levels in order.
	ModeCampaign Mode = iota
	// ModeEndless runs the spawn loop until the player runs out of lives.
	ModeEndless
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeEndless {
		return "endless"
	}
	return "campaign"
}

// Outcome is the result of a run so far.
type Outcome uint8

const (
	OutcomeRunning Outcome = iota
	OutcomeWon
	OutcomeLost
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "running"
	}
}

// Points awarded per kill.
const (
	PointsPerBlock = 10
	PointsPerStack = 25
	PointsPerBoss  = 500
)

// WorldConfig wires every core component of a run.
type WorldConfig struct {
	Mode         Mode
	Seed         int64
	Camera       Camera
	ScreenWidth  int
	ScreenHeight int

	Stack     StackParams
	Formation FormationParams
	Loop      LoopConfig
	Levels    []LevelConfig
	Defense   DefenseConfig
	Gunner    GunnerConfig

	StartLevel  int // campaign level index
	AutoAdvance bool
}

// DefaultWorldConfig returns a campaign with one default level.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Mode:         ModeCampaign,
		Seed:         1,
		Camera:       Camera{Position: Vec3{Y: 12, Z: -6}, Pitch: 55, FOV: 60},
		ScreenWidth:  1080,
		ScreenHeight: 1920,
		Stack:        DefaultStackParams(),
		Formation:    DefaultFormationParams(),
		Loop:         DefaultLoopConfig(),
		Levels:       []LevelConfig{DefaultLevelConfig()},
		Defense:      DefaultDefenseConfig(),
		Gunner:       DefaultGunnerConfig(),
		AutoAdvance:  true,
	}
}

// Stats are the running totals of a World.
type Stats struct {
	Score         int
	BlocksKilled  int
	StacksKilled  int
	Escapes       int
	BossesKilled  int
	Spawned       int
	LevelsCleared int
	Elapsed       float64
}

// World owns one run of the simulation and ticks its components in a
// fixed order: spawn loop, stacks, boss, defense, gunner, prune,
// orchestrator.
type World struct {
	cfg  WorldConfig
	log  *log.Logger
	over *GameOver
	rng  *RNG

	camera    *Camera
	projector *Projector
	generator *Generator
	loop      *SpawnLoop
	orch      *Orchestrator
	defense   *Defense
	gunner    *Gunner

	stacks  []*StackEnemy
	boss    *Boss
	nextID  int
	stats   Stats
	outcome Outcome
	started bool
}

// NewWorld builds a stopped world. Call Start to begin the run.
func NewWorld(cfg WorldConfig, logger *log.Logger) *World {
	logger = orDiscard(logger)
	w := &World{
		cfg:  cfg,
		log:  logger,
		over: &GameOver{},
		rng:  NewRNG(cfg.Seed),
	}

	cam := cfg.Camera
	w.camera = &cam
	w.projector = NewProjector(w.camera, cfg.Formation.PlaneHeight, logger)
	w.generator = NewGenerator(cfg.Formation, w.rng, logger)
	w.loop = NewSpawnLoop(cfg.Loop, w.generator, w.projector, w, w.rng, w.over, logger)
	w.defense = NewDefense(cfg.Defense, w.over)
	w.gunner = NewGunner(cfg.Gunner)
	w.orch = NewOrchestrator(cfg.Levels, w.loop, w, w.over, logger)
	w.orch.AutoAdvance = cfg.AutoAdvance

	w.loop.Spawned.Connect(w.orch.HandleSpawned)
	w.loop.Spawned.Connect(func(*StackEnemy) { w.stats.Spawned++ })
	w.defense.Died.Connect(func(struct{}) { w.handleGameOver() })
	w.orch.Events.Connect(w.handleEvent)

	w.projector.Resize(cfg.ScreenWidth, cfg.ScreenHeight)
	return w
}

// Start measures the stack footprint and begins the run.
func (w *World) Start() {
	if w.started {
		return
	}
	w.started = true

	w.generator.MeasureFootprint(func(pos Vec3) *StackEnemy {
		return NewStackEnemy(-1, pos, 0, w.cfg.Stack)
	}, w.loop.Level())

	switch w.cfg.Mode {
	case ModeEndless:
		w.loop.Start()
	default:
		if !w.orch.StartLevel(w.cfg.StartLevel) {
			w.orch.StartLevel(0)
		}
	}
	w.log.Info("run started", "mode", w.cfg.Mode, "seed", w.cfg.Seed)
}

// Tick advances the whole world by dt seconds. After game over nothing
// but the orchestrator's failure handling runs.
func (w *World) Tick(dt float64) {
	if !w.started || dt <= 0 {
		return
	}
	if w.over.IsSet() {
		// the flag may be set from outside without the defense dying
		if w.outcome == OutcomeRunning {
			w.handleGameOver()
		}
		w.orch.Tick(dt)
		return
	}
	w.stats.Elapsed += dt

	w.loop.Tick(dt)

	for _, s := range w.stacks {
		s.Tick(dt)
	}
	if w.boss != nil {
		w.boss.Tick(dt)
	}

	w.defense.Tick(dt)
	if !w.over.IsSet() {
		halfWidth := w.generator.Footprint().Width / 2
		w.gunner.Tick(dt, w.stacks, w.boss, halfWidth, w.projector.Bounds())
	}

	w.prune()
	w.orch.Tick(dt)
}

// SpawnStack instantiates and builds a stack for a placement.
func (w *World) SpawnStack(p Placement, level int) *StackEnemy {
	if w.over.IsSet() {
		return nil
	}

	w.nextID++
	s := NewStackEnemy(w.nextID, p.Position, p.Yaw, w.cfg.Stack)
	s.Build(level)

	s.BlockDied.Connect(func(*EnemyBlock) {
		w.stats.BlocksKilled++
		w.stats.Score += PointsPerBlock
	})
	s.Destroyed.Connect(w.handleStackDestroyed)

	w.stacks = append(w.stacks, s)
	return s
}

// SpawnBoss instantiates the boss of a level.
func (w *World) SpawnBoss(cfg LevelConfig) *Boss {
	if cfg.Boss == nil || w.over.IsSet() {
		return nil
	}

	b := NewBoss(*cfg.Boss, cfg.BossSpawnPos, w.over)
	b.Health().Died.Connect(func(*Health) {
		w.stats.BossesKilled++
		w.stats.Score += PointsPerBoss
	})
	w.boss = b
	w.log.Info("boss spawned", "name", cfg.Boss.Name, "hp", cfg.Boss.HP, "z", cfg.BossSpawnPos.Z)
	return b
}

// Resize updates the screen dimensions used for spawn bounds.
func (w *World) Resize(width, height int) bool {
	return w.projector.Resize(width, height)
}

// Fail injects an external failure into the current level.
func (w *World) Fail() {
	w.orch.Fail()
	if w.cfg.Mode == ModeEndless {
		w.loop.Stop()
	}
	if w.outcome == OutcomeRunning {
		w.outcome = OutcomeLost
	}
}

// NextLevel starts the next campaign level after a completed one.
func (w *World) NextLevel() bool {
	if w.cfg.Mode != ModeCampaign || w.orch.Phase() != PhaseComplete {
		return false
	}
	return w.orch.StartNextLevel()
}

// GameOver returns the run's game-over flag.
func (w *World) GameOver() *GameOver { return w.over }

// Outcome returns the result of the run so far.
func (w *World) Outcome() Outcome { return w.outcome }

// Done reports whether the run has ended.
func (w *World) Done() bool { return w.outcome != OutcomeRunning }

// Stats returns the running totals.
func (w *World) Stats() Stats { return w.stats }

// Mode returns the world's mode.
func (w *World) Mode() Mode { return w.cfg.Mode }

// Seed returns the RNG seed of the run.
func (w *World) Seed() int64 { return w.cfg.Seed }

// Stacks returns the live stacks.
func (w *World) Stacks() []*StackEnemy {
	out := make([]*StackEnemy, len(w.stacks))
	copy(out, w.stacks)
	return out
}

// Boss returns the current boss, or nil.
func (w *World) Boss() *Boss { return w.boss }

// Projector returns the plane projector.
func (w *World) Projector() *Projector { return w.projector }

// Generator returns the formation generator.
func (w *World) Generator() *Generator { return w.generator }

// Loop returns the spawn loop.
func (w *World) Loop() *SpawnLoop { return w.loop }

// Orchestrator returns the level orchestrator.
func (w *World) Orchestrator() *Orchestrator { return w.orch }

// Defense returns the player's defense.
func (w *World) Defense() *Defense { return w.defense }

// Gunner returns the automatic gun.
func (w *World) Gunner() *Gunner { return w.gunner }

func (w *World) handleStackDestroyed(ev StackDestroyedEvent) {
	switch ev.Reason {
	case DestroyKilled:
		w.stats.StacksKilled++
		w.stats.Score += PointsPerStack
	case DestroyEscaped:
		w.stats.Escapes++
		w.defense.TakeHit()
	}
}

func (w *World) handleGameOver() {
	w.loop.StopAndDisable()
	w.orch.Fail()
	w.outcome = OutcomeLost
	w.log.Info("game over", "score", w.stats.Score, "elapsed", w.stats.Elapsed)
}

func (w *World) handleEvent(ev Event) {
	switch ev.Kind {
	case EventLevelStarted:
		w.boss = nil
	case EventLevelCompleted:
		w.stats.LevelsCleared++
		if ev.Level >= w.orch.LevelCount()-1 {
			w.outcome = OutcomeWon
			w.loop.StopAndDisable()
			w.log.Info("campaign complete", "score", w.stats.Score)
		}
	case EventLevelFailed:
		if w.outcome == OutcomeRunning {
			w.outcome = OutcomeLost
		}
	}
}

func (w *World) prune() {
	live := w.stacks[:0]
	for _, s := range w.stacks {
		if !s.IsDestroyed() {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(w.stacks); i++ {
		w.stacks[i] = nil
	}
	w.stacks = live

	if w.boss != nil && w.boss.Dead() {
		w.boss = nil
	}
}

// StackView is a read-only view of one stack.
type StackView struct {
	ID       int
	Position Vec3
	Yaw      float64
	Alive    int
	Height   int
	TopHP    float64
	TopMax   float64
}

// BossView is a read-only view of the boss.
type BossView struct {
	Name     string
	Position Vec3
	Size     Vec3
	HP       float64
	MaxHP    float64
	Arrived  bool
}

// Snapshot is a read model of the world for presenters.
type Snapshot struct {
	Mode       Mode
	Phase      Phase
	Level      int
	LevelCount int
	LevelName  string
	Quota      int
	Spawned    int
	Bounds     Bounds
	Footprint  Footprint
	GunnerX    float64
	GunnerZ    float64
	Lives      int
	Shielded   bool
	Stacks     []StackView
	Boss       *BossView
	Stats      Stats
	Outcome    Outcome
	GameOver   bool
	LoopLevel  int
	DespawnZ   float64
	SpawnZ     float64
}

// Snapshot builds a read model of the current state.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:       w.cfg.Mode,
		Phase:      w.orch.Phase(),
		Level:      w.orch.CurrentLevel(),
		LevelCount: w.orch.LevelCount(),
		Spawned:    w.orch.Spawned(),
		Bounds:     w.projector.Bounds(),
		Footprint:  w.generator.Footprint(),
		GunnerX:    w.gunner.X(),
		GunnerZ:    w.cfg.Gunner.Z,
		Lives:      w.defense.Lives(),
		Shielded:   w.defense.Shielded(),
		Stats:      w.stats,
		Outcome:    w.outcome,
		GameOver:   w.over.IsSet(),
		LoopLevel:  w.loop.Level(),
		DespawnZ:   w.cfg.Stack.DespawnZ,
		SpawnZ:     w.cfg.Formation.SpawnZCenter,
	}
	if lvl, ok := w.orch.Level(); ok {
		snap.LevelName = lvl.Name
		snap.Quota = lvl.EnemyQuota
	}

	snap.Stacks = make([]StackView, 0, len(w.stacks))
	for _, s := range w.stacks {
		v := StackView{
			ID:       s.ID(),
			Position: s.Position(),
			Yaw:      s.Yaw(),
			Alive:    s.AliveCount(),
			Height:   s.Params().Height,
		}
		if top := s.Top(); top != nil {
			v.TopHP = top.Health().Current()
			v.TopMax = top.Health().Maximum()
		}
		snap.Stacks = append(snap.Stacks, v)
	}

	if b := w.boss; b != nil {
		snap.Boss = &BossView{
			Name:     b.Spec().Name,
			Position: b.Position(),
			Size:     b.Spec().Size,
			HP:       b.Health().Current(),
			MaxHP:    b.Health().Maximum(),
			Arrived:  b.Arrived(),
		}
	}
	return snap
}

// Accuracy returns the share of gunner shots that hit, in [0, 1].
func (w *World) Accuracy() float64 {
	if w.gunner.Shots() == 0 {
		return 0
	}
	return math.Min(1, float64(w.gunner.Hits())/float64(w.gunner.Shots()))
}
