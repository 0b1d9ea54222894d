package core

import (
	"math"

	"github.com/charmbracelet/log"
)

// Phase is one stage of a level.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseSpawningEnemies
	PhaseIntroDelay
	PhaseBossActive
	PhaseWinDelay
	PhaseComplete
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseSpawningEnemies:
		return "SpawningEnemies"
	case PhaseIntroDelay:
		return "IntroDelay"
	case PhaseBossActive:
		return "BossActive"
	case PhaseWinDelay:
		return "WinDelay"
	case PhaseComplete:
		return "Complete"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Active reports whether the phase belongs to a level in progress.
func (p Phase) Active() bool {
	return p >= PhaseSpawningEnemies && p <= PhaseWinDelay
}

// validTransitions defines the legal phase transitions. Starting a level
// is legal from every phase; any phase may fail.
var validTransitions = map[Phase]map[Phase]bool{
	PhaseIdle:            {PhaseSpawningEnemies: true, PhaseFailed: true},
	PhaseSpawningEnemies: {PhaseSpawningEnemies: true, PhaseIntroDelay: true, PhaseFailed: true},
	PhaseIntroDelay:      {PhaseSpawningEnemies: true, PhaseBossActive: true, PhaseWinDelay: true, PhaseFailed: true},
	PhaseBossActive:      {PhaseSpawningEnemies: true, PhaseWinDelay: true, PhaseFailed: true},
	PhaseWinDelay:        {PhaseSpawningEnemies: true, PhaseComplete: true, PhaseFailed: true},
	PhaseComplete:        {PhaseSpawningEnemies: true, PhaseFailed: true},
	PhaseFailed:          {PhaseSpawningEnemies: true},
}

// IsValidTransition checks if a phase transition is legal.
func IsValidTransition(from, to Phase) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// maxChain bounds how many phases a single Tick may pass through.
const maxChain = 8

// LevelConfig is the read-only description of one level.
type LevelConfig struct {
	ID               int
	Name             string
	SpawnDuration    float64 // seconds; +Inf never times out
	EnemyQuota       int
	Boss             *BossSpec // nil: no boss configured
	BossSpawnPos     Vec3
	BossIntroDelay   float64
	PostBossWinDelay float64
}

// DefaultLevelConfig returns the stock level tuning with the default boss.
func DefaultLevelConfig() LevelConfig {
	boss := DefaultBossSpec()
	return LevelConfig{
		Name:             "Level",
		SpawnDuration:    20,
		EnemyQuota:       40,
		Boss:             &boss,
		BossSpawnPos:     Vec3{X: 0, Y: 0, Z: 16},
		BossIntroDelay:   3,
		PostBossWinDelay: 1,
	}
}

// SpawnController is the part of the spawn loop the orchestrator drives.
type SpawnController interface {
	Start()
	Stop()
	Running() bool
}

// BossSpawner instantiates the boss of a level. A nil return means no
// boss could be spawned.
type BossSpawner interface {
	SpawnBoss(cfg LevelConfig) *Boss
}

// EventKind identifies a level event.
type EventKind uint8

const (
	EventLevelStarted EventKind = iota
	EventQuotaSet
	EventSpawnedCount
	EventLevelCompleted
	EventLevelFailed
	EventPhaseChanged
	EventBossSpawned
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventLevelStarted:
		return "level-started"
	case EventQuotaSet:
		return "quota-set"
	case EventSpawnedCount:
		return "spawned-count"
	case EventLevelCompleted:
		return "level-completed"
	case EventLevelFailed:
		return "level-failed"
	case EventPhaseChanged:
		return "phase-changed"
	case EventBossSpawned:
		return "boss-spawned"
	default:
		return "unknown"
	}
}

// Event is a level notification for presenters.
type Event struct {
	Kind  EventKind
	Level int   // level index
	Count int   // quota or spawned count
	From  Phase // phase-changed only
	To    Phase // phase-changed only
}

// Orchestrator sequences the phases of a level: spawn enemies until the
// duration or quota runs out, pause, fight the boss, pause, complete.
type Orchestrator struct {
	levels []LevelConfig
	loop   SpawnController
	bosses BossSpawner
	over   *GameOver
	log    *log.Logger

	phase    Phase
	current  int
	spawned  int
	elapsed  float64
	boss     *Boss
	bossDead bool
	unhook   func()

	// AutoAdvance starts the next level once one completes.
	AutoAdvance bool

	Events Signal[Event]
}

// NewOrchestrator creates an idle orchestrator for levels.
func NewOrchestrator(levels []LevelConfig, loop SpawnController, bosses BossSpawner, over *GameOver, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		levels:  levels,
		loop:    loop,
		bosses:  bosses,
		over:    over,
		log:     orDiscard(logger),
		phase:   PhaseIdle,
		current: -1,
	}
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// CurrentLevel returns the index of the current level, -1 before the first start.
func (o *Orchestrator) CurrentLevel() int { return o.current }

// LevelCount returns the number of configured levels.
func (o *Orchestrator) LevelCount() int { return len(o.levels) }

// Spawned returns how many spawns were counted in the current spawn phase.
func (o *Orchestrator) Spawned() int { return o.spawned }

// Elapsed returns the seconds spent in the current waiting phase.
func (o *Orchestrator) Elapsed() float64 { return o.elapsed }

// Boss returns the boss of the current level, or nil.
func (o *Orchestrator) Boss() *Boss { return o.boss }

// Level returns the config of the current level.
func (o *Orchestrator) Level() (LevelConfig, bool) {
	if o.current < 0 || o.current >= len(o.levels) {
		return LevelConfig{}, false
	}
	return o.levels[o.current], true
}

// StartLevel begins level i from its spawn phase. Out-of-range indexes
// and starts after game over are rejected with a warning.
func (o *Orchestrator) StartLevel(i int) bool {
	if i < 0 || i >= len(o.levels) {
		o.log.Warn("level index out of range", "index", i, "levels", len(o.levels))
		return false
	}
	if o.over.IsSet() {
		o.log.Warn("cannot start level after game over", "index", i)
		return false
	}

	o.dropBoss()
	o.current = i
	o.Events.Emit(Event{Kind: EventLevelStarted, Level: i})

	cfg := o.levels[i]
	o.spawned = 0
	o.elapsed = 0
	o.Events.Emit(Event{Kind: EventQuotaSet, Level: i, Count: cfg.EnemyQuota})

	if o.loop != nil && !o.loop.Running() {
		o.loop.Start()
	}
	o.setPhase(PhaseSpawningEnemies)

	o.log.Info("level started", "index", i, "name", cfg.Name, "quota", cfg.EnemyQuota, "duration", cfg.SpawnDuration)
	return true
}

// RestartCurrentLevel starts the current level again. It does nothing
// before the first start.
func (o *Orchestrator) RestartCurrentLevel() bool {
	if o.current < 0 {
		return false
	}
	return o.StartLevel(o.current)
}

// StartNextLevel starts the level after the current one. It reports false
// when every level has been played.
func (o *Orchestrator) StartNextLevel() bool {
	next := o.current + 1
	if next >= len(o.levels) {
		o.log.Info("all levels complete", "levels", len(o.levels))
		return false
	}
	return o.StartLevel(next)
}

// HandleSpawned counts one spawned stack. Spawns outside the spawn phase
// are ignored. Reaching the quota stops the spawn loop; the phase changes
// on the next Tick.
func (o *Orchestrator) HandleSpawned(*StackEnemy) {
	if o.phase != PhaseSpawningEnemies {
		return
	}

	o.spawned++
	o.Events.Emit(Event{Kind: EventSpawnedCount, Level: o.current, Count: o.spawned})

	if o.spawned >= o.levels[o.current].EnemyQuota && o.loop != nil {
		o.loop.Stop()
	}
}

// Fail aborts the current level and stops the spawn loop whatever the
// phase. Failing twice has no further effect.
func (o *Orchestrator) Fail() {
	if o.loop != nil {
		o.loop.Stop()
	}
	if o.phase == PhaseFailed {
		return
	}

	o.setPhase(PhaseFailed)
	o.dropBoss()
	o.Events.Emit(Event{Kind: EventLevelFailed, Level: o.current})
	o.log.Info("level failed", "index", o.current)
}

// Tick advances the phase timers by dt. Game over moves any phase to
// Failed before anything else runs. Phases whose wait is already satisfied
// are passed through within the same call.
func (o *Orchestrator) Tick(dt float64) {
	if o.over.IsSet() {
		if o.phase != PhaseFailed {
			o.Fail()
		}
		return
	}
	if !o.phase.Active() {
		return
	}

	step := dt
	for i := 0; i < maxChain; i++ {
		before := o.phase
		o.advance(step)
		if o.phase == before || !o.phase.Active() {
			return
		}
		step = 0
	}
}

func (o *Orchestrator) advance(dt float64) {
	cfg := o.levels[o.current]

	switch o.phase {
	case PhaseSpawningEnemies:
		o.elapsed += dt
		if o.elapsed >= cfg.SpawnDuration || o.spawned >= cfg.EnemyQuota {
			if o.loop != nil {
				o.loop.Stop()
			}
			o.elapsed = 0
			o.setPhase(PhaseIntroDelay)
		}

	case PhaseIntroDelay:
		o.elapsed += dt
		if o.elapsed >= math.Max(0, cfg.BossIntroDelay) {
			o.elapsed = 0
			o.spawnBoss(cfg)
		}

	case PhaseBossActive:
		if o.bossDead || (o.boss != nil && o.boss.Dead()) {
			o.elapsed = 0
			o.setPhase(PhaseWinDelay)
		}

	case PhaseWinDelay:
		o.elapsed += dt
		if o.elapsed >= math.Max(0, cfg.PostBossWinDelay) {
			o.complete()
		}
	}
}

func (o *Orchestrator) spawnBoss(cfg LevelConfig) {
	if cfg.Boss == nil || o.bosses == nil {
		o.log.Warn("no boss configured, skipping boss phase", "index", o.current)
		o.setPhase(PhaseWinDelay)
		return
	}

	boss := o.bosses.SpawnBoss(cfg)
	if boss == nil {
		o.log.Warn("boss spawn failed, skipping boss phase", "index", o.current)
		o.setPhase(PhaseWinDelay)
		return
	}

	o.boss = boss
	o.bossDead = boss.Dead()
	o.unhook = boss.Health().Died.Connect(func(*Health) {
		o.bossDead = true
	})
	o.setPhase(PhaseBossActive)
	o.Events.Emit(Event{Kind: EventBossSpawned, Level: o.current})
}

func (o *Orchestrator) complete() {
	o.setPhase(PhaseComplete)
	o.dropBoss()
	o.Events.Emit(Event{Kind: EventLevelCompleted, Level: o.current})
	o.log.Info("level complete", "index", o.current)

	if o.AutoAdvance {
		o.StartNextLevel()
	}
}

func (o *Orchestrator) dropBoss() {
	if o.unhook != nil {
		o.unhook()
		o.unhook = nil
	}
	o.boss = nil
	o.bossDead = false
}

func (o *Orchestrator) setPhase(to Phase) bool {
	from := o.phase
	if !IsValidTransition(from, to) {
		o.log.Warn("illegal phase transition", "from", from, "to", to)
		return false
	}
	o.phase = to
	o.log.Debug("phase changed", "from", from, "to", to, "level", o.current)
	o.Events.Emit(Event{Kind: EventPhaseChanged, Level: o.current, From: from, To: to})
	return true
}
