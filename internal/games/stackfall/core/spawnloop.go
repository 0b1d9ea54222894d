package core

import "github.com/charmbracelet/log"

// LoopConfig tunes the periodic spawner.
type LoopConfig struct {
	FirstDelay float64 // seconds before the first wave
	Interval   float64 // seconds between waves
	StartLevel int     // formation level of the first wave

	// Randomize draws a weighted shape each wave; otherwise Default is used.
	Randomize bool
	Weights   map[Shape]float64
	Default   Shape
}

// DefaultLoopConfig returns the stock loop tuning.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		FirstDelay: 1,
		Interval:   2,
		StartLevel: 1,
		Randomize:  true,
		Weights: map[Shape]float64{
			ShapeLine:   1,
			ShapeColumn: 1,
			ShapeRing:   1,
		},
		Default: ShapeLine,
	}
}

// SpawnLoop spawns one formation per interval while running. Every wave
// raises the formation level by one.
type SpawnLoop struct {
	cfg       LoopConfig
	gen       *Generator
	projector *Projector
	sink      SpawnSink
	rng       *RNG
	over      *GameOver
	log       *log.Logger

	level    int
	running  bool
	disabled bool
	elapsed  float64
	wait     float64
	waves    int

	// Spawned fires once for every stack the loop instantiates, before
	// the wave that produced it returns.
	Spawned Signal[*StackEnemy]
}

// NewSpawnLoop creates a stopped loop.
func NewSpawnLoop(cfg LoopConfig, gen *Generator, projector *Projector, sink SpawnSink, rng *RNG, over *GameOver, logger *log.Logger) *SpawnLoop {
	if rng == nil {
		rng = NewRNG(1)
	}
	if cfg.FirstDelay < 0 {
		cfg.FirstDelay = 0
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}
	return &SpawnLoop{
		cfg:       cfg,
		gen:       gen,
		projector: projector,
		sink:      sink,
		rng:       rng,
		over:      over,
		log:       orDiscard(logger),
		level:     cfg.StartLevel,
	}
}

// Config returns the loop tuning.
func (l *SpawnLoop) Config() LoopConfig { return l.cfg }

// Level returns the formation level the next wave will be built at.
func (l *SpawnLoop) Level() int { return l.level }

// Running reports whether the loop is spawning waves.
func (l *SpawnLoop) Running() bool { return l.running }

// Enabled reports whether the loop has not been disabled.
func (l *SpawnLoop) Enabled() bool { return !l.disabled }

// Waves returns the number of waves spawned so far.
func (l *SpawnLoop) Waves() int { return l.waves }

// Start (re)starts the loop from the first delay. It also re-enables a
// disabled loop.
func (l *SpawnLoop) Start() {
	l.disabled = false
	l.running = true
	l.elapsed = 0
	l.wait = l.cfg.FirstDelay
	l.log.Debug("spawn loop started", "level", l.level, "first_delay", l.cfg.FirstDelay)
}

// Stop halts the loop. Waves already spawned are unaffected.
func (l *SpawnLoop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.log.Debug("spawn loop stopped", "waves", l.waves)
}

// StopAndDisable halts the loop and refuses manual spawns until Start.
func (l *SpawnLoop) StopAndDisable() {
	l.Stop()
	l.disabled = true
}

// Tick advances the wave timer by dt and spawns at most one wave.
func (l *SpawnLoop) Tick(dt float64) {
	if !l.running {
		return
	}
	if l.over.IsSet() {
		l.Stop()
		return
	}

	l.elapsed += dt
	if l.elapsed < l.wait {
		return
	}

	l.spawnWave(l.chooseShape())
	l.level++
	l.waves++

	// carry the overshoot so variable steps keep the interval exact, but
	// never bank more than one pending wave
	l.elapsed = min(max(l.elapsed-l.wait, 0), l.cfg.Interval)
	l.wait = l.cfg.Interval
}

// SpawnNow spawns one formation of the given shape immediately without
// touching the timers or the level. It returns the number of stacks spawned.
func (l *SpawnLoop) SpawnNow(shape Shape) int {
	if l.disabled || l.over.IsSet() {
		return 0
	}
	return l.spawnWave(shape)
}

// SpawnRandomNow spawns one formation picked by the configured weights.
func (l *SpawnLoop) SpawnRandomNow() int {
	if l.disabled || l.over.IsSet() {
		return 0
	}
	return l.spawnWave(ChooseShape(l.rng, l.cfg.Weights, l.cfg.Default))
}

func (l *SpawnLoop) chooseShape() Shape {
	if !l.cfg.Randomize {
		return l.cfg.Default
	}
	return ChooseShape(l.rng, l.cfg.Weights, l.cfg.Default)
}

func (l *SpawnLoop) spawnWave(shape Shape) int {
	if l.gen == nil || l.sink == nil {
		return 0
	}

	bounds := Bounds{MinX: FallbackMinX, MaxX: FallbackMaxX}
	if l.projector != nil {
		bounds = l.projector.Bounds()
	}

	n := l.gen.Spawn(shape, bounds, l.level, SpawnSinkFunc(func(p Placement, level int) *StackEnemy {
		s := l.sink.SpawnStack(p, level)
		if s != nil {
			l.Spawned.Emit(s)
		}
		return s
	}))

	l.log.Debug("wave spawned", "shape", shape, "level", l.level, "stacks", n)
	return n
}
