package core_test

import (
	"testing"

	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
)

const frame = 1.0 / 60

func runUntilDone(w *core.World, maxSeconds float64) {
	for t := 0.0; t < maxSeconds && !w.Done(); t += frame {
		w.Tick(frame)
	}
}

func TestEndlessRunEndsInGameOver(t *testing.T) {
	cfg := core.DefaultWorldConfig()
	cfg.Mode = core.ModeEndless
	cfg.Seed = 11

	w := core.NewWorld(cfg, nil)
	w.Start()
	runUntilDone(w, 180)

	if w.Outcome() != core.OutcomeLost {
		t.Fatalf("outcome = %v, want lost", w.Outcome())
	}
	if !w.GameOver().IsSet() {
		t.Error("game over flag should be set")
	}
	if w.Defense().Lives() != 0 {
		t.Errorf("lives = %d, want 0", w.Defense().Lives())
	}
	if w.Loop().Running() || w.Loop().Enabled() {
		t.Error("spawn loop should be stopped and disabled")
	}

	stats := w.Stats()
	if stats.Escapes == 0 || stats.Spawned == 0 {
		t.Errorf("stats = %+v, want spawns and escapes", stats)
	}

	// Frozen after game over.
	before := w.Snapshot()
	w.Tick(1)
	after := w.Snapshot()
	if len(before.Stacks) != len(after.Stacks) || after.Stats.Elapsed != before.Stats.Elapsed {
		t.Error("world should not advance after game over")
	}
}

func strongCampaign() core.WorldConfig {
	cfg := core.DefaultWorldConfig()
	cfg.Seed = 3

	cfg.Stack.Height = 1
	cfg.Stack.HPBase = 1
	cfg.Stack.HPPerRow = 0

	cfg.Formation.LineCount = core.CountRange{Min: 3, Max: 3}
	cfg.Loop.Randomize = false
	cfg.Loop.Default = core.ShapeLine

	cfg.Gunner.FireRate = 100
	cfg.Gunner.Damage = 1000
	cfg.Gunner.Range = 40

	lvl := core.DefaultLevelConfig()
	lvl.EnemyQuota = 3
	lvl.SpawnDuration = 5
	lvl.BossIntroDelay = 0.5
	lvl.PostBossWinDelay = 0.5
	lvl.Boss.HP = 10
	cfg.Levels = []core.LevelConfig{lvl}
	return cfg
}

func TestCampaignWin(t *testing.T) {
	w := core.NewWorld(strongCampaign(), nil)
	w.Start()

	if w.Orchestrator().Phase() != core.PhaseSpawningEnemies {
		t.Fatalf("phase = %v after start", w.Orchestrator().Phase())
	}

	runUntilDone(w, 60)

	if w.Outcome() != core.OutcomeWon {
		t.Fatalf("outcome = %v, want won (phase %v)", w.Outcome(), w.Orchestrator().Phase())
	}
	stats := w.Stats()
	if stats.LevelsCleared != 1 || stats.BossesKilled != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Score < core.PointsPerBoss {
		t.Errorf("score = %d, want at least %d", stats.Score, core.PointsPerBoss)
	}
	if w.Defense().Lives() != 3 {
		t.Errorf("lives = %d, want 3", w.Defense().Lives())
	}
}

func TestWorldFailInjection(t *testing.T) {
	w := core.NewWorld(strongCampaign(), nil)
	w.Start()
	w.Tick(frame)

	w.Fail()

	if w.Outcome() != core.OutcomeLost {
		t.Errorf("outcome = %v, want lost", w.Outcome())
	}
	if w.Orchestrator().Phase() != core.PhaseFailed {
		t.Errorf("phase = %v, want Failed", w.Orchestrator().Phase())
	}
	if w.Loop().Running() {
		t.Error("loop should be stopped")
	}
}

func TestWorldSpawnCountsTowardsQuota(t *testing.T) {
	w := core.NewWorld(strongCampaign(), nil)
	w.Start()

	// First wave lands at the loop's first delay.
	for i := 0; i < 61; i++ {
		w.Tick(frame)
	}

	if w.Orchestrator().Spawned() != 3 {
		t.Errorf("orchestrator counted %d spawns, want 3", w.Orchestrator().Spawned())
	}
	if w.Orchestrator().Phase() == core.PhaseSpawningEnemies {
		t.Error("quota reached, spawn phase should be over in the same frame")
	}
}

func TestWorldResize(t *testing.T) {
	w := core.NewWorld(core.DefaultWorldConfig(), nil)
	before := w.Projector().Bounds()

	if w.Resize(1080, 1920) {
		t.Error("same size should not recompute")
	}
	if !w.Resize(1920, 1080) {
		t.Fatal("new size should recompute")
	}
	if w.Projector().Bounds().Width() <= before.Width() {
		t.Error("landscape should widen the bounds")
	}
}

func TestWorldSnapshot(t *testing.T) {
	cfg := strongCampaign()
	w := core.NewWorld(cfg, nil)
	w.Start()
	for i := 0; i < 61; i++ {
		w.Tick(frame)
	}

	snap := w.Snapshot()
	if snap.Lives != 3 || snap.LevelCount != 1 || snap.Quota != 3 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Footprint.Width <= 0 {
		t.Error("footprint should be measured on start")
	}
	if snap.Bounds.MinX >= snap.Bounds.MaxX {
		t.Errorf("bounds = %+v", snap.Bounds)
	}
}

func TestSpawnStackRefusedAfterGameOver(t *testing.T) {
	w := core.NewWorld(core.DefaultWorldConfig(), nil)
	w.GameOver().Set()
	if s := w.SpawnStack(core.Placement{}, 1); s != nil {
		t.Error("spawn after game over should be refused")
	}
}

func TestDefenseShield(t *testing.T) {
	over := &core.GameOver{}
	d := core.NewDefense(core.DefenseConfig{Lives: 2, MaxLives: 5, ShieldDuration: 1}, over)

	if !d.TakeHit() {
		t.Fatal("first hit should cost a life")
	}
	if d.TakeHit() {
		t.Error("hit during shield should be ignored")
	}
	d.Tick(1)
	if !d.TakeHit() {
		t.Fatal("hit after shield should cost a life")
	}
	if !over.IsSet() {
		t.Error("losing the last life should set game over")
	}

	d.AddLife(10)
	if d.Lives() != 5 {
		t.Errorf("lives = %d, want capped at 5", d.Lives())
	}
}

func TestBossStopsAtHoldLine(t *testing.T) {
	spec := core.DefaultBossSpec()
	b := core.NewBoss(spec, core.V3(0, 0, 16), nil)

	for i := 0; i < 100; i++ {
		b.Tick(1)
	}
	if b.Position().Z != spec.StopAtZ || !b.Arrived() {
		t.Errorf("boss z = %v, want %v", b.Position().Z, spec.StopAtZ)
	}

	over := &core.GameOver{}
	over.Set()
	frozen := core.NewBoss(spec, core.V3(0, 0, 16), over)
	frozen.Tick(1)
	if frozen.Position().Z != 16 {
		t.Error("boss should not move after game over")
	}
}

func TestEndlessExternalGameOver(t *testing.T) {
	cfg := core.DefaultWorldConfig()
	cfg.Mode = core.ModeEndless
	cfg.Seed = 4

	w := core.NewWorld(cfg, nil)
	w.Start()
	for i := 0; i < 10; i++ {
		w.Tick(frame)
	}

	w.GameOver().Set()
	for i := 0; i < 100; i++ {
		w.Tick(frame)
	}

	if !w.Done() || w.Outcome() != core.OutcomeLost {
		t.Errorf("outcome = %v, done = %v; want lost", w.Outcome(), w.Done())
	}
	if w.Loop().Running() {
		t.Error("spawn loop should stop on game over")
	}
	if w.Orchestrator().Phase() != core.PhaseFailed {
		t.Errorf("phase = %v, want Failed", w.Orchestrator().Phase())
	}
}
