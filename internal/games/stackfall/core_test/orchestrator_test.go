package core_test

import (
	"math"
	"testing"

	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
)

type fakeLoop struct {
	running bool
	starts  int
	stops   int
}

func (l *fakeLoop) Start()        { l.running = true; l.starts++ }
func (l *fakeLoop) Stop()         { l.running = false; l.stops++ }
func (l *fakeLoop) Running() bool { return l.running }

type fakeBosses struct {
	spawned []*core.Boss
}

func (f *fakeBosses) SpawnBoss(cfg core.LevelConfig) *core.Boss {
	b := core.NewBoss(*cfg.Boss, cfg.BossSpawnPos, nil)
	f.spawned = append(f.spawned, b)
	return b
}

type harness struct {
	orch   *core.Orchestrator
	loop   *fakeLoop
	bosses *fakeBosses
	over   *core.GameOver
	events []core.Event
	phases []core.Phase
}

func newHarness(levels ...core.LevelConfig) *harness {
	h := &harness{
		loop:   &fakeLoop{},
		bosses: &fakeBosses{},
		over:   &core.GameOver{},
	}
	h.orch = core.NewOrchestrator(levels, h.loop, h.bosses, h.over, nil)
	h.orch.Events.Connect(func(ev core.Event) {
		h.events = append(h.events, ev)
		if ev.Kind == core.EventPhaseChanged {
			h.phases = append(h.phases, ev.To)
		}
	})
	return h
}

func (h *harness) count(kind core.EventKind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (h *harness) visited(p core.Phase) bool {
	for _, got := range h.phases {
		if got == p {
			return true
		}
	}
	return false
}

func level(quota int, duration float64, boss bool) core.LevelConfig {
	cfg := core.DefaultLevelConfig()
	cfg.EnemyQuota = quota
	cfg.SpawnDuration = duration
	cfg.BossIntroDelay = 0.5
	cfg.PostBossWinDelay = 1
	if !boss {
		cfg.Boss = nil
	}
	return cfg
}

func TestQuotaTermination(t *testing.T) {
	const quota = 5
	h := newHarness(level(quota, math.Inf(1), true))
	h.orch.StartLevel(0)

	for i := 1; i <= quota; i++ {
		h.orch.Tick(0.1)
		if h.orch.Phase() != core.PhaseSpawningEnemies {
			t.Fatalf("left spawn phase after %d spawns", i-1)
		}
		h.orch.HandleSpawned(nil)
	}

	if h.loop.running {
		t.Error("reaching quota should stop the loop")
	}
	if h.orch.Phase() != core.PhaseSpawningEnemies {
		t.Error("phase should change on the next tick, not inside the notification")
	}

	h.orch.Tick(0.1)
	if h.orch.Phase() != core.PhaseIntroDelay {
		t.Errorf("phase = %v, want IntroDelay", h.orch.Phase())
	}
}

func TestQuotaBeatsLongDuration(t *testing.T) {
	h := newHarness(level(5, 999, true))
	h.orch.StartLevel(0)

	// One spawn per second at 10 frames per second.
	frames := 0
	for h.orch.Phase() == core.PhaseSpawningEnemies && frames < 1000 {
		frames++
		if frames%10 == 0 {
			h.orch.HandleSpawned(nil)
		}
		h.orch.Tick(0.1)
	}

	if h.orch.Phase() != core.PhaseIntroDelay {
		t.Fatalf("phase = %v, want IntroDelay", h.orch.Phase())
	}
	if frames != 50 {
		t.Errorf("left spawn phase at frame %d, want 50", frames)
	}
	if h.orch.Spawned() != 5 {
		t.Errorf("spawned = %d, want 5", h.orch.Spawned())
	}
}

func TestDurationEndsSpawnPhase(t *testing.T) {
	h := newHarness(level(100, 2, true))
	h.orch.StartLevel(0)

	h.orch.Tick(1.5)
	if h.orch.Phase() != core.PhaseSpawningEnemies {
		t.Fatal("left spawn phase early")
	}
	h.orch.Tick(0.5)
	if h.orch.Phase() != core.PhaseIntroDelay {
		t.Errorf("phase = %v, want IntroDelay", h.orch.Phase())
	}
	if h.loop.running {
		t.Error("loop should be stopped after spawn phase")
	}
}

func TestNoBossSkipsToWinDelay(t *testing.T) {
	h := newHarness(level(1, 10, false))
	h.orch.StartLevel(0)
	h.orch.HandleSpawned(nil)

	h.orch.Tick(0.1)
	if h.orch.Phase() != core.PhaseIntroDelay {
		t.Fatalf("phase = %v, want IntroDelay", h.orch.Phase())
	}

	h.orch.Tick(0.5)
	if h.orch.Phase() != core.PhaseWinDelay {
		t.Fatalf("phase = %v, want WinDelay", h.orch.Phase())
	}

	h.orch.Tick(0.5)
	if h.orch.Phase() != core.PhaseWinDelay {
		t.Fatalf("completed before win delay, phase = %v", h.orch.Phase())
	}
	h.orch.Tick(0.5)
	if h.orch.Phase() != core.PhaseComplete {
		t.Fatalf("phase = %v, want Complete", h.orch.Phase())
	}

	if h.visited(core.PhaseBossActive) {
		t.Error("should never enter BossActive without a boss")
	}
	if len(h.bosses.spawned) != 0 {
		t.Error("boss spawner should not be called")
	}
	if h.count(core.EventLevelCompleted) != 1 {
		t.Errorf("level-completed fired %d times", h.count(core.EventLevelCompleted))
	}
}

func TestBossFight(t *testing.T) {
	h := newHarness(level(1, 10, true))
	h.orch.StartLevel(0)
	h.orch.HandleSpawned(nil)
	h.orch.Tick(0.1)
	h.orch.Tick(0.5)

	if h.orch.Phase() != core.PhaseBossActive {
		t.Fatalf("phase = %v, want BossActive", h.orch.Phase())
	}
	boss := h.orch.Boss()
	if boss == nil || len(h.bosses.spawned) != 1 {
		t.Fatal("boss should be spawned once")
	}
	if boss.Position() != core.V3(0, 0, 16) {
		t.Errorf("boss at %+v", boss.Position())
	}

	for i := 0; i < 10; i++ {
		h.orch.Tick(1)
	}
	if h.orch.Phase() != core.PhaseBossActive {
		t.Fatal("boss phase must wait for the boss to die")
	}

	boss.ApplyDamage(1e9)
	h.orch.Tick(0.1)
	if h.orch.Phase() != core.PhaseWinDelay {
		t.Fatalf("phase = %v, want WinDelay", h.orch.Phase())
	}
	h.orch.Tick(1)
	if h.orch.Phase() != core.PhaseComplete {
		t.Fatalf("phase = %v, want Complete", h.orch.Phase())
	}
}

func TestGameOverFailsSpawnPhase(t *testing.T) {
	h := newHarness(level(40, 20, true))
	h.orch.StartLevel(0)
	if !h.loop.running {
		t.Fatal("start should run the spawn loop")
	}

	h.over.Set()
	h.orch.Tick(1.0 / 60)

	if h.orch.Phase() != core.PhaseFailed {
		t.Errorf("phase = %v, want Failed", h.orch.Phase())
	}
	if h.loop.running {
		t.Error("spawn loop should be stopped")
	}
	if h.count(core.EventLevelFailed) != 1 {
		t.Errorf("level-failed fired %d times", h.count(core.EventLevelFailed))
	}

	h.orch.Tick(1)
	if h.count(core.EventLevelFailed) != 1 {
		t.Error("failed level must not fail again")
	}
	if h.orch.StartLevel(0) {
		t.Error("start must be refused after game over")
	}
}

func TestFailIsIdempotent(t *testing.T) {
	h := newHarness(level(40, 20, true))
	h.orch.StartLevel(0)

	h.orch.Fail()
	h.orch.Fail()

	if h.count(core.EventLevelFailed) != 1 {
		t.Errorf("level-failed fired %d times, want 1", h.count(core.EventLevelFailed))
	}
	if h.loop.stops < 2 {
		t.Errorf("every fail should stop the loop, stops = %d", h.loop.stops)
	}

	// A failed level can be restarted when the game is not over.
	if !h.orch.RestartCurrentLevel() {
		t.Fatal("restart should succeed")
	}
	if h.orch.Phase() != core.PhaseSpawningEnemies {
		t.Errorf("phase = %v after restart", h.orch.Phase())
	}
}

func TestStartLevelOutOfRange(t *testing.T) {
	h := newHarness(level(1, 1, false))

	for _, i := range []int{-1, 1, 99} {
		if h.orch.StartLevel(i) {
			t.Errorf("StartLevel(%d) should fail", i)
		}
	}
	if h.orch.Phase() != core.PhaseIdle || h.orch.CurrentLevel() != -1 {
		t.Errorf("state changed: phase=%v level=%d", h.orch.Phase(), h.orch.CurrentLevel())
	}
	if len(h.events) != 0 {
		t.Errorf("unexpected events %v", h.events)
	}
}

func TestSpawnsCountedOnlyWhileSpawning(t *testing.T) {
	h := newHarness(level(1, 10, false))

	h.orch.HandleSpawned(nil)
	if h.orch.Spawned() != 0 {
		t.Fatal("idle orchestrator counted a spawn")
	}

	h.orch.StartLevel(0)
	h.orch.HandleSpawned(nil)
	h.orch.Tick(0.1)
	h.orch.HandleSpawned(nil)

	if h.orch.Spawned() != 1 {
		t.Errorf("spawned = %d, want 1", h.orch.Spawned())
	}
}

func TestZeroDelaysChainInOneTick(t *testing.T) {
	cfg := level(0, 0, false)
	cfg.BossIntroDelay = 0
	cfg.PostBossWinDelay = 0
	h := newHarness(cfg)

	h.orch.StartLevel(0)
	h.orch.Tick(0.016)

	if h.orch.Phase() != core.PhaseComplete {
		t.Errorf("phase = %v, want Complete", h.orch.Phase())
	}
}

func TestAutoAdvance(t *testing.T) {
	cfg := level(0, 0, false)
	cfg.BossIntroDelay = 0
	cfg.PostBossWinDelay = 0
	h := newHarness(cfg, cfg)
	h.orch.AutoAdvance = true

	h.orch.StartLevel(0)
	h.orch.Tick(0.016)

	if h.orch.CurrentLevel() != 1 {
		t.Fatalf("current level = %d, want 1", h.orch.CurrentLevel())
	}
	h.orch.Tick(0.016)
	if h.orch.Phase() != core.PhaseComplete {
		t.Errorf("phase = %v, want Complete", h.orch.Phase())
	}
	if h.orch.StartNextLevel() {
		t.Error("no level after the last one")
	}
	if h.count(core.EventLevelCompleted) != 2 {
		t.Errorf("level-completed fired %d times, want 2", h.count(core.EventLevelCompleted))
	}
}

func TestLevelEvents(t *testing.T) {
	h := newHarness(level(3, 10, false))
	h.orch.StartLevel(0)
	h.orch.HandleSpawned(nil)
	h.orch.HandleSpawned(nil)

	if h.events[0].Kind != core.EventLevelStarted || h.events[0].Level != 0 {
		t.Errorf("first event = %+v, want level-started", h.events[0])
	}
	if h.events[1].Kind != core.EventQuotaSet || h.events[1].Count != 3 {
		t.Errorf("second event = %+v, want quota-set 3", h.events[1])
	}

	var counts []int
	for _, ev := range h.events {
		if ev.Kind == core.EventSpawnedCount {
			counts = append(counts, ev.Count)
		}
	}
	if len(counts) != 2 || counts[0] != 1 || counts[1] != 2 {
		t.Errorf("spawned-count events = %v, want [1 2]", counts)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to core.Phase
		ok       bool
	}{
		{core.PhaseIdle, core.PhaseSpawningEnemies, true},
		{core.PhaseIdle, core.PhaseBossActive, false},
		{core.PhaseSpawningEnemies, core.PhaseIntroDelay, true},
		{core.PhaseSpawningEnemies, core.PhaseWinDelay, false},
		{core.PhaseIntroDelay, core.PhaseWinDelay, true},
		{core.PhaseBossActive, core.PhaseComplete, false},
		{core.PhaseWinDelay, core.PhaseComplete, true},
		{core.PhaseComplete, core.PhaseIntroDelay, false},
		{core.PhaseFailed, core.PhaseFailed, false},
	}

	for _, tt := range tests {
		if got := core.IsValidTransition(tt.from, tt.to); got != tt.ok {
			t.Errorf("%v -> %v = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}

	for _, p := range []core.Phase{core.PhaseIdle, core.PhaseSpawningEnemies, core.PhaseIntroDelay, core.PhaseBossActive, core.PhaseWinDelay, core.PhaseComplete} {
		if !core.IsValidTransition(p, core.PhaseFailed) {
			t.Errorf("%v should be able to fail", p)
		}
	}
}

func TestGameOverFailsIdleAndComplete(t *testing.T) {
	idle := newHarness(level(40, 20, true))
	idle.over.Set()
	idle.orch.Tick(frame)
	if idle.orch.Phase() != core.PhaseFailed {
		t.Errorf("idle phase = %v after game over, want Failed", idle.orch.Phase())
	}

	done := newHarness(level(1, 10, false))
	done.orch.StartLevel(0)
	done.orch.HandleSpawned(nil)
	done.orch.Tick(0.1)
	done.orch.Tick(0.5)
	done.orch.Tick(1)
	if done.orch.Phase() != core.PhaseComplete {
		t.Fatalf("phase = %v, want Complete", done.orch.Phase())
	}

	done.over.Set()
	done.orch.Tick(frame)
	done.orch.Tick(frame)
	if done.orch.Phase() != core.PhaseFailed {
		t.Errorf("phase = %v after game over, want Failed", done.orch.Phase())
	}
	if done.count(core.EventLevelFailed) != 1 {
		t.Errorf("level-failed fired %d times, want 1", done.count(core.EventLevelFailed))
	}
}
