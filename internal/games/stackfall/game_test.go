package stackfall

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/stackfall/internal/config"
	platformcore "github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/levels"
	"github.com/vovakirdan/stackfall/internal/registry"
)

const strongConfig = `
stack: {height: 1, hp_base: 1, hp_per_row: 0}
formation:
  line_count: {min: 3, max: 3}
loop: {randomize: false, default: line}
gunner: {fire_rate: 100, damage: 1000, range: 40}
defense: {lives: 9, max_lives: 9}
`

const shortLevel = `
id: a
name: Short
enemy_quota: 3
spawn_duration: 5
boss_intro_delay: 0.5
post_boss_win_delay: 0.5
boss: {hp: 10}
`

// useSettings points the package at a config file and level directory for
// one test. Empty strings keep the built-in defaults.
func useSettings(t *testing.T, cfgBody, levelBody string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	if cfgBody != "" {
		path := filepath.Join(dir, "shooter.yaml")
		if err := os.WriteFile(path, []byte(cfgBody), 0o644); err != nil {
			t.Fatal(err)
		}
		SetConfigPath(path)
	}
	if levelBody != "" {
		lvlDir := filepath.Join(dir, "levels")
		if err := os.Mkdir(lvlDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(lvlDir, "a.yaml"), []byte(levelBody), 0o644); err != nil {
			t.Fatal(err)
		}
		SetLevelsDir(lvlDir)
	}

	t.Cleanup(func() {
		SetConfigPath("")
		SetLevelsDir("")
		SetStartLevel(0)
	})
}

func runtimeConfig(seed int64) platformcore.RuntimeConfig {
	return platformcore.RuntimeConfig{TickRate: 60, Seed: seed}
}

func TestModesRegistered(t *testing.T) {
	for _, id := range []string{CampaignID, EndlessID} {
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", id, err)
		}
		if g.ID() != id || g.Title() == "" {
			t.Errorf("mode %q: id=%q title=%q", id, g.ID(), g.Title())
		}
	}
	for _, info := range registry.List() {
		if info.Description == "" {
			t.Errorf("mode %q has no description", info.ID)
		}
	}
}

func TestSettingsWorldConfig(t *testing.T) {
	lvls, err := levels.NewEmbeddedLoader().LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	s := Settings{Shooter: config.DefaultShooterConfig(), Levels: lvls}

	wc := s.WorldConfig(core.ModeCampaign, 42, 2)
	if wc.Seed != 42 || wc.StartLevel != 1 {
		t.Errorf("seed=%d start=%d", wc.Seed, wc.StartLevel)
	}
	if len(wc.Levels) != len(lvls) {
		t.Fatalf("levels = %d, want %d", len(wc.Levels), len(lvls))
	}
	if wc.Levels[0].Boss == nil || wc.Levels[0].Boss.Name != "Warden" {
		t.Errorf("first boss = %+v", wc.Levels[0].Boss)
	}
	if len(wc.Loop.Weights) != 3 || wc.Loop.Default != core.ShapeLine {
		t.Errorf("loop = %+v", wc.Loop)
	}
	if wc.Loop.StartLevel != 1 {
		t.Errorf("formation start level = %d", wc.Loop.StartLevel)
	}
	if wc.Gunner.FireRate != 8 || wc.Stack.Height != 6 {
		t.Errorf("gunner=%+v stack=%+v", wc.Gunner, wc.Stack)
	}

	if first := s.WorldConfig(core.ModeCampaign, 1, 0); first.StartLevel != 0 {
		t.Errorf("start level 0 should map to index 0, got %d", first.StartLevel)
	}
}

func TestSettingsWeightAliases(t *testing.T) {
	s := Settings{Shooter: config.DefaultShooterConfig()}
	s.Shooter.Loop.Weights = map[string]float64{"circle": 2, "bogus": 5}
	s.Shooter.Loop.Default = "vertical"

	wc := s.WorldConfig(core.ModeEndless, 1, 0)
	if len(wc.Loop.Weights) != 1 || wc.Loop.Weights[core.ShapeRing] != 2 {
		t.Errorf("weights = %v", wc.Loop.Weights)
	}
	if wc.Loop.Default != core.ShapeColumn {
		t.Errorf("default = %v", wc.Loop.Default)
	}
}

func TestCampaignRunsToWin(t *testing.T) {
	useSettings(t, strongConfig, shortLevel)

	g := NewCampaign()
	g.Reset(runtimeConfig(3))
	if g.Err() != nil || g.World() == nil {
		t.Fatalf("Reset failed: %v", g.Err())
	}

	var events []string
	for i := 0; i < 60*60 && !g.State().GameOver; i++ {
		res := g.Step(platformcore.NewInputFrame())
		events = append(events, res.Events...)
	}

	st := g.State()
	if !st.GameOver || !st.Won {
		t.Fatalf("state = %+v, want won", st)
	}
	sum := g.Summary()
	if sum.Outcome != "won" || sum.LevelsCleared != 1 || sum.BossesKilled != 1 || sum.Mode != CampaignID {
		t.Errorf("summary = %+v", sum)
	}

	joined := strings.Join(events, "\n")
	for _, want := range []string{"Short started", "approaches", "Short complete"} {
		if !strings.Contains(joined, want) {
			t.Errorf("events missing %q:\n%s", want, joined)
		}
	}
}

func TestStartLevelSelection(t *testing.T) {
	useSettings(t, "", "")
	SetStartLevel(2)

	g := NewCampaign()
	g.Reset(runtimeConfig(1))
	if st := g.State(); st.Level != 2 || st.Phase != core.PhaseSpawningEnemies.String() {
		t.Errorf("state = %+v, want level 2 spawning", st)
	}
}

func TestPauseAndSpeed(t *testing.T) {
	useSettings(t, "", "")

	g := NewEndless()
	g.Reset(runtimeConfig(5))

	pause := platformcore.NewInputFrame()
	pause.Set(platformcore.ActionPause)
	g.Step(pause)
	if !g.State().Paused {
		t.Fatal("expected paused")
	}
	before := g.World().Stats().Elapsed
	for i := 0; i < 30; i++ {
		g.Step(platformcore.NewInputFrame())
	}
	if g.World().Stats().Elapsed != before {
		t.Error("simulation advanced while paused")
	}

	g.Step(pause)
	faster := platformcore.NewInputFrame()
	faster.Set(platformcore.ActionFaster)
	g.Step(faster)
	if g.Speed() != 2 {
		t.Fatalf("speed = %d, want 2", g.Speed())
	}

	before = g.World().Stats().Elapsed
	g.Step(platformcore.NewInputFrame())
	if got, want := g.World().Stats().Elapsed-before, 2.0/60; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("one step at x2 advanced %v, want %v", got, want)
	}

	for i := 0; i < 10; i++ {
		g.Step(faster)
	}
	if g.Speed() != maxSpeed {
		t.Errorf("speed = %d, want capped at %d", g.Speed(), maxSpeed)
	}
}

func TestManualSpawnAndFail(t *testing.T) {
	useSettings(t, "", "")

	g := NewEndless()
	g.Reset(runtimeConfig(9))

	spawn := platformcore.NewInputFrame()
	spawn.Set(platformcore.ActionSpawn)
	var events []string
	for i := 0; i < 10 && len(g.World().Stacks()) == 0; i++ {
		events = append(events, g.Step(spawn).Events...)
	}
	if len(g.World().Stacks()) == 0 {
		t.Fatal("manual spawn produced no stacks")
	}
	if len(events) == 0 || !strings.HasPrefix(events[len(events)-1], "manual wave") {
		t.Errorf("events = %v", events)
	}

	fail := platformcore.NewInputFrame()
	fail.Set(platformcore.ActionFail)
	g.Step(fail)
	if st := g.State(); !st.GameOver || st.Won {
		t.Errorf("state after fail = %+v", st)
	}
	if g.Summary().Outcome != "lost" {
		t.Errorf("outcome = %q", g.Summary().Outcome)
	}
}

func TestRestartUsesNextSeed(t *testing.T) {
	useSettings(t, "", "")

	g := NewEndless()
	g.Reset(runtimeConfig(10))

	restart := platformcore.NewInputFrame()
	restart.Set(platformcore.ActionRestart)
	g.Step(restart)

	if g.World().Seed() != 11 {
		t.Errorf("seed after restart = %d, want 11", g.World().Seed())
	}
	if g.World().Stats().Elapsed != 0 {
		t.Error("restart should begin a fresh world")
	}
}

func TestBadConfigPath(t *testing.T) {
	useSettings(t, "", "")
	SetConfigPath(filepath.Join(t.TempDir(), "missing.yaml"))

	g := NewCampaign()
	g.Reset(runtimeConfig(1))
	if g.World() != nil || g.Err() == nil {
		t.Fatal("expected load error")
	}
	if !g.State().GameOver {
		t.Error("a game without a world should report game over")
	}

	scr := platformcore.NewScreen(60, 20)
	g.Render(scr)
	if !strings.Contains(scr.String(), "Cannot start") {
		t.Errorf("render:\n%s", scr.String())
	}

	// Input must not panic without a world.
	g.Step(platformcore.NewInputFrame())
}

func TestRender(t *testing.T) {
	useSettings(t, "", "")

	g := NewCampaign()
	g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 4})
	for i := 0; i < 90; i++ {
		g.Step(platformcore.NewInputFrame())
	}

	scr := platformcore.NewScreen(80, 24)
	g.Render(scr)

	if !strings.Contains(scr.Row(0), "STACKFALL") || !strings.Contains(scr.Row(0), "Outskirts") {
		t.Errorf("HUD row = %q", scr.Row(0))
	}
	if !strings.ContainsRune(scr.String(), '▲') {
		t.Errorf("gunner missing:\n%s", scr.String())
	}
	var field strings.Builder
	for y := hudRows; y < scr.Height()-statusRows; y++ {
		field.WriteString(scr.Row(y))
	}
	if !strings.ContainsAny(field.String(), "123456") {
		t.Errorf("no stacks drawn after 1.5s:\n%s", scr.String())
	}
}

func TestStackGlyph(t *testing.T) {
	tests := map[int]rune{0: '·', 1: '1', 9: '9', 12: '#'}
	for alive, want := range tests {
		if got := stackGlyph(alive); got != want {
			t.Errorf("stackGlyph(%d) = %q, want %q", alive, got, want)
		}
	}
}

func TestNextLevelSkips(t *testing.T) {
	useSettings(t, "", "")

	g := NewCampaign()
	g.Reset(runtimeConfig(2))

	next := platformcore.NewInputFrame()
	next.Set(platformcore.ActionNextLevel)
	g.Step(next)
	if st := g.State(); st.Level != 2 {
		t.Errorf("level after skip = %d, want 2", st.Level)
	}

	endless := NewEndless()
	endless.Reset(runtimeConfig(2))
	endless.Step(next)
	if st := endless.State(); st.Level != 0 || st.GameOver {
		t.Errorf("endless state after next-level = %+v", st)
	}
}

func TestSelectLevelOverridesSetting(t *testing.T) {
	useSettings(t, "", "")
	SetStartLevel(3)

	g := NewCampaign()
	g.SelectLevel(2)
	g.Reset(runtimeConfig(1))
	if st := g.State(); st.Level != 2 {
		t.Errorf("level = %d, want 2", st.Level)
	}

	other := NewCampaign()
	other.Reset(runtimeConfig(1))
	if st := other.State(); st.Level != 3 {
		t.Errorf("level without override = %d, want 3", st.Level)
	}

	if names := LevelNames(); len(names) != 4 || names[0] != "Outskirts" {
		t.Errorf("LevelNames() = %v", names)
	}
}

func TestRunRecord(t *testing.T) {
	useSettings(t, "", "")

	g := NewEndless()
	g.Reset(runtimeConfig(12))
	for i := 0; i < 120; i++ {
		g.Step(platformcore.NewInputFrame())
	}

	rec := g.RunRecord()
	sum := g.Summary()
	if rec.Mode != EndlessID || rec.Seed != 12 || rec.Outcome != "running" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Spawned != sum.Spawned || rec.Seconds != sum.Seconds || rec.Score != sum.Score {
		t.Errorf("record %+v does not match summary %+v", rec, sum)
	}
}
