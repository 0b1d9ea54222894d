package levels_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/levels"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/levels/formats"
)

func writeLevel(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEmbeddedLevels(t *testing.T) {
	lvls, err := levels.NewEmbeddedLoader().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(lvls) < 3 {
		t.Fatalf("expected at least 3 built-in levels, got %d", len(lvls))
	}
	for i := 1; i < len(lvls); i++ {
		if lvls[i-1].ID >= lvls[i].ID {
			t.Errorf("levels not sorted: %s >= %s", lvls[i-1].ID, lvls[i].ID)
		}
	}

	var bossless bool
	for _, l := range lvls {
		if !l.HasBoss() {
			bossless = true
		}
	}
	if !bossless {
		t.Error("built-in set should contain a level without a boss")
	}
}

func TestLoaderDirectory(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "b.yaml", "id: b\nname: Second\nenemy_quota: 5\n")
	writeLevel(t, dir, "a.yml", "id: a\nname: First\nspawn_duration: .inf\nboss: {}\n")
	writeLevel(t, dir, "notes.txt", "id: ignored\n")
	writeLevel(t, dir, "broken.yaml", "id: [oops\n")

	sub := filepath.Join(dir, "extra")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeLevel(t, sub, "c.yaml", "id: c\n")

	lvls, err := levels.NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(lvls) != 3 {
		t.Fatalf("got %d levels, want 3 (txt and broken files skipped)", len(lvls))
	}

	if lvls[0].ID != "a" || lvls[1].ID != "b" || lvls[2].ID != "c" {
		t.Errorf("order = %s %s %s", lvls[0].ID, lvls[1].ID, lvls[2].ID)
	}
	if !math.IsInf(lvls[0].SpawnDuration, 1) {
		t.Errorf("spawn_duration .inf parsed as %v", lvls[0].SpawnDuration)
	}
	if lvls[1].EnemyQuota != 5 || lvls[1].SpawnDuration != formats.DefaultSpawnDuration {
		t.Errorf("level b = %+v", lvls[1].Level)
	}
	if lvls[2].Name != "c" {
		t.Errorf("name should default to id, got %q", lvls[2].Name)
	}
}

func TestLoaderMissingDirectory(t *testing.T) {
	if _, err := levels.NewLoader(filepath.Join(t.TempDir(), "nope")).LoadAll(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoadByID(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "x.yaml", "id: x\nname: Ex\n")

	loader := levels.NewLoader(dir)
	lvl, err := loader.LoadByID("x")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if lvl.Name != "Ex" || lvl.FilePath != "x.yaml" {
		t.Errorf("level = %+v", lvl)
	}
	if _, err := loader.LoadByID("y"); err == nil {
		t.Error("expected error for unknown id")
	}

	ids, err := loader.ListIDs()
	if err != nil || len(ids) != 1 || ids[0] != "x" {
		t.Errorf("ListIDs() = %v, %v", ids, err)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", "name: nameless\n"},
		{"negative quota", "id: q\nenemy_quota: -1\n"},
		{"negative duration", "id: d\nspawn_duration: -3\n"},
		{"malformed", "id: [x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := formats.ParseYAML([]byte(tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseYAMLClampsDelays(t *testing.T) {
	lvl, err := formats.ParseYAML([]byte("id: z\nboss_intro_delay: -2\npost_boss_win_delay: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if lvl.BossIntroDelay != 0 || lvl.PostBossWinDelay != 0 {
		t.Errorf("delays = %v, %v", lvl.BossIntroDelay, lvl.PostBossWinDelay)
	}
	if lvl.BossSpawn != formats.DefaultBossSpawn {
		t.Errorf("boss spawn = %+v", lvl.BossSpawn)
	}
}

func TestLevelConfig(t *testing.T) {
	def := core.DefaultBossSpec()
	def.Name = "Default"

	withBoss, err := formats.ParseYAML([]byte("id: a\nboss:\n  hp: 999\n  size: {x: 5, y: 1, z: 2}\nboss_spawn: {x: 1, y: 0, z: 9}\n"))
	if err != nil {
		t.Fatal(err)
	}
	noBoss, err := formats.ParseYAML([]byte("id: b\nenemy_quota: 0\n"))
	if err != nil {
		t.Fatal(err)
	}

	cfgs := levels.Configs([]levels.Level{{Level: withBoss}, {Level: noBoss}}, def)
	if len(cfgs) != 2 || cfgs[0].ID != 0 || cfgs[1].ID != 1 {
		t.Fatalf("configs = %+v", cfgs)
	}

	b := cfgs[0].Boss
	if b == nil {
		t.Fatal("level a should have a boss")
	}
	if b.Name != "Default" || b.HP != 999 || b.StopAtZ != def.StopAtZ {
		t.Errorf("boss = %+v", *b)
	}
	if b.Size != core.V3(5, 1, 2) {
		t.Errorf("boss size = %+v", b.Size)
	}
	if cfgs[0].BossSpawnPos != core.V3(1, 0, 9) {
		t.Errorf("boss spawn = %+v", cfgs[0].BossSpawnPos)
	}

	if cfgs[1].Boss != nil {
		t.Error("level b should have no boss")
	}
	if cfgs[1].EnemyQuota != 0 {
		t.Errorf("explicit zero quota lost: %d", cfgs[1].EnemyQuota)
	}
}
