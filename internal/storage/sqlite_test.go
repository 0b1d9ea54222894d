package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustSave(t *testing.T, store *Store, r Run) int64 {
	t.Helper()
	id, err := store.SaveRun(r)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	return id
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	mustSave(t, store, Run{Mode: "campaign", Seed: 1, Outcome: "won", Score: 10})
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("campaign")
	if err != nil || high != 10 {
		t.Errorf("HighScore() = %d, %v after reopen", high, err)
	}
}

func TestStoreSaveAndRunByID(t *testing.T) {
	store := openTestStore(t)

	want := Run{
		Mode:          "campaign",
		Seed:          42,
		Outcome:       "won",
		LevelsCleared: 4,
		Score:         12345,
		StacksKilled:  120,
		BlocksKilled:  700,
		BossesKilled:  3,
		Escapes:       2,
		Spawned:       160,
		Seconds:       97.5,
		Accuracy:      0.75,
	}
	id := mustSave(t, store, want)

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() returned nil")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got.CreatedAt = want.CreatedAt
	want.ID = id
	if *got != want {
		t.Errorf("RunByID() = %+v\nwant %+v", *got, want)
	}

	missing, err := store.RunByID(id + 100)
	if err != nil || missing != nil {
		t.Errorf("RunByID(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestStoreBestRuns(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{100, 50, 200} {
		mustSave(t, store, Run{Mode: "endless", Outcome: "lost", Score: score})
	}
	mustSave(t, store, Run{Mode: "campaign", Outcome: "won", Score: 500})

	runs, err := store.BestRuns("endless", 10)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	for i, want := range []int{200, 100, 50} {
		if runs[i].Score != want {
			t.Errorf("runs[%d].Score = %d, want %d", i, runs[i].Score, want)
		}
	}

	limited, err := store.BestRuns("endless", 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("BestRuns(limit 2) = %d runs, %v", len(limited), err)
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)

	var ids []int64
	for i := 0; i < 5; i++ {
		mode := "endless"
		if i%2 == 0 {
			mode = "campaign"
		}
		ids = append(ids, mustSave(t, store, Run{Mode: mode, Seed: int64(i), Outcome: "lost"}))
	}

	all, err := store.RecentRuns("", 0)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 runs, got %d", len(all))
	}
	if all[0].ID != ids[4] {
		t.Errorf("newest run first: got id %d, want %d", all[0].ID, ids[4])
	}

	campaign, err := store.RecentRuns("campaign", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(campaign) != 3 {
		t.Errorf("Expected 3 campaign runs, got %d", len(campaign))
	}
	for _, r := range campaign {
		if r.Mode != "campaign" {
			t.Errorf("unexpected mode %q", r.Mode)
		}
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("campaign")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for empty mode, got %d", high)
	}

	mustSave(t, store, Run{Mode: "campaign", Outcome: "lost", Score: 100})
	mustSave(t, store, Run{Mode: "campaign", Outcome: "won", Score: 300})

	high, err = store.HighScore("campaign")
	if err != nil || high != 300 {
		t.Errorf("HighScore() = %d, %v; want 300", high, err)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	mustSave(t, store, Run{Mode: "campaign", Outcome: "won", Score: 1})
	mustSave(t, store, Run{Mode: "endless", Outcome: "lost", Score: 2})

	if err := store.ClearRuns("campaign"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.RecentRuns("campaign", 10)
	if len(runs) != 0 {
		t.Errorf("Expected no campaign runs, got %d", len(runs))
	}
	runs, _ = store.RecentRuns("endless", 10)
	if len(runs) != 1 {
		t.Errorf("ClearRuns should not affect other modes, got %d", len(runs))
	}
}

func TestStoreModeStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetModeStats("campaign")
	if err != nil {
		t.Fatalf("GetModeStats() failed: %v", err)
	}
	if empty.Runs != 0 || empty.WinRate() != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}

	mustSave(t, store, Run{Mode: "campaign", Outcome: "won", Score: 300, StacksKilled: 10})
	mustSave(t, store, Run{Mode: "campaign", Outcome: "lost", Score: 100, StacksKilled: 4})
	mustSave(t, store, Run{Mode: "endless", Outcome: "lost", Score: 50, StacksKilled: 1})

	stats, err := store.GetModeStats("campaign")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Runs != 2 || stats.Wins != 1 || stats.HighScore != 300 || stats.AvgScore != 200 || stats.TotalKills != 14 {
		t.Errorf("campaign stats = %+v", stats)
	}
	if stats.WinRate() != 0.5 {
		t.Errorf("WinRate() = %v", stats.WinRate())
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	all, err := store.GetAllModeStats()
	if err != nil {
		t.Fatalf("GetAllModeStats() failed: %v", err)
	}
	if len(all) != 2 || all["endless"] == nil || all["endless"].Runs != 1 {
		t.Errorf("all stats = %+v", all)
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
