// Package levels loads campaign level files for stackfall.
// This package depends on core but core does not depend on levels.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/levels/formats"
)

//go:embed defaults/*.yaml
var defaultLevels embed.FS

// Level is one campaign level as loaded from disk.
type Level struct {
	formats.Level
	FilePath string
}

// HasBoss reports whether the level ends with a boss fight.
func (l Level) HasBoss() bool {
	return l.Boss != nil
}

// Config converts the level into the core description. Boss fields the
// file leaves zero are taken from def.
func (l Level) Config(index int, def core.BossSpec) core.LevelConfig {
	cfg := core.LevelConfig{
		ID:               index,
		Name:             l.Name,
		SpawnDuration:    l.SpawnDuration,
		EnemyQuota:       l.EnemyQuota,
		BossSpawnPos:     core.V3(l.BossSpawn.X, l.BossSpawn.Y, l.BossSpawn.Z),
		BossIntroDelay:   l.BossIntroDelay,
		PostBossWinDelay: l.PostBossWinDelay,
	}
	if l.Boss == nil {
		return cfg
	}

	spec := def
	if l.Boss.Name != "" {
		spec.Name = l.Boss.Name
	}
	if l.Boss.HP > 0 {
		spec.HP = l.Boss.HP
	}
	if l.Boss.MoveSpeedZ != 0 {
		spec.MoveSpeedZ = l.Boss.MoveSpeedZ
	}
	if l.Boss.StopAtZ != 0 {
		spec.StopAtZ = l.Boss.StopAtZ
	}
	if s := l.Boss.Size; s != nil {
		spec.Size = core.V3(s.X, s.Y, s.Z)
	}
	cfg.Boss = &spec
	return cfg
}

// Configs converts an ordered level list into core configs.
func Configs(lvls []Level, def core.BossSpec) []core.LevelConfig {
	out := make([]core.LevelConfig, len(lvls))
	for i, l := range lvls {
		out[i] = l.Config(i, def)
	}
	return out
}

// Loader reads level files from a file system.
type Loader struct {
	fsys fs.FS
	root string
}

// NewLoader creates a loader for a directory on disk.
func NewLoader(dir string) *Loader {
	return &Loader{fsys: os.DirFS(dir), root: "."}
}

// NewEmbeddedLoader creates a loader for the built-in level set.
func NewEmbeddedLoader() *Loader {
	return &Loader{fsys: defaultLevels, root: "defaults"}
}

// Open returns a directory loader when dir is set, the built-in set otherwise.
func Open(dir string) *Loader {
	if dir == "" {
		return NewEmbeddedLoader()
	}
	return NewLoader(dir)
}

// LoadAll recursively scans and loads all level files.
// Invalid files are skipped. Levels are sorted by ID.
func (l *Loader) LoadAll() ([]Level, error) {
	var lvls []Level

	err := fs.WalkDir(l.fsys, l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		lvl, err := l.LoadFile(p)
		if err != nil {
			return nil
		}
		lvls = append(lvls, lvl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.root, err)
	}

	sort.Slice(lvls, func(i, j int) bool {
		return lvls[i].ID < lvls[j].ID
	})
	return lvls, nil
}

// LoadFile loads a single level file, relative to the loader's file system.
func (l *Loader) LoadFile(p string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	parsed, err := parseByExtension(data, strings.ToLower(path.Ext(p)))
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", p, err)
	}
	return Level{Level: parsed, FilePath: p}, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	lvls, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}
	for _, lvl := range lvls {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return Level{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	lvls, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(lvls))
	for i, lvl := range lvls {
		ids[i] = lvl.ID
	}
	return ids, nil
}

func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
