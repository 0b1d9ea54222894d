package stackfall

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stackfall/internal/config"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/levels"
)

// Package-level settings applied on the next Reset. The CLI sets them
// from flags before creating a game.
var (
	configPath         string
	levelsDir          string
	selectedStartLevel int
	logger             *log.Logger
)

// SetConfigPath sets a custom shooter config file. Empty uses the search order.
func SetConfigPath(path string) {
	configPath = path
}

// SetLevelsDir sets a directory of level files. Empty uses the built-in set.
func SetLevelsDir(dir string) {
	levelsDir = dir
}

// SetStartLevel sets the starting campaign level (1-indexed). 0 means the
// first level.
func SetStartLevel(level int) {
	selectedStartLevel = level
}

// GetStartLevel returns the currently selected start level.
func GetStartLevel() int {
	return selectedStartLevel
}

// SetLogger sets the logger handed to the simulation. Nil discards.
func SetLogger(l *log.Logger) {
	logger = l
}

// Settings is everything needed to build a world besides mode and seed.
type Settings struct {
	Shooter      config.ShooterConfig
	ConfigSource string
	Levels       []levels.Level
}

// LoadSettings reads the shooter config and the level set using the
// package-level paths.
func LoadSettings() (Settings, error) {
	cfg, src, err := config.LoadShooterFrom(configPath)
	if err != nil {
		return Settings{}, err
	}
	lvls, err := levels.Open(levelsDir).LoadAll()
	if err != nil {
		return Settings{}, err
	}
	return Settings{Shooter: cfg, ConfigSource: src, Levels: lvls}, nil
}

// LevelNames returns the campaign level names in play order. Load errors
// yield an empty list.
func LevelNames() []string {
	lvls, err := levels.Open(levelsDir).LoadAll()
	if err != nil {
		return nil
	}
	names := make([]string, len(lvls))
	for i, l := range lvls {
		names[i] = l.Name
	}
	return names
}

// BossSpec returns the configured default boss.
func (s Settings) BossSpec() core.BossSpec {
	b := s.Shooter.Boss
	return core.BossSpec{
		Name:       b.Name,
		HP:         b.HP,
		MoveSpeedZ: b.MoveSpeedZ,
		StopAtZ:    b.StopAtZ,
		Size:       vec(b.Size),
	}
}

// WorldConfig maps the settings onto a core world configuration. startLevel
// is the 1-indexed campaign level; 0 starts at the first one.
func (s Settings) WorldConfig(mode core.Mode, seed int64, startLevel int) core.WorldConfig {
	c := s.Shooter

	weights := make(map[core.Shape]float64, len(c.Loop.Weights))
	for name, w := range c.Loop.Weights {
		if shape, err := core.ParseShape(name); err == nil {
			weights[shape] += w
		}
	}
	def, err := core.ParseShape(c.Loop.Default)
	if err != nil {
		def = core.ShapeLine
	}

	if startLevel <= 0 {
		startLevel = 1
	}

	wc := core.WorldConfig{
		Mode: mode,
		Seed: seed,
		Camera: core.Camera{
			Position: vec(c.Camera.Position),
			Pitch:    c.Camera.Pitch,
			Yaw:      c.Camera.Yaw,
			FOV:      c.Camera.FOV,
		},
		ScreenWidth:  c.Screen.Width,
		ScreenHeight: c.Screen.Height,
		Stack: core.StackParams{
			Height:     c.Stack.Height,
			SpacingY:   c.Stack.SpacingY,
			HPBase:     c.Stack.HPBase,
			HPPerRow:   c.Stack.HPPerRow,
			MoveSpeedZ: c.Stack.MoveSpeedZ,
			DespawnZ:   c.Stack.DespawnZ,
			BlockSize:  vec(c.Stack.BlockSize),
		},
		Formation: core.FormationParams{
			PlaneHeight:  c.Plane.Height,
			SpawnZCenter: c.Formation.SpawnZCenter,
			SpawnZJitter: c.Formation.SpawnZJitter,
			LineCount:    core.CountRange{Min: c.Formation.LineCount.Min, Max: c.Formation.LineCount.Max},
			ColumnCount:  core.CountRange{Min: c.Formation.ColumnCount.Min, Max: c.Formation.ColumnCount.Max},
			RingCount:    core.CountRange{Min: c.Formation.RingCount.Min, Max: c.Formation.RingCount.Max},
			RingRadius:   core.FloatRange{Min: c.Formation.RingRadius.Min, Max: c.Formation.RingRadius.Max},
			FaceOutward:  c.Formation.FaceOutward,
		},
		Loop: core.LoopConfig{
			FirstDelay: c.Loop.FirstDelay,
			Interval:   c.Loop.Interval,
			StartLevel: c.Formation.StartLevel,
			Randomize:  c.Loop.Randomize,
			Weights:    weights,
			Default:    def,
		},
		Levels: levels.Configs(s.Levels, s.BossSpec()),
		Defense: core.DefenseConfig{
			Lives:          c.Defense.Lives,
			MaxLives:       c.Defense.MaxLives,
			ShieldDuration: c.Defense.ShieldDuration,
		},
		Gunner: core.GunnerConfig{
			FireRate:  c.Gunner.FireRate,
			Damage:    c.Gunner.Damage,
			Range:     c.Gunner.Range,
			Z:         c.Gunner.Z,
			MoveSpeed: c.Gunner.MoveSpeed,
		},
		StartLevel:  startLevel - 1,
		AutoAdvance: true,
	}
	return wc
}

func vec(v config.Vec3) core.Vec3 {
	return core.V3(v.X, v.Y, v.Z)
}
