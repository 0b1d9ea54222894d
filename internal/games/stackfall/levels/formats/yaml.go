// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Defaults applied to keys a level file leaves out.
const (
	DefaultSpawnDuration    = 20.0
	DefaultEnemyQuota       = 40
	DefaultBossIntroDelay   = 3.0
	DefaultPostBossWinDelay = 1.0
)

// DefaultBossSpawn is where the boss appears when a level does not say.
var DefaultBossSpawn = Vec3{X: 0, Y: 0, Z: 16}

// Vec3 is a point in world space.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	SpawnDuration    *float64          `yaml:"spawn_duration,omitempty"` // .inf never times out
	EnemyQuota       *int              `yaml:"enemy_quota,omitempty"`
	Boss             *YAMLBoss         `yaml:"boss,omitempty"`
	BossSpawn        *Vec3             `yaml:"boss_spawn,omitempty"`
	BossIntroDelay   *float64          `yaml:"boss_intro_delay,omitempty"`
	PostBossWinDelay *float64          `yaml:"post_boss_win_delay,omitempty"`
	Metadata         map[string]string `yaml:"metadata,omitempty"`
}

// YAMLBoss describes a level's boss. Zero fields inherit the configured
// default boss.
type YAMLBoss struct {
	Name       string  `yaml:"name,omitempty"`
	HP         float64 `yaml:"hp,omitempty"`
	MoveSpeedZ float64 `yaml:"move_speed_z,omitempty"`
	StopAtZ    float64 `yaml:"stop_at_z,omitempty"`
	Size       *Vec3   `yaml:"size,omitempty"`
}

// Level represents a parsed level with every default applied except the
// boss fields, which are resolved against the runtime config.
type Level struct {
	ID               string
	Name             string
	SpawnDuration    float64
	EnemyQuota       int
	Boss             *YAMLBoss // nil: the level has no boss
	BossSpawn        Vec3
	BossIntroDelay   float64
	PostBossWinDelay float64
	Metadata         map[string]string
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if yl.ID == "" {
		return Level{}, fmt.Errorf("level has no id")
	}

	level := Level{
		ID:               yl.ID,
		Name:             yl.Name,
		SpawnDuration:    DefaultSpawnDuration,
		EnemyQuota:       DefaultEnemyQuota,
		Boss:             yl.Boss,
		BossSpawn:        DefaultBossSpawn,
		BossIntroDelay:   DefaultBossIntroDelay,
		PostBossWinDelay: DefaultPostBossWinDelay,
		Metadata:         yl.Metadata,
	}
	if level.Name == "" {
		level.Name = yl.ID
	}

	if yl.SpawnDuration != nil {
		if *yl.SpawnDuration < 0 {
			return Level{}, fmt.Errorf("level %s: negative spawn_duration", yl.ID)
		}
		level.SpawnDuration = *yl.SpawnDuration
	}
	if yl.EnemyQuota != nil {
		if *yl.EnemyQuota < 0 {
			return Level{}, fmt.Errorf("level %s: negative enemy_quota", yl.ID)
		}
		level.EnemyQuota = *yl.EnemyQuota
	}
	if yl.BossSpawn != nil {
		level.BossSpawn = *yl.BossSpawn
	}
	if yl.BossIntroDelay != nil {
		level.BossIntroDelay = max(0, *yl.BossIntroDelay)
	}
	if yl.PostBossWinDelay != nil {
		level.PostBossWinDelay = max(0, *yl.PostBossWinDelay)
	}

	return level, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
