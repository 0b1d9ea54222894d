package config

import (
	_ "embed"
)

//go:embed defaults/shooter.yaml
var defaultShooterYAML []byte

// DefaultShooterConfig returns the default shooter configuration.
func DefaultShooterConfig() ShooterConfig {
	return ShooterConfig{
		Camera: CameraConfig{
			Position: Vec3{X: 0, Y: 12, Z: -6},
			Pitch:    55,
			Yaw:      0,
			FOV:      60,
		},
		Plane: PlaneConfig{Height: 0},
		Screen: ScreenConfig{
			Width:      1080, // portrait phone
			Height:     1920,
			CellWidth:  8,
			CellHeight: 16,
		},
		Stack: StackConfig{
			Height:     6,
			SpacingY:   0.1,
			HPBase:     10,
			HPPerRow:   2,
			MoveSpeedZ: -2,
			DespawnZ:   -15,
			BlockSize:  Vec3{X: 1, Y: 0.1, Z: 1},
		},
		Formation: FormationConfig{
			SpawnZCenter: 18,
			SpawnZJitter: 0,
			StartLevel:   1,
			LineCount:    IntRange{Min: 3, Max: 7},
			ColumnCount:  IntRange{Min: 3, Max: 7},
			RingCount:    IntRange{Min: 5, Max: 12},
			RingRadius:   FloatRange{Min: 4, Max: 10},
			FaceOutward:  true,
		},
		Loop: LoopConfig{
			FirstDelay: 1,
			Interval:   2,
			Randomize:  true,
			Weights: map[string]float64{
				"line":   1,
				"column": 1,
				"ring":   1,
			},
			Default: "line",
		},
		Boss: BossConfig{
			Name:       "Warden",
			HP:         200,
			MoveSpeedZ: -1.2,
			StopAtZ:    4,
			Size:       Vec3{X: 3, Y: 2, Z: 3},
		},
		Defense: DefenseConfig{
			Lives:          3,
			MaxLives:       9,
			ShieldDuration: 1,
		},
		Gunner: GunnerConfig{
			FireRate:  8,
			Damage:    12,
			Range:     30,
			Z:         0,
			MoveSpeed: 6,
		},
	}
}

// DefaultShooterYAML returns the embedded default configuration file.
func DefaultShooterYAML() []byte {
	return defaultShooterYAML
}
