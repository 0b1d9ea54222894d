// Package config provides YAML-based configuration loading for the
// stackfall shooter.
package config

// ShooterConfig contains all tunable parameters of a run.
type ShooterConfig struct {
	Camera    CameraConfig    `yaml:"camera"`
	Plane     PlaneConfig     `yaml:"plane"`
	Screen    ScreenConfig    `yaml:"screen"`
	Stack     StackConfig     `yaml:"stack"`
	Formation FormationConfig `yaml:"formation"`
	Loop      LoopConfig      `yaml:"loop"`
	Boss      BossConfig      `yaml:"boss"`
	Defense   DefenseConfig   `yaml:"defense"`
	Gunner    GunnerConfig    `yaml:"gunner"`
}

// Vec3 is a YAML-friendly 3D vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// CameraConfig places the gameplay camera. Angles are in degrees.
type CameraConfig struct {
	Position Vec3    `yaml:"position"`
	Pitch    float64 `yaml:"pitch"`
	Yaw      float64 `yaml:"yaw"`
	FOV      float64 `yaml:"fov"`
}

// PlaneConfig defines the horizontal gameplay plane.
type PlaneConfig struct {
	Height float64 `yaml:"height"`
}

// ScreenConfig defines the virtual screen used for bounds.
type ScreenConfig struct {
	Width  int `yaml:"width"`  // headless runs
	Height int `yaml:"height"` // headless runs

	// Terminal cells are scaled to pixels so the projected bounds match
	// the cell aspect ratio.
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// StackConfig defines stacked enemy parameters.
type StackConfig struct {
	Height     int     `yaml:"height"`
	SpacingY   float64 `yaml:"spacing_y"`
	HPBase     float64 `yaml:"hp_base"`
	HPPerRow   float64 `yaml:"hp_per_row"`
	MoveSpeedZ float64 `yaml:"move_speed_z"`
	DespawnZ   float64 `yaml:"despawn_z"`
	BlockSize  Vec3    `yaml:"block_size"`
}

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is a float range.
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// FormationConfig defines formation randomization.
type FormationConfig struct {
	SpawnZCenter float64    `yaml:"spawn_z_center"`
	SpawnZJitter float64    `yaml:"spawn_z_jitter"`
	StartLevel   int        `yaml:"start_level"`
	LineCount    IntRange   `yaml:"line_count"`
	ColumnCount  IntRange   `yaml:"column_count"`
	RingCount    IntRange   `yaml:"ring_count"`
	RingRadius   FloatRange `yaml:"ring_radius"`
	FaceOutward  bool       `yaml:"face_outward"`
}

// LoopConfig defines the periodic spawner.
type LoopConfig struct {
	FirstDelay float64            `yaml:"first_delay"`
	Interval   float64            `yaml:"interval"`
	Randomize  bool               `yaml:"randomize"`
	Weights    map[string]float64 `yaml:"weights"` // line, column, ring
	Default    string             `yaml:"default"`
}

// BossConfig is the default boss used by levels that do not override it.
type BossConfig struct {
	Name       string  `yaml:"name"`
	HP         float64 `yaml:"hp"`
	MoveSpeedZ float64 `yaml:"move_speed_z"`
	StopAtZ    float64 `yaml:"stop_at_z"`
	Size       Vec3    `yaml:"size"`
}

// DefenseConfig defines player lives.
type DefenseConfig struct {
	Lives          int     `yaml:"lives"`
	MaxLives       int     `yaml:"max_lives"`
	ShieldDuration float64 `yaml:"shield_duration"`
}

// GunnerConfig defines the automatic gun.
type GunnerConfig struct {
	FireRate  float64 `yaml:"fire_rate"`
	Damage    float64 `yaml:"damage"`
	Range     float64 `yaml:"range"`
	Z         float64 `yaml:"z"`
	MoveSpeed float64 `yaml:"move_speed"`
}

// Sanitize clamps values that would make the simulation meaningless.
// Reversed ranges are swapped and negative durations become zero.
func (c *ShooterConfig) Sanitize() {
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		c.Camera.FOV = 60
	}

	if c.Screen.Width <= 0 {
		c.Screen.Width = 1080
	}
	if c.Screen.Height <= 0 {
		c.Screen.Height = 1920
	}
	if c.Screen.CellWidth <= 0 {
		c.Screen.CellWidth = 8
	}
	if c.Screen.CellHeight <= 0 {
		c.Screen.CellHeight = 16
	}

	if c.Stack.Height < 1 {
		c.Stack.Height = 1
	}
	if c.Stack.SpacingY < 0 {
		c.Stack.SpacingY = 0
	}
	if c.Stack.BlockSize.X <= 0 {
		c.Stack.BlockSize.X = 1
	}
	if c.Stack.BlockSize.Y <= 0 {
		c.Stack.BlockSize.Y = c.Stack.SpacingY
	}
	if c.Stack.BlockSize.Z <= 0 {
		c.Stack.BlockSize.Z = 1
	}

	c.Formation.LineCount.order(1)
	c.Formation.ColumnCount.order(1)
	c.Formation.RingCount.order(3)
	c.Formation.RingRadius.order()
	if c.Formation.SpawnZJitter < 0 {
		c.Formation.SpawnZJitter = -c.Formation.SpawnZJitter
	}

	if c.Loop.FirstDelay < 0 {
		c.Loop.FirstDelay = 0
	}
	if c.Loop.Interval < 0 {
		c.Loop.Interval = 0
	}
	for k, w := range c.Loop.Weights {
		if w < 0 {
			c.Loop.Weights[k] = 0
		}
	}
	if c.Loop.Default == "" {
		c.Loop.Default = "line"
	}

	if c.Boss.HP <= 0 {
		c.Boss.HP = 200
	}

	if c.Defense.Lives < 1 {
		c.Defense.Lives = 1
	}
	if c.Defense.MaxLives < c.Defense.Lives {
		c.Defense.MaxLives = c.Defense.Lives
	}
	if c.Defense.ShieldDuration < 0 {
		c.Defense.ShieldDuration = 0
	}

	if c.Gunner.FireRate < 0 {
		c.Gunner.FireRate = 0
	}
	if c.Gunner.Damage < 0 {
		c.Gunner.Damage = 0
	}
	if c.Gunner.Range <= 0 {
		c.Gunner.Range = 30
	}
	if c.Gunner.MoveSpeed < 0 {
		c.Gunner.MoveSpeed = 0
	}
}

func (r *IntRange) order(floor int) {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	if r.Min < floor {
		r.Min = floor
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
}

func (r *FloatRange) order() {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	if r.Min < 0 {
		r.Min = 0
	}
}
