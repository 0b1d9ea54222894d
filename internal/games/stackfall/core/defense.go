package core

// DefenseConfig tunes the player's defensive line.
type DefenseConfig struct {
	Lives          int
	MaxLives       int
	ShieldDuration float64 // seconds of invulnerability after a hit
}

// DefaultDefenseConfig returns the stock defense tuning.
func DefaultDefenseConfig() DefenseConfig {
	return DefenseConfig{Lives: 3, MaxLives: 9, ShieldDuration: 1}
}

// Defense tracks player lives. Every stack that escapes past the defensive
// line costs one life unless the shield is up; losing the last life sets
// the game-over flag.
type Defense struct {
	cfg    DefenseConfig
	lives  int
	shield float64
	over   *GameOver

	LivesChanged Signal[int]
	Died         Signal[struct{}]
}

// NewDefense creates a defense with the starting lives.
func NewDefense(cfg DefenseConfig, over *GameOver) *Defense {
	if cfg.MaxLives <= 0 {
		cfg.MaxLives = cfg.Lives
	}
	return &Defense{
		cfg:   cfg,
		lives: clampInt(cfg.Lives, 0, cfg.MaxLives),
		over:  over,
	}
}

// Lives returns the remaining lives.
func (d *Defense) Lives() int { return d.lives }

// Shielded reports whether hits are currently ignored.
func (d *Defense) Shielded() bool { return d.shield > 0 }

// AddLife grants amount lives up to MaxLives.
func (d *Defense) AddLife(amount int) {
	if amount <= 0 {
		return
	}
	d.lives = clampInt(d.lives+amount, 0, d.cfg.MaxLives)
	d.LivesChanged.Emit(d.lives)
}

// TakeHit removes one life. It reports whether a life was lost.
func (d *Defense) TakeHit() bool {
	if d.shield > 0 || d.lives <= 0 {
		return false
	}

	d.lives--
	d.LivesChanged.Emit(d.lives)

	if d.lives <= 0 {
		if d.over != nil {
			d.over.Set()
		}
		d.Died.Emit(struct{}{})
		return true
	}

	d.shield = d.cfg.ShieldDuration
	return true
}

// Tick runs down the shield.
func (d *Defense) Tick(dt float64) {
	if d.shield <= 0 {
		return
	}
	d.shield -= dt
	if d.shield < 0 {
		d.shield = 0
	}
}
