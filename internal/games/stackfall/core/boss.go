package core

// BossSpec describes the boss of a level.
type BossSpec struct {
	Name       string
	HP         float64
	MoveSpeedZ float64 // negative approaches the player
	StopAtZ    float64
	Size       Vec3
}

// DefaultBossSpec returns the stock boss tuning.
func DefaultBossSpec() BossSpec {
	return BossSpec{
		Name:       "boss",
		HP:         200,
		MoveSpeedZ: -1.2,
		StopAtZ:    4,
		Size:       Vec3{X: 3, Y: 2, Z: 3},
	}
}

// Boss advances towards StopAtZ and holds there until it dies.
type Boss struct {
	spec     BossSpec
	health   *Health
	position Vec3
	over     *GameOver
}

// NewBoss creates a boss at pos. The boss freezes once over is set.
func NewBoss(spec BossSpec, pos Vec3, over *GameOver) *Boss {
	return &Boss{
		spec:     spec,
		health:   NewHealth(spec.HP),
		position: pos,
		over:     over,
	}
}

// Spec returns the boss tuning.
func (b *Boss) Spec() BossSpec { return b.spec }

// Health returns the boss health. Its Died signal is the boss-death signal.
func (b *Boss) Health() *Health { return b.health }

// Position returns the boss position.
func (b *Boss) Position() Vec3 { return b.position }

// Dead reports whether the boss has been killed.
func (b *Boss) Dead() bool { return b.health.Dead() }

// Arrived reports whether the boss reached its holding position.
func (b *Boss) Arrived() bool {
	v := b.spec.MoveSpeedZ
	switch {
	case v < 0:
		return b.position.Z <= b.spec.StopAtZ
	case v > 0:
		return b.position.Z >= b.spec.StopAtZ
	default:
		return true
	}
}

// ApplyDamage damages the boss.
func (b *Boss) ApplyDamage(amount float64) {
	b.health.ApplyDamage(amount)
}

// Tick moves the boss along Z without overshooting StopAtZ.
func (b *Boss) Tick(dt float64) {
	if b.Dead() || b.over.IsSet() || b.Arrived() {
		return
	}

	z := b.position.Z + b.spec.MoveSpeedZ*dt
	if (b.spec.MoveSpeedZ < 0 && z < b.spec.StopAtZ) ||
		(b.spec.MoveSpeedZ > 0 && z > b.spec.StopAtZ) {
		z = b.spec.StopAtZ
	}
	b.position.Z = z
}
