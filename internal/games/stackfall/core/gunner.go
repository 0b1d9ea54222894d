package core

import "math"

// GunnerConfig tunes the automatic gun.
type GunnerConfig struct {
	FireRate  float64 // shots per second
	Damage    float64 // per shot
	Range     float64 // max distance along Z
	Z         float64 // muzzle depth
	MoveSpeed float64 // lateral tracking speed, units per second
}

// DefaultGunnerConfig returns the stock gun tuning.
func DefaultGunnerConfig() GunnerConfig {
	return GunnerConfig{
		FireRate:  2,
		Damage:    5,
		Range:     30,
		Z:         0,
		MoveSpeed: 6,
	}
}

// slowFireCooldown is used when the fire rate is too low to invert.
const slowFireCooldown = 0.25

// Target is something the gunner can shoot at.
type Target interface {
	Position() Vec3
}

// Gunner stands in for the projectile system: it slides along X towards
// the nearest target ahead and fires hitscan shots straight down +Z.
// Stacks take top damage, the boss takes plain damage.
type Gunner struct {
	cfg      GunnerConfig
	x        float64
	cooldown float64
	shots    int
	hits     int
}

// NewGunner creates a gunner centered on X=0.
func NewGunner(cfg GunnerConfig) *Gunner {
	return &Gunner{cfg: cfg}
}

// X returns the gun's lateral position.
func (g *Gunner) X() float64 { return g.x }

// Shots returns the number of shots fired.
func (g *Gunner) Shots() int { return g.shots }

// Hits returns the number of shots that connected.
func (g *Gunner) Hits() int { return g.hits }

// Reset recenters the gun and clears its cooldown.
func (g *Gunner) Reset() {
	g.x = 0
	g.cooldown = 0
}

func (g *Gunner) interval() float64 {
	if g.cfg.FireRate <= 0.01 {
		return slowFireCooldown
	}
	return 1 / g.cfg.FireRate
}

// Tick tracks the nearest target and fires when the cooldown allows.
// halfWidth is the half extent of a stack along X.
func (g *Gunner) Tick(dt float64, stacks []*StackEnemy, boss *Boss, halfWidth float64, b Bounds) {
	if g.cooldown > 0 {
		g.cooldown = math.Max(0, g.cooldown-dt)
	}

	target := g.nearest(stacks, boss)
	if target == nil {
		return
	}

	// Track.
	tx := math.Max(b.MinX, math.Min(b.MaxX, target.Position().X))
	step := g.cfg.MoveSpeed * dt
	switch {
	case math.Abs(tx-g.x) <= step:
		g.x = tx
	case tx > g.x:
		g.x += step
	default:
		g.x -= step
	}

	if g.cooldown > 0 {
		return
	}
	g.cooldown = g.interval()
	g.shots++

	// Hitscan along +Z from the muzzle; the first thing in the lane is hit.
	hit, kind := g.inLane(stacks, boss, halfWidth)
	switch kind {
	case laneStack:
		hit.(*StackEnemy).ApplyTopDamage(g.cfg.Damage)
		g.hits++
	case laneBoss:
		hit.(*Boss).ApplyDamage(g.cfg.Damage)
		g.hits++
	}
}

type laneKind uint8

const (
	laneNone laneKind = iota
	laneStack
	laneBoss
)

func (g *Gunner) ahead(z float64) (float64, bool) {
	d := z - g.cfg.Z
	return d, d >= 0 && d <= g.cfg.Range
}

func (g *Gunner) nearest(stacks []*StackEnemy, boss *Boss) Target {
	var best Target
	bestD := math.Inf(1)
	for _, s := range stacks {
		if s.State() != StackActive {
			continue
		}
		if d, ok := g.ahead(s.Position().Z); ok && d < bestD {
			best, bestD = s, d
		}
	}
	if boss != nil && !boss.Dead() {
		if d, ok := g.ahead(boss.Position().Z); ok && d < bestD {
			best = boss
		}
	}
	return best
}

func (g *Gunner) inLane(stacks []*StackEnemy, boss *Boss, halfWidth float64) (Target, laneKind) {
	var best Target
	kind := laneNone
	bestD := math.Inf(1)

	for _, s := range stacks {
		if s.State() != StackActive || math.Abs(s.Position().X-g.x) > halfWidth {
			continue
		}
		if d, ok := g.ahead(s.Position().Z); ok && d < bestD {
			best, kind, bestD = s, laneStack, d
		}
	}
	if boss != nil && !boss.Dead() && math.Abs(boss.Position().X-g.x) <= boss.Spec().Size.X/2 {
		if d, ok := g.ahead(boss.Position().Z); ok && d < bestD {
			best, kind = boss, laneBoss
		}
	}
	return best, kind
}
