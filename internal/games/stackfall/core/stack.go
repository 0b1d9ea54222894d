package core

import "sort"

// StackState is the lifecycle state of a StackEnemy.
type StackState uint8

const (
	StackBuilding StackState = iota
	StackActive
	StackDestroyed
)

// String returns the state name.
func (s StackState) String() string {
	switch s {
	case StackBuilding:
		return "Building"
	case StackActive:
		return "Active"
	case StackDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// DestroyReason records why a stack left the world.
type DestroyReason uint8

const (
	DestroyKilled    DestroyReason = iota // every block died
	DestroyEscaped                        // crossed the despawn boundary
	DestroyEmpty                          // top damage found no live block
	DestroyDiscarded                      // removed without gameplay effect
)

// String returns the reason name.
func (r DestroyReason) String() string {
	switch r {
	case DestroyKilled:
		return "killed"
	case DestroyEscaped:
		return "escaped"
	case DestroyEmpty:
		return "empty"
	case DestroyDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// StackParams configures how a stack is built and moves.
type StackParams struct {
	Height     int     // blocks per stack
	SpacingY   float64 // vertical distance between block slots
	HPBase     float64
	HPPerRow   float64
	MoveSpeedZ float64 // world units per second, negative approaches the player
	DespawnZ   float64
	BlockSize  Vec3 // extent of a single block
}

// DefaultStackParams returns the stock stack tuning.
func DefaultStackParams() StackParams {
	return StackParams{
		Height:     6,
		SpacingY:   0.1,
		HPBase:     10,
		HPPerRow:   2,
		MoveSpeedZ: -2,
		DespawnZ:   -15,
		BlockSize:  Vec3{X: 1, Y: 0.1, Z: 1},
	}
}

// SettleEvent carries the compacted offsets of the surviving blocks,
// bottom to top, for presenters that animate the collapse.
type SettleEvent struct {
	Stack   *StackEnemy
	Offsets []float64
}

// StackDestroyedEvent is emitted once when a stack leaves the world.
type StackDestroyedEvent struct {
	Stack  *StackEnemy
	Reason DestroyReason
}

// StackEnemy is one enemy made of blocks stacked bottom to top. Damage
// always lands on the topmost live block.
type StackEnemy struct {
	id       int
	params   StackParams
	position Vec3
	yaw      float64
	level    int
	state    StackState

	// blocks are sorted by offset ascending; the top block is last.
	blocks     []*EnemyBlock
	aliveCount int
	hooks      []func()

	BlockDied Signal[*EnemyBlock]
	Settled   Signal[SettleEvent]
	Destroyed Signal[StackDestroyedEvent]
}

// NewStackEnemy creates an unbuilt stack at pos facing yaw degrees.
func NewStackEnemy(id int, pos Vec3, yaw float64, params StackParams) *StackEnemy {
	return &StackEnemy{
		id:       id,
		params:   params,
		position: pos,
		yaw:      yaw,
		state:    StackBuilding,
	}
}

// ID returns the stack identifier assigned by its spawner.
func (s *StackEnemy) ID() int { return s.id }

// Position returns the stack's world position.
func (s *StackEnemy) Position() Vec3 { return s.position }

// Yaw returns the facing angle in degrees about the vertical axis.
func (s *StackEnemy) Yaw() float64 { return s.yaw }

// Level returns the level the stack was built at.
func (s *StackEnemy) Level() int { return s.level }

// State returns the lifecycle state.
func (s *StackEnemy) State() StackState { return s.state }

// Params returns the build parameters.
func (s *StackEnemy) Params() StackParams { return s.params }

// AliveCount returns the number of live blocks.
func (s *StackEnemy) AliveCount() int { return s.aliveCount }

// IsDestroyed reports whether the stack has left the world.
func (s *StackEnemy) IsDestroyed() bool { return s.state == StackDestroyed }

// Blocks returns the blocks bottom to top.
func (s *StackEnemy) Blocks() []*EnemyBlock {
	out := make([]*EnemyBlock, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Top returns the topmost live block, or nil.
func (s *StackEnemy) Top() *EnemyBlock {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if s.blocks[i].Alive() {
			return s.blocks[i]
		}
	}
	return nil
}

// Build discards any previous blocks and creates Height fresh blocks,
// bottom to top, with HP hpBase + hpPerRow*(row+level).
func (s *StackEnemy) Build(level int) {
	if s.state == StackDestroyed {
		return
	}
	s.releaseBlocks()

	s.level = level
	s.state = StackBuilding

	height := s.params.Height
	if height < 0 {
		height = 0
	}
	s.blocks = make([]*EnemyBlock, 0, height)
	for row := 0; row < height; row++ {
		b := NewEnemyBlock(row, level, s.params.HPBase, s.params.HPPerRow)
		b.offset = float64(row) * s.params.SpacingY
		s.hooks = append(s.hooks, b.Died.Connect(s.onBlockDied))
		s.blocks = append(s.blocks, b)
	}
	s.aliveCount = len(s.blocks)
	s.sortBlocks()

	s.state = StackActive
}

// Tick advances the stack along Z and destroys it once it crosses the
// despawn boundary in its direction of travel.
func (s *StackEnemy) Tick(dt float64) {
	if s.state != StackActive {
		return
	}

	vz := s.params.MoveSpeedZ
	s.position.Z += vz * dt

	if (vz < 0 && s.position.Z < s.params.DespawnZ) ||
		(vz > 0 && s.position.Z > s.params.DespawnZ) {
		s.Destroy(DestroyEscaped)
	}
}

// ApplyTopDamage damages the highest live block. With no live block left
// the stack is destroyed.
func (s *StackEnemy) ApplyTopDamage(amount float64) {
	if s.state != StackActive {
		return
	}

	if top := s.Top(); top != nil {
		top.Health().ApplyDamage(amount)
		return
	}
	s.Destroy(DestroyEmpty)
}

// Bounds returns the world-space box enclosing every block.
func (s *StackEnemy) Bounds() (Box, bool) {
	if len(s.blocks) == 0 {
		return Box{}, false
	}

	size := s.params.BlockSize
	var box Box
	for i, b := range s.blocks {
		center := s.position.Add(Vec3{Y: b.offset + size.Y/2})
		bb := BoxAround(center, size)
		if i == 0 {
			box = bb
			continue
		}
		box = box.Encapsulate(bb)
	}
	return box, true
}

// Destroy removes the stack from play. Only the first call has effect.
func (s *StackEnemy) Destroy(reason DestroyReason) {
	if s.state == StackDestroyed {
		return
	}
	s.state = StackDestroyed
	s.releaseBlocks()
	s.blocks = nil
	s.aliveCount = 0

	s.Destroyed.Emit(StackDestroyedEvent{Stack: s, Reason: reason})

	s.BlockDied.Reset()
	s.Settled.Reset()
	s.Destroyed.Reset()
}

func (s *StackEnemy) onBlockDied(dead *EnemyBlock) {
	if s.state != StackActive {
		return
	}
	s.aliveCount--
	s.BlockDied.Emit(dead)

	if s.aliveCount <= 0 {
		s.Destroy(DestroyKilled)
		return
	}
	s.settle()
}

// settle drops dead blocks and packs the survivors into consecutive slots.
func (s *StackEnemy) settle() {
	alive := make([]*EnemyBlock, 0, len(s.blocks))
	for _, b := range s.blocks {
		if b.Alive() {
			alive = append(alive, b)
			continue
		}
		b.release()
	}

	offsets := make([]float64, len(alive))
	for i, b := range alive {
		b.offset = float64(i) * s.params.SpacingY
		offsets[i] = b.offset
	}

	s.blocks = alive
	s.sortBlocks()

	s.Settled.Emit(SettleEvent{Stack: s, Offsets: offsets})
}

func (s *StackEnemy) sortBlocks() {
	sort.SliceStable(s.blocks, func(i, j int) bool {
		return s.blocks[i].offset < s.blocks[j].offset
	})
}

func (s *StackEnemy) releaseBlocks() {
	for _, unhook := range s.hooks {
		unhook()
	}
	s.hooks = nil
	for _, b := range s.blocks {
		b.release()
	}
}
