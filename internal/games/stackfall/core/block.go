package core

// BlockHP returns the hit points of a block in the given row of a stack
// built at the given level.
func BlockHP(row, level int, hpBase, hpPerRow float64) float64 {
	return hpBase + hpPerRow*float64(row+level)
}

// EnemyBlock is one damageable segment of a StackEnemy. Placement and
// lifetime are controlled by the owning stack.
type EnemyBlock struct {
	health *Health
	alive  bool
	row    int
	offset float64

	unhook func()

	// Died fires once when the block's health runs out.
	Died Signal[*EnemyBlock]
}

// NewEnemyBlock creates a live block for the given row.
func NewEnemyBlock(row, level int, hpBase, hpPerRow float64) *EnemyBlock {
	b := &EnemyBlock{
		health: NewHealth(BlockHP(row, level, hpBase, hpPerRow)),
		alive:  true,
		row:    row,
	}
	b.unhook = b.health.Died.Connect(b.onHealthDied)
	return b
}

func (b *EnemyBlock) onHealthDied(*Health) {
	if !b.alive {
		return
	}
	b.alive = false
	b.Died.Emit(b)
}

// Health returns the block's health.
func (b *EnemyBlock) Health() *Health {
	return b.health
}

// Alive reports whether the block still has health.
func (b *EnemyBlock) Alive() bool {
	return b.alive
}

// Row returns the row the block was built in, 0 at the bottom.
func (b *EnemyBlock) Row() int {
	return b.row
}

// Offset returns the local vertical offset inside the stack.
func (b *EnemyBlock) Offset() float64 {
	return b.offset
}

// release detaches the block from its health and drops its observers.
func (b *EnemyBlock) release() {
	if b.unhook != nil {
		b.unhook()
		b.unhook = nil
	}
	b.Died.Reset()
}
