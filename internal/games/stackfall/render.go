package stackfall

import (
	"fmt"
	"math"
	"strings"

	platformcore "github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
)

// Layout: two HUD rows on top, the radar field, two status rows below.
const (
	hudRows    = 2
	statusRows = 2
	farMargin  = 10.0 // rings reach past the spawn line by up to their radius
	sideMargin = 1.0
)

func fieldRows(screenH int) int {
	return max(screenH-hudRows-statusRows, 1)
}

// Render draws a top-down radar of the plane: far is up, the gunner line
// near the bottom.
func (g *Game) Render(dst *platformcore.Screen) {
	dst.Clear()

	if g.world == nil {
		msg := "settings failed to load"
		if g.loadErr != nil {
			msg = g.loadErr.Error()
		}
		g.renderOverlay(dst, "Cannot start", msg)
		return
	}

	snap := g.world.Snapshot()
	g.renderHUD(dst, snap)

	field := platformcore.NewRect(0, hudRows, dst.Width(), fieldRows(dst.Height()))
	vp := viewport(field, snap)
	g.renderField(dst, vp, snap)
	g.renderStatus(dst, snap)

	switch {
	case snap.Outcome == core.OutcomeWon:
		g.renderOverlay(dst, "Campaign cleared!", fmt.Sprintf("Score %d  -  R to run again", snap.Stats.Score))
	case snap.Outcome == core.OutcomeLost:
		g.renderOverlay(dst, "Overrun", fmt.Sprintf("Score %d  -  R to run again", snap.Stats.Score))
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

func viewport(field platformcore.Rect, snap core.Snapshot) platformcore.Viewport {
	return platformcore.Viewport{
		Area: field,
		MinX: snap.Bounds.MinX - sideMargin,
		MaxX: snap.Bounds.MaxX + sideMargin,
		MinZ: math.Min(snap.DespawnZ, snap.GunnerZ),
		MaxZ: snap.SpawnZ + farMargin,
	}
}

func (g *Game) renderHUD(dst *platformcore.Screen, snap core.Snapshot) {
	var sb strings.Builder
	sb.WriteString(" STACKFALL ")
	if snap.Mode == core.ModeCampaign {
		fmt.Fprintf(&sb, "| L%d/%d %s | %s", snap.Level+1, snap.LevelCount, snap.LevelName, phaseLabel(snap))
	} else {
		fmt.Fprintf(&sb, "| endless | wave level %d", snap.LoopLevel)
	}
	fmt.Fprintf(&sb, " | score %d", snap.Stats.Score)
	if g.speed > 1 {
		fmt.Fprintf(&sb, " | x%d", g.speed)
	}
	dst.DrawTextWithColor(0, 0, sb.String(), platformcore.ColorCyan)

	lives := strings.Repeat("♥", snap.Lives)
	lx := dst.Width() - len([]rune(lives)) - 1
	livesColor := platformcore.ColorBrightRed
	if snap.Shielded {
		livesColor = platformcore.ColorBrightCyan
	}
	dst.DrawTextWithColor(lx, 0, lives, livesColor)

	dst.DrawHLine(0, 1, dst.Width(), '─', platformcore.ColorGray)
}

func phaseLabel(snap core.Snapshot) string {
	switch snap.Phase {
	case core.PhaseSpawningEnemies:
		return fmt.Sprintf("incoming %d/%d", snap.Spawned, snap.Quota)
	case core.PhaseIntroDelay:
		return "boss incoming"
	case core.PhaseBossActive:
		return "boss fight"
	case core.PhaseWinDelay:
		return "clear"
	case core.PhaseComplete:
		return "complete"
	case core.PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (g *Game) renderField(dst *platformcore.Screen, vp platformcore.Viewport, snap core.Snapshot) {
	// spawn band edges
	if col, _, ok := vp.Project(snap.Bounds.MinX, vp.MinZ); ok {
		dst.DrawVLine(col, vp.Area.Y, vp.Area.H, '┊', platformcore.ColorGray)
	}
	if col, _, ok := vp.Project(snap.Bounds.MaxX, vp.MinZ); ok {
		dst.DrawVLine(col, vp.Area.Y, vp.Area.H, '┊', platformcore.ColorGray)
	}

	dst.DrawHLine(vp.Area.X, vp.RowOf(snap.SpawnZ), vp.Area.W, '·', platformcore.ColorGray)
	dst.DrawHLine(vp.Area.X, vp.RowOf(snap.GunnerZ), vp.Area.W, '═', platformcore.ColorBlue)

	if b := snap.Boss; b != nil {
		g.renderBoss(dst, vp, b)
	}

	for _, s := range snap.Stacks {
		col, row, ok := vp.Project(s.Position.X, s.Position.Z)
		if !ok {
			continue
		}
		frac := 0.0
		if s.TopMax > 0 {
			frac = s.TopHP / s.TopMax
		}
		dst.SetWithColor(col, row, stackGlyph(s.Alive), platformcore.HealthColor(frac))
	}

	if col, row, ok := vp.Project(snap.GunnerX, snap.GunnerZ); ok {
		dst.SetWithColor(col, row, '▲', platformcore.ColorBrightYellow)
	}
}

// stackGlyph shows the number of live blocks.
func stackGlyph(alive int) rune {
	switch {
	case alive <= 0:
		return '·'
	case alive <= 9:
		return rune('0' + alive)
	default:
		return '#'
	}
}

func (g *Game) renderBoss(dst *platformcore.Screen, vp platformcore.Viewport, b *core.BossView) {
	half := b.Size.X / 2
	left, row, okL := vp.Project(b.Position.X-half, b.Position.Z)
	right, _, okR := vp.Project(b.Position.X+half, b.Position.Z)
	if !okL && !okR {
		return
	}
	if !okL {
		left = vp.Area.X
	}
	if !okR {
		right = vp.Area.Right() - 1
	}

	color := platformcore.ColorMagenta
	if b.Arrived {
		color = platformcore.ColorOrange
	}
	dst.DrawHLine(left, row, right-left+1, '█', color)

	label := fmt.Sprintf("%s %.0f/%.0f", b.Name, b.HP, b.MaxHP)
	dst.DrawTextWithColor(left, row-1, label, color)
}

func (g *Game) renderStatus(dst *platformcore.Screen, snap core.Snapshot) {
	y := dst.Height() - statusRows
	st := snap.Stats
	line := fmt.Sprintf(" stacks %d | kills %d | blocks %d | escapes %d | acc %.0f%% | %.0fs",
		len(snap.Stacks), st.StacksKilled, st.BlocksKilled, st.Escapes, g.world.Accuracy()*100, st.Elapsed)
	dst.DrawTextWithColor(0, y, line, platformcore.ColorWhite)

	if n := len(g.recent); n > 0 {
		dst.DrawTextWithColor(0, y+1, " » "+g.recent[n-1], platformcore.ColorGray)
	}
}

func (g *Game) renderOverlay(dst *platformcore.Screen, title, subtitle string) {
	w := max(len([]rune(title)), len([]rune(subtitle))) + 6
	h := 5
	box := platformcore.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)

	dst.DrawRect(box, ' ', platformcore.ColorDefault)
	dst.DrawBox(box, platformcore.ColorYellow)
	dst.DrawTextCentered(box.Y+1, title, platformcore.ColorBrightYellow)
	dst.DrawTextCentered(box.Y+3, subtitle, platformcore.ColorWhite)
}
