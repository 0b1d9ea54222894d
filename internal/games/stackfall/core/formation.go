package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// Shape is a formation pattern.
type Shape uint8

const (
	ShapeLine   Shape = iota // side by side along X
	ShapeColumn              // one behind another along Z
	ShapeRing
)

// Shapes lists every formation shape in weight order.
var Shapes = []Shape{ShapeLine, ShapeColumn, ShapeRing}

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeColumn:
		return "column"
	case ShapeRing:
		return "ring"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// ParseShape parses a shape name. Accepts a few aliases.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "line", "horizontal", "row":
		return ShapeLine, nil
	case "column", "vertical", "col":
		return ShapeColumn, nil
	case "ring", "circle":
		return ShapeRing, nil
	default:
		return ShapeLine, fmt.Errorf("unknown formation %q", name)
	}
}

// ProbePosition is where the footprint probe is built, far off stage.
var ProbePosition = Vec3{X: 10000, Y: 0, Z: 10000}

// minFootprint keeps spacing math away from zero divisors.
const minFootprint = 0.001

// minVisibleWidth is the narrowest padded width a ring can be laid into.
const minVisibleWidth = 0.01

// centerEpsilon absorbs rounding when a ring exactly fills the bounds.
const centerEpsilon = 1e-9

// Footprint is the measured extent of one stack on the gameplay plane.
type Footprint struct {
	Width float64 // along X
	Depth float64 // along Z
}

// FormationRequest is one resolved formation: shape, member count and
// where it is centered.
type FormationRequest struct {
	Shape      Shape
	Count      int
	CenterX    float64
	CenterZ    float64
	Radius     float64 // ring only
	StartAngle float64 // ring only, degrees
}

// Placement is where a single stack should be spawned.
type Placement struct {
	Position Vec3
	Yaw      float64 // degrees about the vertical axis
	Oriented bool    // Yaw was set by the formation
}

// CountRange is an inclusive integer range.
type CountRange struct {
	Min, Max int
}

// FloatRange is a float range.
type FloatRange struct {
	Min, Max float64
}

// FormationParams tunes the randomized formations.
type FormationParams struct {
	PlaneHeight  float64
	SpawnZCenter float64
	SpawnZJitter float64

	LineCount   CountRange
	ColumnCount CountRange
	RingCount   CountRange
	RingRadius  FloatRange
	FaceOutward bool
}

// DefaultFormationParams returns the stock formation tuning.
func DefaultFormationParams() FormationParams {
	return FormationParams{
		SpawnZCenter: 18,
		LineCount:    CountRange{Min: 3, Max: 7},
		ColumnCount:  CountRange{Min: 3, Max: 7},
		RingCount:    CountRange{Min: 5, Max: 12},
		RingRadius:   FloatRange{Min: 4, Max: 10},
		FaceOutward:  true,
	}
}

// SpawnSink instantiates a stack for a placement. A nil return means the
// sink declined and nothing was spawned.
type SpawnSink interface {
	SpawnStack(p Placement, level int) *StackEnemy
}

// SpawnSinkFunc adapts a function to SpawnSink.
type SpawnSinkFunc func(p Placement, level int) *StackEnemy

// SpawnStack calls f.
func (f SpawnSinkFunc) SpawnStack(p Placement, level int) *StackEnemy {
	return f(p, level)
}

// Generator lays out formations within the projector bounds.
type Generator struct {
	params    FormationParams
	rng       *RNG
	footprint Footprint
	measured  bool
	log       *log.Logger
}

// NewGenerator creates a generator with a 1x1 footprint until
// MeasureFootprint runs.
func NewGenerator(params FormationParams, rng *RNG, logger *log.Logger) *Generator {
	if rng == nil {
		rng = NewRNG(1)
	}
	return &Generator{
		params:    params,
		rng:       rng,
		footprint: Footprint{Width: 1, Depth: 1},
		log:       orDiscard(logger),
	}
}

// Params returns the formation tuning.
func (g *Generator) Params() FormationParams {
	return g.params
}

// Footprint returns the cached footprint.
func (g *Generator) Footprint() Footprint {
	return g.footprint
}

// Measured reports whether the footprint cache has been written.
func (g *Generator) Measured() bool {
	return g.measured
}

// MeasureFootprint builds a probe stack at ProbePosition, measures its
// bounds and discards it. The result is cached; later calls are no-ops.
func (g *Generator) MeasureFootprint(probe func(pos Vec3) *StackEnemy, level int) Footprint {
	if g.measured {
		return g.footprint
	}
	g.measured = true

	fp := Footprint{Width: 1, Depth: 1}
	if probe != nil {
		if s := probe(ProbePosition); s != nil {
			s.Build(level)
			if box, ok := s.Bounds(); ok {
				size := box.Size()
				fp.Width = math.Max(minFootprint, size.X)
				fp.Depth = math.Max(minFootprint, size.Z)
			}
			s.Destroy(DestroyDiscarded)
		}
	}

	g.footprint = fp
	g.log.Debug("footprint measured", "width", fp.Width, "depth", fp.Depth)
	return fp
}

// Plan draws the random parameters of a formation and checks that it fits
// inside bounds. It reports false when the formation cannot be placed.
func (g *Generator) Plan(shape Shape, b Bounds) (FormationRequest, bool) {
	switch shape {
	case ShapeLine:
		return g.planLine(b)
	case ShapeColumn:
		return g.planColumn(b)
	case ShapeRing:
		return g.planRing(b)
	default:
		return FormationRequest{}, false
	}
}

func (g *Generator) spawnZ() float64 {
	j := g.params.SpawnZJitter
	return g.params.SpawnZCenter + g.rng.Range(-j, j)
}

func (g *Generator) planLine(b Bounds) (FormationRequest, bool) {
	w := g.footprint.Width
	count := clampInt(g.rng.IntRange(g.params.LineCount.Min, g.params.LineCount.Max), 1, 1000)

	half := float64(count) * w / 2
	pad := w / 2

	minCenter := b.MinX + pad + half
	maxCenter := b.MaxX - pad - half
	if minCenter > maxCenter {
		return FormationRequest{}, false
	}

	return FormationRequest{
		Shape:   ShapeLine,
		Count:   count,
		CenterX: g.rng.Range(minCenter, maxCenter),
		CenterZ: g.spawnZ(),
	}, true
}

func (g *Generator) planColumn(b Bounds) (FormationRequest, bool) {
	pad := g.footprint.Width / 2
	count := clampInt(g.rng.IntRange(g.params.ColumnCount.Min, g.params.ColumnCount.Max), 1, 1000)

	minX := b.MinX + pad
	maxX := b.MaxX - pad
	if minX > maxX {
		return FormationRequest{}, false
	}

	return FormationRequest{
		Shape:   ShapeColumn,
		Count:   count,
		CenterX: g.rng.Range(minX, maxX),
		CenterZ: g.spawnZ(),
	}, true
}

func (g *Generator) planRing(b Bounds) (FormationRequest, bool) {
	fp := g.footprint
	count := clampInt(g.rng.IntRange(g.params.RingCount.Min, g.params.RingCount.Max), 3, 360)

	pad := fp.Width / 2
	visible := b.Width() - 2*pad
	if visible <= minVisibleWidth {
		return FormationRequest{}, false
	}

	rTouch := RingTouchRadius(count, fp)
	rMaxFit := visible / 2
	if rTouch > rMaxFit {
		return FormationRequest{}, false
	}

	r := g.rng.Range(g.params.RingRadius.Min, g.params.RingRadius.Max)
	r = math.Min(rMaxFit, math.Max(r, rTouch))

	minCenter := b.MinX + pad + r
	maxCenter := b.MaxX - pad - r
	if minCenter > maxCenter+centerEpsilon {
		return FormationRequest{}, false
	}
	if minCenter > maxCenter {
		maxCenter = minCenter
	}

	return FormationRequest{
		Shape:      ShapeRing,
		Count:      count,
		CenterX:    g.rng.Range(minCenter, maxCenter),
		CenterZ:    g.spawnZ(),
		Radius:     r,
		StartAngle: g.rng.Range(0, 360),
	}, true
}

// RingTouchRadius is the smallest ring radius at which neighbouring
// members of the given footprint do not overlap.
func RingTouchRadius(count int, fp Footprint) float64 {
	if count < 2 {
		return 0
	}
	chord := math.Max(fp.Width, fp.Depth)
	return chord / (2 * math.Sin(math.Pi/float64(count)))
}

// Layout turns a request into placements. It draws no random numbers.
func (g *Generator) Layout(req FormationRequest) []Placement {
	if req.Count <= 0 {
		return nil
	}

	y := g.params.PlaneHeight
	out := make([]Placement, 0, req.Count)

	switch req.Shape {
	case ShapeLine:
		w := g.footprint.Width
		startX := req.CenterX - float64(req.Count)*w/2 + w/2
		for i := 0; i < req.Count; i++ {
			out = append(out, Placement{
				Position: Vec3{X: startX + float64(i)*w, Y: y, Z: req.CenterZ},
			})
		}

	case ShapeColumn:
		d := g.footprint.Depth
		startZ := req.CenterZ - float64(req.Count)*d/2 + d/2
		for i := 0; i < req.Count; i++ {
			out = append(out, Placement{
				Position: Vec3{X: req.CenterX, Y: y, Z: startZ + float64(i)*d},
			})
		}

	case ShapeRing:
		step := 360 / float64(req.Count)
		for i := 0; i < req.Count; i++ {
			rad := deg2rad(req.StartAngle + float64(i)*step)
			dir := Vec3{X: math.Cos(rad), Z: math.Sin(rad)}
			p := Placement{
				Position: Vec3{
					X: req.CenterX + dir.X*req.Radius,
					Y: y,
					Z: req.CenterZ + dir.Z*req.Radius,
				},
			}
			if g.params.FaceOutward {
				p.Yaw = rad2deg(math.Atan2(dir.X, dir.Z))
				p.Oriented = true
			}
			out = append(out, p)
		}
	}

	return out
}

// Generate plans and lays out one formation. Geometry that does not fit
// yields no placements.
func (g *Generator) Generate(shape Shape, b Bounds) []Placement {
	req, ok := g.Plan(shape, b)
	if !ok {
		g.log.Debug("formation skipped", "shape", shape, "min_x", b.MinX, "max_x", b.MaxX)
		return nil
	}
	return g.Layout(req)
}

// Spawn generates a formation and hands every placement to sink. It
// returns the number of stacks the sink produced.
func (g *Generator) Spawn(shape Shape, b Bounds, level int, sink SpawnSink) int {
	if sink == nil {
		return 0
	}
	n := 0
	for _, p := range g.Generate(shape, b) {
		if sink.SpawnStack(p, level) != nil {
			n++
		}
	}
	return n
}

// ChooseShape draws a shape with probability proportional to its weight.
// Negative weights count as zero; with no positive weight the fallback is
// returned without drawing.
func ChooseShape(rng *RNG, weights map[Shape]float64, fallback Shape) Shape {
	total := 0.0
	for _, s := range Shapes {
		total += math.Max(0, weights[s])
	}
	if total <= 0 {
		return fallback
	}

	r := rng.Float() * total
	for _, s := range Shapes {
		w := math.Max(0, weights[s])
		if r < w {
			return s
		}
		r -= w
	}
	return Shapes[len(Shapes)-1]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
