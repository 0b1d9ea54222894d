package core

import (
	"math"

	"github.com/charmbracelet/log"
)

// boundsSampleY is the fraction of screen height the edge rays are cast
// from. Sampling below mid-screen keeps the rays tilted towards the plane
// even with a level camera.
const boundsSampleY = 0.35

// Fallback bounds used before the first successful projection.
const (
	FallbackMinX = -5.0
	FallbackMaxX = 5.0
)

// parallelEpsilon is the smallest |dir.Y| treated as hitting the plane.
const parallelEpsilon = 1e-6

// Camera is a perspective camera. Angles are in degrees: positive Pitch
// looks down, Yaw 0 looks along +Z, FOV is the vertical field of view.
type Camera struct {
	Position Vec3
	Pitch    float64
	Yaw      float64
	FOV      float64
}

// Basis returns the camera's forward, right and up unit vectors.
func (c Camera) Basis() (forward, right, up Vec3) {
	pitch := deg2rad(c.Pitch)
	yaw := deg2rad(c.Yaw)

	forward = Vec3{
		X: math.Sin(yaw) * math.Cos(pitch),
		Y: -math.Sin(pitch),
		Z: math.Cos(yaw) * math.Cos(pitch),
	}
	right = Vec3{X: math.Cos(yaw), Y: 0, Z: -math.Sin(yaw)}
	up = forward.Cross(right)
	return forward, right, up
}

// Ray is a half-line from Origin along Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// ScreenPointToRay returns the ray through screen point (sx, sy) for a
// w×h screen. The screen origin is the bottom-left corner.
func (c Camera) ScreenPointToRay(sx, sy float64, w, h int) Ray {
	forward, right, up := c.Basis()

	aspect := float64(w) / float64(h)
	tanHalf := math.Tan(deg2rad(c.FOV) / 2)

	ndcX := 2*sx/float64(w) - 1
	ndcY := 2*sy/float64(h) - 1

	dir := forward.
		Add(right.Scale(ndcX * tanHalf * aspect)).
		Add(up.Scale(ndcY * tanHalf))

	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Plane is the horizontal plane y = Height.
type Plane struct {
	Height float64
}

// Raycast intersects r with the plane. It reports false when the ray is
// parallel to the plane or the plane lies behind the ray origin.
func (p Plane) Raycast(r Ray) (Vec3, bool) {
	if math.Abs(r.Dir.Y) < parallelEpsilon {
		return Vec3{}, false
	}
	t := (p.Height - r.Origin.Y) / r.Dir.Y
	if t < 0 {
		return Vec3{}, false
	}
	return r.At(t), true
}

// ComputeBounds projects the left and right screen edges onto the plane
// y = planeHeight. okMin/okMax report which edge rays hit the plane; a
// missing bound is returned as zero and must not be used.
func ComputeBounds(cam Camera, w, h int, planeHeight float64) (minX, maxX float64, okMin, okMax bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false, false
	}

	plane := Plane{Height: planeHeight}
	sampleY := float64(h) * boundsSampleY

	if p, ok := plane.Raycast(cam.ScreenPointToRay(0, sampleY, w, h)); ok {
		minX, okMin = p.X, true
	}
	if p, ok := plane.Raycast(cam.ScreenPointToRay(float64(w), sampleY, w, h)); ok {
		maxX, okMax = p.X, true
	}
	return minX, maxX, okMin, okMax
}

// Bounds is the playable X range on the gameplay plane. MinX <= MaxX.
type Bounds struct {
	MinX, MaxX float64
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Projector caches the world-space X bounds visible on screen and
// recomputes them when the screen size changes.
type Projector struct {
	camera      *Camera
	planeHeight float64
	width       int
	height      int
	bounds      Bounds
	log         *log.Logger
}

// NewProjector creates a projector. A nil camera keeps the fallback bounds.
func NewProjector(cam *Camera, planeHeight float64, logger *log.Logger) *Projector {
	return &Projector{
		camera:      cam,
		planeHeight: planeHeight,
		bounds:      Bounds{MinX: FallbackMinX, MaxX: FallbackMaxX},
		log:         orDiscard(logger),
	}
}

// Bounds returns the cached bounds.
func (p *Projector) Bounds() Bounds {
	return p.bounds
}

// PlaneHeight returns the height of the gameplay plane.
func (p *Projector) PlaneHeight() float64 {
	return p.planeHeight
}

// Resize recomputes the bounds if the screen dimensions changed.
// Returns true when a recompute happened.
func (p *Projector) Resize(w, h int) bool {
	if w == p.width && h == p.height {
		return false
	}
	p.width, p.height = w, h
	p.Recompute()
	return true
}

// Recompute projects the screen edges again and overwrites the cache.
// An edge whose ray misses the plane keeps its previous value.
func (p *Projector) Recompute() {
	next := p.bounds

	if p.camera == nil || p.width <= 0 || p.height <= 0 {
		next = Bounds{MinX: FallbackMinX, MaxX: FallbackMaxX}
	} else {
		minX, maxX, okMin, okMax := ComputeBounds(*p.camera, p.width, p.height, p.planeHeight)
		if okMin {
			next.MinX = minX
		}
		if okMax {
			next.MaxX = maxX
		}
		if !okMin || !okMax {
			p.log.Debug("edge ray missed gameplay plane", "left", okMin, "right", okMax)
		}
	}

	if next.MinX > next.MaxX {
		next.MinX, next.MaxX = next.MaxX, next.MinX
	}
	p.bounds = next
	p.log.Debug("bounds recomputed", "min_x", next.MinX, "max_x", next.MaxX, "w", p.width, "h", p.height)
}
