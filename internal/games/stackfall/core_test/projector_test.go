package core_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/stackfall/internal/games/stackfall/core"
)

func defaultCamera() *core.Camera {
	return &core.Camera{Position: core.V3(0, 12, -6), Pitch: 55, FOV: 60}
}

func TestComputeBoundsOrdered(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		cam := core.Camera{
			Position: core.V3(r.Float64()*20-10, r.Float64()*30-5, r.Float64()*20-10),
			Pitch:    r.Float64()*180 - 90,
			Yaw:      r.Float64()*360 - 180,
			FOV:      10 + r.Float64()*110,
		}
		w := 1 + r.Intn(3000)
		h := 1 + r.Intn(3000)

		p := core.NewProjector(&cam, r.Float64()*4-2, nil)
		p.Resize(w, h)

		b := p.Bounds()
		if b.MinX > b.MaxX {
			t.Fatalf("case %d: minX %.4f > maxX %.4f (cam=%+v w=%d h=%d)", i, b.MinX, b.MaxX, cam, w, h)
		}
	}
}

func TestComputeBoundsSymmetricCamera(t *testing.T) {
	minX, maxX, okMin, okMax := core.ComputeBounds(*defaultCamera(), 1080, 1920, 0)

	if !okMin || !okMax {
		t.Fatalf("expected both edge rays to hit, got okMin=%v okMax=%v", okMin, okMax)
	}
	if minX >= 0 || maxX <= 0 {
		t.Errorf("expected bounds around 0, got [%.3f, %.3f]", minX, maxX)
	}
	if math.Abs(minX+maxX) > 1e-9 {
		t.Errorf("expected symmetric bounds, got [%.6f, %.6f]", minX, maxX)
	}
	if maxX < 3.5 || maxX > 5 {
		t.Errorf("unexpected half width %.3f", maxX)
	}
}

func TestComputeBoundsWiderScreenWiderBounds(t *testing.T) {
	cam := *defaultCamera()
	_, narrow, _, _ := core.ComputeBounds(cam, 1080, 1920, 0)
	_, wide, _, _ := core.ComputeBounds(cam, 1920, 1080, 0)

	if wide <= narrow {
		t.Errorf("landscape bounds %.3f should exceed portrait %.3f", wide, narrow)
	}
}

func TestPlaneRaycast(t *testing.T) {
	tests := []struct {
		name string
		ray  core.Ray
		ok   bool
		want core.Vec3
	}{
		{
			name: "straight down",
			ray:  core.Ray{Origin: core.V3(1, 10, 2), Dir: core.V3(0, -1, 0)},
			ok:   true,
			want: core.V3(1, 0, 2),
		},
		{
			name: "parallel",
			ray:  core.Ray{Origin: core.V3(0, 10, 0), Dir: core.V3(1, 0, 0)},
			ok:   false,
		},
		{
			name: "pointing away",
			ray:  core.Ray{Origin: core.V3(0, 10, 0), Dir: core.V3(0, 1, 0)},
			ok:   false,
		},
	}

	plane := core.Plane{Height: 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := plane.Raycast(tt.ray)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.Sub(tt.want).Len() > 1e-9 {
				t.Errorf("hit %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProjectorFallbacks(t *testing.T) {
	p := core.NewProjector(nil, 0, nil)
	b := p.Bounds()
	if b.MinX != core.FallbackMinX || b.MaxX != core.FallbackMaxX {
		t.Errorf("initial bounds = %+v, want fallback", b)
	}

	p.Resize(800, 600)
	b = p.Bounds()
	if b.MinX != core.FallbackMinX || b.MaxX != core.FallbackMaxX {
		t.Errorf("nil camera bounds = %+v, want fallback", b)
	}
}

func TestProjectorMissKeepsPrevious(t *testing.T) {
	// Looking up: both edge rays leave the plane behind.
	cam := core.Camera{Position: core.V3(0, 12, 0), Pitch: -30, FOV: 60}
	p := core.NewProjector(&cam, 0, nil)
	p.Resize(1080, 1920)

	b := p.Bounds()
	if b.MinX != core.FallbackMinX || b.MaxX != core.FallbackMaxX {
		t.Errorf("missed rays should keep fallback, got %+v", b)
	}
}

func TestProjectorResizeOnlyOnChange(t *testing.T) {
	cam := defaultCamera()
	p := core.NewProjector(cam, 0, nil)

	if !p.Resize(1080, 1920) {
		t.Fatal("first resize should recompute")
	}
	if p.Resize(1080, 1920) {
		t.Error("same dimensions should not recompute")
	}

	before := p.Bounds()
	if !p.Resize(1920, 1080) {
		t.Fatal("new dimensions should recompute")
	}
	if p.Bounds() == before {
		t.Error("bounds should change with aspect ratio")
	}
}

func TestProjectorCameraMoveNeedsRecompute(t *testing.T) {
	cam := defaultCamera()
	p := core.NewProjector(cam, 0, nil)
	p.Resize(1080, 1920)
	before := p.Bounds()

	cam.Position.X = 3
	if p.Bounds() != before {
		t.Fatal("bounds must stay cached until recompute")
	}

	p.Recompute()
	after := p.Bounds()
	if math.Abs(after.MinX-(before.MinX+3)) > 1e-9 || math.Abs(after.MaxX-(before.MaxX+3)) > 1e-9 {
		t.Errorf("expected bounds shifted by 3, got %+v from %+v", after, before)
	}
}
