package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeInput struct {
	dx, dy float32
	keys   map[Key]bool
}

func (f fakeInput) MouseDelta() (float32, float32) { return f.dx, f.dy }
func (f fakeInput) KeyDown(k Key) bool { return f.keys[k] }

func TestForwardAtZeroAnglesIsPlusZ(t *testing.T) {
	c := New(mgl32.Vec3{}, 1, 1)
	if f := c.Forward(); f.Sub(mgl32.Vec3{0, 0, 1}).Len() > 1e-5 {
		t.Fatalf("forward %v", f)
	}
}

func TestUpdateMovesAlongForward(t *testing.T) {
	c := New(mgl32.Vec3{}, 2, 0)
	c.Update(0.5, fakeInput{keys: map[Key]bool{KeyForward: true, KeyUp: true}})
	if c.Position.Sub(mgl32.Vec3{0, 1, 1}).Len() > 1e-5 {
		t.Fatalf("position %v", c.Position)
	}
}

func TestUpdateClampsPitchAndWrapsYaw(t *testing.T) {
	c := New(mgl32.Vec3{}, 0, 1)
	c.Update(0, fakeInput{dx: 0.5, dy: -10})
	if c.Pitch != maxPitch {
		t.Fatalf("pitch %v not clamped to %v", c.Pitch, maxPitch)
	}
	if c.Yaw < 0 || c.Yaw >= tau || !mgl32.FloatEqualThreshold(c.Yaw, tau-0.5, 1e-5) {
		t.Fatalf("yaw %v not wrapped", c.Yaw)
	}
}

func TestUpdateWrapsLargeYawDeltas(t *testing.T) {
	cases := []struct {
		name string
		dx   float32
		want float32
	}{
		{"several_turns_left", -3*tau - 0.25, 0.25},
		{"several_turns_right", 5*tau + 0.25, tau - 0.25},
		{"exact_turn", -tau, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(mgl32.Vec3{}, 0, 1)
			c.Update(0, fakeInput{dx: tc.dx})
			if c.Yaw < 0 || c.Yaw >= tau {
				t.Fatalf("yaw %v outside [0, 2pi)", c.Yaw)
			}
			if d := mgl32.Abs(c.Yaw - tc.want); d > 1e-4 && tau-d > 1e-4 {
				t.Fatalf("yaw %v, want %v", c.Yaw, tc.want)
			}
		})
	}
}

func TestNilInputIsIgnored(t *testing.T) {
	c := New(mgl32.Vec3{1, 2, 3}, 5, 1)
	c.Update(1, nil)
	if c.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("camera moved without input")
	}
}

func TestViewProjectionPlacesForwardPointInClip(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 10}, 0, 0)
	c.Yaw = math.Pi // look down -Z
	vp := c.ViewProjection(60, 1, 0.1, 100)
	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if mgl32.Abs(ndc.X()) > 1e-4 || mgl32.Abs(ndc.Y()) > 1e-4 || ndc.Z() <= -1 || ndc.Z() >= 1 {
		t.Fatalf("origin should project to screen centre inside depth range, got %v", ndc)
	}
}
