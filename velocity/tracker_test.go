package velocity

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNoMotionGivesZeroVelocity(t *testing.T) {
	tr := New(DefaultConfig(), 800, 600)
	tr.Track(400, 300, 1.0/60)

	s := tr.Update(1.0 / 60)
	if s.Velocity.X != 0 || s.Velocity.Y != 0 {
		t.Errorf("expected zero velocity without motion, got %v", s.Velocity)
	}
}

func TestVelocityScaling(t *testing.T) {
	cfg := Config{Scale: 1, MinDT: 1.0 / 120}
	tr := New(cfg, 1000, 500)
	tr.Reset(0, 0)

	// 100px right, 50px down in 0.5s: (0.1, 0.1) normalized / 0.5 = (0.2, 0.2)
	s := tr.Track(100, 50, 0.5)
	if !near(s.Velocity.X, 0.2) || !near(s.Velocity.Y, 0.2) {
		t.Errorf("expected (0.2, 0.2), got %v", s.Velocity)
	}
	if !near(s.Position.X, 0.1) || !near(s.Position.Y, 0.1) {
		t.Errorf("expected position (0.1, 0.1), got %v", s.Position)
	}
}

func TestMinDTFloor(t *testing.T) {
	cfg := Config{Scale: 1, MinDT: 0.01}
	tr := New(cfg, 100, 100)
	tr.Reset(0, 0)

	s := tr.Track(1, 0, 0)
	// 0.01 normalized over the floored 0.01s
	if !near(s.Velocity.X, 1) {
		t.Errorf("expected floored velocity 1, got %f", s.Velocity.X)
	}
}

func TestFlipY(t *testing.T) {
	cfg := Config{Scale: 1, MinDT: 0.01, FlipY: true}
	tr := New(cfg, 100, 100)
	tr.Reset(50, 50)

	// Moving down the screen moves up in texture space.
	s := tr.Track(50, 75, 1)
	if !near(s.Position.Y, 0.25) {
		t.Errorf("expected flipped position 0.25, got %f", s.Position.Y)
	}
	if !near(s.Velocity.Y, -0.25) {
		t.Errorf("expected flipped velocity -0.25, got %f", s.Velocity.Y)
	}
}

func TestClamp(t *testing.T) {
	testCases := []struct {
		clamp bool
		want  float64
	}{
		{false, 1.5},
		{true, 1},
	}
	for _, tc := range testCases {
		tr := New(Config{Scale: 1, MinDT: 0.01, Clamp: tc.clamp}, 100, 100)
		s := tr.Track(150, 10, 1)
		if !near(s.Position.X, tc.want) {
			t.Errorf("clamp=%v: expected x %f, got %f", tc.clamp, tc.want, s.Position.X)
		}
	}
}

func TestSetViewport(t *testing.T) {
	tr := New(Config{Scale: 1, MinDT: 0.01}, 100, 100)
	tr.SetViewport(200, 400)
	s := tr.Track(100, 100, 1)
	if !near(s.Position.X, 0.5) || !near(s.Position.Y, 0.25) {
		t.Errorf("expected (0.5, 0.25), got %v", s.Position)
	}
}

func TestVec2Conversion(t *testing.T) {
	tr := New(Config{Scale: 1, MinDT: 0.01}, 100, 100)
	tr.Reset(0, 0)
	vel, pos := tr.Track(10, 20, 1).Vec2()
	if math.Abs(float64(vel.X-0.1)) > 1e-6 || math.Abs(float64(pos.Y-0.2)) > 1e-6 {
		t.Errorf("unexpected conversion: vel %+v pos %+v", vel, pos)
	}
	if tr.Sample().Position.X != 0.1 {
		t.Errorf("expected cached sample, got %v", tr.Sample())
	}
}
