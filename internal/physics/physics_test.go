package physics

import (
	"math"
	"testing"

	"arenafps/internal/geom"
)

func almostEqual(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestInputVelocityForwardNoYaw(t *testing.T) {
	vel, grounded := InputVelocity(geom.Vec3{}, true, MoveInput{Forward: true}, 0)
	if !almostEqual(vel.Z, MoveSpeed, 0.001) || vel.X != 0 {
		t.Fatalf("got vel=%+v, want forward at MoveSpeed on Z", vel)
	}
	if !grounded {
		t.Fatal("grounded should be unaffected by a non-jump input")
	}
}

func TestInputVelocitySprintBeatsSneak(t *testing.T) {
	vel, _ := InputVelocity(geom.Vec3{}, true, MoveInput{Forward: true, Sprint: true, Sneak: true}, 0)
	var want float32 = MoveSpeed * SprintMult
	if !almostEqual(vel.Z, want, 0.001) {
		t.Fatalf("got vel.Z=%v, want %v (sprint must win over sneak)", vel.Z, want)
	}
}

func TestInputVelocityJumpRequiresGrounded(t *testing.T) {
	vel, grounded := InputVelocity(geom.Vec3{Y: 1}, false, MoveInput{Jump: true}, 0)
	if vel.Y != 1 {
		t.Fatalf("ungrounded jump must leave vel.Y unchanged, got %v", vel.Y)
	}
	if grounded {
		t.Fatal("grounded flag should stay false")
	}
}

func TestInputVelocityJumpWhenGrounded(t *testing.T) {
	vel, grounded := InputVelocity(geom.Vec3{}, true, MoveInput{Jump: true}, 0)
	if vel.Y != JumpForce {
		t.Fatalf("got vel.Y=%v, want %v", vel.Y, JumpForce)
	}
	if grounded {
		t.Fatal("jumping should clear grounded")
	}
}

func TestStepGroundClamp(t *testing.T) {
	pos := geom.Vec3{Y: 0.05}
	vel := geom.Vec3{Y: -5}
	newPos, newVel, grounded := Step(pos, vel, false, 1.0/60, 50, nil)
	if newPos.Y != 0 || newVel.Y != 0 || !grounded {
		t.Fatalf("got pos=%+v vel=%+v grounded=%v, want grounded at y=0", newPos, newVel, grounded)
	}
}

func TestStepMapBoundaryClamp(t *testing.T) {
	pos := geom.Vec3{X: 24.99, Y: 0}
	vel := geom.Vec3{X: 100}
	newPos, _, _ := Step(pos, vel, true, 1.0/60, 50, nil)
	half := float32(25) - PlayerRadius
	if newPos.X > half {
		t.Fatalf("got X=%v, want <= %v", newPos.X, half)
	}
}

func TestStepSlidesAlongWall(t *testing.T) {
	obstacles := []geom.Obstacle{{X: 2, Z: 0, Width: 2, Height: 5, Depth: 10}}
	pos := geom.Vec3{X: 0.55, Y: 0, Z: 0}
	vel := geom.Vec3{X: 5, Z: 5}
	newPos, newVel, _ := Step(pos, vel, true, 1.0/60, 50, obstacles)
	if newVel.X != 0 {
		t.Fatalf("X velocity should be zeroed by the wall, got %v", newVel.X)
	}
	if newVel.Z == 0 || newPos.Z == pos.Z {
		t.Fatalf("Z movement should be unaffected by an X-axis wall, got pos=%+v vel=%+v", newPos, newVel)
	}
}

func TestRayVsObstaclesHitsBeforeMaxDistance(t *testing.T) {
	obstacles := []geom.Obstacle{{X: 0, Z: 5, Width: 4, Height: 5, Depth: 1}}
	hit, dist := RayVsObstacles(geom.Vec3{}, geom.Vec3{Z: 1}, 20, obstacles)
	if !hit {
		t.Fatal("expected a hit")
	}
	if dist < 4 || dist > 5.5 {
		t.Fatalf("got dist=%v, want close to 4.5", dist)
	}
}

func TestRayVsObstaclesMissesBeyondRange(t *testing.T) {
	obstacles := []geom.Obstacle{{X: 0, Z: 50, Width: 4, Height: 5, Depth: 1}}
	hit, _ := RayVsObstacles(geom.Vec3{}, geom.Vec3{Z: 1}, 10, obstacles)
	if hit {
		t.Fatal("expected no hit within range")
	}
}

func TestRayVsSphereHit(t *testing.T) {
	hit, dist := RayVsSphere(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{Z: 10}, 1.0, 100)
	if !hit {
		t.Fatal("expected a hit")
	}
	if !almostEqual(dist, 9, 0.01) {
		t.Fatalf("got dist=%v, want ~9", dist)
	}
}

func TestRayVsSphereBehindOriginMisses(t *testing.T) {
	hit, _ := RayVsSphere(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{Z: -10}, 1.0, 100)
	if hit {
		t.Fatal("sphere entirely behind the ray origin must miss")
	}
}

func TestRayVsSphereBeyondMaxDistanceMisses(t *testing.T) {
	hit, _ := RayVsSphere(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{Z: 100}, 1.0, 10)
	if hit {
		t.Fatal("expected a miss beyond maxDistance")
	}
}
