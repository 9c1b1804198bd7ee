// Package physics implements the fixed-Δt gravity/collision kernel and the
// ray casts used for line-of-sight and hitbox testing. Every function here
// is pure: no package-level state, no allocation beyond return values, so a
// room can call these every tick for every player without growing the heap.
package physics

import (
	"math"

	"arenafps/internal/geom"
)

const (
	PlayerRadius = 0.4
	PlayerHeight = 1.8
	Gravity      = 20.0
	MoveSpeed    = 5.0
	SprintMult   = 1.6
	SneakMult    = 0.5
	JumpForce    = 8.0

	// RayStep is the fixed march distance used by RayVsObstacles. Deliberately
	// coarse per the wire contract — shotgun/rifle occlusion behavior depends
	// on exactly this granularity.
	RayStep = 0.5
)

// MoveInput is the subset of a player's input record that affects movement.
type MoveInput struct {
	Forward, Backward, Left, Right bool
	Jump, Sprint, Sneak            bool
}

// InputVelocity applies the WASD-to-velocity contract: horizontal velocity
// is set directly (never accumulated) from the input flags rotated into
// world space by yaw, and a grounded jump sets vy directly. This must run
// before Step so Step's gravity integration sees the tick's intended
// velocity, not the previous tick's leftover value.
func InputVelocity(vel geom.Vec3, grounded bool, input MoveInput, yaw float32) (geom.Vec3, bool) {
	var dx, dz float32
	if input.Forward {
		dz += 1
	}
	if input.Backward {
		dz -= 1
	}
	if input.Right {
		dx += 1
	}
	if input.Left {
		dx -= 1
	}
	if dx != 0 || dz != 0 {
		local := geom.Vec3{X: dx, Z: dz}.Normalize()
		dx, dz = local.X, local.Z
	}

	var speed float32 = MoveSpeed
	switch {
	case input.Sprint:
		speed *= SprintMult
	case input.Sneak:
		speed *= SneakMult
	}

	sinYaw, cosYaw := float32(math.Sin(float64(yaw))), float32(math.Cos(float64(yaw)))
	wx := dx*cosYaw + dz*sinYaw
	wz := -dx*sinYaw + dz*cosYaw

	vel.X = wx * speed
	vel.Z = wz * speed

	if input.Jump && grounded {
		vel.Y = JumpForce
		grounded = false
	}

	return vel, grounded
}

// Collides reports whether a player at pos overlaps any obstacle: a circle of
// radius PlayerRadius in XZ tested against the obstacle's XZ box, plus an
// overlap test of [y, y+PlayerHeight] against [0, obstacle height].
func Collides(pos geom.Vec3, obstacles []geom.Obstacle) bool {
	for _, o := range obstacles {
		closestX := pos.X
		if closestX < o.MinX() {
			closestX = o.MinX()
		} else if closestX > o.MaxX() {
			closestX = o.MaxX()
		}
		closestZ := pos.Z
		if closestZ < o.MinZ() {
			closestZ = o.MinZ()
		} else if closestZ > o.MaxZ() {
			closestZ = o.MaxZ()
		}

		dx := pos.X - closestX
		dz := pos.Z - closestZ
		distSq := dx*dx + dz*dz
		if distSq >= PlayerRadius*PlayerRadius {
			continue
		}

		if pos.Y+PlayerHeight < 0 || pos.Y > o.Height {
			continue
		}
		return true
	}
	return false
}

// Step integrates one fixed-Δt tick: gravity, candidate position, per-axis
// collision resolution (X, then Z, then Y — the order is the contract that
// produces sliding on walls), ground clamp, and map-bound clamp.
func Step(pos, vel geom.Vec3, grounded bool, dt float32, mapSize float32, obstacles []geom.Obstacle) (geom.Vec3, geom.Vec3, bool) {
	vel.Y -= Gravity * dt

	newX := pos.X + vel.X*dt
	newY := pos.Y + vel.Y*dt
	newZ := pos.Z + vel.Z*dt

	// X axis, holding Z and Y at their pre-step values.
	if Collides(geom.Vec3{X: newX, Y: pos.Y, Z: pos.Z}, obstacles) {
		newX = pos.X
		vel.X = 0
	}
	// Z axis, holding X at its (possibly just-resolved) value and Y at pre-step.
	if Collides(geom.Vec3{X: newX, Y: pos.Y, Z: newZ}, obstacles) {
		newZ = pos.Z
		vel.Z = 0
	}

	if newY <= 0 {
		newY = 0
		vel.Y = 0
		grounded = true
	} else if Collides(geom.Vec3{X: newX, Y: newY, Z: newZ}, obstacles) {
		newY = pos.Y
		vel.Y = 0
	} else {
		grounded = false
	}

	half := mapSize/2 - PlayerRadius
	if newX < -half {
		newX = -half
	} else if newX > half {
		newX = half
	}
	if newZ < -half {
		newZ = -half
	} else if newZ > half {
		newZ = half
	}

	return geom.Vec3{X: newX, Y: newY, Z: newZ}, vel, grounded
}

// RayVsObstacles marches origin+dir*t in fixed RayStep increments up to
// maxDistance and reports the first step whose point lies inside an
// obstacle (or below the ground plane). This is deliberately coarse: the
// step size, not a closed-form intersection, is the contract.
func RayVsObstacles(origin, dir geom.Vec3, maxDistance float32, obstacles []geom.Obstacle) (bool, float32) {
	steps := int(maxDistance / RayStep)
	for i := 1; i <= steps; i++ {
		dist := float32(i) * RayStep
		p := origin.Add(dir.Scale(dist))
		if p.Y < 0 {
			return true, dist
		}
		for _, o := range obstacles {
			if p.X >= o.MinX() && p.X <= o.MaxX() && p.Z >= o.MinZ() && p.Z <= o.MaxZ() && p.Y >= 0 && p.Y <= o.Height {
				return true, dist
			}
		}
	}
	return false, 0
}

// RayVsSphere solves the ray/sphere quadratic and returns the smaller
// non-negative root, if any, within maxDistance.
func RayVsSphere(origin, dir, center geom.Vec3, radius, maxDistance float32) (bool, float32) {
	oc := origin.Sub(center)
	a := dir.Dot(dir)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return false, 0
	}

	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)

	t := t1
	if t < 0 {
		t = t2
	}
	if t < 0 || t > maxDistance {
		return false, 0
	}
	return true, t
}
