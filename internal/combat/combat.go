// Package combat implements the lag-compensated hit validator (spec §4.4):
// fire-rate gating, rewind-window clamping, per-bullet spread, head-then-body
// hitbox testing against rewound target positions, and obstacle occlusion.
// Grounded on internal/game/collision.go's RayIntersectsCircle (generalized
// from 2D circle to 3D sphere) and backup/fps-game/internal/game/sim.go's
// ProcessShoot for the fire-rate-then-ray-then-wall sequencing — extended
// with the lag-rewind query that 2-player demo never needed.
package combat

import (
	"math"
	"math/rand"

	"arenafps/internal/geom"
	"arenafps/internal/mode"
	"arenafps/internal/physics"
	"arenafps/internal/player"
	"arenafps/internal/weapon"
)

const (
	HeadHeight     = 0.3
	eyeOffset      = physics.PlayerHeight - 0.2
	bodyRadiusMult = 1.5
)

// HitEvent records one bullet's resolved damage.
type HitEvent struct {
	ShooterID, TargetID uint16
	Damage              uint8
	Headshot            bool
}

// Validator is per-room: it owns the non-deterministic spread PRNG so spread
// is not attacker-predictable (spec §4.4 step 3c), and the configured
// lag-compensation window.
type Validator struct {
	rng      *rand.Rand
	maxLagMs int64
}

// NewValidator constructs a validator with the given lag-compensation
// window. Pass a seeded rng for deterministic tests (spec's round-trip law
// fixes the spread PRNG seed); production callers pass a rand.New seeded
// from an unpredictable source.
func NewValidator(maxLagMs int64, rng *rand.Rand) *Validator {
	return &Validator{rng: rng, maxLagMs: maxLagMs}
}

// Validate runs one shoot input against every other alive player and
// returns the HitEvents it produced (possibly more than one — shotgun).
// Kill/death side effects are applied to the target Players directly and
// reported to policy; the room driver does not need to inspect the
// returned events to update health or respawn state.
func (v *Validator) Validate(nowMs int64, shooter *player.Player, input player.InputRecord, targets []*player.Player, obstacles []geom.Obstacle, policy mode.Policy) []HitEvent {
	w := weapon.Get(shooter.Weapon)

	if nowMs-shooter.LastShootMs < w.FireRateMs {
		return nil
	}
	shooter.LastShootMs = nowMs

	rewindMs := input.Timestamp
	earliest := float64(nowMs - v.maxLagMs)
	latest := float64(nowMs)
	if rewindMs < earliest {
		rewindMs = earliest
	} else if rewindMs > latest {
		rewindMs = latest
	}

	origin := shooter.Position.Add(geom.Vec3{Y: eyeOffset})

	var events []HitEvent
	for b := 0; b < w.BulletCount; b++ {
		dir := shootDirection(shooter.Yaw, shooter.Pitch)
		if w.Spread > 0 {
			dir = perturb(dir, w.Spread, v.rng)
		}
		if dir == (geom.Vec3{}) {
			continue // degenerate geometry: treat as miss
		}

		hitTarget, hitDist, headshot := nearestPlayerHit(origin, dir, w.Range, rewindMs, shooter.ID, targets)

		checkDist := w.Range
		if hitTarget != nil {
			checkDist = hitDist
		}
		if blocked, _ := physics.RayVsObstacles(origin, dir, checkDist, obstacles); blocked {
			continue
		}
		if hitTarget == nil {
			continue
		}

		dmg := w.Damage
		if headshot {
			dmg *= 2
		}
		killed := hitTarget.ApplyDamage(dmg)
		events = append(events, HitEvent{ShooterID: shooter.ID, TargetID: hitTarget.ID, Damage: dmg, Headshot: headshot})

		if killed {
			policy.OnPlayerKill(shooter, hitTarget, headshot)
			policy.OnPlayerDeath(hitTarget, shooter.ID, nowMs)
		}
	}

	return events
}

func shootDirection(yaw, pitch float32) geom.Vec3 {
	sy, cy := float32(math.Sin(float64(yaw))), float32(math.Cos(float64(yaw)))
	sp, cp := float32(math.Sin(float64(pitch))), float32(math.Cos(float64(pitch)))
	return geom.Vec3{X: sy * cp, Y: -sp, Z: cy * cp}.Normalize()
}

func perturb(dir geom.Vec3, spread float32, rng *rand.Rand) geom.Vec3 {
	jitter := func() float32 { return (rng.Float32() - 0.5) * spread }
	return geom.Vec3{
		X: dir.X + jitter(),
		Y: dir.Y + jitter(),
		Z: dir.Z + jitter(),
	}.Normalize()
}

// nearestPlayerHit finds the closest alive target along the ray, testing
// head before body per target, and returns it along with the distance and
// whether the winning hit was a headshot.
func nearestPlayerHit(origin, dir geom.Vec3, maxRange float32, rewindMs float64, shooterID uint16, targets []*player.Player) (*player.Player, float32, bool) {
	var nearest *player.Player
	nearestDist := maxRange
	nearestHeadshot := false

	for _, target := range targets {
		if target.ID == shooterID || target.IsDead {
			continue
		}
		pos, ok := target.History.Query(rewindMs)
		if !ok {
			continue // history miss: this target misses silently
		}

		headCenter := pos.Add(geom.Vec3{Y: physics.PlayerHeight - HeadHeight})
		if hit, dist := physics.RayVsSphere(origin, dir, headCenter, HeadHeight, nearestDist); hit {
			nearest, nearestDist, nearestHeadshot = target, dist, true
			continue
		}

		bodyCenter := pos.Add(geom.Vec3{Y: physics.PlayerHeight / 2})
		if hit, dist := physics.RayVsSphere(origin, dir, bodyCenter, physics.PlayerRadius*bodyRadiusMult, nearestDist); hit {
			nearest, nearestDist, nearestHeadshot = target, dist, false
		}
	}

	return nearest, nearestDist, nearestHeadshot
}
