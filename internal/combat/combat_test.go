package combat

import (
	"math/rand"
	"testing"

	"arenafps/internal/geom"
	"arenafps/internal/mode"
	"arenafps/internal/player"
	"arenafps/internal/weapon"
)

func newTestPlayer(id uint16, pos geom.Vec3) *player.Player {
	p := player.NewPlayer(id, "p", pos)
	p.History.Write(pos, 0)
	return p
}

func TestValidateHitsTargetDirectlyAhead(t *testing.T) {
	v := NewValidator(200, rand.New(rand.NewSource(1)))
	policy := mode.NewDeathmatch(50)

	shooter := newTestPlayer(1, geom.Vec3{})
	shooter.Weapon = weapon.Rifle
	target := newTestPlayer(2, geom.Vec3{Z: 10})

	in := player.InputRecord{Shoot: true, Yaw: 0, Pitch: 0, Timestamp: 0}
	events := v.Validate(10000, shooter, in, []*player.Player{target}, nil, policy)

	if len(events) != 1 {
		t.Fatalf("got %d hit events, want 1", len(events))
	}
	if events[0].TargetID != target.ID {
		t.Fatalf("got targetId %d, want %d", events[0].TargetID, target.ID)
	}
}

func TestValidateGatesOnFireRate(t *testing.T) {
	v := NewValidator(200, rand.New(rand.NewSource(1)))
	policy := mode.NewDeathmatch(50)

	shooter := newTestPlayer(1, geom.Vec3{})
	shooter.Weapon = weapon.Rifle
	shooter.LastShootMs = 1000
	target := newTestPlayer(2, geom.Vec3{Z: 10})

	in := player.InputRecord{Shoot: true, Yaw: 0, Pitch: 0, Timestamp: 1050}
	events := v.Validate(1050, shooter, in, []*player.Player{target}, nil, policy)

	if events != nil {
		t.Fatalf("got %v, want nil (fire rate not elapsed)", events)
	}
}

func TestValidateBlockedByObstacleMisses(t *testing.T) {
	v := NewValidator(200, rand.New(rand.NewSource(1)))
	policy := mode.NewDeathmatch(50)

	shooter := newTestPlayer(1, geom.Vec3{})
	shooter.Weapon = weapon.Rifle
	target := newTestPlayer(2, geom.Vec3{Z: 10})
	wall := []geom.Obstacle{{X: 0, Z: 5, Width: 10, Height: 5, Depth: 1}}

	in := player.InputRecord{Shoot: true, Yaw: 0, Pitch: 0, Timestamp: 0}
	events := v.Validate(10000, shooter, in, []*player.Player{target}, wall, policy)

	if events != nil {
		t.Fatalf("got %v, want nil (shot blocked by wall)", events)
	}
}

func TestValidateKillsAndNotifiesPolicy(t *testing.T) {
	v := NewValidator(200, rand.New(rand.NewSource(1)))
	policy := mode.NewDeathmatch(50)

	shooter := newTestPlayer(1, geom.Vec3{})
	shooter.Weapon = weapon.Shotgun
	target := newTestPlayer(2, geom.Vec3{Z: 2})
	target.Health = 5

	in := player.InputRecord{Shoot: true, Yaw: 0, Pitch: 0, Timestamp: 0}
	v.Validate(10000, shooter, in, []*player.Player{target}, nil, policy)

	if !target.IsDead {
		t.Fatal("target should be dead after lethal shot")
	}
	if shooter.Kills != 1 {
		t.Fatalf("got kills %d, want 1", shooter.Kills)
	}
}

func TestValidateIgnoresDeadTargets(t *testing.T) {
	v := NewValidator(200, rand.New(rand.NewSource(1)))
	policy := mode.NewDeathmatch(50)

	shooter := newTestPlayer(1, geom.Vec3{})
	shooter.Weapon = weapon.Rifle
	target := newTestPlayer(2, geom.Vec3{Z: 10})
	target.IsDead = true

	in := player.InputRecord{Shoot: true, Yaw: 0, Pitch: 0, Timestamp: 0}
	events := v.Validate(10000, shooter, in, []*player.Player{target}, nil, policy)

	if events != nil {
		t.Fatalf("got %v, want nil (dead targets cannot be hit)", events)
	}
}
