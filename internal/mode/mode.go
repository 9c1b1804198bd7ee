// Package mode defines the pluggable game-mode capability set (spec §4.6)
// and its default deathmatch implementation. The room driver only ever
// calls through the Policy interface — it never downcasts to a concrete
// mode, the same discipline garbhj-motion-demo/server/room/room.go uses for
// its small Conn interface.
package mode

import (
	"math/rand"

	"arenafps/internal/geom"
	"arenafps/internal/player"
)

// RespawnTimeMs is how long a dead player waits before the tick driver asks
// the mode for a spawn point and revives them.
const RespawnTimeMs = 2000

// spawnMargin keeps the deathmatch default spawn rect off the map edge.
const spawnMargin = 2

// Policy is the capability set every game mode must implement.
type Policy interface {
	OnPlayerJoin(p *player.Player, obstacles []geom.Obstacle)
	OnPlayerLeave(p *player.Player)
	OnPlayerKill(killer, victim *player.Player, headshot bool)
	OnPlayerDeath(victim *player.Player, killerID uint16, nowMs int64)
	ShouldEndGame(players []*player.Player) bool
	GetWinners(players []*player.Player) []*player.Player
	GetSpawnPosition(p *player.Player, obstacles []geom.Obstacle) geom.Vec3
	Tick(players []*player.Player, dt float32)
}

// Deathmatch is the default mode: no score or time limit, winners are
// whoever is tied at the highest score, spawn is a uniform random drop-in
// point with deliberately no safety check against obstacles — collisions
// resolve themselves on the player's first physics tick.
type Deathmatch struct {
	mapSize float32
	rng     *rand.Rand
}

// NewDeathmatch constructs a deathmatch policy for a room of the given
// map size, seeded from a non-deterministic source — spawn placement has
// no determinism contract, unlike map generation.
func NewDeathmatch(mapSize float32) *Deathmatch {
	return &Deathmatch{
		mapSize: mapSize,
		rng:     rand.New(rand.NewSource(rand.Int63())),
	}
}

func (d *Deathmatch) OnPlayerJoin(p *player.Player, obstacles []geom.Obstacle) {
	p.Position = d.GetSpawnPosition(p, obstacles)
}

func (d *Deathmatch) OnPlayerLeave(p *player.Player) {}

func (d *Deathmatch) OnPlayerKill(killer, victim *player.Player, headshot bool) {
	if headshot {
		killer.Score += 2
	} else {
		killer.Score++
	}
	killer.Kills++
}

func (d *Deathmatch) OnPlayerDeath(victim *player.Player, killerID uint16, nowMs int64) {
	victim.RespawnTime = nowMs + RespawnTimeMs
}

func (d *Deathmatch) ShouldEndGame(players []*player.Player) bool {
	return false
}

func (d *Deathmatch) GetWinners(players []*player.Player) []*player.Player {
	var best int
	for _, p := range players {
		if p.Score > best {
			best = p.Score
		}
	}
	var winners []*player.Player
	for _, p := range players {
		if p.Score == best {
			winners = append(winners, p)
		}
	}
	return winners
}

func (d *Deathmatch) GetSpawnPosition(p *player.Player, obstacles []geom.Obstacle) geom.Vec3 {
	half := d.mapSize/2 - spawnMargin
	x := (d.rng.Float32()*2 - 1) * half
	z := (d.rng.Float32()*2 - 1) * half
	return geom.Vec3{X: x, Y: 5, Z: z}
}

func (d *Deathmatch) Tick(players []*player.Player, dt float32) {}
