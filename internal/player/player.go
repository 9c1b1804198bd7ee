// Package player holds the per-player entity: transform, combat state,
// input pipeline, and the lag-compensation history ring. It is grounded on
// backup/fps-game/internal/game/sim.go's flat Player struct, generalized
// from a 2-slot demo array to the full spec §3/§4.3 field set (health,
// history ring, weapon, deaths/kills) and a FIFO input queue rather than
// "keep only the latest input".
package player

import "arenafps/internal/geom"

const MaxHealth = 100

// InputRecord is one decoded INPUT message (spec §3/§4.7).
type InputRecord struct {
	Seq                            uint32
	Forward, Backward, Left, Right bool
	Jump, Sprint, Sneak, Shoot     bool
	Weapon                         uint8
	Yaw, Pitch                     float32
	Timestamp                      float64
}

// Player is created on join and destroyed on disconnect. It exclusively
// owns its history ring and input queue. The owning room drives its
// simulation state; the supervisor that admits it sets UserID, and the
// transport connection keeps a pointer to it to address its inputs and
// snapshots by ID.
type Player struct {
	ID   uint16
	Name string

	// UserID links this session to the stats persistence collaborator
	// (0 if the room was built without one). Minted fresh on every join —
	// there is no login, so it names a session, not an account.
	UserID int64

	Position geom.Vec3
	Velocity geom.Vec3
	Yaw      float32
	Pitch    float32

	Health      uint8
	IsDead      bool
	RespawnTime int64 // wall-clock ms; 0 = not scheduled
	Weapon      uint8
	IsShooting  bool
	LastShootMs int64

	Score, Kills, Deaths int

	pendingInputs       []InputRecord
	LastProcessedInput  uint32

	Grounded bool

	History History
}

// NewPlayer constructs a player at full health with an empty history ring.
func NewPlayer(id uint16, name string, spawn geom.Vec3) *Player {
	p := &Player{
		ID:       id,
		Name:     name,
		Position: spawn,
		Health:   MaxHealth,
	}
	p.History.Clear()
	return p
}

// QueueInput appends to the FIFO pending-input queue. Called from the
// network layer; the tick loop is the sole consumer (spec §4.5/§5).
func (p *Player) QueueInput(in InputRecord) {
	p.pendingInputs = append(p.pendingInputs, in)
}

// DrainInputs returns and clears the pending-input queue, preserving FIFO
// order. A disconnect mid-tick discards whatever remains queued simply by
// dropping the Player, so no explicit discard path is needed here.
func (p *Player) DrainInputs() []InputRecord {
	if len(p.pendingInputs) == 0 {
		return nil
	}
	drained := p.pendingInputs
	p.pendingInputs = nil
	return drained
}

// Respawn resets combat state and clears the history ring (spec §3: "Cleared
// on spawn").
func (p *Player) Respawn(at geom.Vec3) {
	p.Position = at
	p.Velocity = geom.Vec3{}
	p.Health = MaxHealth
	p.IsDead = false
	p.RespawnTime = 0
	p.History.Clear()
}

// ApplyDamage subtracts dmg from health, floored at 0, and reports whether
// this hit killed the player.
func (p *Player) ApplyDamage(dmg uint8) (killed bool) {
	if dmg >= p.Health {
		p.Health = 0
		if !p.IsDead {
			p.IsDead = true
			p.Deaths++
			killed = true
		}
		return killed
	}
	p.Health -= dmg
	return false
}
