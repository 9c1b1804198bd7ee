// Package room implements the fixed-rate tick driver and per-room player
// lifecycle (spec §4.5): FIFO input drain, physics, inline hit validation,
// history sampling, respawn gating, mode ticking, and snapshot production.
//
// Grounded on backup/fps-game/internal/game/sim.go's Room/ProcessTick/GetSnap
// (its fixed [2]*Player array is generalized to a player map up to
// MaxPlayers, and its "keep only the latest input" queue drain is replaced
// with a FIFO drain-to-empty). A room is single-threaded cooperative
// (spec §5): QueueInput/AddPlayer/RemovePlayer and Tick all run under one
// mutex, mirroring the mutual-exclusion discipline
// bormisov1-spaceship-online-game/server/hub.go uses around its own
// register/unregister/client map.
package room

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"arenafps/internal/combat"
	"arenafps/internal/geom"
	"arenafps/internal/mode"
	"arenafps/internal/physics"
	"arenafps/internal/player"
	"arenafps/internal/protocol"
)

var ErrRoomFull = errors.New("room: full")

// maxPitch is spec §3's pitch clamp: |pitch| ≤ π/2 − 0.1.
const maxPitch = float32(math.Pi/2 - 0.1)

// Config holds the per-room tunables sourced from spec §6 configuration.
type Config struct {
	TickRate   int
	MapSize    float32
	MaxPlayers int
	MaxLagMs   int64

	// OnKill, if set, is called with the stats UserIDs of a kill's shooter
	// and victim right after mode.Policy.OnPlayerKill runs. The room never
	// touches the stats store itself — cmd/server wires this to an async,
	// logged-not-surfaced update (spec §7 "persistence failure ... never
	// surfaced to gameplay").
	OnKill func(killerUserID, victimUserID int64)
}

// Room owns one simulation and one broadcast pipeline. It exclusively owns
// its players and obstacles; connection handles live in the transport
// layer, which reaches this room only through its methods. No cross-room
// references exist.
type Room struct {
	mu sync.Mutex

	ID       string
	MapSeed  uint32
	Obstacles []geom.Obstacle

	cfg Config
	dt  float32

	players      map[uint16]*player.Player
	order        []uint16
	nextPlayerID uint16
	tick         uint32

	mode      mode.Policy
	validator *combat.Validator

	hitEvents []combat.HitEvent
	scratch   []byte

	log *log.Logger
}

// New constructs an empty room. cfg.TickRate must be > 0.
func New(id string, mapSeed uint32, obstacles []geom.Obstacle, cfg Config, logger *log.Logger) *Room {
	if logger == nil {
		logger = log.Default()
	}
	return &Room{
		ID:           id,
		MapSeed:      mapSeed,
		Obstacles:    obstacles,
		cfg:          cfg,
		dt:           1.0 / float32(cfg.TickRate),
		players:      make(map[uint16]*player.Player),
		nextPlayerID: 1,
		mode:         wrapWithStatsHook(mode.NewDeathmatch(cfg.MapSize), cfg.OnKill),
		validator:    combat.NewValidator(cfg.MaxLagMs, rand.New(rand.NewSource(rand.Int63()))),
		scratch:      make([]byte, protocol.ScratchBufferSize()),
		log:          logger,
	}
}

// Full reports whether the room has reached its player cap.
func (r *Room) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) >= r.cfg.MaxPlayers
}

// PlayerCount reports the current number of joined players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// AddPlayer admits a new player, assigning the next monotonic 16-bit id.
func (r *Room) AddPlayer(name string) (*player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= r.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.nextPlayerID == 0 {
		// Wrapped past 65535 with a full room still holding id 65535: a
		// playerId collision would be a fatal invariant violation (spec §7).
		panic("room: player id space exhausted")
	}

	id := r.nextPlayerID
	r.nextPlayerID++

	p := player.NewPlayer(id, name, geom.Vec3{})
	r.mode.OnPlayerJoin(p, r.Obstacles)
	r.players[id] = p
	r.order = append(r.order, id)

	return p, nil
}

// RemovePlayer destroys a player and discards whatever it had queued. No
// other state references the removed player after this returns.
func (r *Room) RemovePlayer(id uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return
	}
	r.mode.OnPlayerLeave(p)
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// QueueInput appends to a player's FIFO input queue. Unsolicited input for
// an id not in this room is ignored (spec §7).
func (r *Room) QueueInput(id uint16, in player.InputRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.QueueInput(in)
	}
}

// Tick advances the simulation by one fixed Δt, using nowMs as the
// wall-clock reading for fire-rate gating, history timestamps, and respawn
// scheduling. nowMs should come from a monotonic millisecond clock.
func (r *Room) Tick(nowMs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hitEvents = r.hitEvents[:0]

	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		r.applyPlayerInputs(p, nowMs)
		p.History.Write(p.Position, float64(nowMs))
	}

	r.processRespawns(nowMs)
	r.mode.Tick(r.allPlayers(), r.dt)

	if r.mode.ShouldEndGame(r.allPlayers()) {
		r.resetRound(nowMs)
	}

	r.tick++
}

func (r *Room) applyPlayerInputs(p *player.Player, nowMs int64) {
	inputs := p.DrainInputs()
	if len(inputs) == 0 {
		return
	}

	for _, in := range inputs {
		p.LastProcessedInput = in.Seq
		p.Weapon = in.Weapon
		p.IsShooting = in.Shoot
		p.Yaw = in.Yaw
		p.Pitch = clampPitch(in.Pitch)

		if p.IsDead {
			continue
		}

		moveInput := physics.MoveInput{
			Forward: in.Forward, Backward: in.Backward,
			Left: in.Left, Right: in.Right,
			Jump: in.Jump, Sprint: in.Sprint, Sneak: in.Sneak,
		}
		p.Velocity, p.Grounded = physics.InputVelocity(p.Velocity, p.Grounded, moveInput, p.Yaw)
		p.Position, p.Velocity, p.Grounded = physics.Step(p.Position, p.Velocity, p.Grounded, r.dt, r.cfg.MapSize, r.Obstacles)

		if in.Shoot {
			events := r.validator.Validate(nowMs, p, in, r.otherPlayers(p.ID), r.Obstacles, r.mode)
			r.hitEvents = append(r.hitEvents, events...)
		}
	}
}

func (r *Room) otherPlayers(excludeID uint16) []*player.Player {
	out := make([]*player.Player, 0, len(r.players))
	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		out = append(out, r.players[id])
	}
	return out
}

func (r *Room) allPlayers() []*player.Player {
	out := make([]*player.Player, 0, len(r.players))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

func (r *Room) processRespawns(nowMs int64) {
	for _, id := range r.order {
		p := r.players[id]
		if p.IsDead && p.RespawnTime > 0 && nowMs >= p.RespawnTime {
			spawn := r.mode.GetSpawnPosition(p, r.Obstacles)
			p.Respawn(spawn)
		}
	}
}

func (r *Room) resetRound(nowMs int64) {
	for _, id := range r.order {
		p := r.players[id]
		p.Score, p.Kills, p.Deaths = 0, 0, 0
		spawn := r.mode.GetSpawnPosition(p, r.Obstacles)
		p.Respawn(spawn)
	}
	r.tick = 0
}

// EncodeSnapshot writes this tick's SNAPSHOT message for forPlayerID into
// the room's pre-allocated scratch buffer and returns the slice of bytes
// written. The buffer is reused on every call; callers must finish using
// (e.g. write to the network) one snapshot before requesting the next.
func (r *Room) EncodeSnapshot(forPlayerID uint16, serverTimeMs float64) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.players[forPlayerID]
	if !ok {
		return nil
	}

	entries := make([]protocol.PlayerEntry, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		entries = append(entries, protocol.PlayerEntry{
			ID: p.ID, X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z,
			VX: p.Velocity.X, VY: p.Velocity.Y, VZ: p.Velocity.Z,
			Yaw: p.Yaw, Pitch: p.Pitch,
			Health: p.Health, Weapon: p.Weapon,
			IsShooting: p.IsShooting, IsDead: p.IsDead,
			Score: uint16(p.Score),
		})
	}

	hits := make([]protocol.HitEntry, 0, len(r.hitEvents))
	for _, h := range r.hitEvents {
		hits = append(hits, protocol.HitEntry{
			ShooterID: h.ShooterID, TargetID: h.TargetID,
			Damage: h.Damage, Headshot: h.Headshot,
		})
	}

	need := protocol.SnapshotSize(len(entries), len(hits))
	if need > len(r.scratch) {
		r.log.Printf("room %s: snapshot size %d exceeds scratch budget %d, growing", r.ID, need, len(r.scratch))
		r.scratch = make([]byte, need)
	}

	n := protocol.EncodeSnapshot(r.scratch, r.tick, serverTimeMs, target.LastProcessedInput, entries, hits)
	return r.scratch[:n]
}

// Run drives the fixed-rate tick loop until ctx is cancelled, grounded on
// garbhj-motion-demo/server/room/room.go's own Run goroutine-per-room model.
// Unlike that teacher, a Room here never owns connections directly — the
// transport layer pulls snapshots out via EncodeSnapshot on its own cadence,
// so a slow or dead connection can never stall a tick.
func (r *Room) Run(ctx context.Context) {
	interval := time.Second / time.Duration(r.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(time.Now().UnixMilli())
		}
	}
}

// TickRate exposes the configured simulation rate, e.g. for the WELCOME
// handshake message.
func (r *Room) TickRate() int {
	return r.cfg.TickRate
}

// statsHookPolicy decorates a mode.Policy with an optional stats callback,
// the same "wrap, don't fork" shape garbhj-motion-demo/server/room/room.go
// uses to attach behavior to its Conn interface without touching the
// concrete implementation.
type statsHookPolicy struct {
	mode.Policy
	onKill func(killerUserID, victimUserID int64)
}

func wrapWithStatsHook(inner mode.Policy, onKill func(int64, int64)) mode.Policy {
	if onKill == nil {
		return inner
	}
	return &statsHookPolicy{Policy: inner, onKill: onKill}
}

func (s *statsHookPolicy) OnPlayerKill(killer, victim *player.Player, headshot bool) {
	s.Policy.OnPlayerKill(killer, victim, headshot)
	s.onKill(killer.UserID, victim.UserID)
}

func clampPitch(p float32) float32 {
	if p > maxPitch {
		return maxPitch
	}
	if p < -maxPitch {
		return -maxPitch
	}
	return p
}
