// Package roomsup implements the room registry/supervisor (spec §6
// admission layer, §9 "single supervisor component with explicit lifecycle").
// Grounded on garbhj-motion-demo/server/room/manager.go's Manager
// (map-of-rooms, create-on-demand, one goroutine per room, removal callback
// when a room empties), generalized from code-keyed rooms to
// capacity-bounded round-robin placement, and
// internal/server/matchmaking.go's Matchmaking.AddPlayer for the admission
// sequencing: decode JOIN, assign id, assign room, reply WELCOME.
package roomsup

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"arenafps/internal/mapgen"
	"arenafps/internal/player"
	"arenafps/internal/room"
	"arenafps/internal/stats"
)

var ErrAllRoomsFull = errors.New("roomsup: all rooms full")

// Supervisor owns every room in the process. Rooms are values inside it
// (spec §9); nothing outside the Supervisor creates or destroys one.
type Supervisor struct {
	mu       sync.Mutex
	cfg      room.Config
	mapSeed  uint32
	maxRooms int

	rooms   map[string]*room.Room
	order   []string // creation order; Admit scans for the first non-full room
	cancels map[string]context.CancelFunc

	store *stats.Store // optional; nil disables UserID minting on join
	log   *log.Logger
}

// New constructs an empty supervisor. cfg is applied to every room it
// creates; mapSeed is the single spec §6 MAP_SEED shared by every room, so
// every room's client-generated geometry matches the same seed the server
// used. store may be nil (joined players keep UserID 0 and stats recording
// is inert).
func New(cfg room.Config, mapSeed uint32, maxRooms int, store *stats.Store, logger *log.Logger) *Supervisor {
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		cfg:      cfg,
		mapSeed:  mapSeed,
		maxRooms: maxRooms,
		rooms:    make(map[string]*room.Room),
		cancels:  make(map[string]context.CancelFunc),
		store:    store,
		log:      logger,
	}
}

// Admit places a new player in the first non-full room, creating one (up to
// maxRooms) if none has space, and starts that player's mode-join sequence.
// Returns ErrAllRoomsFull if every existing room is full and the cap is
// reached (spec §7 "Room full on join").
func (s *Supervisor) Admit(ctx context.Context, name string) (*room.Room, *player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		r := s.rooms[id]
		if !r.Full() {
			p, err := r.AddPlayer(name)
			if err != nil {
				continue
			}
			s.mintUserID(p, name)
			return r, p, nil
		}
	}

	if len(s.rooms) >= s.maxRooms {
		return nil, nil, ErrAllRoomsFull
	}

	r := s.createRoomLocked(ctx)
	p, err := r.AddPlayer(name)
	if err != nil {
		return nil, nil, err
	}
	s.mintUserID(p, name)
	return r, p, nil
}

// mintUserID gives the joining player a fresh stats-store identity. There is
// no login (spec §1 excludes user-account persistence), so every join gets
// its own row rather than resolving one by name.
func (s *Supervisor) mintUserID(p *player.Player, name string) {
	if s.store == nil {
		return
	}
	id, err := s.store.CreateUser(name)
	if err != nil {
		s.log.Printf("roomsup: stats CreateUser failed for %q: %v", name, err)
		return
	}
	p.UserID = id
}

func (s *Supervisor) createRoomLocked(ctx context.Context) *room.Room {
	id := uuid.NewString()
	obstacles := mapgen.Generate(s.mapSeed)

	r := room.New(id, s.mapSeed, obstacles, s.cfg, s.log)
	s.rooms[id] = r
	s.order = append(s.order, id)

	roomCtx, cancel := context.WithCancel(ctx)
	s.cancels[id] = cancel
	go r.Run(roomCtx)

	s.log.Printf("roomsup: created room %s (mapSeed=%d)", id, s.mapSeed)
	return r
}

// RoomCount reports the current number of active rooms.
func (s *Supervisor) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// TotalPlayers sums PlayerCount across every room, for the health endpoint.
func (s *Supervisor) TotalPlayers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.rooms {
		total += r.PlayerCount()
	}
	return total
}

// Rooms returns a snapshot slice of the currently active rooms.
func (s *Supervisor) Rooms() []*room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*room.Room, 0, len(s.rooms))
	for _, id := range s.order {
		out = append(out, s.rooms[id])
	}
	return out
}

// Stop cancels every room's tick loop. Call once at process shutdown.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.cancels {
		cancel()
	}
}
