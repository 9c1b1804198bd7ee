// Package transport is the external network-transport collaborator of
// spec §6, made concrete with gorilla/websocket. Grounded on
// internal/server/ws.go's Connection/readPump/writePump/HandleWebSocket,
// with the JSON Marshal/Unmarshal calls replaced by internal/protocol's
// binary encode/decode and the message-type switch keyed on the first byte
// instead of a JSON "type" field.
package transport

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arenafps/internal/player"
	"arenafps/internal/protocol"
	"arenafps/internal/room"
	"arenafps/internal/roomsup"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Conn is one player's connection. It owns the player's send queue; the
// room it joins owns the player's simulation state.
type Conn struct {
	ws  *websocket.Conn
	sup *roomsup.Supervisor
	log *log.Logger

	send chan []byte

	room     *room.Room
	player   *player.Player
	tickRate int
}

func newConn(ws *websocket.Conn, sup *roomsup.Supervisor, logger *log.Logger) *Conn {
	return &Conn{
		ws:   ws,
		sup:  sup,
		log:  logger,
		send: make(chan []byte, sendBuffer),
	}
}

// HandleWebSocket upgrades an HTTP request to a websocket connection and
// starts its read/write/snapshot goroutines, grounded on
// internal/server/ws.go's HandleWebSocket.
func HandleWebSocket(sup *roomsup.Supervisor, logger *log.Logger) http.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("transport: upgrade error: %v", err)
			return
		}

		c := newConn(ws, sup, logger)
		ctx, cancel := context.WithCancel(context.Background())

		go c.writePump()
		go c.readPump(ctx, cancel)
	}
}

// readPump decodes one binary frame per message (spec §4.7) and routes it:
// JOIN to the supervisor, INPUT to the owning room's QueueInput (dropped if
// unsolicited — spec §7), PING echoed verbatim.
func (c *Conn) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		c.disconnect()
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Printf("transport: read error: %v", err)
			}
			return
		}
		if len(data) == 0 {
			continue
		}

		switch data[0] {
		case protocol.TypeJoin:
			c.handleJoin(ctx, data)
		case protocol.TypeInput:
			c.handleInput(data)
		case protocol.TypePing:
			c.handlePing(data)
		default:
			c.log.Printf("transport: unknown message type %d, dropping", data[0])
		}
	}
}

func (c *Conn) handleJoin(ctx context.Context, data []byte) {
	if c.room != nil {
		return // already joined; a second JOIN on the same connection is ignored
	}

	join, err := protocol.DecodeJoin(data)
	if err != nil {
		c.log.Printf("transport: malformed JOIN: %v", err)
		return
	}

	r, p, err := c.sup.Admit(ctx, join.Name)
	if err != nil {
		c.log.Printf("transport: admission failed for %q: %v", join.Name, err)
		c.ws.Close() // room full on join: fails with a close, no WELCOME sent (spec §7)
		return
	}

	c.room = r
	c.player = p
	c.tickRate = r.TickRate()

	c.enqueue(protocol.EncodeWelcome(p.ID, uint8(r.TickRate()), r.MapSeed))
	go c.snapshotLoop(ctx)
}

func (c *Conn) handleInput(data []byte) {
	in, err := protocol.DecodeInput(data)
	if err != nil {
		c.log.Printf("transport: malformed INPUT: %v", err)
		return
	}
	if c.room == nil || c.player == nil {
		return // unsolicited input before JOIN: dropped (spec §7)
	}
	c.room.QueueInput(c.player.ID, player.InputRecord{
		Seq: in.Seq,
		Forward: in.Forward, Backward: in.Backward, Left: in.Left, Right: in.Right,
		Jump: in.Jump, Sprint: in.Sprint, Sneak: in.Sneak, Shoot: in.Shoot,
		Weapon: in.Weapon, Yaw: in.Yaw, Pitch: in.Pitch, Timestamp: in.Timestamp,
	})
}

func (c *Conn) handlePing(data []byte) {
	if _, err := protocol.DecodePing(data); err != nil {
		c.log.Printf("transport: malformed PING: %v", err)
		return
	}
	echo := make([]byte, len(data))
	copy(echo, data)
	c.enqueue(echo)
}

func (c *Conn) disconnect() {
	if c.room != nil && c.player != nil {
		c.room.RemovePlayer(c.player.ID)
	}
}

func (c *Conn) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Printf("transport: send buffer full for player %v, dropping message", c.player)
	}
}

// writePump owns the connection's outbound byte stream: queued application
// messages plus periodic protocol-level pings to keep the socket alive.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// snapshotLoop owns this connection's per-player snapshot cadence,
// independent of the room's own tick goroutine — a slow or dead connection
// can never stall a tick (spec §5).
func (c *Conn) snapshotLoop(ctx context.Context) {
	interval := time.Second / time.Duration(c.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			buf := c.room.EncodeSnapshot(c.player.ID, float64(time.Now().UnixMilli()))
			if buf == nil {
				return // player no longer in the room
			}
			out := make([]byte, len(buf))
			copy(out, buf)
			c.enqueue(out)
		}
	}
}

// HealthStatus is the documented shape of spec §6's GET /health response.
type HealthStatus struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}

// HealthHandler serves spec §6's health endpoint: {status, rooms, players}.
// Its implementation detail beyond this shape is explicitly out of scope.
func HealthHandler(sup *roomsup.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:  "ok",
			Rooms:   sup.RoomCount(),
			Players: sup.TotalPlayers(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}
