// Package protocol implements the bit-exact binary wire codec (spec §4.7).
// Every field width and byte order is fixed; this is the one part of the
// repository a client implementation depends on byte-for-byte.
//
// Grounded on touka-aoi-tanzlaurel/server/domain/protocol.go's encode/decode
// idiom (byteOrder.PutUint32/Uint32 into a pre-sliced []byte,
// math.Float32bits/Float32frombits for float fields, one sentinel error per
// malformed-size case) for the mechanism, and NickGardi-GoServerGames's own
// internal/net/protocol.go for the message catalog shape (one struct per
// message type, client→server then server→client) — that protocol is
// JSON-tagged with no Encode/Decode methods at all, so only the shape of
// its message set carries over, not its mechanism.
package protocol

import (
	"encoding/binary"
	"errors"
	"math"
)

var byteOrder = binary.LittleEndian

// Client → Server message types.
const (
	TypeJoin  uint8 = 1
	TypeInput uint8 = 2
	TypePing  uint8 = 3
)

// Server → Client message types.
const (
	TypeWelcome  uint8 = 1
	TypeSnapshot uint8 = 2
)

const (
	InputSize        = 23 // type(1) + seq(4) + flags(1) + weapon(1) + yaw(4) + pitch(4) + timestamp(8)
	WelcomeSize      = 8  // type(1) + playerId(2) + tickRate(1) + mapSeed(4)
	SnapshotHeaderSize = 19 // type(1) + tick(4) + serverTime(8) + playerCount(1) + hitCount(1) + lastProcessedInput(4)
	PlayerEntrySize  = 40
	HitEntrySize     = 6

	MaxPlayersScratch = 32
	MaxHitsScratch    = 16
)

var (
	ErrTruncated    = errors.New("protocol: truncated message")
	ErrUnknownType  = errors.New("protocol: unknown message type")
	ErrNameTooLong  = errors.New("protocol: name length exceeds payload")
)

// Input flag bit layout (LSB first), per spec §4.7.
const (
	FlagForward  = 1 << 0
	FlagBackward = 1 << 1
	FlagLeft     = 1 << 2
	FlagRight    = 1 << 3
	FlagJump     = 1 << 4
	FlagSprint   = 1 << 5
	FlagSneak    = 1 << 6
	FlagShoot    = 1 << 7
)

// Join is the decoded JOIN message.
type Join struct {
	Name string
}

// DecodeJoin parses a JOIN frame: [u8 type][u8 nameLen][nameLen bytes].
// Names are not validated beyond their length fitting inside the payload.
func DecodeJoin(data []byte) (Join, error) {
	if len(data) < 2 {
		return Join{}, ErrTruncated
	}
	nameLen := int(data[1])
	if len(data) < 2+nameLen {
		return Join{}, ErrNameTooLong
	}
	return Join{Name: string(data[2 : 2+nameLen])}, nil
}

// EncodeJoin is provided for symmetry and for tests exercising the
// round-trip law; production servers only decode JOIN, they never send it.
func EncodeJoin(name string) []byte {
	n := len(name)
	if n > 255 {
		n = 255
	}
	buf := make([]byte, 2+n)
	buf[0] = TypeJoin
	buf[1] = byte(n)
	copy(buf[2:], name[:n])
	return buf
}

// Input is the decoded INPUT message.
type Input struct {
	Seq                             uint32
	Forward, Backward, Left, Right bool
	Jump, Sprint, Sneak, Shoot      bool
	Weapon                          uint8
	Yaw, Pitch                     float32
	Timestamp                      float64
}

// DecodeInput parses an INPUT frame at its fixed offsets. Per the §4.7
// canonical layout (see SPEC_FULL.md on the client apparently duplicating the
// weapon/yaw/pitch tail): this reads exactly one copy of each field and
// ignores any trailing bytes beyond InputSize.
func DecodeInput(data []byte) (Input, error) {
	if len(data) < InputSize {
		return Input{}, ErrTruncated
	}
	flags := data[5]
	return Input{
		Seq:      byteOrder.Uint32(data[1:5]),
		Forward:  flags&FlagForward != 0,
		Backward: flags&FlagBackward != 0,
		Left:     flags&FlagLeft != 0,
		Right:    flags&FlagRight != 0,
		Jump:     flags&FlagJump != 0,
		Sprint:   flags&FlagSprint != 0,
		Sneak:    flags&FlagSneak != 0,
		Shoot:    flags&FlagShoot != 0,
		Weapon:   data[6],
		Yaw:      math.Float32frombits(byteOrder.Uint32(data[7:11])),
		Pitch:    math.Float32frombits(byteOrder.Uint32(data[11:15])),
		Timestamp: math.Float64frombits(byteOrder.Uint64(data[15:23])),
	}, nil
}

// EncodeInput writes an INPUT frame into buf, which must be at least
// InputSize bytes. Returns the number of bytes written.
func EncodeInput(buf []byte, in Input) int {
	var flags uint8
	if in.Forward {
		flags |= FlagForward
	}
	if in.Backward {
		flags |= FlagBackward
	}
	if in.Left {
		flags |= FlagLeft
	}
	if in.Right {
		flags |= FlagRight
	}
	if in.Jump {
		flags |= FlagJump
	}
	if in.Sprint {
		flags |= FlagSprint
	}
	if in.Sneak {
		flags |= FlagSneak
	}
	if in.Shoot {
		flags |= FlagShoot
	}

	buf[0] = TypeInput
	byteOrder.PutUint32(buf[1:5], in.Seq)
	buf[5] = flags
	buf[6] = in.Weapon
	byteOrder.PutUint32(buf[7:11], math.Float32bits(in.Yaw))
	byteOrder.PutUint32(buf[11:15], math.Float32bits(in.Pitch))
	byteOrder.PutUint64(buf[15:23], math.Float64bits(in.Timestamp))
	return InputSize
}

// DecodePing returns the client clock embedded in a PING frame:
// [u8 type][f64 clientTime]. The server echoes the frame back verbatim, so
// no separate encode is needed.
func DecodePing(data []byte) (float64, error) {
	if len(data) < 9 {
		return 0, ErrTruncated
	}
	return math.Float64frombits(byteOrder.Uint64(data[1:9])), nil
}

// EncodeWelcome writes a WELCOME frame: [u8 type][u16 playerId][u8
// tickRate][u32 mapSeed].
func EncodeWelcome(playerID uint16, tickRate uint8, mapSeed uint32) []byte {
	buf := make([]byte, WelcomeSize)
	buf[0] = TypeWelcome
	byteOrder.PutUint16(buf[1:3], playerID)
	buf[3] = tickRate
	byteOrder.PutUint32(buf[4:8], mapSeed)
	return buf
}

// PlayerEntry is one 40-byte player row inside a SNAPSHOT message.
type PlayerEntry struct {
	ID                                uint16
	X, Y, Z, VX, VY, VZ, Yaw, Pitch   float32
	Health, Weapon                    uint8
	IsShooting, IsDead                bool
	Score                             uint16
}

// HitEntry is one 6-byte hit row inside a SNAPSHOT message.
type HitEntry struct {
	ShooterID, TargetID uint16
	Damage              uint8
	Headshot            bool
}

// EncodeSnapshot writes a full SNAPSHOT frame into buf (which must be sized
// for at least SnapshotHeaderSize + len(players)*PlayerEntrySize +
// len(hits)*HitEntrySize) and returns the number of bytes written. buf is
// the room's pre-allocated scratch buffer — callers reuse it across ticks,
// never allocate one per snapshot.
func EncodeSnapshot(buf []byte, tick uint32, serverTimeMs float64, lastProcessedInput uint32, players []PlayerEntry, hits []HitEntry) int {
	buf[0] = TypeSnapshot
	byteOrder.PutUint32(buf[1:5], tick)
	byteOrder.PutUint64(buf[5:13], math.Float64bits(serverTimeMs))
	buf[13] = uint8(len(players))
	buf[14] = uint8(len(hits))
	byteOrder.PutUint32(buf[15:19], lastProcessedInput)

	offset := SnapshotHeaderSize
	for _, p := range players {
		encodePlayerEntry(buf[offset:offset+PlayerEntrySize], p)
		offset += PlayerEntrySize
	}
	for _, h := range hits {
		encodeHitEntry(buf[offset:offset+HitEntrySize], h)
		offset += HitEntrySize
	}
	return offset
}

func encodePlayerEntry(buf []byte, p PlayerEntry) {
	byteOrder.PutUint16(buf[0:2], p.ID)
	byteOrder.PutUint32(buf[2:6], math.Float32bits(p.X))
	byteOrder.PutUint32(buf[6:10], math.Float32bits(p.Y))
	byteOrder.PutUint32(buf[10:14], math.Float32bits(p.Z))
	byteOrder.PutUint32(buf[14:18], math.Float32bits(p.VX))
	byteOrder.PutUint32(buf[18:22], math.Float32bits(p.VY))
	byteOrder.PutUint32(buf[22:26], math.Float32bits(p.VZ))
	byteOrder.PutUint32(buf[26:30], math.Float32bits(p.Yaw))
	byteOrder.PutUint32(buf[30:34], math.Float32bits(p.Pitch))
	buf[34] = p.Health
	buf[35] = p.Weapon
	buf[36] = boolByte(p.IsShooting)
	buf[37] = boolByte(p.IsDead)
	byteOrder.PutUint16(buf[38:40], p.Score)
}

func encodeHitEntry(buf []byte, h HitEntry) {
	byteOrder.PutUint16(buf[0:2], h.ShooterID)
	byteOrder.PutUint16(buf[2:4], h.TargetID)
	buf[4] = h.Damage
	buf[5] = boolByte(h.Headshot)
}

// DecodeSnapshot parses a full SNAPSHOT frame, used by tests exercising the
// encode/decode round-trip law.
func DecodeSnapshot(data []byte) (tick uint32, serverTimeMs float64, lastProcessedInput uint32, players []PlayerEntry, hits []HitEntry, err error) {
	if len(data) < SnapshotHeaderSize {
		return 0, 0, 0, nil, nil, ErrTruncated
	}
	tick = byteOrder.Uint32(data[1:5])
	serverTimeMs = math.Float64frombits(byteOrder.Uint64(data[5:13]))
	playerCount := int(data[13])
	hitCount := int(data[14])
	lastProcessedInput = byteOrder.Uint32(data[15:19])

	want := SnapshotHeaderSize + playerCount*PlayerEntrySize + hitCount*HitEntrySize
	if len(data) < want {
		return 0, 0, 0, nil, nil, ErrTruncated
	}

	offset := SnapshotHeaderSize
	players = make([]PlayerEntry, playerCount)
	for i := 0; i < playerCount; i++ {
		players[i] = decodePlayerEntry(data[offset : offset+PlayerEntrySize])
		offset += PlayerEntrySize
	}
	hits = make([]HitEntry, hitCount)
	for i := 0; i < hitCount; i++ {
		hits[i] = decodeHitEntry(data[offset : offset+HitEntrySize])
		offset += HitEntrySize
	}
	return tick, serverTimeMs, lastProcessedInput, players, hits, nil
}

func decodePlayerEntry(buf []byte) PlayerEntry {
	return PlayerEntry{
		ID:         byteOrder.Uint16(buf[0:2]),
		X:          math.Float32frombits(byteOrder.Uint32(buf[2:6])),
		Y:          math.Float32frombits(byteOrder.Uint32(buf[6:10])),
		Z:          math.Float32frombits(byteOrder.Uint32(buf[10:14])),
		VX:         math.Float32frombits(byteOrder.Uint32(buf[14:18])),
		VY:         math.Float32frombits(byteOrder.Uint32(buf[18:22])),
		VZ:         math.Float32frombits(byteOrder.Uint32(buf[22:26])),
		Yaw:        math.Float32frombits(byteOrder.Uint32(buf[26:30])),
		Pitch:      math.Float32frombits(byteOrder.Uint32(buf[30:34])),
		Health:     buf[34],
		Weapon:     buf[35],
		IsShooting: buf[36] != 0,
		IsDead:     buf[37] != 0,
		Score:      byteOrder.Uint16(buf[38:40]),
	}
}

func decodeHitEntry(buf []byte) HitEntry {
	return HitEntry{
		ShooterID: byteOrder.Uint16(buf[0:2]),
		TargetID:  byteOrder.Uint16(buf[2:4]),
		Damage:    buf[4],
		Headshot:  buf[5] != 0,
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SnapshotSize returns the total byte length of a snapshot with the given
// player and hit counts, for sizing scratch buffers.
func SnapshotSize(playerCount, hitCount int) int {
	return SnapshotHeaderSize + playerCount*PlayerEntrySize + hitCount*HitEntrySize
}

// ScratchBufferSize is the size of the per-room pre-allocated snapshot
// scratch buffer: headroom for MaxPlayersScratch players and MaxHitsScratch
// hits, well above the steady-state MAX_PLAYERS_PER_ROOM=16 bound.
func ScratchBufferSize() int {
	return SnapshotSize(MaxPlayersScratch, MaxHitsScratch)
}
