// Package weapon holds the fixed weapon table (spec §3). Indices are part
// of the wire contract — never reorder this table.
package weapon

// Definition is one row of the weapon table.
type Definition struct {
	Name        string
	Damage      uint8
	FireRateMs  int64
	Range       float32
	Spread      float32
	BulletCount int
}

const (
	Pistol  = 0
	SMG     = 1
	Rifle   = 2
	Shotgun = 3
)

// Table is indexed 0..3 exactly as spec §3 lists it.
var Table = [4]Definition{
	Pistol:  {Name: "Pistol", Damage: 25, FireRateMs: 400, Range: 100, Spread: 0.02, BulletCount: 1},
	SMG:     {Name: "SMG", Damage: 15, FireRateMs: 100, Range: 50, Spread: 0.08, BulletCount: 1},
	Rifle:   {Name: "Rifle", Damage: 35, FireRateMs: 150, Range: 150, Spread: 0.01, BulletCount: 1},
	Shotgun: {Name: "Shotgun", Damage: 15, FireRateMs: 800, Range: 20, Spread: 0.15, BulletCount: 8},
}

// Get returns the definition for idx, clamping out-of-range indices to
// Pistol rather than panicking — a malformed INPUT weapon byte must never
// crash a room (spec §7).
func Get(idx uint8) Definition {
	if int(idx) >= len(Table) {
		return Table[Pistol]
	}
	return Table[idx]
}
