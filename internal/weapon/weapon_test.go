package weapon

import "testing"

func TestGetReturnsTableEntry(t *testing.T) {
	d := Get(Rifle)
	if d.Name != "Rifle" || d.Damage != 35 {
		t.Fatalf("got %+v, want Rifle/35", d)
	}
}

func TestGetClampsOutOfRangeToPistol(t *testing.T) {
	d := Get(200)
	if d.Name != "Pistol" {
		t.Fatalf("got %+v, want Pistol fallback", d)
	}
}

func TestShotgunFiresEightBullets(t *testing.T) {
	if Table[Shotgun].BulletCount != 8 {
		t.Fatalf("got %d, want 8", Table[Shotgun].BulletCount)
	}
}
