package config

import (
	"os"
	"testing"
)

func TestLoadDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("TICK_RATE")
	os.Unsetenv("MAP_SEED")

	cfg := Load()
	if cfg.Port != "9001" {
		t.Fatalf("got port %q, want 9001", cfg.Port)
	}
	if cfg.TickRate != 60 {
		t.Fatalf("got tickRate %d, want 60", cfg.TickRate)
	}
	if cfg.MapSeed != 12345 {
		t.Fatalf("got mapSeed %d, want 12345", cfg.MapSeed)
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	os.Setenv("TICK_RATE", "30")
	defer os.Unsetenv("TICK_RATE")

	cfg := Load()
	if cfg.TickRate != 30 {
		t.Fatalf("got tickRate %d, want 30", cfg.TickRate)
	}
}

func TestLoadFallsBackOnMalformedValue(t *testing.T) {
	os.Setenv("MAX_ROOMS", "not-a-number")
	defer os.Unsetenv("MAX_ROOMS")

	cfg := Load()
	if cfg.MaxRooms != 10 {
		t.Fatalf("got maxRooms %d, want default 10 on malformed input", cfg.MaxRooms)
	}
}
