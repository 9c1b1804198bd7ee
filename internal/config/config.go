// Package config loads the environment-variable configuration surface
// (spec §6), grounded on garbhj-motion-demo/server/config/config.go:
// load a local .env with godotenv ahead of os.Getenv, falling back to typed
// defaults on anything empty or malformed.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every tunable named in spec §6, each with its stated default.
type Config struct {
	Port                string
	Host                string
	TickRate             int
	MaxPlayersPerRoom    int
	MaxRooms             int
	MaxLagCompensationMs int64
	MapSeed              uint32
	DatabaseURL          string
}

// Load reads a .env file if present (its absence is not an error — only a
// convenience for local runs, exactly as garbhj-motion-demo's InitConfig
// treats it) and then env vars, falling back to spec §6's defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded (%v), using process environment only", err)
	}

	return Config{
		Port:                 getString("PORT", "9001"),
		Host:                 getString("HOST", "0.0.0.0"),
		TickRate:             getInt("TICK_RATE", 60),
		MaxPlayersPerRoom:    getInt("MAX_PLAYERS_PER_ROOM", 16),
		MaxRooms:             getInt("MAX_ROOMS", 10),
		MaxLagCompensationMs: getInt64("MAX_LAG_COMPENSATION", 400),
		MapSeed:              getUint32("MAP_SEED", 12345),
		DatabaseURL:          getString("DATABASE_URL", ""),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getUint32(key string, fallback uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("config: %s=%q is not an unsigned integer, using default %d", key, v, fallback)
		return fallback
	}
	return uint32(n)
}
