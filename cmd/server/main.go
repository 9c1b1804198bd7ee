// Command server wires configuration, the room supervisor, the websocket
// transport, and the stats persistence collaborator into one process and
// runs until SIGINT/SIGTERM.
//
// Grounded on NickGardi-GoServerGames's own cmd/server/main.go for the shape
// of the wiring (read config, build the dependency graph, register HTTP
// handlers, listen), replacing its single-room password-gated login with a
// multi-room, JOIN-over-the-binary-stream admission flow, and its bare
// http.ListenAndServe with an errgroup-managed listener so SIGINT/SIGTERM
// bring every room's tick goroutine down together (spec §6 "CLI / signals").
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"arenafps/internal/config"
	"arenafps/internal/room"
	"arenafps/internal/roomsup"
	"arenafps/internal/stats"
	"arenafps/internal/transport"
)

// mapSize is spec §4.1's fixed MAP_SIZE; it is not part of the §6
// configuration surface.
const mapSize = 50

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	store, err := stats.Open(cfg.DatabaseURL, nil)
	if err != nil {
		log.Printf("server: failed to open stats store: %v", err)
		return 1
	}
	defer store.Close()

	roomCfg := room.Config{
		TickRate:   cfg.TickRate,
		MapSize:    mapSize,
		MaxPlayers: cfg.MaxPlayersPerRoom,
		MaxLagMs:   cfg.MaxLagCompensationMs,
		OnKill: func(killerUserID, victimUserID int64) {
			if killerUserID == 0 || victimUserID == 0 {
				return
			}
			go store.RecordKill(killerUserID, victimUserID)
		},
	}
	sup := roomsup.New(roomCfg, cfg.MapSeed, cfg.MaxRooms, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", transport.HandleWebSocket(sup, nil))
	mux.HandleFunc("/health", transport.HealthHandler(sup))

	srv := &http.Server{Addr: cfg.Host + ":" + cfg.Port, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("server: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("server: received %s, shutting down", sig)
	case <-gctx.Done():
	}

	cancel()
	sup.Stop()
	srv.Shutdown(context.Background())

	if err := g.Wait(); err != nil {
		log.Printf("server: fatal error: %v", err)
		return 1
	}
	return 0
}
