package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"barrage/application"
	"barrage/domain"
	"barrage/server"
	"barrage/server/arena"
	"barrage/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	loadout := strings.Split(utils.GetEnvDefault("LOADOUT", "bolt,saber,spark"), ",")
	enemies, err := strconv.Atoi(utils.GetEnvDefault("ENEMIES", "24"))
	if err != nil {
		log.Fatalf("invalid ENEMIES: %v", err)
	}

	library, err := application.DefaultLibrary()
	if err != nil {
		log.Fatalf("weapon library error: %v", err)
	}

	field := arena.NewField(1280, 720, enemies, uint64(time.Now().UnixNano()))
	feed := domain.NewFeedSink(4096)

	bus := domain.NewBus()
	bus.Attach(feed)

	manager := application.NewManager(library, field, field, field, bus, application.ManagerOptions{
		MaxWeapons:  6,
		Seed:        uint64(time.Now().UnixNano()),
		Coordinator: application.DefaultCoordinatorOptions(),
	})

	keys := make([]domain.WeaponKey, 0, len(loadout))
	for _, key := range loadout {
		keys = append(keys, domain.WeaponKey(strings.TrimSpace(key)))
	}
	if err := manager.SetLoadout(ctx, keys); err != nil {
		log.Fatalf("loadout error: %v", err)
	}

	a := arena.New(field, manager, feed)
	go func() {
		if err := a.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "arena error", "err", err)
		}
	}()

	s := server.NewServer(fmt.Sprintf("%s:%s", addr, port), server.Route(a))
	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", addr+":"+port, "loadout", loadout)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	manager.Destroy()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete")
}
