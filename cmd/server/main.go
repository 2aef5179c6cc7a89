package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"airclass/config"
	"airclass/internal/service"
	"airclass/internal/transport/rest"
	"airclass/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Services. Everything is constructed here and injected; no package
	// holds server state of its own.
	identity := service.NewIdentityService(log)
	sessions := service.NewSessionService(log)
	registry := service.NewClientRegistry(log)
	rooms := service.NewRoomService(log)
	registry.SetRoomMembership(rooms)

	engine := service.NewBroadcastEngine(registry, log)
	rooms.SetBroadcaster(engine)
	gestures := service.NewGestureService(rooms, engine, log)

	wsRouter := ws.NewRouter(registry, identity, sessions, rooms, gestures, engine, log)
	wsHandler := ws.NewHandler(registry, wsRouter, log)

	router := rest.NewRouter(&rest.Container{
		Identity:       identity,
		Sessions:       sessions,
		Rooms:          rooms,
		WSHandler:      wsHandler,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("server starting")
		log.Info("endpoints:")
		log.Info("  POST /auth/login, /auth/register")
		log.Info("  GET/POST/PUT/DELETE /classroom")
		log.Info("  GET/POST /attendance, POST /attendance/code")
		log.Info("  GET/POST/PUT /request")
		log.Info("  GET/PUT /session")
		log.Info("  WS   /ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen and serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("forced shutdown")
	}

	log.Info("server exited")
}
