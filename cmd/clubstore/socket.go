package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/ffhb/clubstore/pkg/ws"
)

// socketServer exposes the per-club notification socket. Clients connect to
// /ws/{club_id} and receive the hub's change messages until they hang up.
type socketServer struct {
	server *http.Server
	app    *app
	logger *slog.Logger
}

func newSocketServer(addr string, a *app, logger *slog.Logger) *socketServer {
	s := &socketServer{app: a, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{club_id}", s.handleSubscribe)
	s.server = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *socketServer) Name() string { return "notification-socket" }

func (s *socketServer) Start(ctx context.Context) error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("notification socket failed", "error", err)
		}
	}()
	return nil
}

func (s *socketServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *socketServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("club_id")
	exists, err := s.app.PublicFacade.ClubExists(r.Context(), clubID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "unknown club", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Error("websocket accept failed", "club_id", clubID, "error", err)
		return
	}

	wrapped := ws.NewWebsocketConn(conn)
	s.app.Hub.Register(wrapped, clubID)
	defer s.app.Hub.Unregister(wrapped)

	// Drain client frames; the socket is server-push only. Returning when
	// the read fails tears the connection down.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}
