// Package server exposes the leader engine over HTTP on a unix socket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/internal/daemon/engine"
	"github.com/grovetools/leader/pkg/daemon"
	"github.com/grovetools/leader/version"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + 10*time.Second
)

// Server serves the daemon API.
type Server struct {
	logger   *logrus.Entry
	server   *http.Server
	engine   *engine.Engine
	upgrader websocket.Upgrader
}

// New creates a Server for eng.
func New(logger *logrus.Entry, eng *engine.Engine) *Server {
	return &Server{
		logger: logger,
		engine: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The socket is private to the user; there is no browser origin to check.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(daemon.RouteHealth, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc(daemon.RouteStatus, s.method(http.MethodGet, s.handleStatus))
	mux.HandleFunc(daemon.RouteTable, s.method(http.MethodGet, s.handleTable))
	mux.HandleFunc(daemon.RouteActivate, s.method(http.MethodPost, s.handleActivate))
	mux.HandleFunc(daemon.RouteKey, s.method(http.MethodPost, s.handleKey))
	mux.HandleFunc(daemon.RouteEnd, s.method(http.MethodPost, s.handleEnd))
	mux.HandleFunc(daemon.RouteReload, s.method(http.MethodPost, s.handleReload))
	mux.HandleFunc(daemon.RouteEvents, s.handleEvents)
	return mux
}

// ListenAndServe serves on socketPath until Shutdown is called.
func (s *Server) ListenAndServe(socketPath string) error {
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) method(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, errors.InvalidInput("method not allowed"))
			return
		}
		h(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg, loadedAt := s.engine.Config()
	started := s.engine.StartedAt()

	status := daemon.Status{
		PID:            os.Getpid(),
		Version:        version.GetInfo().Version,
		StartedAt:      started,
		Uptime:         strings.TrimSpace(humanize.RelTime(started, time.Now(), "", "")),
		ConfigPath:     s.engine.ConfigPath(),
		ConfigLoadedAt: loadedAt,
		Diagnostics:    s.engine.Diagnostics(),
		Notifier:       s.engine.NotifierName(),
		State:          s.engine.Machine().Snapshot(),
		History:        s.engine.Dispatcher().History(),
	}
	if cfg != nil {
		status.Timeout = cfg.Leader.Timeout.D()
		status.SettleDelay = cfg.Leader.SettleDelay.D()
	}
	if err := s.engine.LastError(); err != nil {
		status.ConfigError = errors.UserMessage(err)
	}
	writeJSON(w, status)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, daemon.Table{
		Entries:     s.engine.Machine().Table().Entries(),
		Diagnostics: s.engine.Diagnostics(),
	})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	m := s.engine.Machine()
	m.Activate()
	writeJSON(w, m.Snapshot())
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req daemon.KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("invalid request body"))
		return
	}
	ch, size := utf8.DecodeRuneInString(req.Key)
	if size == 0 || ch == utf8.RuneError {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("key must be a non-empty string"))
		return
	}

	m := s.engine.Machine()
	m.Char(ch)
	writeJSON(w, m.Snapshot())
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	m := s.engine.Machine()
	m.End()
	writeJSON(w, m.Snapshot())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reload(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, daemon.ReloadResult{
		ConfigPath:  s.engine.ConfigPath(),
		Entries:     s.engine.Machine().Table().Len(),
		Diagnostics: s.engine.Diagnostics(),
	})
}

// handleEvents streams machine events as JSON websocket messages.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so the client sees every
	// event that happens after its dial returns.
	m := s.engine.Machine()
	events, unsubscribe := m.Subscribe()
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()
	s.logger.Debug("Event stream client connected")

	// Reads only serve to notice the client going away and to handle pongs.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			s.logger.Debug("Event stream client disconnected")
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.WithError(err).Debug("Failed to write event")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(daemon.ErrorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
