// Package web exposes the HTTP surface of Daybreak: reading the current
// message and forcing a regeneration.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/daybreak-home/daybreak/internal/config"
	"github.com/daybreak-home/daybreak/internal/store"
)

// Generator runs the full briefing pipeline. Satisfied by
// *briefing.Generator.
type Generator interface {
	Generate(ctx context.Context) (store.Message, error)
}

// Server is the HTTP server for the message endpoints.
type Server struct {
	mode      config.Mode
	generator Generator
	store     store.Store
	logger    *slog.Logger
	server    *http.Server
}

// NewServer creates the HTTP server. In cached mode GET / serves the
// store; in on-demand mode it runs the pipeline for every request.
// GET /write_message forces a regeneration in either mode.
func NewServer(addr string, mode config.Mode, generator Generator, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		mode:      mode,
		generator: generator,
		store:     st,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleMessage)
	mux.HandleFunc("GET /write_message", s.handleWriteMessage)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.server.Addr, "mode", s.mode)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the route handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleMessage serves GET /.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if s.mode == config.ModeCached {
		msg, err := s.store.Read()
		if errors.Is(err, store.ErrEmpty) {
			http.Error(w, "no message generated yet", http.StatusNotFound)
			return
		}
		if err != nil {
			s.logger.Error("read message failed", "error", err)
			http.Error(w, "failed to read message", http.StatusInternalServerError)
			return
		}
		writeText(w, msg.Text)
		return
	}

	msg, err := s.generator.Generate(r.Context())
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		http.Error(w, "failed to generate message", http.StatusBadGateway)
		return
	}
	s.logger.Info("message", "text", msg.Text)
	writeText(w, msg.Text)
}

// handleWriteMessage serves GET /write_message: run the pipeline now,
// persist the result, return it.
func (s *Server) handleWriteMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.generator.Generate(r.Context())
	if err != nil {
		s.logger.Error("forced generation failed", "error", err)
		http.Error(w, "failed to generate message", http.StatusBadGateway)
		return
	}

	if err := s.store.Write(msg); err != nil {
		s.logger.Error("persist message failed", "error", err)
		http.Error(w, "failed to store message", http.StatusInternalServerError)
		return
	}

	writeText(w, msg.Text)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
