// Package http provides the bridge server used by launcher extensions and
// other local clients, plus the HTTP fetcher used for metadata extraction.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/universalpocket/pocket"
)

// ShutdownTimeout is how long Close waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// heartbeatInterval spaces the SSE keep-alive comments that prevent
// intermediaries from reaping idle event streams.
const heartbeatInterval = 30 * time.Second

// Server is the local bridge: a small JSON API over the save service plus
// an SSE stream of content events.
type Server struct {
	server *http.Server
	router chi.Router
	logger *slog.Logger

	saver  pocket.SaveService
	store  pocket.ContentService
	broker *Broker

	Addr string
}

// NewServer creates the bridge server. The broker may be shared with
// other event producers; if nil a private one is created.
func NewServer(saver pocket.SaveService, store pocket.ContentService, broker *Broker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if broker == nil {
		broker = NewBroker(logger)
	}

	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		saver:  saver,
		store:  store,
		broker: broker,
	}
	s.server = &http.Server{Handler: s.router}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/save", s.handleSave)
		r.Get("/content", s.handleListContent)
		r.Get("/content/{id}", s.handleGetContent)
		r.Delete("/content/{id}", s.handleDeleteContent)
		r.Get("/health", s.handleHealth)
		r.Get("/events", s.handleEvents)
		r.Get("/queue", s.handleQueueStatus)
		r.Post("/queue/process", s.handleQueueProcess)
		r.Get("/stats", s.handleStats)
	})

	return s
}

// Handler exposes the router, mainly for tests via httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Open begins listening on the given address. It returns once the
// listener is bound; request serving continues in the background.
func (s *Server) Open(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.Addr = ln.Addr().String()

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("bridge server failed", "err", err)
		}
	}()

	s.logger.Info("bridge server listening", "addr", s.Addr)
	return nil
}

// Close gracefully shuts down the server and disconnects SSE clients.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.broker.Close()
	return err
}

// handleSave persists a save request and broadcasts the new item.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req pocket.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, pocket.Errorf(pocket.EINVALID, "Invalid JSON body."))
		return
	}
	if req.Source == "" {
		// The bridge primarily serves the launcher extension.
		req.Source = pocket.SourceRaycast
	}

	item, err := s.saver.SaveContent(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      item.ID,
		"message": fmt.Sprintf("Saved %q", item.Title),
	})

	s.broker.Publish(pocket.Event{Type: pocket.EventContentAdded, Data: item})
}

// handleListContent lists items newest first, honoring type, search and
// tag filters.
func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	var filter pocket.ContentFilter
	if v := r.URL.Query().Get("type"); v != "" {
		contentType := pocket.ContentType(v)
		filter.Type = &contentType
	}
	if v := r.URL.Query().Get("q"); v != "" {
		filter.Search = v
	}
	if v := r.URL.Query().Get("tag"); v != "" {
		filter.Tags = []string{v}
	}

	items, err := s.saver.FindContent(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []*pocket.ContentItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	item, err := s.saver.FindContentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.saver.DeleteContent(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Content deleted.",
	})

	s.broker.Publish(pocket.Event{Type: pocket.EventContentDeleted, Data: map[string]string{"id": id}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"connections": s.broker.SubscriberCount(),
	})
}

// handleEvents streams broker events over SSE until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, pocket.Errorf(pocket.EINTERNAL, "Streaming unsupported."))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client the stream is live before the first event.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	events, unsubscribe := s.broker.Subscribe()
	defer unsubscribe()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Warn("failed to encode event", "type", event.Type, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.saver.QueueStatus())
}

func (s *Server) handleQueueProcess(w http.ResponseWriter, r *http.Request) {
	if err := s.saver.ProcessOfflineQueue(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Queue processed.",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}

// writeError maps application error codes onto HTTP statuses and writes
// the standard error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := pocket.ErrorCode(err)
	status := statusFromCode(code)

	if status >= 500 {
		s.logger.Error("request failed", "code", code, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": pocket.ErrorMessage(err),
	})
}

func statusFromCode(code string) int {
	switch code {
	case pocket.EINVALID:
		return http.StatusBadRequest
	case pocket.ENOTFOUND:
		return http.StatusNotFound
	case pocket.ECONFLICT:
		return http.StatusConflict
	case pocket.ESTORAGELIMIT:
		return http.StatusInsufficientStorage
	case pocket.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
