// Package server hosts a live constellation in the browser.
//
// The server owns one [constellation.View] built over an in-memory
// document. Browser clicks and pointer positions are routed to the view
// through a small JSON API; activations, codex lines and reloads are pushed
// to every page over a websocket. All view access is serialized by one
// mutex.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/scene"
)

// ContainerID is the container the page view renders into.
const ContainerID = "glyph-constellation"

// Config configures a [Server].
type Config struct {
	Addr           string
	Frame          layout.Frame
	Mode           constellation.SeasonalMode
	AllowedOrigins []string

	// MutationTrigger is passed to the view; nil disables mutations.
	MutationTrigger constellation.MutationTrigger
}

// Server is the preview host.
type Server struct {
	cfg      Config
	logger   *log.Logger
	hub      *hub
	upgrader websocket.Upgrader
	router   chi.Router

	mu    sync.Mutex
	view  *constellation.View
	graph *scene.Graph
}

// New builds the initial view and the routes.
func New(glyphs []glyph.Glyph, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Frame == (layout.Frame{}) {
		cfg.Frame = layout.DefaultFrame()
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		hub:      newHub(logger),
		upgrader: newUpgrader(cfg.AllowedOrigins),
	}
	s.mu.Lock()
	s.buildLocked(glyphs)
	s.mu.Unlock()
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// buildLocked replaces the view with a fresh one over glyphs. The seasonal
// mode and active set carry over.
func (s *Server) buildLocked(glyphs []glyph.Glyph) {
	mode := s.cfg.Mode
	var active []string
	if s.view != nil {
		snap := s.view.Data()
		mode, active = snap.SeasonalMode, snap.ActiveGlyphs
		s.view.Dispose()
	}

	doc := scene.NewDocument(ContainerID)
	s.view = constellation.New(doc, ContainerID, glyphs,
		constellation.WithLogger(s.logger),
		constellation.WithFrame(s.cfg.Frame),
		constellation.WithMutationTrigger(s.cfg.MutationTrigger),
		constellation.WithCodex(func(msg string) {
			s.logger.Info(msg)
			s.hub.broadcast(Message{Type: MsgCodex, Text: msg})
		}),
		constellation.WithListener(func(e constellation.Event) {
			s.hub.broadcast(Message{Type: MsgGlyphActivated, GlyphID: e.GlyphID, Data: e})
		}),
	)
	s.graph, _ = doc.Graph(ContainerID)

	if mode != "" && mode != constellation.ModeAuto {
		s.view.UpdateSeasonalMode(mode)
	}
	// Restore markers without re-notifying collaborators.
	for _, id := range active {
		s.view.MarkActive(id)
	}
}

// Reload swaps in a new registry and tells every page to refresh.
func (s *Server) Reload(glyphs []glyph.Glyph) {
	s.mu.Lock()
	s.buildLocked(glyphs)
	snap := s.view.Data()
	s.mu.Unlock()

	s.logger.Info("constellation reloaded", "glyphs", len(glyphs))
	s.hub.broadcast(Message{Type: MsgReloaded, Data: snap})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving constellation", "addr", "http://"+s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.hub.closeAll()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.view.Dispose()
	s.mu.Unlock()
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handlePage)
	r.Get("/constellation.svg", s.handleSVG)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/constellation", s.handleData)
		r.Get("/glyphs/{id}", s.handleTooltip)
		r.Post("/glyphs/{id}/activate", s.handleActivate)
		r.Put("/mode/{mode}", s.handleMode)
		r.Post("/pointer", s.handlePointer)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
