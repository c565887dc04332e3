package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/pipeline"
	"github.com/matzehuels/constellation/pkg/render/sink"
)

// ActivateURL is the activation endpoint template embedded in the page SVG.
const ActivateURL = "/api/glyphs/{id}/activate"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Glyph Constellation</title>
  <style>
    body { margin: 0; background: #0b0b1a; color: #c9c3d9; font-family: Georgia, serif; }
    #glyph-constellation { width: 100vw; height: 85vh; }
    #codex { height: 15vh; overflow-y: auto; margin: 0; padding: 0.5em 1em; list-style: none; font-size: 13px; }
  </style>
</head>
<body>
  <div id="{{.ContainerID}}" data-seasonal-mode="{{.Mode}}">{{.SVG}}</div>
  <ul id="codex"></ul>
  <script>
    (function () {
      const codex = document.getElementById('codex');
      const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      const ws = new WebSocket(proto + location.host + '/ws');
      ws.onmessage = function (evt) {
        const msg = JSON.parse(evt.data);
        switch (msg.type) {
        case 'glyphActivated': {
          const g = document.querySelector('.glyph-group[data-glyph-id="' + CSS.escape(msg.glyphId) + '"]');
          if (g) g.classList.add('active');
          break;
        }
        case 'codex': {
          const li = document.createElement('li');
          li.textContent = msg.text;
          codex.prepend(li);
          break;
        }
        case 'registryReloaded':
        case 'seasonalModeChanged':
          location.reload();
          break;
        }
      };
    })();
  </script>
</body>
</html>
`))

type pageData struct {
	ContainerID string
	Mode        constellation.SeasonalMode
	SVG         template.HTML
}

// pointerRequest is a pointer position in frame coordinates.
type pointerRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Click bool    `json:"click"`
}

type pointerResponse struct {
	GlyphID   string                 `json:"glyphId,omitempty"`
	Activated bool                   `json:"activated"`
	Tooltip   *constellation.Tooltip `json:"tooltip,omitempty"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	svg := s.renderSVGLocked()
	mode := s.view.Data().SeasonalMode
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		ContainerID: ContainerID,
		Mode:        mode,
		SVG:         template.HTML(svg), //nolint:gosec
	})
	if err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	svg := s.renderSVGLocked()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) renderSVGLocked() []byte {
	opts := append(pipeline.SVGOptions(s.view, true), sink.WithActivateURL(ActivateURL))
	return sink.RenderSVG(s.graph, opts...)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !s.hub.add(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	s.logger.Debug("websocket connected", "remote", r.RemoteAddr, "clients", s.hub.len())

	go s.hub.writePump(c)
	go s.hub.readPump(c)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := sink.RenderJSON(s.view.Data(), s.view.Frame())
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "encode constellation"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	t, ok := s.view.TooltipFor(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, glyphNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.view.TooltipFor(id)
	if ok {
		s.view.Activate(id)
	}
	snap := s.view.Data()
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, glyphNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	mode, err := constellation.ParseSeasonalMode(chi.URLParam(r, "mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	s.view.UpdateSeasonalMode(mode)
	snap := s.view.Data()
	s.mu.Unlock()

	s.hub.broadcast(Message{Type: MsgModeChanged, Text: string(mode)})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode pointer"))
		return
	}

	var resp pointerResponse
	s.mu.Lock()
	if req.Click {
		resp.Activated = s.view.ClickAt(req.X, req.Y)
	} else {
		s.view.PointerMove(req.X, req.Y)
	}
	resp.GlyphID, _ = s.view.HitTest(req.X, req.Y)
	if t, ok := s.view.Tooltip(); ok {
		resp.Tooltip = &t
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func glyphNotFound(id string) error {
	return errors.New(errors.ErrCodeGlyphNotFound, "glyph %q not found", id)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": ..., "code": ...}.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
