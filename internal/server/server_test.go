package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/glyph"
)

func testGlyphs() []glyph.Glyph {
	return []glyph.Glyph{
		{ID: "a1", Name: "Spark", Sigil: "✶", Season: glyph.Summer, Emotion: "Joy"},
		{ID: "b2", Name: "Tide", Sigil: "≈", Season: glyph.Winter, Emotion: "Grief"},
	}
}

func newTestServer(t *testing.T, glyphs []glyph.Glyph, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(glyphs, cfg, log.New(io.Discard))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeSnapshot(t *testing.T, data []byte) constellation.Snapshot {
	t.Helper()
	var snap constellation.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v\n%s", err, data)
	}
	return snap
}

func TestHandleData(t *testing.T) {
	_, ts := newTestServer(t, testGlyphs(), Config{})

	resp, data := do(t, http.MethodGet, ts.URL+"/api/constellation", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Width  float64 `json:"width"`
		Glyphs []struct {
			ID        string  `json:"id"`
			Archetype string  `json:"archetype"`
			X         float64 `json:"x"`
		} `json:"glyphs"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Width != 800 || len(out.Glyphs) != 2 {
		t.Fatalf("got width %v and %d glyphs", out.Width, len(out.Glyphs))
	}
	if out.Glyphs[0].X != 300 || out.Glyphs[1].X != 500 {
		t.Errorf("x positions = %v, %v; want 300, 500", out.Glyphs[0].X, out.Glyphs[1].X)
	}
	if out.Glyphs[1].Archetype != "The Transformer" {
		t.Errorf("archetype = %q", out.Glyphs[1].Archetype)
	}
}

func TestHandleActivate(t *testing.T) {
	var mutations atomic.Int32
	_, ts := newTestServer(t, testGlyphs(), Config{
		MutationTrigger: func(glyph.Glyph) error { mutations.Add(1); return nil },
	})

	resp, data := do(t, http.MethodPost, ts.URL+"/api/glyphs/b2/activate", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	snap := decodeSnapshot(t, data)
	if len(snap.ActiveGlyphs) != 1 || snap.ActiveGlyphs[0] != "b2" {
		t.Errorf("active = %v, want [b2]", snap.ActiveGlyphs)
	}

	do(t, http.MethodPost, ts.URL+"/api/glyphs/b2/activate", "")
	if n := mutations.Load(); n != 2 {
		t.Errorf("mutations = %d, want 2", n)
	}
}

func TestHandleActivateUnknown(t *testing.T) {
	_, ts := newTestServer(t, testGlyphs(), Config{})

	resp, data := do(t, http.MethodPost, ts.URL+"/api/glyphs/zz/activate", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "GLYPH_NOT_FOUND" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestHandleTooltip(t *testing.T) {
	_, ts := newTestServer(t, testGlyphs(), Config{})

	resp, data := do(t, http.MethodGet, ts.URL+"/api/glyphs/a1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var tip constellation.Tooltip
	if err := json.Unmarshal(data, &tip); err != nil {
		t.Fatal(err)
	}
	if tip.Name != "Spark" || tip.Archetype != "The Radiant" {
		t.Errorf("tooltip = %+v", tip)
	}

	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/glyphs/nope", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown glyph status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleMode(t *testing.T) {
	_, ts := newTestServer(t, testGlyphs(), Config{})

	resp, data := do(t, http.MethodPut, ts.URL+"/api/mode/Winter", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if snap := decodeSnapshot(t, data); snap.SeasonalMode != constellation.ModeWinter {
		t.Errorf("mode = %q", snap.SeasonalMode)
	}

	if resp, _ := do(t, http.MethodPut, ts.URL+"/api/mode/monsoon", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid mode status = %d, want 400", resp.StatusCode)
	}
}

func TestHandlePointer(t *testing.T) {
	_, ts := newTestServer(t, []glyph.Glyph{testGlyphs()[0]}, Config{})

	var out pointerResponse
	_, data := do(t, http.MethodPost, ts.URL+"/api/pointer", `{"x": 400, "y": 300}`)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.GlyphID != "a1" || out.Tooltip == nil || out.Tooltip.Name != "Spark" || out.Activated {
		t.Errorf("hover response = %+v", out)
	}

	out = pointerResponse{}
	_, data = do(t, http.MethodPost, ts.URL+"/api/pointer", `{"x": 400, "y": 300, "click": true}`)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Activated {
		t.Errorf("click response = %+v", out)
	}

	out = pointerResponse{}
	_, data = do(t, http.MethodPost, ts.URL+"/api/pointer", `{"x": 5, "y": 5}`)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.GlyphID != "" || out.Tooltip != nil {
		t.Errorf("miss response = %+v", out)
	}

	if resp, _ := do(t, http.MethodPost, ts.URL+"/api/pointer", `{`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", resp.StatusCode)
	}
}

func TestPageAndSVG(t *testing.T) {
	_, ts := newTestServer(t, testGlyphs(), Config{})

	resp, data := do(t, http.MethodGet, ts.URL+"/", "")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("page content type = %q", ct)
	}
	page := string(data)
	for _, want := range []string{`id="glyph-constellation"`, `data-activate-url="/api/glyphs/{id}/activate"`, "glyph-popup", "new WebSocket"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/constellation.svg", "")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("svg content type = %q", ct)
	}
	if !strings.HasPrefix(string(data), "<svg") {
		t.Errorf("svg body starts with %.20q", data)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	s, ts := newTestServer(t, testGlyphs(), Config{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(t.Context(), wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	do(t, http.MethodPost, ts.URL+"/api/glyphs/a1/activate", "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []string
	for len(got) < 2 {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v (got %v)", err, got)
		}
		got = append(got, msg.Type)
		switch msg.Type {
		case MsgCodex:
			if msg.Text != "🌸 Glyph Spark activated - Joy resonance initiated" {
				t.Errorf("codex text = %q", msg.Text)
			}
		case MsgGlyphActivated:
			if msg.GlyphID != "a1" {
				t.Errorf("event glyph = %q", msg.GlyphID)
			}
		}
	}
	if got[0] != MsgCodex || got[1] != MsgGlyphActivated {
		t.Errorf("message order = %v, want [codex glyphActivated]", got)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t, testGlyphs(), Config{AllowedOrigins: []string{"http://grove.example"}})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.DialContext(t.Context(), wsURL, header)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestWebSocketRefusedAfterClose(t *testing.T) {
	s, ts := newTestServer(t, testGlyphs(), Config{})
	s.hub.closeAll()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(t.Context(), wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read error = %v, want going-away close", err)
	}
	if n := s.hub.len(); n != 0 {
		t.Errorf("clients after close = %d, want 0", n)
	}
	if s.hub.add(&client{send: make(chan []byte, 1)}) {
		t.Error("closed hub accepted a client")
	}
}

func TestReloadKeepsModeAndActive(t *testing.T) {
	var mutations atomic.Int32
	s, ts := newTestServer(t, testGlyphs(), Config{
		Mode:            constellation.ModeAutumn,
		MutationTrigger: func(glyph.Glyph) error { mutations.Add(1); return nil },
	})
	do(t, http.MethodPost, ts.URL+"/api/glyphs/a1/activate", "")

	next := append(testGlyphs(), glyph.Glyph{ID: "c3", Name: "Seed", Sigil: "❀", Season: glyph.Spring, Emotion: "Renewal"})
	s.Reload(next)

	_, data := do(t, http.MethodGet, ts.URL+"/api/glyphs/c3", "")
	if !strings.Contains(string(data), "Seed") {
		t.Errorf("reloaded glyph missing: %s", data)
	}

	s.mu.Lock()
	snap := s.view.Data()
	s.mu.Unlock()
	if snap.TotalGlyphs != 3 || snap.SeasonalMode != constellation.ModeAutumn {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.ActiveGlyphs) != 1 || snap.ActiveGlyphs[0] != "a1" {
		t.Errorf("active = %v, want [a1]", snap.ActiveGlyphs)
	}
	if n := mutations.Load(); n != 1 {
		t.Errorf("reload re-triggered mutations: %d", n)
	}
}
