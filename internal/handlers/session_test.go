package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"hexquiz/internal/config"
	"hexquiz/internal/game"
	"hexquiz/internal/quiz"
	"hexquiz/internal/viewmodel"
)

func newTestServer(t *testing.T) (*game.Store, http.Handler) {
	t.Helper()
	b, err := config.Default().BuildBoard()
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	store := game.NewStore(b, quiz.Default(), game.DefaultSettings())
	r := chi.NewRouter()
	NewHomeHandler(store).RegisterRoutes(r)
	sessions := NewSessionHandler(store, "https://quiz.example")
	sessions.RegisterRoutes(r)
	sessions.RegisterStreams(r)
	return store, r
}

func do(h http.Handler, method, path, body string, script bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if script {
		req.Header.Set("X-Hexquiz", "1")
		req.Header.Set("Content-Type", "application/json")
	} else if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loadAll(t *testing.T, h http.Handler, sess *game.Session) {
	t.Helper()
	for _, u := range sess.Assets().URLs() {
		body, _ := json.Marshal(assetRequest{URL: u, OK: true})
		if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/asset", string(body), true); rec.Code != http.StatusNoContent {
			t.Fatalf("asset %s: status %d", u, rec.Code)
		}
	}
}

func TestCreateSessionRedirects(t *testing.T) {
	store, h := newTestServer(t)
	rec := do(h, http.MethodPost, "/sessions", "", false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/s/") {
		t.Fatalf("Location = %q", loc)
	}
	if _, ok := store.GetSession(strings.TrimPrefix(loc, "/s/")); !ok {
		t.Error("redirect points at unknown session")
	}
}

func TestSessionPage(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()

	rec := do(h, http.MethodGet, "/s/"+sess.ID, "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`id="board"`, `id="dialog"`, `id="loader"`, "https://quiz.example/s/" + sess.ID, "data-preload="} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	if rec := do(h, http.MethodGet, "/s/missing", "", false); rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}
}

func TestStartWaitsForAssets(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()

	rec := do(h, http.MethodPost, "/s/"+sess.ID+"/start", "", true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("start before load = %d, want 409", rec.Code)
	}

	loadAll(t, h, sess)
	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/start", "", true); rec.Code != http.StatusNoContent {
		t.Fatalf("start after load = %d, want 204", rec.Code)
	}
	// Plain form posts always land back on the page.
	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/start", "", false); rec.Code != http.StatusSeeOther {
		t.Fatalf("form start = %d, want 303", rec.Code)
	}
}

func TestPointerClickOpensDialog(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()
	loadAll(t, h, sess)
	do(h, http.MethodPost, "/s/"+sess.ID+"/start", "", true)

	idx := sess.Board().Selectable()[0]
	for _, action := range []string{"down", "up"} {
		body := `{"action":"` + action + `","kind":"mouse","index":` + itoa(idx) + `,"screen":{"x":200,"y":150}}`
		if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/pointer", body, true); rec.Code != http.StatusNoContent {
			t.Fatalf("pointer %s = %d", action, rec.Code)
		}
	}

	rec := do(h, http.MethodGet, "/s/"+sess.ID+"/state", "", false)
	var st viewmodel.State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !st.Dialog.Mounted {
		t.Fatal("dialog not mounted after click")
	}
	if st.Dialog.Phase != "opening" && st.Dialog.Phase != "open" {
		t.Errorf("phase = %q", st.Dialog.Phase)
	}

	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/next", "", true); rec.Code != http.StatusConflict {
		t.Errorf("next without answer = %d, want 409", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/answer", "key=Z", false); rec.Code != http.StatusSeeOther {
		t.Errorf("form answer = %d, want 303", rec.Code)
	}
	key := st.Dialog.Options[0].Key
	req := httptest.NewRequest(http.MethodPost, "/s/"+sess.ID+"/answer", strings.NewReader("key="+key))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Hexquiz", "1")
	ans := httptest.NewRecorder()
	h.ServeHTTP(ans, req)
	if ans.Code != http.StatusNoContent {
		t.Fatalf("answer = %d, want 204", ans.Code)
	}
	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/next", "", true); rec.Code != http.StatusNoContent {
		t.Errorf("next after answer = %d, want 204", rec.Code)
	}
}

func TestPointerRejectsBadInput(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()

	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/pointer", `{"action":"wiggle"}`, true); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d, want 400", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/pointer", `{`, true); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", rec.Code)
	}
}

func TestViewportAndFragments(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()

	if rec := do(h, http.MethodPost, "/s/"+sess.ID+"/viewport", `{"width":390,"height":844,"visualHeight":700}`, true); rec.Code != http.StatusNoContent {
		t.Fatalf("viewport = %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/s/"+sess.ID+"/board", "", false); !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("board fragment has no svg")
	}
	if rec := do(h, http.MethodGet, "/s/"+sess.ID+"/dialog", "", false); !strings.Contains(rec.Body.String(), `data-mounted="false"`) {
		t.Error("closed dialog should render an empty holder")
	}
}

func TestExpireSound(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, http.MethodGet, "/audio/expire.wav", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "RIFF") {
		t.Error("body is not a RIFF file")
	}
}

func TestStreamSendsInitialFragments(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/s/"+sess.ID+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	seen := map[string]bool{}
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
			seen[name] = true
		}
		if seen["loader"] && seen["board"] && seen["dialog"] {
			return
		}
	}
	t.Fatalf("stream ended before initial fragments, saw %v", seen)
}

func TestSocketSendsStateAndHandlesMessages(t *testing.T) {
	store, h := newTestServer(t)
	sess := store.CreateSession()
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/s/" + sess.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Type    string          `json:"type"`
		Payload viewmodel.State `json:"payload"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.Type != "state" || first.Payload.Board.SessionID != sess.ID {
		t.Fatalf("first message = %+v", first.Type)
	}

	if err := conn.WriteJSON(map[string]string{"type": "start"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply struct {
		Type    string       `json:"type"`
		Payload errorPayload `json:"payload"`
	}
	for reply.Type == "" || reply.Type == "state" {
		reply.Type = ""
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read reply: %v", err)
		}
	}
	if reply.Type != "error" || reply.Payload.Code != "start" {
		t.Errorf("reply = %+v, want start error while loading", reply)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
