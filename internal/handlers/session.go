package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hexquiz/internal/game"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/interaction"
	"hexquiz/internal/modal"
	"hexquiz/internal/quiz"
	"hexquiz/internal/viewmodel"
	"hexquiz/views/components"
	"hexquiz/views/pages"
)

const maxBody = 8 << 10

type SessionHandler struct {
	store   *game.Store
	baseURL string
}

// NewSessionHandler serves one session's pages and actions. baseURL, when
// set, is used for share links instead of the request host.
func NewSessionHandler(store *game.Store, baseURL string) *SessionHandler {
	return &SessionHandler{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

// RegisterRoutes mounts the request/response routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/s/{id}", h.page)
	r.Get("/s/{id}/state", h.state)
	r.Get("/s/{id}/board", h.boardFragment)
	r.Get("/s/{id}/dialog", h.dialogFragment)
	r.Post("/s/{id}/start", h.start)
	r.Post("/s/{id}/pointer", h.pointer)
	r.Post("/s/{id}/answer", h.answer)
	r.Post("/s/{id}/next", h.next)
	r.Post("/s/{id}/close", h.close)
	r.Post("/s/{id}/viewport", h.viewport)
	r.Post("/s/{id}/asset", h.asset)
}

// RegisterStreams mounts the long-lived routes, which must not sit behind a
// request timeout.
func (h *SessionHandler) RegisterStreams(r chi.Router) {
	r.Get("/s/{id}/stream", h.stream)
	r.Get("/s/{id}/ws", h.socket)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := h.store.GetSession(id)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) page(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := sess.Snapshot(time.Now().UTC())
	data := viewmodel.SessionPage{
		Title:     "Hexquiz",
		SessionID: sess.ID,
		ShareURL:  h.shareURL(r, sess.ID),
		Board:     buildBoard(snap),
		Dialog:    buildDialog(snap),
		Loader:    buildLoader(snap, sess.Assets().URLs()),
	}
	render(w, r, pages.SessionPage(data))
}

func (h *SessionHandler) state(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildState(sess.Snapshot(time.Now().UTC()), nil))
}

func (h *SessionHandler) boardFragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	render(w, r, components.Board(buildBoard(sess.Snapshot(time.Now().UTC()))))
}

func (h *SessionHandler) dialogFragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	render(w, r, components.Dialog(buildDialog(sess.Snapshot(time.Now().UTC()))))
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.finish(w, r, sess, sess.Start())
}

type pointerRequest struct {
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	Index  *int           `json:"index"`
	Screen *hexgeom.Point `json:"screen"`
	Board  *hexgeom.Point `json:"board"`
	Button int            `json:"button"`
}

var missingPoint = hexgeom.Point{X: math.NaN(), Y: math.NaN()}

func (p pointerRequest) event(at time.Time) game.PointerEvent {
	ev := game.PointerEvent{
		Action: game.PointerAction(p.Action),
		Kind:   interaction.ParseKind(p.Kind),
		Index:  -1,
		Screen: missingPoint,
		Board:  missingPoint,
		Button: p.Button,
		Time:   at,
	}
	if p.Index != nil {
		ev.Index = *p.Index
	}
	if p.Screen != nil {
		ev.Screen = *p.Screen
	}
	if p.Board != nil {
		ev.Board = *p.Board
	}
	return ev
}

func (h *SessionHandler) pointer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req pointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	h.finish(w, r, sess, sess.Pointer(req.event(time.Now().UTC())))
}

func (h *SessionHandler) answer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	key := strings.TrimSpace(r.FormValue("key"))
	h.finish(w, r, sess, sess.SelectAnswer(key))
}

func (h *SessionHandler) next(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.finish(w, r, sess, sess.Next())
}

func (h *SessionHandler) close(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Close()
	h.finish(w, r, sess, nil)
}

func (h *SessionHandler) viewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var v modal.Viewport
	if err := decodeJSON(w, r, &v); err != nil {
		return
	}
	sess.SetViewport(v)
	h.finish(w, r, sess, nil)
}

type assetRequest struct {
	URL string `json:"url"`
	OK  bool   `json:"ok"`
}

func (h *SessionHandler) asset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req assetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if !req.OK {
		log.Printf("asset failed session=%s url=%q", sess.ID, req.URL)
	}
	sess.ReportAsset(req.URL, req.OK)
	h.finish(w, r, sess, nil)
}

// finish wakes the frame loop and answers the action: JSON for script
// callers, a redirect back to the page for plain form posts.
func (h *SessionHandler) finish(w http.ResponseWriter, r *http.Request, sess *game.Session, err error) {
	h.store.EnsureFrameLoop(sess.ID)
	if err != nil {
		log.Printf("action rejected session=%s path=%s err=%v", sess.ID, r.URL.Path, err)
	}
	if !fromScript(r) {
		http.Redirect(w, r, "/s/"+sess.ID, http.StatusSeeOther)
		return
	}
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownAction), errors.Is(err, quiz.ErrUnknownOption):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNotReady), errors.Is(err, game.ErrDialogClosed),
		errors.Is(err, game.ErrNoAnswer), errors.Is(err, quiz.ErrLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fromScript(r *http.Request) bool {
	return r.Header.Get("X-Hexquiz") != "" || strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return err
	}
	return nil
}

func (h *SessionHandler) shareURL(r *http.Request, id string) string {
	if h.baseURL != "" {
		return h.baseURL + "/s/" + id
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/s/" + id
}

func (h *SessionHandler) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub, ok := h.store.Broadcaster(sess.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	send := func(kinds ...string) {
		snap := sess.Snapshot(time.Now().UTC())
		for _, kind := range kinds {
			switch kind {
			case game.EventBoard:
				writeSSE(w, "board", renderToString(r, components.Board(buildBoard(snap))))
			case game.EventModal, game.EventQuiz:
				writeSSE(w, "dialog", renderToString(r, components.Dialog(buildDialog(snap))))
			case game.EventTimer:
				writeSSE(w, "timer", renderToString(r, components.TimerBar(buildTimer(snap.Timer))))
			case game.EventExpired:
				writeSSE(w, "expired", snap.Timer.Label)
			case game.EventLoader:
				writeSSE(w, "loader", renderToString(r, components.Loader(buildLoader(snap, nil))))
				writeSSE(w, "board", renderToString(r, components.Board(buildBoard(snap))))
			}
		}
		flusher.Flush()
	}

	send(game.EventLoader, game.EventModal)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub:
			if !open {
				return
			}
			send(ev.Kind)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}
