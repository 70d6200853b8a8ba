package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hexquiz/internal/audio"
	"hexquiz/internal/game"
	"hexquiz/views/pages"
)

type HomeHandler struct {
	store *game.Store
}

func NewHomeHandler(store *game.Store) *HomeHandler {
	return &HomeHandler{store: store}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/sessions", h.createSession)
	r.Get("/audio/expire.wav", h.expireSound)
	r.Get("/healthz", h.health)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.HomePage())
}

func (h *HomeHandler) createSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.CreateSession()
	log.Printf("session created id=%s", sess.ID)
	http.Redirect(w, r, "/s/"+sess.ID, http.StatusSeeOther)
}

func (h *HomeHandler) expireSound(w http.ResponseWriter, r *http.Request) {
	data, err := audio.CachedWAV(audio.CueExpire)
	if err != nil {
		log.Printf("encode expire sound: %v", err)
		http.Error(w, "sound unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.store.Len()})
}
