package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hexquiz/internal/config"
	"hexquiz/internal/game"
	"hexquiz/internal/handlers"
	"hexquiz/internal/preload"
	"hexquiz/internal/quiz"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	b, err := cfg.BuildBoard()
	if err != nil {
		log.Fatalf("board: %v", err)
	}
	bank := quiz.Default()
	if cfg.Quiz.QuestionsPath != "" {
		if bank, err = quiz.LoadFile(cfg.Quiz.QuestionsPath); err != nil {
			log.Fatalf("questions: %v", err)
		}
	}

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assets := preload.DefaultAssets(bank.Images())
	for _, r := range preload.Verify(ctx, staticFS, "/static/", assets.URLs(), nil) {
		log.Printf("asset check failed url=%s: %v", r.URL, r.Err)
	}

	store := game.NewStore(b, bank, game.SettingsFrom(cfg), game.WithAssets(assets))
	go store.Janitor(ctx, cfg.SessionIdle(), time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	homeHandler := handlers.NewHomeHandler(store)
	sessionHandler := handlers.NewSessionHandler(store, cfg.Server.BaseURL)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
		homeHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r)
	})
	// SSE and websocket connections stay open; no request timeout.
	r.Group(sessionHandler.RegisterStreams)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()

	log.Printf("listening on http://localhost%s (board=%d cells, questions=%d)", cfg.Addr(), b.Len(), bank.Len())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

//go:embed static
var embeddedStatic embed.FS
