package game

import (
	"time"

	"hexquiz/internal/config"
	"hexquiz/internal/countdown"
	"hexquiz/internal/frame"
	"hexquiz/internal/interaction"
	"hexquiz/internal/modal"
)

// Settings are the tunables a session is built with.
type Settings struct {
	FrameInterval       time.Duration
	ModalDuration       time.Duration
	OriginScale         float64
	FallbackScale       float64
	CountdownDuration   time.Duration
	CountdownResolution time.Duration
	PushInterval        time.Duration
	TapDistance         float64
	TapDuration         time.Duration
	LoaderFade          time.Duration
	Layer               bool // use move-to-front stacking instead of sort-by-raised-last
}

// DefaultSettings mirrors the package defaults of the engine components.
func DefaultSettings() Settings {
	return Settings{
		FrameInterval:       frame.DefaultInterval,
		ModalDuration:       modal.DefaultDuration,
		OriginScale:         modal.DefaultOriginScale,
		FallbackScale:       modal.DefaultFallbackScale,
		CountdownDuration:   countdown.DefaultDuration,
		CountdownResolution: countdown.DefaultResolution,
		PushInterval:        250 * time.Millisecond,
		TapDistance:         interaction.DefaultTapDistance,
		TapDuration:         interaction.DefaultTapDuration,
		LoaderFade:          200 * time.Millisecond,
	}
}

// SettingsFrom reads session tunables from the loaded configuration.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		FrameInterval:       cfg.FrameInterval(),
		ModalDuration:       cfg.ModalDuration(),
		OriginScale:         cfg.Modal.OriginScale,
		FallbackScale:       cfg.Modal.FallbackScale,
		CountdownDuration:   cfg.CountdownDuration(),
		CountdownResolution: cfg.CountdownResolution(),
		PushInterval:        cfg.PushInterval(),
		TapDistance:         cfg.Interaction.TapMaxDistance,
		TapDuration:         cfg.TapMaxDuration(),
		LoaderFade:          cfg.LoaderFade(),
		Layer:               cfg.Board.Stacking == "layer",
	}
}
