package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hexquiz/internal/board"
	"hexquiz/internal/hexgeom"
)

//go:embed default.yaml
var defaultYAML []byte

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Board       BoardConfig       `yaml:"board"`
	Modal       ModalConfig       `yaml:"modal"`
	Countdown   CountdownConfig   `yaml:"countdown"`
	Interaction InteractionConfig `yaml:"interaction"`
	Loader      LoaderConfig      `yaml:"loader"`
	Quiz        QuizConfig        `yaml:"quiz"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	BaseURL            string `yaml:"base_url"`
	FrameIntervalMS    int    `yaml:"frame_interval_ms"`
	SessionIdleMinutes int    `yaml:"session_idle_minutes"`
}

// BoardConfig describes the hex board
type BoardConfig struct {
	HexSize     float64     `yaml:"hex_size"`
	Orientation string      `yaml:"orientation"`
	Origin      string      `yaml:"origin"`
	Rows        []board.Row `yaml:"rows"`
	Selectable  []int       `yaml:"selectable"` // empty: every cell with an active terrain
	Terrains    []string    `yaml:"terrains"`   // terrain kinds per cell; empty: default assignment
	Stacking    string      `yaml:"stacking"`   // "sorted" or "layer"
}

// ModalConfig holds dialog transition settings
type ModalConfig struct {
	AnimationMS   int     `yaml:"animation_ms"`
	OriginScale   float64 `yaml:"origin_scale"`
	FallbackScale float64 `yaml:"fallback_scale"`
}

// CountdownConfig holds question timer settings
type CountdownConfig struct {
	DurationMS     int `yaml:"duration_ms"`
	ResolutionMS   int `yaml:"resolution_ms"`
	PushIntervalMS int `yaml:"push_interval_ms"` // how often timer updates are pushed to web clients
}

// InteractionConfig holds tap classification limits
type InteractionConfig struct {
	TapMaxDistance   float64 `yaml:"tap_max_distance"`
	TapMaxDurationMS int     `yaml:"tap_max_duration_ms"`
}

// LoaderConfig holds loading overlay settings
type LoaderConfig struct {
	FadeMS int `yaml:"fade_ms"`
}

// QuizConfig selects the question bank
type QuizConfig struct {
	QuestionsPath string `yaml:"questions_path"`
}

// Default returns the embedded configuration
func Default() *Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv loads CONFIG_PATH when set, otherwise the embedded default, then
// applies PORT and BASE_URL overrides.
func FromEnv() (*Config, error) {
	var cfg *Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = Default()
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Server.Port = n
	}
	if base := strings.TrimSpace(os.Getenv("BASE_URL")); base != "" {
		cfg.Server.BaseURL = strings.TrimRight(base, "/")
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.FrameIntervalMS == 0 {
		c.Server.FrameIntervalMS = 16
	}
	if c.Server.SessionIdleMinutes == 0 {
		c.Server.SessionIdleMinutes = 60
	}
	if c.Board.HexSize == 0 {
		c.Board.HexSize = 30
	}
	if len(c.Board.Rows) == 0 {
		c.Board.Rows = board.DefaultSpec()
	}
	if c.Board.Stacking == "" {
		c.Board.Stacking = "sorted"
	}
	if c.Modal.AnimationMS == 0 {
		c.Modal.AnimationMS = 320
	}
	if c.Modal.OriginScale == 0 {
		c.Modal.OriginScale = 0.15
	}
	if c.Modal.FallbackScale == 0 {
		c.Modal.FallbackScale = 0.92
	}
	if c.Countdown.DurationMS == 0 {
		c.Countdown.DurationMS = 30000
	}
	if c.Countdown.ResolutionMS == 0 {
		c.Countdown.ResolutionMS = 40
	}
	if c.Countdown.PushIntervalMS == 0 {
		c.Countdown.PushIntervalMS = 250
	}
	if c.Interaction.TapMaxDistance == 0 {
		c.Interaction.TapMaxDistance = 12
	}
	if c.Interaction.TapMaxDurationMS == 0 {
		c.Interaction.TapMaxDurationMS = 500
	}
	if c.Loader.FadeMS == 0 {
		c.Loader.FadeMS = 200
	}
}

// Validate rejects settings the board or timers cannot run with
func (c *Config) Validate() error {
	if _, err := c.Layout(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if _, err := c.BuildBoard(); err != nil {
		return err
	}
	if c.Board.Stacking != "sorted" && c.Board.Stacking != "layer" {
		return fmt.Errorf("board: unknown stacking %q", c.Board.Stacking)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", c.Server.Port)
	}
	if c.Modal.AnimationMS < 0 || c.Countdown.DurationMS < 0 || c.Countdown.ResolutionMS < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Interaction.TapMaxDistance < 0 || c.Interaction.TapMaxDurationMS < 0 {
		return fmt.Errorf("interaction: tap limits must not be negative")
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Layout builds the hex geometry
func (c *Config) Layout() (hexgeom.Layout, error) {
	o, err := hexgeom.ParseOrientation(c.Board.Orientation)
	if err != nil {
		return hexgeom.Layout{}, err
	}
	origin, err := hexgeom.ParseOrigin(c.Board.Origin)
	if err != nil {
		return hexgeom.Layout{}, err
	}
	return hexgeom.NewLayout(o, hexgeom.Point{X: c.Board.HexSize, Y: c.Board.HexSize}, origin)
}

// BuildBoard generates the configured board
func (c *Config) BuildBoard() (*board.Board, error) {
	layout, err := c.Layout()
	if err != nil {
		return nil, err
	}
	var opts []board.Option
	if len(c.Board.Selectable) > 0 {
		opts = append(opts, board.WithSelectable(c.Board.Selectable))
	}
	if len(c.Board.Terrains) > 0 {
		terrains := make([]board.Terrain, 0, len(c.Board.Terrains))
		for _, kind := range c.Board.Terrains {
			t, ok := board.Catalogue[kind]
			if !ok {
				return nil, fmt.Errorf("board: unknown terrain %q", kind)
			}
			terrains = append(terrains, t)
		}
		opts = append(opts, board.WithTerrains(terrains))
	}
	b, err := board.New(board.Spec(c.Board.Rows), layout, opts...)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return b, nil
}

// FrameInterval is the scheduler's frame spacing
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Server.FrameIntervalMS) * time.Millisecond
}

// SessionIdle is how long an untouched session lives
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}

func (c *Config) ModalDuration() time.Duration {
	return time.Duration(c.Modal.AnimationMS) * time.Millisecond
}

func (c *Config) CountdownDuration() time.Duration {
	return time.Duration(c.Countdown.DurationMS) * time.Millisecond
}

func (c *Config) CountdownResolution() time.Duration {
	return time.Duration(c.Countdown.ResolutionMS) * time.Millisecond
}

func (c *Config) PushInterval() time.Duration {
	return time.Duration(c.Countdown.PushIntervalMS) * time.Millisecond
}

func (c *Config) TapMaxDuration() time.Duration {
	return time.Duration(c.Interaction.TapMaxDurationMS) * time.Millisecond
}

func (c *Config) LoaderFade() time.Duration {
	return time.Duration(c.Loader.FadeMS) * time.Millisecond
}
