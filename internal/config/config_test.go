package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hexquiz/internal/board"
	"hexquiz/internal/hexgeom"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("Port %d, want 8080", cfg.Server.Port)
	}
	if cfg.ModalDuration() != 320*time.Millisecond {
		t.Errorf("ModalDuration %v", cfg.ModalDuration())
	}
	if cfg.CountdownDuration() != 30*time.Second {
		t.Errorf("CountdownDuration %v", cfg.CountdownDuration())
	}
	b, err := cfg.BuildBoard()
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	if b.Len() != 18 {
		t.Errorf("board has %d cells, want 18", b.Len())
	}
	if l, _ := cfg.Layout(); l.Orientation() != hexgeom.Pointy {
		t.Error("default layout should be pointy")
	}
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port %d, want 9000", cfg.Server.Port)
	}
	if cfg.Board.HexSize != 30 || len(cfg.Board.Rows) != 6 {
		t.Errorf("board defaults not applied: %+v", cfg.Board)
	}
	if cfg.Interaction.TapMaxDistance != 12 || cfg.TapMaxDuration() != 500*time.Millisecond {
		t.Errorf("interaction defaults not applied: %+v", cfg.Interaction)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"negative size":    "board:\n  hex_size: -3\n",
		"negative row":     "board:\n  rows:\n    - {count: -1, offset: 0}\n",
		"selectable range": "board:\n  selectable: [40]\n",
		"unknown terrain":  "board:\n  rows:\n    - {count: 1, offset: 0}\n  terrains: [lava]\n",
		"bad orientation":  "board:\n  orientation: round\n",
		"bad stacking":     "board:\n  stacking: random\n",
		"not yaml":         "server: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	_, err := Parse([]byte("board:\n  hex_size: -3\n"))
	if !errors.Is(err, hexgeom.ErrInvalidDimensions) {
		t.Errorf("err %v should wrap ErrInvalidDimensions", err)
	}
	_, err = Parse([]byte("board:\n  selectable: [40]\n"))
	if !errors.Is(err, board.ErrSelectableOutOfRange) {
		t.Errorf("err %v should wrap ErrSelectableOutOfRange", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	doc := "board:\n  rows:\n    - {count: 2, offset: 0}\n  terrains: [rocks, desert]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := cfg.BuildBoard()
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	if b.IsSelectable(0) || !b.IsSelectable(1) {
		t.Errorf("selectable %v, want [1]", b.Selectable())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "9191")
	t.Setenv("BASE_URL", "https://example.test/")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Server.Port != 9191 || cfg.Addr() != ":9191" {
		t.Errorf("port %d addr %q", cfg.Server.Port, cfg.Addr())
	}
	if cfg.Server.BaseURL != "https://example.test" {
		t.Errorf("BaseURL %q", cfg.Server.BaseURL)
	}

	t.Setenv("PORT", "abc")
	if _, err := FromEnv(); err == nil {
		t.Error("bad PORT should fail")
	}
}
