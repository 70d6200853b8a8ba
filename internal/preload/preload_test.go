package preload

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sort"
	"testing"
	"testing/fstest"
)

func TestGate_DedupAndCounts(t *testing.T) {
	g := NewGate([]string{"a.png", "b.png", "a.png", ""})
	if s := g.State(); s.Total != 2 {
		t.Fatalf("Total %d, want 2", s.Total)
	}
	if g.Ready() {
		t.Error("gate should not be ready yet")
	}
	if !g.MarkDone("a.png", true) {
		t.Error("first MarkDone should count")
	}
	if g.MarkDone("a.png", false) {
		t.Error("repeat MarkDone should be ignored")
	}
	if g.MarkDone("zzz.png", true) {
		t.Error("untracked url should be ignored")
	}
	if p := g.Progress(); p != 0.5 {
		t.Errorf("Progress %v, want 0.5", p)
	}
	g.MarkDone("b.png", false)
	s := g.State()
	if s.Loaded != 2 || s.Errors != 1 || !g.Ready() {
		t.Errorf("state %+v ready %v", s, g.Ready())
	}
}

func TestGate_EmptyIsReady(t *testing.T) {
	g := NewGate(nil)
	if !g.Ready() || g.Progress() != 1 {
		t.Error("empty gate should be ready with progress 1")
	}
}

func TestAssets_URLsUnique(t *testing.T) {
	a := DefaultAssets([]string{"/static/img/q1.svg", "/static/img/q1.svg"})
	urls := a.URLs()
	if !sort.StringsAreSorted(urls) {
		t.Error("URLs should be sorted")
	}
	seen := map[string]bool{}
	for _, u := range urls {
		if seen[u] {
			t.Errorf("duplicate %s", u)
		}
		seen[u] = true
	}
	if !seen[a.Unit] || !seen["/static/img/q1.svg"] {
		t.Errorf("URLs %v missing unit or question image", urls)
	}
	if _, ok := a.Terrain("rocks"); !ok {
		t.Error("rocks terrain should resolve")
	}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestVerify(t *testing.T) {
	fsys := fstest.MapFS{
		"img/ok.png":  {Data: tinyPNG(t)},
		"img/ok.svg":  {Data: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`)},
		"img/bad.svg": {Data: []byte(`<html></html>`)},
		"img/bad.png": {Data: []byte("not an image")},
	}
	urls := []string{"/static/img/ok.png", "/static/img/ok.svg", "/static/img/bad.svg", "/static/img/bad.png", "/static/img/missing.png"}
	g := NewGate(urls)
	failed := Verify(context.Background(), fsys, "/static/", urls, g)
	if len(failed) != 3 {
		t.Errorf("failed %v, want 3 failures", failed)
	}
	s := g.State()
	if s.Loaded != 5 || s.Errors != 3 || !g.Ready() {
		t.Errorf("gate %+v", s)
	}
}

func TestVerify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGate([]string{"/a.png"})
	Verify(ctx, fstest.MapFS{}, "/", []string{"/a.png"}, g)
	if g.State().Loaded > 1 {
		t.Error("loaded count out of range")
	}
}
