package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
		if len(out) > int(SampleRate)*5 {
			t.Fatal("stream did not end")
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	return out
}

func TestTone_LengthAndRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	samples := drain(t, newTone(440, 100*time.Millisecond, rate))
	if len(samples) != rate.N(100*time.Millisecond) {
		t.Errorf("got %d samples, want %d", len(samples), rate.N(100*time.Millisecond))
	}
	for i, s := range samples {
		if s[0] < -1 || s[0] > 1 || s[0] != s[1] {
			t.Fatalf("sample %d = %v out of range", i, s)
		}
	}
}

func TestShape_FadesEdges(t *testing.T) {
	rate := beep.SampleRate(1000)
	d := 100 * time.Millisecond
	samples := drain(t, newShape(newTone(50, d, rate), d, 10*time.Millisecond, 10*time.Millisecond, rate))
	if len(samples) != 100 {
		t.Fatalf("got %d samples, want 100", len(samples))
	}
	if samples[0][0] != 0 {
		t.Errorf("first sample %v, want silence", samples[0][0])
	}
	last := samples[len(samples)-1][0]
	if last > 0.11 || last < -0.11 {
		t.Errorf("last sample %v should be nearly silent", last)
	}
}

func TestCues_StayInRange(t *testing.T) {
	for _, c := range []Cue{CueSelect, CueAnswer, CueExpire} {
		samples := drain(t, c.Stream(SampleRate))
		if len(samples) == 0 {
			t.Errorf("%s produced no samples", c)
		}
		for i, s := range samples {
			if s[0] < -1 || s[0] > 1 {
				t.Fatalf("%s sample %d = %v out of range", c, i, s[0])
			}
		}
	}
}

func TestEncodeWAV(t *testing.T) {
	data, err := EncodeWAV(CueExpire)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header")
	}
	riff := binary.LittleEndian.Uint32(data[4:8])
	if int(riff) != len(data)-8 {
		t.Errorf("RIFF size %d, want %d", riff, len(data)-8)
	}
	frames := (len(data) - 44) / 4
	want := SampleRate.N(600 * time.Millisecond)
	if frames != want {
		t.Errorf("encoded %d frames, want %d", frames, want)
	}
}

func TestCachedWAV_Reuses(t *testing.T) {
	a, err := CachedWAV(CueSelect)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := CachedWAV(CueSelect)
	if &a[0] != &b[0] {
		t.Error("second call should return the cached bytes")
	}
}

func TestSeekBuffer(t *testing.T) {
	var b seekBuffer
	_, _ = b.Write([]byte("hello world"))
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	_, _ = b.Write([]byte("J"))
	if _, err := b.Seek(-5, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	_, _ = b.Write([]byte("W"))
	if !bytes.Equal(b.data, []byte("Jello World")) {
		t.Errorf("data %q", b.data)
	}
	if _, err := b.Seek(-1, io.SeekStart); err == nil {
		t.Error("negative seek should fail")
	}
}

func TestPlayer_SilentUntilInit(t *testing.T) {
	var p Player
	p.Play(CueExpire)
	p.Close()
}
