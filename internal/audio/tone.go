package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is used for every cue this package produces.
const SampleRate = beep.SampleRate(44100)

// tone is a sine generator that stops after a fixed number of samples
type tone struct {
	freq     float64
	phase    float64
	length   int
	position int
	rate     beep.SampleRate
}

func newTone(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &tone{freq: freq, length: rate.N(d), rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.length {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * t.phase)
		samples[i][0] = v
		samples[i][1] = v
		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// shape fades a stream in over attack and out over release.
type shape struct {
	s        beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newShape(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &shape{s: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *shape) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		gain := 1.0
		if e.attack > 0 && e.position < e.attack {
			gain = float64(e.position) / float64(e.attack)
		}
		if tail := e.total - e.position; e.release > 0 && tail < e.release {
			gain = math.Min(gain, float64(tail)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *shape) Err() error { return e.s.Err() }

// gain scales a stream linearly; zero or less silences it.
func gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}

// bell mixes a note with its octave so it rings rather than beeps.
func bell(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	fund := newShape(newTone(freq, d, rate), d, 5*time.Millisecond, d*3/4, rate)
	over := newShape(newTone(freq*2, d, rate), d, 5*time.Millisecond, d/2, rate)
	return beep.Mix(gain(fund, 0.7), gain(over, 0.3))
}
