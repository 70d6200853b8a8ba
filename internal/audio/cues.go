package audio

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// Cue names a sound the board plays.
type Cue int

const (
	CueSelect Cue = iota // a cell was chosen
	CueAnswer            // an answer was picked
	CueExpire            // the countdown reached zero
)

func (c Cue) String() string {
	switch c {
	case CueSelect:
		return "select"
	case CueAnswer:
		return "answer"
	case CueExpire:
		return "expire"
	default:
		return "unknown"
	}
}

// Stream builds a fresh streamer for the cue.
func (c Cue) Stream(rate beep.SampleRate) beep.Streamer {
	switch c {
	case CueSelect:
		return gain(bell(1320, 60*time.Millisecond, rate), 0.4)
	case CueAnswer:
		return gain(bell(990, 90*time.Millisecond, rate), 0.5)
	case CueExpire:
		// Descending pair, E6 then A5.
		return gain(beep.Seq(
			bell(1318.5, 180*time.Millisecond, rate),
			bell(880, 420*time.Millisecond, rate),
		), 0.6)
	default:
		return beep.Silence(0)
	}
}

// Format is the PCM layout used for encoded cues.
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// EncodeWAV renders the cue as a complete WAV file.
func EncodeWAV(c Cue) ([]byte, error) {
	var buf seekBuffer
	if err := wav.Encode(&buf, c.Stream(Format.SampleRate), Format); err != nil {
		return nil, err
	}
	return buf.data, nil
}

var (
	wavCache sync.Map // Cue -> *cachedWAV
	errNoCue = errors.New("audio: cue produced no data")
)

type cachedWAV struct {
	once sync.Once
	data []byte
	err  error
}

// CachedWAV encodes each cue once per process.
func CachedWAV(c Cue) ([]byte, error) {
	v, _ := wavCache.LoadOrStore(c, &cachedWAV{})
	entry := v.(*cachedWAV)
	entry.once.Do(func() {
		entry.data, entry.err = EncodeWAV(c)
		if entry.err == nil && len(entry.data) == 0 {
			entry.err = errNoCue
		}
	})
	return entry.data, entry.err
}

// seekBuffer is an in-memory io.WriteSeeker; wav.Encode patches the header
// sizes after the samples are written.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("audio: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("audio: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

// Player plays cues on the local speaker. The zero value is silent until Init
// succeeds, so clients keep running on machines without audio.
type Player struct {
	mu    sync.Mutex
	ready bool
}

// Init opens the speaker with a 100ms buffer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	p.ready = true
	return nil
}

// Play queues the cue; it returns immediately.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()
	if !ready {
		return
	}
	speaker.Play(c.Stream(SampleRate))
}

// Close releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		speaker.Close()
		p.ready = false
	}
}
