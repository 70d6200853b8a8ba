package client

import (
	"fmt"
	"log"
	"time"

	"hexquiz/internal/audio"
	"hexquiz/internal/config"
	"hexquiz/internal/frame"
	"hexquiz/internal/game"
	"hexquiz/internal/quiz"
)

// Local runs one session in-process. The client's frame loop calls Frame;
// cues go to the speaker when one is available.
type Local struct {
	Session *game.Session
	player  *audio.Player
}

// Options for NewLocal.
type Options struct {
	Clock frame.Clock
	Mute  bool
}

// NewLocal builds the configured board and question bank and a session on
// them. Local clients draw without the web artwork, so every asset is
// reported loaded up front.
func NewLocal(cfg *config.Config, opts Options) (*Local, error) {
	b, err := cfg.BuildBoard()
	if err != nil {
		return nil, err
	}
	bank := quiz.Default()
	if cfg.Quiz.QuestionsPath != "" {
		if bank, err = quiz.LoadFile(cfg.Quiz.QuestionsPath); err != nil {
			return nil, fmt.Errorf("questions: %w", err)
		}
	}

	l := &Local{player: &audio.Player{}}
	if !opts.Mute {
		if err := l.player.Init(); err != nil {
			log.Printf("audio unavailable: %v", err)
		}
	}
	l.Session = game.NewSession("local", b, bank, game.SettingsFrom(cfg), opts.Clock, game.WithCueHook(l.player.Play))
	for _, u := range l.Session.Assets().URLs() {
		l.Session.ReportAsset(u, true)
	}
	return l, nil
}

// Frame advances scheduled work to now and returns what to draw.
func (l *Local) Frame(now time.Time) game.Snapshot {
	l.Session.Pump(now)
	return l.Session.Snapshot(now)
}

// AnswerAt selects the i-th option of the current question.
func (l *Local) AnswerAt(i int, now time.Time) error {
	opts := l.Session.Snapshot(now).Question.Options
	if i < 0 || i >= len(opts) {
		return quiz.ErrUnknownOption
	}
	return l.Session.SelectAnswer(opts[i].Key)
}

// Close stops scheduled work and releases the speaker.
func (l *Local) Close() {
	l.Session.Teardown()
	l.player.Close()
}
