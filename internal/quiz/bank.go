// Package quiz holds the question content, the shared question counter and
// the per-question answer sheet.
package quiz

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/questions.yaml
var dataFS embed.FS

var (
	ErrEmptyBank     = errors.New("quiz: question bank is empty")
	ErrUnknownOption = errors.New("quiz: unknown option")
	ErrLocked        = errors.New("quiz: answers are locked")
)

// Option is one answer choice.
type Option struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// Question is one quiz item.
type Question struct {
	ID      int      `yaml:"id" json:"id"`
	Image   string   `yaml:"image" json:"image"`
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Options []Option `yaml:"options" json:"options"`
	Correct string   `yaml:"correct" json:"correct"`
}

// HasOption reports whether key is one of q's options.
func (q Question) HasOption(key string) bool {
	for _, o := range q.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// Bank is the ordered question list. It is read-only after loading.
type Bank struct {
	questions []Question
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// Decode reads a bank from YAML and validates every question.
func Decode(r io.Reader) (*Bank, error) {
	var f bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("quiz: decode bank: %w", err)
	}
	return NewBank(f.Questions)
}

// NewBank validates questions and returns a bank holding a copy of them.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}
	for i, q := range questions {
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("quiz: question %d has no options", i)
		}
		if !q.HasOption(q.Correct) {
			return nil, fmt.Errorf("%w: question %d marks %q correct", ErrUnknownOption, i, q.Correct)
		}
	}
	return &Bank{questions: append([]Question(nil), questions...)}, nil
}

// LoadFile reads a bank from a YAML file on disk.
func LoadFile(path string) (*Bank, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quiz: read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(b))
}

// Default returns the embedded question bank.
func Default() *Bank {
	b, err := dataFS.ReadFile("data/questions.yaml")
	if err != nil {
		panic(err)
	}
	bank, err := Decode(bytes.NewReader(b))
	if err != nil {
		panic(err)
	}
	return bank
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Clamp bounds i to a valid question index.
func (b *Bank) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(b.questions) {
		return len(b.questions) - 1
	}
	return i
}

// At returns the question at i, clamped to the valid range.
func (b *Bank) At(i int) Question { return b.questions[b.Clamp(i)] }

// Images returns every question image in order.
func (b *Bank) Images() []string {
	out := make([]string, 0, len(b.questions))
	for _, q := range b.questions {
		out = append(out, q.Image)
	}
	return out
}
