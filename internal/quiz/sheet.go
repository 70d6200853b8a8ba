package quiz

import "fmt"

// Sheet is the answer selection for the question on screen.
type Sheet struct {
	question Question
	selected string
	locked   bool
}

// NewSheet returns an empty sheet for q.
func NewSheet(q Question) *Sheet { return &Sheet{question: q} }

// Question returns the question this sheet answers.
func (s *Sheet) Question() Question { return s.question }

// Select records key as the answer. Changing the answer is allowed until the
// sheet is locked.
func (s *Sheet) Select(key string) error {
	if s.locked {
		return ErrLocked
	}
	if !s.question.HasOption(key) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	s.selected = key
	return nil
}

// Selected returns the chosen key, or "" when nothing is chosen.
func (s *Sheet) Selected() string { return s.selected }

// Answered reports whether an option is chosen.
func (s *Sheet) Answered() bool { return s.selected != "" }

// IsCorrect reports whether the chosen option is the correct one.
func (s *Sheet) IsCorrect() bool {
	return s.selected != "" && s.selected == s.question.Correct
}

// Lock freezes the selection, as when time runs out.
func (s *Sheet) Lock() { s.locked = true }

func (s *Sheet) Locked() bool { return s.locked }

// Clear resets the sheet for q.
func (s *Sheet) Clear(q Question) {
	s.question = q
	s.selected = ""
	s.locked = false
}
