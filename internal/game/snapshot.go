package game

import (
	"time"

	"hexquiz/internal/board"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/modal"
	"hexquiz/internal/preload"
)

// CellView is one cell as drawn, listed in paint order.
type CellView struct {
	Index      int
	Coord      hexgeom.Axial
	Kind       string
	Image      string
	Corners    [6]hexgeom.Point
	Tile       hexgeom.Rect
	Selectable bool
	Raised     bool
	Active     bool
}

// UnitView is the sprite placed on the active cell.
type UnitView struct {
	Image  string
	Center hexgeom.Point
	Size   float64
}

// ModalView is the dialog's transition state at the snapshot time.
type ModalView struct {
	Phase     modal.Phase
	Mounted   bool
	Progress  float64
	Transform modal.Transform
	Start     modal.Transform // transform the dialog animates from
	Elapsed   time.Duration   // time into the current transition
	Duration  time.Duration
}

// OptionView is one answer button.
type OptionView struct {
	Key      string
	Label    string
	Selected bool
	State    string // "", "correct" or "incorrect"
}

// QuestionView is the question on screen.
type QuestionView struct {
	Index    int
	Total    int
	ID       int
	Image    string
	Prompt   string
	Options  []OptionView
	Answered bool
	Locked   bool
	CanNext  bool
	IsLast   bool
}

// TimerView is the countdown bar.
type TimerView struct {
	Remaining time.Duration
	Duration  time.Duration
	Progress  float64
	Label     string
	Active    bool
	Expired   bool
}

// Snapshot captures the state needed for rendering.
type Snapshot struct {
	ID            string
	Version       uint64
	Started       bool
	Hint          bool // started and nothing chosen yet
	Loading       preload.State
	Ready         bool
	LoaderVisible bool
	Bounds        hexgeom.Rect
	Background    string
	Cells         []CellView
	Unit          *UnitView
	Modal         ModalView
	Question      QuestionView
	Timer         TimerView
	Viewport      modal.Viewport
}

// Snapshot returns a consistent view of the session at now.
func (s *Session) Snapshot(now time.Time) Snapshot {
	s.lock()
	defer s.unlock()

	active, hasActive := s.ctrl.Active()
	raised := s.ctrl.Raised()
	order := s.ctrl.Order()
	cells := make([]CellView, 0, len(order))
	for _, i := range order {
		c, ok := s.board.Cell(i)
		if !ok {
			continue
		}
		cells = append(cells, s.cellView(c, raised, hasActive && c.Coord == active))
	}

	var unit *UnitView
	if hasActive {
		if i, ok := s.board.IndexOf(active); ok {
			if center, size, ok := s.board.UnitPlacement(i); ok {
				unit = &UnitView{Image: s.assets.Unit, Center: center, Size: size}
			}
		}
	}

	loading := s.gate.State()
	return Snapshot{
		ID:            s.ID,
		Version:       s.version,
		Started:       s.ctrl.Started(),
		Hint:          s.ctrl.Started() && !s.ctrl.Chosen(),
		Loading:       loading,
		Ready:         s.gate.Ready(),
		LoaderVisible: !s.loaderHidden,
		Bounds:        s.board.Bounds(),
		Background:    s.assets.Background,
		Cells:         cells,
		Unit:          unit,
		Modal:         s.modalView(now),
		Question:      s.questionView(),
		Timer:         s.timerView(),
		Viewport:      s.viewport,
	}
}

func (s *Session) cellView(c board.Cell, raised int, active bool) CellView {
	image := c.Terrain.Image
	if u, ok := s.assets.Terrain(c.Terrain.Kind); ok {
		image = u
	}
	tile, _ := s.board.TileRect(c.Index)
	return CellView{
		Index:      c.Index,
		Coord:      c.Coord,
		Kind:       c.Terrain.Kind,
		Image:      image,
		Corners:    c.Corners,
		Tile:       tile,
		Selectable: s.board.IsSelectable(c.Index),
		Raised:     c.Index == raised,
		Active:     active,
	}
}

func (s *Session) modalView(now time.Time) ModalView {
	v := ModalView{
		Phase:     s.modal.Phase(),
		Mounted:   s.modal.Mounted(),
		Progress:  s.modal.Progress(now),
		Transform: s.modal.Transform(now, s.viewport),
		Start:     s.modal.StartTransform(s.viewport),
		Duration:  s.modal.Duration(),
	}
	if v.Phase == modal.Opening || v.Phase == modal.Closing {
		v.Elapsed = s.modal.Elapsed(now)
	}
	return v
}

func (s *Session) questionView() QuestionView {
	q := s.sheet.Question()
	answered := s.sheet.Answered()
	locked := s.sheet.Locked()
	opts := make([]OptionView, 0, len(q.Options))
	for _, o := range q.Options {
		ov := OptionView{Key: o.Key, Label: o.Label, Selected: o.Key == s.sheet.Selected()}
		switch {
		case ov.Selected && o.Key == q.Correct:
			ov.State = "correct"
		case ov.Selected:
			ov.State = "incorrect"
		case locked && o.Key == q.Correct:
			ov.State = "correct"
		}
		opts = append(opts, ov)
	}
	return QuestionView{
		Index:    s.progress.Current(),
		Total:    s.progress.Total(),
		ID:       q.ID,
		Image:    q.Image,
		Prompt:   q.Prompt,
		Options:  opts,
		Answered: answered,
		Locked:   locked,
		CanNext:  answered || s.timer.Expired(),
		IsLast:   s.progress.IsLast(),
	}
}

func (s *Session) timerView() TimerView {
	return TimerView{
		Remaining: s.timer.Remaining(),
		Duration:  s.timer.Duration(),
		Progress:  s.timer.Progress(),
		Label:     s.timer.Label(),
		Active:    s.timer.Active(),
		Expired:   s.timer.Expired(),
	}
}
