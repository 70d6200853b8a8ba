package handlers

import (
	"fmt"
	"strings"
	"time"

	"hexquiz/internal/game"
	"hexquiz/internal/modal"
	"hexquiz/internal/viewmodel"
)

const boardPadding = 4

func buildBoard(snap game.Snapshot) viewmodel.BoardFragment {
	cells := make([]viewmodel.Cell, 0, len(snap.Cells))
	for _, c := range snap.Cells {
		points := make([]string, 0, len(c.Corners))
		for _, p := range c.Corners {
			points = append(points, fmt.Sprintf("%.2f,%.2f", p.X, p.Y))
		}
		cells = append(cells, viewmodel.Cell{
			Index:      c.Index,
			Q:          c.Coord.Q,
			R:          c.Coord.R,
			Kind:       c.Kind,
			Image:      c.Image,
			Points:     strings.Join(points, " "),
			Tile:       viewmodel.Rect{X: c.Tile.X, Y: c.Tile.Y, Width: c.Tile.Width, Height: c.Tile.Height},
			Selectable: c.Selectable,
			Raised:     c.Raised,
			Active:     c.Active,
		})
	}
	var unit *viewmodel.Unit
	if snap.Unit != nil {
		unit = &viewmodel.Unit{Image: snap.Unit.Image, X: snap.Unit.Center.X, Y: snap.Unit.Center.Y, Size: snap.Unit.Size}
	}
	b := snap.Bounds
	return viewmodel.BoardFragment{
		SessionID:  snap.ID,
		ViewBox:    fmt.Sprintf("%.2f %.2f %.2f %.2f", b.X-boardPadding, b.Y-boardPadding, b.Width+2*boardPadding, b.Height+2*boardPadding),
		Background: snap.Background,
		Cells:      cells,
		Unit:       unit,
		Ready:      snap.Ready,
		Started:    snap.Started,
		ShowHint:   snap.Hint,
	}
}

func toTransform(t modal.Transform) viewmodel.Transform {
	return viewmodel.Transform{DX: t.DX, DY: t.DY, Scale: t.Scale, Opacity: t.Opacity}
}

// dialogTarget is where the running transition ends.
func dialogTarget(m game.ModalView) viewmodel.Transform {
	if m.Phase == modal.Closing {
		end := toTransform(m.Start)
		end.Opacity = 0
		return end
	}
	return toTransform(modal.Identity)
}

func buildTimer(t game.TimerView) viewmodel.Timer {
	return viewmodel.Timer{
		RemainingMs: t.Remaining.Milliseconds(),
		DurationMs:  t.Duration.Milliseconds(),
		Percent:     t.Progress * 100,
		Label:       t.Label,
		Running:     t.Active && !t.Expired,
		Expired:     t.Expired,
	}
}

func buildDialog(snap game.Snapshot) viewmodel.DialogFragment {
	m := snap.Modal
	q := snap.Question
	remaining := time.Duration(0)
	if m.Phase == modal.Opening || m.Phase == modal.Closing {
		remaining = m.Duration - m.Elapsed
	}
	options := make([]viewmodel.Option, 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, viewmodel.Option{Key: o.Key, Label: o.Label, Selected: o.Selected, State: o.State})
	}
	next := "Далее"
	if q.IsLast {
		next = "Завершить"
	}
	return viewmodel.DialogFragment{
		SessionID:   snap.ID,
		Mounted:     m.Mounted,
		Phase:       m.Phase.String(),
		Current:     toTransform(m.Transform),
		Target:      dialogTarget(m),
		RemainingMs: remaining.Milliseconds(),
		Number:      q.Index + 1,
		Total:       q.Total,
		Image:       q.Image,
		Prompt:      q.Prompt,
		Options:     options,
		Locked:      q.Locked,
		CanNext:     q.CanNext,
		NextLabel:   next,
		Timer:       buildTimer(snap.Timer),
	}
}

func buildLoader(snap game.Snapshot, urls []string) viewmodel.Loader {
	percent := 100.0
	if snap.Loading.Total > 0 {
		percent = float64(snap.Loading.Loaded) / float64(snap.Loading.Total) * 100
	}
	return viewmodel.Loader{
		SessionID: snap.ID,
		Visible:   snap.LoaderVisible,
		Loaded:    snap.Loading.Loaded,
		Total:     snap.Loading.Total,
		Errors:    snap.Loading.Errors,
		Percent:   percent,
		Ready:     snap.Ready,
		Started:   snap.Started,
		URLs:      urls,
	}
}

func buildState(snap game.Snapshot, events []string) viewmodel.State {
	return viewmodel.State{
		Version: snap.Version,
		Board:   buildBoard(snap),
		Dialog:  buildDialog(snap),
		Loader:  buildLoader(snap, nil),
		Events:  events,
	}
}
