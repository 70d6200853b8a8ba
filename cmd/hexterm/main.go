// Command hexterm plays the hex quiz in a terminal. The mouse picks a cell;
// keys answer the question.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"hexquiz/internal/client"
	"hexquiz/internal/config"
	"hexquiz/internal/game"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/interaction"
	"hexquiz/internal/modal"
)

const (
	frameInterval = 16 * time.Millisecond
	cellAspect    = 2.0 // a character cell is about twice as tall as wide
	dialogWidth   = 52
	dialogHeight  = 14
)

type term struct {
	screen tcell.Screen
	local  *client.Local
	fit    client.Fit
	width  int
	height int
	status string
}

func main() {
	mute := flag.Bool("mute", false, "disable sound")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	local, err := client.NewLocal(cfg, client.Options{Mute: *mute})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer local.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	t := &term{screen: screen, local: local}
	t.resize()
	t.run()
}

func (t *term) resize() {
	t.width, t.height = t.screen.Size()
	// Screen units are columns horizontally and half-rows vertically so the
	// dialog anchor math sees square pixels.
	t.local.Session.SetViewport(modal.Viewport{Width: float64(t.width), Height: float64(t.height) * cellAspect})
	t.fit = client.NewFit(t.local.Session.Board().Bounds(), float64(t.width), float64(t.height-2), 1, cellAspect)
	t.screen.Sync()
}

func (t *term) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !t.handle(ev) {
				return
			}
		case now := <-ticker.C:
			t.draw(t.local.Frame(now))
		}
	}
}

func (t *term) handle(ev tcell.Event) bool {
	now := time.Now()
	sess := t.local.Session
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.resize()
	case *tcell.EventMouse:
		col, row := ev.Position()
		screen := hexgeom.Point{X: float64(col) + 0.5, Y: (float64(row) + 0.5) * cellAspect}
		board := t.fit.ToBoard(float64(col)+0.5, float64(row)+0.5)
		if sess.Snapshot(now).Modal.Mounted {
			// The dialog covers the board.
			sess.ResetPointer(now)
			return true
		}
		sess.Sample(interaction.Mouse, screen, board, ev.Buttons()&tcell.Button1 != 0, now)
	case *tcell.EventKey:
		return t.key(ev, now)
	}
	return true
}

func (t *term) key(ev *tcell.EventKey, now time.Time) bool {
	sess := t.local.Session
	snap := sess.Snapshot(now)
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if snap.Modal.Mounted {
			sess.Close()
		}
		return true
	case tcell.KeyEnter:
		if !snap.Started {
			t.report(sess.Start())
		} else if snap.Modal.Mounted {
			t.report(sess.Next())
		}
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	r := ev.Rune()
	switch {
	case r == 'q' && !snap.Modal.Mounted:
		return false
	case r == 'n' && snap.Modal.Mounted:
		t.report(sess.Next())
	case r >= '1' && r <= '9' && snap.Modal.Mounted:
		t.report(t.local.AnswerAt(int(r-'1'), now))
	case snap.Modal.Mounted:
		for _, o := range snap.Question.Options {
			if o.Key == string(r) {
				t.report(sess.SelectAnswer(o.Key))
			}
		}
	}
	return true
}

func (t *term) report(err error) {
	if err != nil {
		t.status = err.Error()
		log.Printf("action: %v", err)
		return
	}
	t.status = ""
}

var (
	styleBase   = tcell.StyleDefault.Background(tcell.NewRGBColor(0x1d, 0x4f, 0x73)).Foreground(tcell.ColorWhite)
	styleDialog = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleUnit   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xd9, 0x45, 0x3b)).Bold(true)
)

func (t *term) draw(snap game.Snapshot) {
	s := t.screen
	s.Fill(' ', styleBase)

	b := t.local.Session.Board()
	order := make([]int, 0, len(snap.Cells))
	byIndex := make(map[int]game.CellView, len(snap.Cells))
	for _, c := range snap.Cells {
		order = append(order, c.Index)
		byIndex[c.Index] = c
	}
	for row := 0; row < t.height-2; row++ {
		for col := 0; col < t.width; col++ {
			p := t.fit.ToBoard(float64(col)+0.5, float64(row)+0.5)
			i, ok := b.HitTest(p, order)
			if !ok {
				continue
			}
			c := byIndex[i]
			fill := client.Colour(c.Kind, c.Selectable, c.Raised)
			style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(fill.R), int32(fill.G), int32(fill.B))).Foreground(tcell.ColorBlack)
			ch := ' '
			if c.Active {
				ch = '░'
			}
			s.SetContent(col, row, ch, nil, style)
		}
	}
	if u := snap.Unit; u != nil {
		x, y := t.fit.ToScreen(u.Center)
		col, row := int(x), int(y)
		_, _, st, _ := s.GetContent(col, row)
		s.SetContent(col, row, '♟', nil, styleUnit.Background(backgroundOf(st)))
	}

	switch {
	case snap.LoaderVisible:
		t.text(0, t.height-1, fmt.Sprintf("Загрузка %d / %d", snap.Loading.Loaded, snap.Loading.Total), styleBase)
	case !snap.Started:
		t.text(0, t.height-1, "Enter: играть   q: выход", styleBase)
	case snap.Hint:
		t.text(0, t.height-1, "Тыкни по гексу, чтобы выбрать уровень", styleBase)
	}
	if t.status != "" {
		t.text(0, t.height-2, t.status, styleBase.Foreground(tcell.ColorYellow))
	}
	if snap.Modal.Mounted {
		t.drawDialog(snap)
	}
	s.Show()
}

func backgroundOf(st tcell.Style) tcell.Color {
	_, bg, _ := st.Decompose()
	return bg
}

// drawDialog draws the dialog box scaled and offset by the modal transform.
// Content appears once the box is large enough to hold it.
func (t *term) drawDialog(snap game.Snapshot) {
	tr := snap.Modal.Transform
	w := int(math.Round(dialogWidth * tr.Scale))
	h := int(math.Round(dialogHeight * tr.Scale))
	if w < 2 || h < 2 || tr.Opacity <= 0.05 {
		return
	}
	cx := float64(t.width)/2 + tr.DX
	cy := (float64(t.height)*cellAspect/2 + tr.DY) / cellAspect
	x0 := int(math.Round(cx - float64(w)/2))
	y0 := int(math.Round(cy - float64(h)/2))
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			t.screen.SetContent(x, y, ' ', nil, styleDialog)
		}
	}
	if tr.Scale < 0.9 {
		return
	}

	q := snap.Question
	t.text(x0+2, y0+1, fmt.Sprintf("Вопрос %d из %d", q.Index+1, q.Total), styleDialog.Bold(true))
	t.text(x0+w-10, y0+1, "Esc ×", styleDialog)
	t.timerBar(x0+2, y0+2, w-4, snap.Timer)
	t.text(x0+2, y0+4, clip(q.Prompt, w-4), styleDialog)
	for i, o := range q.Options {
		style := styleDialog
		switch o.State {
		case "correct":
			style = style.Background(tcell.NewRGBColor(0xe3, 0xf4, 0xe6)).Foreground(tcell.NewRGBColor(0x3d, 0x9a, 0x50))
		case "incorrect":
			style = style.Background(tcell.NewRGBColor(0xfb, 0xe4, 0xe2)).Foreground(tcell.NewRGBColor(0xd9, 0x45, 0x3b))
		}
		mark := " "
		if o.Selected {
			mark = ">"
		}
		t.text(x0+2, y0+6+i, clip(fmt.Sprintf("%s %d) %s", mark, i+1, o.Label), w-4), style)
	}
	next := "Enter: далее"
	if q.IsLast {
		next = "Enter: завершить"
	}
	style := styleDialog
	if !q.CanNext {
		style = style.Foreground(tcell.ColorGray)
	}
	t.text(x0+w-2-len([]rune(next)), y0+h-2, next, style)
}

func (t *term) timerBar(x, y, w int, tv game.TimerView) {
	filled := int(math.Round(float64(w) * tv.Progress))
	fill := tcell.NewRGBColor(0x2f, 0x77, 0xa8)
	if tv.Expired {
		fill = tcell.NewRGBColor(0xd9, 0x45, 0x3b)
	}
	label := []rune(tv.Label)
	start := (w - len(label)) / 2
	for i := 0; i < w; i++ {
		style := styleDialog.Background(tcell.NewRGBColor(0xe4, 0xe9, 0xed))
		if i < filled {
			style = style.Background(fill).Foreground(tcell.ColorWhite)
		}
		ch := ' '
		if j := i - start; j >= 0 && j < len(label) {
			ch = label[j]
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (t *term) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
