// Command hexdesk plays the hex quiz in a desktop or mobile window with mouse
// and touch input.
package main

import (
	"bytes"
	"flag"
	"image"
	"image/color"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"hexquiz/internal/client"
	"hexquiz/internal/config"
	"hexquiz/internal/game"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/interaction"
	"hexquiz/internal/modal"
)

const (
	dialogW = 480
	dialogH = 400
	margin  = 24
)

var (
	colorSea      = color.RGBA{R: 0x1d, G: 0x4f, B: 0x73, A: 0xff}
	colorInk      = color.RGBA{R: 0x10, G: 0x20, B: 0x2c, A: 0xff}
	colorAccent   = color.RGBA{R: 0xd9, G: 0x45, B: 0x3b, A: 0xff}
	colorBlue     = color.RGBA{R: 0x2f, G: 0x77, B: 0xa8, A: 0xff}
	colorTrack    = color.RGBA{R: 0xe4, G: 0xe9, B: 0xed, A: 0xff}
	colorOption   = color.RGBA{R: 0xf6, G: 0xf8, B: 0xfa, A: 0xff}
	colorCorrect  = color.RGBA{R: 0xe3, G: 0xf4, B: 0xe6, A: 0xff}
	colorWrong    = color.RGBA{R: 0xfb, G: 0xe4, B: 0xe2, A: 0xff}
	colorDisabled = color.RGBA{R: 0xb0, G: 0xb8, B: 0xbe, A: 0xff}
)

type touch struct {
	id     ebiten.TouchID
	x, y   int
	active bool
}

type desk struct {
	local *client.Local
	snap  game.Snapshot
	fit   client.Fit
	w, h  int

	face   *text.GoTextFace
	small  *text.GoTextFace
	white  *ebiten.Image
	dialog *ebiten.Image

	touch  touch
	status string
}

func main() {
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	local, err := client.NewLocal(cfg, client.Options{Mute: *mute})
	if err != nil {
		log.Fatal(err)
	}
	defer local.Close()

	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Fatal(err)
	}
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)

	d := &desk{
		local:  local,
		face:   &text.GoTextFace{Source: src, Size: 18},
		small:  &text.GoTextFace{Source: src, Size: 14},
		white:  white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		dialog: ebiten.NewImage(dialogW, dialogH),
	}

	ebiten.SetWindowSize(1024, 768)
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowTitle("Hexquiz")
	if err := ebiten.RunGame(d); err != nil {
		log.Fatal(err)
	}
}

func (d *desk) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != d.w || outsideHeight != d.h {
		d.w, d.h = outsideWidth, outsideHeight
		d.fit = client.NewFit(d.local.Session.Board().Bounds(), float64(d.w), float64(d.h), margin, 1)
		d.local.Session.SetViewport(modal.Viewport{Width: float64(d.w), Height: float64(d.h)})
	}
	return outsideWidth, outsideHeight
}

func (d *desk) Update() error {
	now := time.Now()
	sess := d.local.Session
	snap := sess.Snapshot(now)

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && snap.Modal.Mounted {
		sess.Close()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch {
		case !snap.Started:
			d.report(sess.Start())
		case snap.Modal.Mounted:
			d.report(sess.Next())
		}
	}
	if snap.Modal.Mounted {
		for i, k := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6} {
			if inpututil.IsKeyJustPressed(k) {
				d.report(d.local.AnswerAt(i, now))
			}
		}
	}

	kind, x, y, pressed, released := d.pointer()
	switch {
	case snap.Modal.Mounted:
		sess.ResetPointer(now)
		if released {
			d.clickDialog(snap, x, y, now)
		}
	case !snap.Started:
		if released && snap.Ready && image.Pt(x, y).In(d.playButton()) {
			d.report(sess.Start())
		}
	default:
		screen := hexgeom.Point{X: float64(x), Y: float64(y)}
		sess.Sample(kind, screen, d.fit.ToBoard(float64(x), float64(y)), pressed, now)
	}

	d.snap = d.local.Frame(now)
	return nil
}

// pointer reads the first touch if there is one, otherwise the mouse.
// released reports the end of a press this tick.
func (d *desk) pointer() (kind interaction.Kind, x, y int, pressed, released bool) {
	ids := ebiten.AppendTouchIDs(nil)
	if d.touch.active {
		for _, id := range ids {
			if id == d.touch.id {
				d.touch.x, d.touch.y = ebiten.TouchPosition(id)
				return interaction.Touch, d.touch.x, d.touch.y, true, false
			}
		}
		d.touch.active = false
		return interaction.Touch, d.touch.x, d.touch.y, false, true
	}
	if len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		d.touch = touch{id: ids[0], x: x, y: y, active: true}
		return interaction.Touch, x, y, true, false
	}
	x, y = ebiten.CursorPosition()
	return interaction.Mouse, x, y,
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

func (d *desk) report(err error) {
	if err != nil {
		d.status = err.Error()
		log.Printf("action: %v", err)
		return
	}
	d.status = ""
}

func (d *desk) Draw(screen *ebiten.Image) {
	screen.Fill(colorSea)
	snap := d.snap

	for _, c := range snap.Cells {
		d.fillPolygon(screen, c.Corners[:], client.Colour(c.Kind, c.Selectable, c.Raised), c.Raised)
	}
	if u := snap.Unit; u != nil {
		x, y := d.fit.ToScreen(u.Center)
		r := float32(u.Size * d.fit.Scale / 2)
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, colorAccent, true)
		vector.DrawFilledCircle(screen, float32(x), float32(y)-r/6, r/3, color.White, true)
	}

	switch {
	case snap.LoaderVisible:
		d.label(screen, d.small, "Загрузка…", 12, float64(d.h)-28, color.White)
	case !snap.Started:
		btn := d.playButton()
		fill := colorAccent
		if !snap.Ready {
			fill = colorDisabled
		}
		d.button(screen, btn, "Играть", fill, color.White)
	case snap.Hint:
		d.label(screen, d.face, "Тыкни по гексу, чтобы выбрать уровень", 12, float64(d.h)-36, color.White)
	}
	if d.status != "" {
		d.label(screen, d.small, d.status, 12, 12, color.RGBA{R: 0xff, G: 0xd2, B: 0xcd, A: 0xff})
	}

	if snap.Modal.Mounted {
		d.drawDialog(screen, snap)
	}
}

func (d *desk) fillPolygon(dst *ebiten.Image, corners []hexgeom.Point, fill color.RGBA, lift bool) {
	if len(corners) == 0 {
		return
	}
	lifted := 0.0
	if lift {
		lifted = -6
	}
	var path vector.Path
	for i, p := range corners {
		x, y := d.fit.ToScreen(p)
		if i == 0 {
			path.MoveTo(float32(x), float32(y+lifted))
			continue
		}
		path.LineTo(float32(x), float32(y+lifted))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	paint(vs, fill)
	dst.DrawTriangles(vs, is, d.white, &ebiten.DrawTrianglesOptions{AntiAlias: true})

	vs, is = path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{Width: 1.5, LineJoin: vector.LineJoinRound})
	paint(vs, color.RGBA{A: 0x60})
	dst.DrawTriangles(vs, is, d.white, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func paint(vs []ebiten.Vertex, c color.RGBA) {
	r, g, b, a := float32(c.R)/0xff, float32(c.G)/0xff, float32(c.B)/0xff, float32(c.A)/0xff
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r*a, g*a, b*a, a
	}
}

func (d *desk) playButton() image.Rectangle {
	return image.Rect(d.w/2-80, d.h-84, d.w/2+80, d.h-36)
}

// Dialog-local rectangles.
var (
	closeRect = image.Rect(dialogW-48, 12, dialogW-12, 48)
	nextRect  = image.Rect(dialogW-180, dialogH-64, dialogW-20, dialogH-20)
)

func optionRect(i int) image.Rectangle {
	top := 170 + i*52
	return image.Rect(20, top, dialogW-20, top+44)
}

// dialogGeom returns the dialog's top-left corner and scale on screen.
func (d *desk) dialogGeom(tr modal.Transform) (x, y, scale float64) {
	cx := float64(d.w)/2 + tr.DX
	cy := float64(d.h)/2 + tr.DY
	return cx - dialogW*tr.Scale/2, cy - dialogH*tr.Scale/2, tr.Scale
}

func (d *desk) clickDialog(snap game.Snapshot, x, y int, now time.Time) {
	if snap.Modal.Phase != modal.Open {
		return
	}
	ox, oy, scale := d.dialogGeom(snap.Modal.Transform)
	if scale <= 0 {
		return
	}
	p := image.Pt(int((float64(x)-ox)/scale), int((float64(y)-oy)/scale))
	sess := d.local.Session
	switch {
	case p.In(closeRect):
		sess.Close()
	case p.In(nextRect):
		d.report(sess.Next())
	case !p.In(image.Rect(0, 0, dialogW, dialogH)):
		// Clicks outside the dialog land on the backdrop.
	default:
		for i := range snap.Question.Options {
			if p.In(optionRect(i)) {
				d.report(d.local.AnswerAt(i, now))
			}
		}
	}
}

func (d *desk) drawDialog(screen *ebiten.Image, snap game.Snapshot) {
	tr := snap.Modal.Transform
	if tr.Opacity <= 0 || tr.Scale <= 0 {
		return
	}
	vector.DrawFilledRect(screen, 0, 0, float32(d.w), float32(d.h), color.RGBA{A: uint8(0x5a * tr.Opacity)}, false)

	img := d.dialog
	img.Clear()
	vector.DrawFilledRect(img, 0, 0, dialogW, dialogH, color.White, false)
	q := snap.Question

	d.label(img, d.face, "Вопрос "+strconv.Itoa(q.Index+1)+" из "+strconv.Itoa(q.Total), 20, 20, colorInk)
	d.label(img, d.face, "×", float64(closeRect.Min.X)+12, float64(closeRect.Min.Y)+6, colorInk)

	tv := snap.Timer
	fill := colorBlue
	if tv.Expired {
		fill = colorAccent
	}
	vector.DrawFilledRect(img, 20, 60, dialogW-40, 22, colorTrack, false)
	vector.DrawFilledRect(img, 20, 60, float32((dialogW-40)*tv.Progress), 22, fill, false)
	w := text.Advance(tv.Label, d.small)
	d.label(img, d.small, tv.Label, (dialogW-w)/2, 62, colorInk)

	for i, line := range wrap(q.Prompt, d.face, dialogW-40) {
		if i == 3 {
			break
		}
		d.label(img, d.face, line, 20, 96+float64(i)*24, colorInk)
	}

	for i, o := range q.Options {
		bg := colorOption
		switch o.State {
		case "correct":
			bg = colorCorrect
		case "incorrect":
			bg = colorWrong
		}
		r := optionRect(i)
		if o.Selected {
			vector.DrawFilledRect(img, float32(r.Min.X-2), float32(r.Min.Y-2), float32(r.Dx()+4), float32(r.Dy()+4), colorBlue, false)
		}
		d.button(img, r, strconv.Itoa(i+1)+") "+o.Label, bg, colorInk)
	}

	next := "Далее"
	if q.IsLast {
		next = "Завершить"
	}
	nextFill := colorAccent
	if !q.CanNext {
		nextFill = colorDisabled
	}
	d.button(img, nextRect, next, nextFill, color.White)

	x, y, scale := d.dialogGeom(tr)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(tr.Opacity))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (d *desk) button(dst *ebiten.Image, r image.Rectangle, label string, fill, ink color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), fill, false)
	d.label(dst, d.face, label, float64(r.Min.X)+12, float64(r.Min.Y)+float64(r.Dy())/2-11, ink)
}

func (d *desk) label(dst *ebiten.Image, face *text.GoTextFace, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

func wrap(s string, face text.Face, width float64) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		try := word
		if line != "" {
			try = line + " " + word
		}
		if line != "" && text.Advance(try, face) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line = try
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
