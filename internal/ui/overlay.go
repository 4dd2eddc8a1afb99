//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/kernels"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type obstacleProvider interface {
	Obstacle() (kernels.Circle, bool)
}

// Overlay draws velocity arrows and the obstacle outline over the field view.
type Overlay struct {
	fields core.FieldSource
	pixel  *ebiten.Image

	showArrows   bool
	showObstacle bool

	samples []arrowSample
	span    float64
	cacheW  int
	cacheH  int
	cacheVW int
	cacheVH int
}

// NewOverlay constructs an overlay reading from fields.
func NewOverlay(fields core.FieldSource) *Overlay {
	o := &Overlay{fields: fields, showObstacle: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles layers: 1 for arrows, 2 for the obstacle outline.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showArrows = !o.showArrows
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showObstacle = !o.showObstacle
	}
}

// Draw renders the enabled layers into a viewW by viewH rectangle.
func (o *Overlay) Draw(screen *ebiten.Image, viewW, viewH int) {
	if o.showArrows {
		o.drawArrows(screen, viewW, viewH)
	}
	if o.showObstacle {
		if provider, ok := o.fields.(obstacleProvider); ok {
			if c, on := provider.Obstacle(); on {
				sx, sy, sr := obstacleScreen(float64(c.X), float64(c.Y), float64(c.Radius), viewW, viewH)
				o.drawCircle(screen, sx, sy, sr, color.RGBA{R: 240, G: 240, B: 240, A: 200})
			}
		}
	}
}

func (o *Overlay) drawArrows(screen *ebiten.Image, viewW, viewH int) {
	vel, err := o.fields.Field("velocity")
	if err != nil || !vel.Valid() {
		return
	}
	size := vel.Size()
	if o.cacheW != size.W || o.cacheH != size.H || o.cacheVW != viewW || o.cacheVH != viewH {
		o.samples, o.span = arrowGrid(size, viewW, viewH)
		o.cacheW, o.cacheH, o.cacheVW, o.cacheVH = size.W, size.H, viewW, viewH
	}
	var top float64
	for _, s := range o.samples {
		top = math.Max(top, math.Hypot(float64(vel.At(s.gx, s.gy, 0)), float64(vel.At(s.gx, s.gy, 1))))
	}
	for _, s := range o.samples {
		vx, vy := float64(vel.At(s.gx, s.gy, 0)), float64(vel.At(s.gx, s.gy, 1))
		a := buildArrow(s, vx, vy, o.span, top)
		if a.calm {
			o.drawPoint(screen, a.tipX, a.tipY, a.thickness, a.col)
			continue
		}
		o.drawLine(screen, a.tailX, a.tailY, a.bodyX, a.bodyY, a.thickness, a.col)
		o.drawLine(screen, a.tipX, a.tipY, a.leftX, a.leftY, a.thickness*0.85, a.col)
		o.drawLine(screen, a.tipX, a.tipY, a.rightX, a.rightY, a.thickness*0.85, a.col)
	}
}

func (o *Overlay) drawCircle(screen *ebiten.Image, cx, cy, r float64, col color.RGBA) {
	if r <= 0 {
		return
	}
	segments := max(16, int(r/2))
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		a0, a1 := float64(i)*step, float64(i+1)*step
		o.drawLine(screen, cx+r*math.Cos(a0), cy+r*math.Sin(a0), cx+r*math.Cos(a1), cy+r*math.Sin(a1), 1.5, col)
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 || thickness <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
