package ui

import (
	"image/color"
	"math"

	"fluidsim/internal/core"
)

// arrowSample is one probe point of the velocity overlay: a grid cell (y up)
// and the screen position of its centre (y down).
type arrowSample struct {
	gx, gy int
	sx, sy float64
}

const (
	targetSamples = 360.0
	minSpacing    = 4
	maxSpacing    = 20
)

// arrowGrid spreads roughly targetSamples probes evenly over a grid of size
// drawn into a viewW by viewH rectangle. span is the screen distance between
// neighbouring probes.
func arrowGrid(size core.Size, viewW, viewH int) (samples []arrowSample, span float64) {
	if size.W <= 0 || size.H <= 0 || viewW <= 0 || viewH <= 0 {
		return nil, 0
	}
	spacing := int(math.Sqrt(float64(size.Cells()) / targetSamples))
	spacing = max(minSpacing, min(maxSpacing, spacing))

	countX := max(1, (size.W+spacing-1)/spacing)
	countY := max(1, (size.H+spacing-1)/spacing)
	startX := max(0, (size.W-1-(countX-1)*spacing)/2)
	startY := max(0, (size.H-1-(countY-1)*spacing)/2)

	kx := float64(viewW) / float64(size.W)
	ky := float64(viewH) / float64(size.H)
	samples = make([]arrowSample, 0, countX*countY)
	for yi := 0; yi < countY; yi++ {
		gy := min(size.H-1, startY+yi*spacing)
		for xi := 0; xi < countX; xi++ {
			gx := min(size.W-1, startX+xi*spacing)
			samples = append(samples, arrowSample{
				gx: gx, gy: gy,
				sx: (float64(gx) + 0.5) * kx,
				sy: float64(viewH) - (float64(gy)+0.5)*ky,
			})
		}
	}
	return samples, float64(spacing) * math.Min(kx, ky)
}

// arrow is the screen geometry of one velocity glyph.
type arrow struct {
	calm bool

	tailX, tailY   float64
	bodyX, bodyY   float64
	tipX, tipY     float64
	leftX, leftY   float64
	rightX, rightY float64

	thickness float64
	col       color.RGBA
}

const (
	calmFraction = 0.02
	headAngle    = math.Pi / 6
)

// buildArrow shapes the glyph for velocity (vx, vy), given in grid units with
// y up, at sample s. Lengths grow with the square root of speed/maxSpeed.
func buildArrow(s arrowSample, vx, vy, span, maxSpeed float64) arrow {
	speed := math.Hypot(vx, vy)
	if maxSpeed <= 0 || speed < calmFraction*maxSpeed {
		return arrow{calm: true, tipX: s.sx, tipY: s.sy, thickness: math.Max(1, span*0.15), col: calmColor}
	}
	nx, ny := vx/speed, -vy/speed
	t := clamp01(speed / maxSpeed)
	length := span * (0.35 + 0.35*math.Sqrt(t))
	head := length * 0.3
	tail := length * 0.4

	a := arrow{
		tailX: s.sx - nx*tail,
		tailY: s.sy - ny*tail,
		tipX:  s.sx + nx*(length-tail),
		tipY:  s.sy + ny*(length-tail),
	}
	a.bodyX = a.tipX - nx*head
	a.bodyY = a.tipY - ny*head
	angle := math.Atan2(ny, nx)
	a.leftX = a.tipX - math.Cos(angle+headAngle)*head
	a.leftY = a.tipY - math.Sin(angle+headAngle)*head
	a.rightX = a.tipX - math.Cos(angle-headAngle)*head
	a.rightY = a.tipY - math.Sin(angle-headAngle)*head
	a.thickness = math.Max(1, 1+t)
	a.col = arrowColor(t)
	return a
}

var calmColor = color.RGBA{R: 90, G: 130, B: 170, A: 120}

func arrowColor(t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: uint8(math.Round(80 + 170*t)),
		G: uint8(math.Round(170 + 50*t)),
		B: uint8(math.Round(230 - 150*t)),
		A: uint8(math.Round(150 + 90*t)),
	}
}

// obstacleScreen places a normalized circle in a viewW by viewH rectangle.
// The radius scales with the shorter side, like the grid mask.
func obstacleScreen(x, y, r float64, viewW, viewH int) (sx, sy, sr float64) {
	short := math.Min(float64(viewW), float64(viewH))
	return x * float64(viewW), (1 - y) * float64(viewH), r * short
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
