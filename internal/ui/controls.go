package ui

import (
	"image"
	"math"
	"strconv"

	"fluidsim/internal/core"
)

// controlPanel holds the layout and value state of the HUD rows. It carries
// no drawing code so both builds share it.
type controlPanel struct {
	width    int
	controls []controlState

	ints   core.IntParameterSetter
	floats core.FloatParameterSetter
	bools  core.BoolParameterSetter
}

type controlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	boolValue  bool
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

func newControlPanel(target any, width int) *controlPanel {
	p := &controlPanel{width: width}
	if provider, ok := target.(core.ParameterControlsProvider); ok {
		controls := provider.ParameterControls()
		p.controls = make([]controlState, len(controls))
		for i, ctrl := range controls {
			p.controls[i] = controlState{control: ctrl, value: "--"}
		}
		p.layout()
	}
	p.ints, _ = target.(core.IntParameterSetter)
	p.floats, _ = target.(core.FloatParameterSetter)
	p.bools, _ = target.(core.BoolParameterSetter)
	return p
}

func (p *controlPanel) layout() {
	if p.width <= 0 {
		return
	}
	for i := range p.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(p.width-panelPadding-buttonSize, buttonY, p.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		p.controls[i].top = top
		p.controls[i].minusRect = minus
		p.controls[i].plusRect = plus
	}
}

// bottom is the y coordinate just below the last control row.
func (p *controlPanel) bottom() int {
	return controlsTop + len(p.controls)*lineHeight
}

func (p *controlPanel) refresh(snap core.ParameterSnapshot) {
	for i := range p.controls {
		state := &p.controls[i]
		state.hasValue = false
		state.value = "--"
		param, ok := snap.Lookup(state.control.Key)
		if !ok {
			continue
		}
		switch state.control.Type {
		case core.ParamTypeInt:
			v, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue, state.floatValue = v, float64(v)
			state.value = strconv.Itoa(v)
		case core.ParamTypeFloat:
			v, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = v
			state.value = formatFloat(state.control, v)
		case core.ParamTypeBool:
			v, err := strconv.ParseBool(param.Value)
			if err != nil {
				continue
			}
			state.boolValue = v
			state.value = onOff(v)
		default:
			continue
		}
		state.hasValue = true
	}
}

// click applies the button under panel coordinates (x, y), if any.
func (p *controlPanel) click(x, y int) bool {
	for i := range p.controls {
		state := &p.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(x, y, state.minusRect) {
			return p.adjust(state, -1)
		}
		if pointInRect(x, y, state.plusRect) {
			return p.adjust(state, 1)
		}
	}
	return false
}

// next computes the value a press in direction would produce. ok is false
// when the control cannot move that way.
func (p *controlPanel) next(state *controlState, direction int) (float64, bool) {
	if state == nil || direction == 0 || !state.hasValue {
		return 0, false
	}
	ctrl := state.control
	switch ctrl.Type {
	case core.ParamTypeInt:
		if p.ints == nil {
			return 0, false
		}
		step := math.Round(ctrl.Step)
		if step <= 0 {
			step = 1
		}
		target := ctrl.Clamp(float64(state.intValue) + float64(direction)*step)
		target = math.Round(target)
		return target, int(target) != state.intValue
	case core.ParamTypeFloat:
		if p.floats == nil {
			return 0, false
		}
		step := ctrl.Step
		if step <= 0 {
			step = defaultFloatStep
		}
		target := ctrl.Clamp(state.floatValue + float64(direction)*step)
		return target, math.Abs(target-state.floatValue) >= 1e-9
	case core.ParamTypeBool:
		if p.bools == nil {
			return 0, false
		}
		want := direction > 0
		if want == state.boolValue {
			return 0, false
		}
		if want {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (p *controlPanel) adjust(state *controlState, direction int) bool {
	target, ok := p.next(state, direction)
	if !ok {
		return false
	}
	key := state.control.Key
	switch state.control.Type {
	case core.ParamTypeInt:
		if !p.ints.SetIntParameter(key, int(target)) {
			return false
		}
		state.intValue, state.floatValue = int(target), target
		state.value = strconv.Itoa(int(target))
	case core.ParamTypeFloat:
		if !p.floats.SetFloatParameter(key, target) {
			return false
		}
		state.floatValue = target
		state.value = formatFloat(state.control, target)
	case core.ParamTypeBool:
		if !p.bools.SetBoolParameter(key, target > 0) {
			return false
		}
		state.boolValue = target > 0
		state.value = onOff(state.boolValue)
	}
	return true
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = defaultFloatStep
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

const defaultFloatStep = 0.05

const (
	panelPadding   = 12
	lineHeight     = 30
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 20
	infoSpacing    = 18
	controlsTop    = panelPadding + headerBaseline + 14
)
