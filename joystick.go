package joystick

import (
	"math"
	"slices"
)

// HatState is a bitmask of the pressed hat directions. Only the centered
// state, the four cardinal directions and the four diagonals are valid.
type HatState uint8

const (
	HatCentered HatState = 0x00
	HatUp       HatState = 0x01
	HatRight    HatState = 0x02
	HatDown     HatState = 0x04
	HatLeft     HatState = 0x08
)

func (hat HatState) IsValid() bool {
	if hat > HatUp|HatRight|HatDown|HatLeft {
		return false
	}

	if hat&HatUp != 0 && hat&HatDown != 0 {
		return false
	}

	if hat&HatLeft != 0 && hat&HatRight != 0 {
		return false
	}

	return true
}

func (hat HatState) String() string {
	switch hat {
	case HatCentered:
		return "centered"
	case HatUp:
		return "up"
	case HatRight:
		return "right"
	case HatDown:
		return "down"
	case HatLeft:
		return "left"
	case HatUp | HatRight:
		return "up_right"
	case HatUp | HatLeft:
		return "up_left"
	case HatDown | HatRight:
		return "down_right"
	case HatDown | HatLeft:
		return "down_left"
	default:
		return "invalid"
	}
}

// RawState is one poll of a device.
type RawState struct {
	Buttons []bool
	Hats    []HatState
	Axes    []float64
}

// NormalizeAxis converts a raw axis value with the given amplitude to
// [-1, 1].
func NormalizeAxis(raw int, amplitude int) float64 {
	if amplitude <= 0 {
		return 0
	}

	v := float64(raw) / float64(amplitude)
	return math.Max(-1, math.Min(1, v))
}

type EventType int

const (
	EventConnected EventType = iota
	EventDisconnected
	EventButton
	EventHat
	EventAxis
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventButton:
		return "button"
	case EventHat:
		return "hat"
	case EventAxis:
		return "axis"
	default:
		return "unknown"
	}
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type Event struct {
	Joystick int               `json:"joystick"`
	Type     EventType         `json:"type"`
	Device   *DeviceDescriptor `json:"device,omitempty"`
	Index    uint              `json:"index,omitempty"`
	Pressed  bool              `json:"pressed,omitempty"`
	Hat      HatState          `json:"hat,omitempty"`
	Value    float64           `json:"value,omitempty"`
}

// Joystick tracks the last reported state of one device and turns new
// polls into change events.
type Joystick struct {
	index      int
	device     Device
	descriptor DeviceDescriptor

	calibrators []*AxisCalibrator
	state       RawState
	config      DeviceConfiguration
}

func NewJoystick(index int, device Device) *Joystick {
	descriptor := device.Descriptor()

	calibrators := make([]*AxisCalibrator, descriptor.AxisCount)
	for i := range calibrators {
		calibrators[i] = NewAxisCalibrator()
	}

	return &Joystick{
		index:       index,
		device:      device,
		descriptor:  descriptor,
		calibrators: calibrators,
	}
}

func (j *Joystick) Index() int {
	return j.index
}

func (j *Joystick) Descriptor() DeviceDescriptor {
	return j.descriptor
}

// SetIgnoredPrimitives suppresses events of the given primitives.
func (j *Joystick) SetIgnoredPrimitives(primitives []DriverPrimitive) {
	j.config.SetIgnoredPrimitives(primitives)
}

func (j *Joystick) calibrator(i int) *AxisCalibrator {
	for len(j.calibrators) <= i {
		j.calibrators = append(j.calibrators, NewAxisCalibrator())
	}

	return j.calibrators[i]
}

// Update diffs state against the previous poll. Every axis sample goes
// through the axis' calibrator, changed or not.
func (j *Joystick) Update(state RawState) []Event {
	var events []Event

	buttons := make([]bool, len(state.Buttons))
	for i, pressed := range state.Buttons {
		if j.config.IsIgnored(NewButton(uint(i))) {
			pressed = false
		}

		buttons[i] = pressed

		if pressed != stateAt(j.state.Buttons, i) {
			events = append(events, j.event(EventButton, uint(i), func(e *Event) {
				e.Pressed = pressed
			}))
		}
	}

	hats := make([]HatState, len(state.Hats))
	for i, hat := range state.Hats {
		if !hat.IsValid() {
			hat = HatCentered
		}

		for _, direction := range []HatDirection{HatDirectionUp, HatDirectionDown, HatDirectionRight, HatDirectionLeft} {
			if j.config.IsIgnored(NewHatDirection(uint(i), direction)) {
				hat &^= direction.Mask()
			}
		}

		hats[i] = hat

		if hat != stateAt(j.state.Hats, i) {
			events = append(events, j.event(EventHat, uint(i), func(e *Event) {
				e.Hat = hat
			}))
		}
	}

	axes := make([]float64, len(state.Axes))
	for i, raw := range state.Axes {
		value := j.calibrator(i).Filter(raw)

		if value > 0 && j.config.IsIgnored(NewSemiAxis(uint(i), 0, SemiAxisPositive, 1)) ||
			value < 0 && j.config.IsIgnored(NewSemiAxis(uint(i), 0, SemiAxisNegative, 1)) {
			value = 0
		}

		axes[i] = value

		if value != stateAt(j.state.Axes, i) {
			events = append(events, j.event(EventAxis, uint(i), func(e *Event) {
				e.Value = value
			}))
		}
	}

	j.state = RawState{
		Buttons: buttons,
		Hats:    hats,
		Axes:    axes,
	}

	return events
}

func (j *Joystick) State() RawState {
	return RawState{
		Buttons: slices.Clone(j.state.Buttons),
		Hats:    slices.Clone(j.state.Hats),
		Axes:    slices.Clone(j.state.Axes),
	}
}

func (j *Joystick) event(t EventType, index uint, fn func(e *Event)) Event {
	e := Event{
		Joystick: j.index,
		Type:     t,
		Index:    index,
	}

	if fn != nil {
		fn(&e)
	}

	return e
}

func stateAt[T any](values []T, i int) T {
	var zero T
	if i >= len(values) {
		return zero
	}

	return values[i]
}
