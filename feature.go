package joystick

import (
	"errors"
	"slices"
	"strings"
)

type FeatureType int

const (
	FeatureTypeUnknown FeatureType = iota
	FeatureTypeScalar
	FeatureTypeAnalogStick
	FeatureTypeAccelerometer
	FeatureTypeMotor
)

func ParseFeatureType(t string) (FeatureType, error) {
	switch t {
	case "scalar":
		return FeatureTypeScalar, nil
	case "analogstick":
		return FeatureTypeAnalogStick, nil
	case "accelerometer":
		return FeatureTypeAccelerometer, nil
	case "motor":
		return FeatureTypeMotor, nil
	default:
		return FeatureTypeUnknown, errors.New("feature type not supported")
	}
}

func (t FeatureType) String() string {
	switch t {
	case FeatureTypeScalar:
		return "scalar"
	case FeatureTypeAnalogStick:
		return "analogstick"
	case FeatureTypeAccelerometer:
		return "accelerometer"
	case FeatureTypeMotor:
		return "motor"
	default:
		return "unknown"
	}
}

// Slots lists the primitive slots a feature of this type carries.
func (t FeatureType) Slots() []Slot {
	switch t {
	case FeatureTypeScalar:
		return []Slot{SlotScalar}
	case FeatureTypeAnalogStick:
		return []Slot{SlotUp, SlotDown, SlotRight, SlotLeft}
	case FeatureTypeAccelerometer:
		return []Slot{SlotPositiveX, SlotPositiveY, SlotPositiveZ}
	case FeatureTypeMotor:
		return []Slot{SlotMotor}
	default:
		return nil
	}
}

// Slot names one primitive position inside a feature.
type Slot int

const (
	SlotScalar Slot = iota
	SlotUp
	SlotDown
	SlotRight
	SlotLeft
	SlotPositiveX
	SlotPositiveY
	SlotPositiveZ
	SlotMotor

	slotCount
)

func (slot Slot) String() string {
	switch slot {
	case SlotScalar:
		return "scalar"
	case SlotUp:
		return "up"
	case SlotDown:
		return "down"
	case SlotRight:
		return "right"
	case SlotLeft:
		return "left"
	case SlotPositiveX:
		return "positive-x"
	case SlotPositiveY:
		return "positive-y"
	case SlotPositiveZ:
		return "positive-z"
	case SlotMotor:
		return "motor"
	default:
		return "unknown"
	}
}

// FeatureType returns the type of feature owning the slot.
func (slot Slot) FeatureType() FeatureType {
	switch slot {
	case SlotScalar:
		return FeatureTypeScalar
	case SlotUp, SlotDown, SlotRight, SlotLeft:
		return FeatureTypeAnalogStick
	case SlotPositiveX, SlotPositiveY, SlotPositiveZ:
		return FeatureTypeAccelerometer
	case SlotMotor:
		return FeatureTypeMotor
	default:
		return FeatureTypeUnknown
	}
}

// Feature is an abstract, controller-agnostic input such as "a" or
// "leftstick", built from the driver primitives held in its slots.
// Features are values; two features are equal iff == holds.
type Feature struct {
	Name       string
	Type       FeatureType
	primitives [slotCount]DriverPrimitive
}

func NewFeature(name string, t FeatureType) Feature {
	return Feature{Name: name, Type: t}
}

func NewScalar(name string, primitive DriverPrimitive) Feature {
	f := NewFeature(name, FeatureTypeScalar)
	f.primitives[SlotScalar] = primitive
	return f
}

func NewMotorFeature(name string, primitive DriverPrimitive) Feature {
	f := NewFeature(name, FeatureTypeMotor)
	f.primitives[SlotMotor] = primitive
	return f
}

func NewAnalogStick(name string, up, down, right, left DriverPrimitive) Feature {
	f := NewFeature(name, FeatureTypeAnalogStick)
	f.primitives[SlotUp] = up
	f.primitives[SlotDown] = down
	f.primitives[SlotRight] = right
	f.primitives[SlotLeft] = left
	return f
}

func NewAccelerometer(name string, x, y, z DriverPrimitive) Feature {
	f := NewFeature(name, FeatureTypeAccelerometer)
	f.primitives[SlotPositiveX] = x
	f.primitives[SlotPositiveY] = y
	f.primitives[SlotPositiveZ] = z
	return f
}

func (f Feature) Primitive(slot Slot) DriverPrimitive {
	if slot < 0 || slot >= slotCount || slot.FeatureType() != f.Type {
		return DriverPrimitive{}
	}

	return f.primitives[slot]
}

// SetPrimitive is ignored for slots that do not belong to the feature's type.
func (f *Feature) SetPrimitive(slot Slot, primitive DriverPrimitive) {
	if slot < 0 || slot >= slotCount || slot.FeatureType() != f.Type {
		return
	}

	f.primitives[slot] = primitive
}

func (f Feature) Slots() []Slot {
	return f.Type.Slots()
}

// Primitives returns the known primitives in slot order.
func (f Feature) Primitives() []DriverPrimitive {
	primitives := make([]DriverPrimitive, 0, len(f.Slots()))
	for _, slot := range f.Slots() {
		if p := f.primitives[slot]; p.IsKnown() {
			primitives = append(primitives, p)
		}
	}

	return primitives
}

func (f Feature) IsValid() bool {
	for _, slot := range f.Slots() {
		if f.primitives[slot].IsKnown() {
			return true
		}
	}

	return false
}

// Conflicts reports whether any known primitive of f conflicts with p.
func (f Feature) Conflicts(p DriverPrimitive) bool {
	for _, slot := range f.Slots() {
		if PrimitivesConflict(f.primitives[slot], p) {
			return true
		}
	}

	return false
}

// SortFeatures orders features by name.
func SortFeatures(features []Feature) {
	slices.SortFunc(features, func(a, b Feature) int {
		return strings.Compare(a.Name, b.Name)
	})
}
