package joystick

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type PrimitiveType int

const (
	PrimitiveTypeUnknown PrimitiveType = iota
	PrimitiveTypeButton
	PrimitiveTypeHatDirection
	PrimitiveTypeSemiAxis
	PrimitiveTypeMotor
)

func (t PrimitiveType) String() string {
	switch t {
	case PrimitiveTypeButton:
		return "button"
	case PrimitiveTypeHatDirection:
		return "hat"
	case PrimitiveTypeSemiAxis:
		return "axis"
	case PrimitiveTypeMotor:
		return "motor"
	default:
		return "unknown"
	}
}

type HatDirection int

const (
	HatDirectionNone HatDirection = iota
	HatDirectionUp
	HatDirectionDown
	HatDirectionRight
	HatDirectionLeft
)

func ParseHatDirection(direction string) (HatDirection, error) {
	switch direction {
	case "up":
		return HatDirectionUp, nil
	case "down":
		return HatDirectionDown, nil
	case "right":
		return HatDirectionRight, nil
	case "left":
		return HatDirectionLeft, nil
	default:
		return HatDirectionNone, errors.New("hat direction not supported")
	}
}

func (direction HatDirection) String() string {
	switch direction {
	case HatDirectionUp:
		return "up"
	case HatDirectionDown:
		return "down"
	case HatDirectionRight:
		return "right"
	case HatDirectionLeft:
		return "left"
	default:
		return "none"
	}
}

// Mask returns the HatState bit for the direction.
func (direction HatDirection) Mask() HatState {
	switch direction {
	case HatDirectionUp:
		return HatUp
	case HatDirectionDown:
		return HatDown
	case HatDirectionRight:
		return HatRight
	case HatDirectionLeft:
		return HatLeft
	default:
		return HatCentered
	}
}

type SemiAxisDirection int

const (
	SemiAxisNegative SemiAxisDirection = -1
	SemiAxisZero     SemiAxisDirection = 0
	SemiAxisPositive SemiAxisDirection = 1
)

func (direction SemiAxisDirection) String() string {
	switch direction {
	case SemiAxisNegative:
		return "-"
	case SemiAxisPositive:
		return "+"
	default:
		return ""
	}
}

// DriverPrimitive is a single raw input unit reported by a backend: one
// button, one hat direction, one signed half of an axis, or one motor.
type DriverPrimitive struct {
	Type      PrimitiveType
	Index     uint
	Hat       HatDirection
	Center    int
	Direction SemiAxisDirection
	Range     uint
}

func NewButton(index uint) DriverPrimitive {
	return DriverPrimitive{Type: PrimitiveTypeButton, Index: index}
}

func NewHatDirection(index uint, direction HatDirection) DriverPrimitive {
	return DriverPrimitive{Type: PrimitiveTypeHatDirection, Index: index, Hat: direction}
}

// NewSemiAxis covers [center, center + direction*range].
func NewSemiAxis(index uint, center int, direction SemiAxisDirection, rng uint) DriverPrimitive {
	return DriverPrimitive{
		Type:      PrimitiveTypeSemiAxis,
		Index:     index,
		Center:    center,
		Direction: direction,
		Range:     rng,
	}
}

func NewMotor(index uint) DriverPrimitive {
	return DriverPrimitive{Type: PrimitiveTypeMotor, Index: index}
}

func (p DriverPrimitive) IsKnown() bool {
	return p.Type != PrimitiveTypeUnknown
}

// String renders the primitive's attribute value: "3" for a button or a
// motor, "h0up" for a hat direction and "+2"/"-2" for a semi-axis.
func (p DriverPrimitive) String() string {
	switch p.Type {
	case PrimitiveTypeButton, PrimitiveTypeMotor:
		return strconv.FormatUint(uint64(p.Index), 10)
	case PrimitiveTypeHatDirection:
		return "h" + strconv.FormatUint(uint64(p.Index), 10) + p.Hat.String()
	case PrimitiveTypeSemiAxis:
		return p.Direction.String() + strconv.FormatUint(uint64(p.Index), 10)
	default:
		return ""
	}
}

// ParsePrimitive is the inverse of DriverPrimitive.String. Semi-axes are
// returned with center 0 and range 1.
func ParsePrimitive(t PrimitiveType, value string) (DriverPrimitive, error) {
	switch t {
	case PrimitiveTypeButton, PrimitiveTypeMotor:
		index, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return DriverPrimitive{}, fmt.Errorf("invalid %s index %q: %w", t, value, err)
		}

		if t == PrimitiveTypeMotor {
			return NewMotor(uint(index)), nil
		}

		return NewButton(uint(index)), nil

	case PrimitiveTypeHatDirection:
		raw, ok := strings.CutPrefix(value, "h")
		if !ok {
			return DriverPrimitive{}, fmt.Errorf("invalid hat %q", value)
		}

		i := strings.IndexFunc(raw, func(r rune) bool { return r < '0' || r > '9' })
		if i <= 0 {
			return DriverPrimitive{}, fmt.Errorf("invalid hat %q", value)
		}

		index, err := strconv.ParseUint(raw[:i], 10, 32)
		if err != nil {
			return DriverPrimitive{}, fmt.Errorf("invalid hat %q: %w", value, err)
		}

		direction, err := ParseHatDirection(raw[i:])
		if err != nil {
			return DriverPrimitive{}, fmt.Errorf("invalid hat %q: %w", value, err)
		}

		return NewHatDirection(uint(index), direction), nil

	case PrimitiveTypeSemiAxis:
		if len(value) < 2 {
			return DriverPrimitive{}, fmt.Errorf("invalid axis %q", value)
		}

		var direction SemiAxisDirection
		switch value[0] {
		case '+':
			direction = SemiAxisPositive
		case '-':
			direction = SemiAxisNegative
		default:
			return DriverPrimitive{}, fmt.Errorf("invalid axis %q: missing direction", value)
		}

		index, err := strconv.ParseUint(value[1:], 10, 32)
		if err != nil {
			return DriverPrimitive{}, fmt.Errorf("invalid axis %q: %w", value, err)
		}

		return NewSemiAxis(uint(index), 0, direction, 1), nil

	default:
		return DriverPrimitive{}, errors.New("primitive type not supported")
	}
}

// SemiAxisIntersects reports whether point lies on the segment covered by
// a semi-axis primitive.
func SemiAxisIntersects(semiaxis DriverPrimitive, point float64) bool {
	if semiaxis.Type != PrimitiveTypeSemiAxis {
		return false
	}

	endpoint1 := semiaxis.Center
	endpoint2 := semiaxis.Center + int(semiaxis.Direction)*int(semiaxis.Range)

	lo, hi := float64(min(endpoint1, endpoint2)), float64(max(endpoint1, endpoint2))

	return lo <= point && point <= hi
}

var semiAxisSamplePoints = [...]float64{-0.5, 0.5}

// PrimitivesConflict reports whether two primitives occupy the same
// physical input.
func PrimitivesConflict(p1, p2 DriverPrimitive) bool {
	if p1.Type != p2.Type {
		return false
	}

	switch p1.Type {
	case PrimitiveTypeUnknown:
		return false

	case PrimitiveTypeButton, PrimitiveTypeMotor:
		return p1.Index == p2.Index

	case PrimitiveTypeHatDirection:
		return p1.Index == p2.Index && p1.Hat == p2.Hat

	case PrimitiveTypeSemiAxis:
		if p1.Index != p2.Index {
			return false
		}

		for _, point := range semiAxisSamplePoints {
			if SemiAxisIntersects(p1, point) && SemiAxisIntersects(p2, point) {
				return true
			}
		}

		return false

	default:
		return p1.Index == p2.Index
	}
}
