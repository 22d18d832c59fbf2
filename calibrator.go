package joystick

type AxisState int

const (
	AxisStateUnknown AxisState = iota
	AxisStateDiscreteDPad
	AxisStateNotDiscreteDPad
	AxisStateCenterKnown
	AxisStateRangeKnown
)

func (state AxisState) String() string {
	switch state {
	case AxisStateDiscreteDPad:
		return "discrete_dpad"
	case AxisStateNotDiscreteDPad:
		return "not_discrete_dpad"
	case AxisStateCenterKnown:
		return "center_known"
	case AxisStateRangeKnown:
		return "range_known"
	default:
		return "unknown"
	}
}

type AxisCenter int

const (
	CenterZero        AxisCenter = 0
	CenterNegativeOne AxisCenter = -1
	CenterPositiveOne AxisCenter = 1
)

type AxisRange int

const (
	RangeHalf AxisRange = iota
	RangeFull
)

// centerThreshold separates a trigger resting at an extreme from a stick
// that is merely deflected.
const centerThreshold = 0.8

// AxisCalibrator detects triggers that rest at -1 or +1 instead of 0 and
// rewrites their samples onto a canonical range. Axes that only ever
// report -1, 0 and 1 are treated as a d-pad and left untouched.
//
// Filter must be called with the samples of a single axis in the order
// they were read.
type AxisCalibrator struct {
	state  AxisState
	center AxisCenter
	rng    AxisRange

	centerKnown     bool
	seenCenter      bool
	seenPositiveOne bool
	seenNegativeOne bool
}

func NewAxisCalibrator() *AxisCalibrator {
	return new(AxisCalibrator)
}

func (c *AxisCalibrator) State() AxisState {
	return c.state
}

func (c *AxisCalibrator) Center() AxisCenter {
	return c.center
}

func (c *AxisCalibrator) Range() AxisRange {
	return c.rng
}

func (c *AxisCalibrator) IsAnomalous() bool {
	return c.center != CenterZero
}

func (c *AxisCalibrator) Filter(value float64) float64 {
	// The first sample is the resting position.
	if !c.centerKnown {
		c.center = classifyCenter(value)
		c.centerKnown = true
	}

	if c.state == AxisStateUnknown || c.state == AxisStateCenterKnown {
		c.detectRange(value)
	}

	if c.state == AxisStateUnknown {
		switch value {
		case -1.0:
			c.seenNegativeOne = true
		case 0.0:
			c.seenCenter = true
		case 1.0:
			c.seenPositiveOne = true
		default:
			c.state = AxisStateNotDiscreteDPad
		}

		if c.seenNegativeOne && c.seenCenter && c.seenPositiveOne {
			c.state = AxisStateDiscreteDPad
		}
	}

	if c.state == AxisStateDiscreteDPad {
		return value
	}

	if c.state == AxisStateNotDiscreteDPad {
		c.state = AxisStateCenterKnown
		if c.rng == RangeFull {
			c.state = AxisStateRangeKnown
		}
	}

	if !c.IsAnomalous() {
		return value
	}

	result := value - float64(c.center)
	if c.rng == RangeFull {
		result /= 2
	}

	return result
}

func (c *AxisCalibrator) detectRange(value float64) {
	if !c.IsAnomalous() || c.rng == RangeFull {
		return
	}

	if (c.center == CenterNegativeOne && value > 0) ||
		(c.center == CenterPositiveOne && value < 0) {
		c.rng = RangeFull
		if c.state == AxisStateCenterKnown {
			c.state = AxisStateRangeKnown
		}
	}
}

func classifyCenter(value float64) AxisCenter {
	switch {
	case value < -centerThreshold:
		return CenterNegativeOne
	case value > centerThreshold:
		return CenterPositiveOne
	default:
		return CenterZero
	}
}
