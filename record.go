package joystick

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPrimitive   = errors.New("missing primitive")
	ErrAmbiguousPrimitive = errors.New("ambiguous primitive")
)

// PrimitiveRecord is the attribute form of a DriverPrimitive shared by the
// JSON transport and the XML/YAML button-map files. Exactly one of
// Button, Hat, Axis and Motor is set.
type PrimitiveRecord struct {
	Button string `json:"button,omitempty" yaml:"button,omitempty" xml:"button,attr,omitempty"`
	Hat    string `json:"hat,omitempty" yaml:"hat,omitempty" xml:"hat,attr,omitempty"`
	Axis   string `json:"axis,omitempty" yaml:"axis,omitempty" xml:"axis,attr,omitempty"`
	Center int    `json:"center,omitempty" yaml:"center,omitempty" xml:"center,attr,omitempty"`
	Range  uint   `json:"range,omitempty" yaml:"range,omitempty" xml:"range,attr,omitempty"`
	Motor  string `json:"motor,omitempty" yaml:"motor,omitempty" xml:"motor,attr,omitempty"`
}

func NewPrimitiveRecord(p DriverPrimitive) PrimitiveRecord {
	var r PrimitiveRecord
	switch p.Type {
	case PrimitiveTypeButton:
		r.Button = p.String()
	case PrimitiveTypeHatDirection:
		r.Hat = p.String()
	case PrimitiveTypeSemiAxis:
		r.Axis = p.String()
		r.Center = p.Center
		if p.Range != 1 {
			r.Range = p.Range
		}
	case PrimitiveTypeMotor:
		r.Motor = p.String()
	}

	return r
}

func (r PrimitiveRecord) IsEmpty() bool {
	return r.Button == "" && r.Hat == "" && r.Axis == "" && r.Motor == ""
}

func (r PrimitiveRecord) Primitive() (DriverPrimitive, error) {
	var (
		t     PrimitiveType
		value string
		count int
	)

	for _, attr := range []struct {
		t     PrimitiveType
		value string
	}{
		{PrimitiveTypeButton, r.Button},
		{PrimitiveTypeHatDirection, r.Hat},
		{PrimitiveTypeSemiAxis, r.Axis},
		{PrimitiveTypeMotor, r.Motor},
	} {
		if attr.value == "" {
			continue
		}

		t, value = attr.t, attr.value
		count++
	}

	switch {
	case count == 0:
		return DriverPrimitive{}, ErrMissingPrimitive
	case count > 1:
		return DriverPrimitive{}, ErrAmbiguousPrimitive
	}

	p, err := ParsePrimitive(t, value)
	if err != nil {
		return DriverPrimitive{}, err
	}

	if p.Type == PrimitiveTypeSemiAxis {
		p.Center = r.Center
		if r.Range != 0 {
			p.Range = r.Range
		}
	}

	return p, nil
}

// FeatureRecord is the serialised form of a Feature. Scalars and motors
// carry their primitive inline; analog sticks and accelerometers carry one
// child record per slot.
type FeatureRecord struct {
	Name string `json:"name" yaml:"name" xml:"name,attr"`

	PrimitiveRecord `yaml:",inline"`

	Up    *PrimitiveRecord `json:"up,omitempty" yaml:"up,omitempty" xml:"up,omitempty"`
	Down  *PrimitiveRecord `json:"down,omitempty" yaml:"down,omitempty" xml:"down,omitempty"`
	Right *PrimitiveRecord `json:"right,omitempty" yaml:"right,omitempty" xml:"right,omitempty"`
	Left  *PrimitiveRecord `json:"left,omitempty" yaml:"left,omitempty" xml:"left,omitempty"`

	PositiveX *PrimitiveRecord `json:"positive-x,omitempty" yaml:"positive-x,omitempty" xml:"positive-x,omitempty"`
	PositiveY *PrimitiveRecord `json:"positive-y,omitempty" yaml:"positive-y,omitempty" xml:"positive-y,omitempty"`
	PositiveZ *PrimitiveRecord `json:"positive-z,omitempty" yaml:"positive-z,omitempty" xml:"positive-z,omitempty"`
}

func NewFeatureRecord(f Feature) FeatureRecord {
	r := FeatureRecord{Name: f.Name}

	child := func(slot Slot) *PrimitiveRecord {
		p := f.Primitive(slot)
		if !p.IsKnown() {
			return nil
		}

		record := NewPrimitiveRecord(p)
		return &record
	}

	switch f.Type {
	case FeatureTypeScalar:
		r.PrimitiveRecord = NewPrimitiveRecord(f.Primitive(SlotScalar))
	case FeatureTypeMotor:
		r.PrimitiveRecord = NewPrimitiveRecord(f.Primitive(SlotMotor))
	case FeatureTypeAnalogStick:
		r.Up = child(SlotUp)
		r.Down = child(SlotDown)
		r.Right = child(SlotRight)
		r.Left = child(SlotLeft)
	case FeatureTypeAccelerometer:
		r.PositiveX = child(SlotPositiveX)
		r.PositiveY = child(SlotPositiveY)
		r.PositiveZ = child(SlotPositiveZ)
	}

	return r
}

// IsUnmapped reports whether the record carries no primitive at all.
func (r FeatureRecord) IsUnmapped() bool {
	if !r.PrimitiveRecord.IsEmpty() {
		return false
	}

	for _, child := range r.children() {
		if child != nil {
			return false
		}
	}

	return true
}

func (r FeatureRecord) children() map[Slot]*PrimitiveRecord {
	return map[Slot]*PrimitiveRecord{
		SlotUp:        r.Up,
		SlotDown:      r.Down,
		SlotRight:     r.Right,
		SlotLeft:      r.Left,
		SlotPositiveX: r.PositiveX,
		SlotPositiveY: r.PositiveY,
		SlotPositiveZ: r.PositiveZ,
	}
}

// Feature decodes the record. Records with an unknown, missing or
// ambiguous primitive are rejected rather than mapped to an empty slot.
func (r FeatureRecord) Feature() (Feature, error) {
	if r.Name == "" {
		return Feature{}, errors.New("feature name required")
	}

	t := FeatureTypeUnknown
	for slot, child := range r.children() {
		if child == nil {
			continue
		}

		if t != FeatureTypeUnknown && t != slot.FeatureType() {
			return Feature{}, fmt.Errorf("feature %s: mixed analog stick and accelerometer slots", r.Name)
		}

		t = slot.FeatureType()
	}

	if t != FeatureTypeUnknown {
		if !r.PrimitiveRecord.IsEmpty() {
			return Feature{}, fmt.Errorf("feature %s: %w", r.Name, ErrAmbiguousPrimitive)
		}

		f := NewFeature(r.Name, t)
		for slot, child := range r.children() {
			if child == nil {
				continue
			}

			p, err := child.Primitive()
			if err != nil {
				return Feature{}, fmt.Errorf("feature %s %s: %w", r.Name, slot, err)
			}

			if p.Type == PrimitiveTypeMotor {
				return Feature{}, fmt.Errorf("feature %s %s: motor not allowed", r.Name, slot)
			}

			f.SetPrimitive(slot, p)
		}

		return f, nil
	}

	p, err := r.PrimitiveRecord.Primitive()
	if err != nil {
		return Feature{}, fmt.Errorf("feature %s: %w", r.Name, err)
	}

	if p.Type == PrimitiveTypeMotor {
		return NewMotorFeature(r.Name, p), nil
	}

	return NewScalar(r.Name, p), nil
}

// NewFeatureRecords skips invalid features.
func NewFeatureRecords(features []Feature) []FeatureRecord {
	records := make([]FeatureRecord, 0, len(features))
	for _, f := range features {
		if !f.IsValid() {
			continue
		}

		records = append(records, NewFeatureRecord(f))
	}

	return records
}

// DecodeFeatures returns the decoded features together with the joined
// errors of the rejected records.
func DecodeFeatures(records []FeatureRecord) ([]Feature, error) {
	features := make([]Feature, 0, len(records))

	var errs []error
	for _, r := range records {
		f, err := r.Feature()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		features = append(features, f)
	}

	return features, errors.Join(errs...)
}

func NewPrimitiveRecords(primitives []DriverPrimitive) []PrimitiveRecord {
	records := make([]PrimitiveRecord, 0, len(primitives))
	for _, p := range primitives {
		if !p.IsKnown() {
			continue
		}

		records = append(records, NewPrimitiveRecord(p))
	}

	return records
}

func DecodePrimitives(records []PrimitiveRecord) ([]DriverPrimitive, error) {
	primitives := make([]DriverPrimitive, 0, len(records))

	var errs []error
	for _, r := range records {
		p, err := r.Primitive()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		primitives = append(primitives, p)
	}

	return primitives, errors.Join(errs...)
}
