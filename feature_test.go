package joystick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureSlots(t *testing.T) {
	assert := assert.New(t)

	stick := NewAnalogStick("leftstick",
		NewSemiAxis(1, 0, SemiAxisNegative, 1),
		NewSemiAxis(1, 0, SemiAxisPositive, 1),
		NewSemiAxis(0, 0, SemiAxisPositive, 1),
		DriverPrimitive{},
	)

	assert.True(stick.IsValid())
	assert.Len(stick.Primitives(), 3)
	assert.Equal([]Slot{SlotUp, SlotDown, SlotRight, SlotLeft}, stick.Slots())

	stick.SetPrimitive(SlotScalar, NewButton(0))
	assert.False(stick.Primitive(SlotScalar).IsKnown())

	assert.True(stick.Conflicts(NewSemiAxis(0, 0, SemiAxisPositive, 1)))
	assert.False(stick.Conflicts(NewSemiAxis(0, 0, SemiAxisNegative, 1)))

	empty := NewFeature("rightstick", FeatureTypeAnalogStick)
	assert.False(empty.IsValid())
}

func TestFeatureRecord(t *testing.T) {
	assert := assert.New(t)

	features := []Feature{
		NewScalar("a", NewButton(0)),
		NewScalar("lefttrigger", NewSemiAxis(2, -1, SemiAxisPositive, 2)),
		NewMotorFeature("strong", NewMotor(0)),
		NewAnalogStick("leftstick",
			NewSemiAxis(1, 0, SemiAxisNegative, 1),
			NewSemiAxis(1, 0, SemiAxisPositive, 1),
			NewSemiAxis(0, 0, SemiAxisPositive, 1),
			NewSemiAxis(0, 0, SemiAxisNegative, 1),
		),
		NewAccelerometer("accelerometer",
			NewSemiAxis(3, 0, SemiAxisPositive, 1),
			NewSemiAxis(4, 0, SemiAxisPositive, 1),
			DriverPrimitive{},
		),
	}

	records := NewFeatureRecords(features)
	assert.Len(records, len(features))

	assert.Equal("+2", records[1].Axis)
	assert.Equal(-1, records[1].Center)
	assert.Equal(uint(2), records[1].Range)
	assert.Nil(records[4].PositiveZ)

	decoded, err := DecodeFeatures(records)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(features, decoded)
}

func TestFeatureRecordRejected(t *testing.T) {
	assert := assert.New(t)

	records := []FeatureRecord{
		{Name: "a", PrimitiveRecord: PrimitiveRecord{Button: "0"}},
		{Name: "missing"},
		{Name: "ambiguous", PrimitiveRecord: PrimitiveRecord{Button: "1", Hat: "h0up"}},
		{Name: "mixed", Up: &PrimitiveRecord{Axis: "-1"}, PositiveX: &PrimitiveRecord{Axis: "+3"}},
		{Name: "badhat", PrimitiveRecord: PrimitiveRecord{Hat: "h0"}},
		{Name: "stickmotor", Up: &PrimitiveRecord{Motor: "0"}},
	}

	features, err := DecodeFeatures(records)
	assert.Error(err)
	assert.ErrorIs(err, ErrMissingPrimitive)
	assert.ErrorIs(err, ErrAmbiguousPrimitive)

	assert.Len(features, 1)
	assert.Equal(NewScalar("a", NewButton(0)), features[0])
}

func TestFeatureRecordIsUnmapped(t *testing.T) {
	assert := assert.New(t)

	assert.True(FeatureRecord{Name: "a"}.IsUnmapped())
	assert.False(FeatureRecord{Name: "a", PrimitiveRecord: PrimitiveRecord{Button: "0"}}.IsUnmapped())
	assert.False(FeatureRecord{Name: "leftstick", Up: &PrimitiveRecord{}}.IsUnmapped())
}
