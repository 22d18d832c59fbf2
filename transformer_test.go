package joystick

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	profileDefault = "game.controller.default"
	profileSNES    = "game.controller.snes"
)

func trainingDevice(i int, profiles map[string][]Feature) (DeviceDescriptor, *DeviceButtonMap) {
	device := DeviceDescriptor{
		Name:     fmt.Sprintf("Pad %d", i),
		Provider: "sdl",
	}

	dm := NewDeviceButtonMap(device)
	for id, features := range profiles {
		dm.MapFeatures(id, features)
	}

	return device, dm
}

func TestControllerTransformerMajority(t *testing.T) {
	assert := assert.New(t)

	transformer := NewControllerTransformer(0)

	for i := range 3 {
		transformer.OnAdd(trainingDevice(i, map[string][]Feature{
			profileDefault: {NewScalar("a", NewButton(uint(i)))},
			profileSNES:    {NewScalar("x", NewButton(uint(i)))},
		}))
	}

	transformer.OnAdd(trainingDevice(3, map[string][]Feature{
		profileDefault: {NewScalar("a", NewButton(0))},
		profileSNES:    {NewScalar("y", NewButton(0))},
	}))

	assert.Equal(4, transformer.DeviceCount())

	features := transformer.TransformFeatures(profileDefault, profileSNES, []Feature{
		NewScalar("a", NewButton(7)),
		NewScalar("b", NewButton(8)),
	})

	assert.Equal([]Feature{NewScalar("x", NewButton(7))}, features)

	reversed := transformer.TransformFeatures(profileSNES, profileDefault, []Feature{
		NewScalar("x", NewButton(9)),
	})

	assert.Equal([]Feature{NewScalar("a", NewButton(9))}, reversed)

	assert.Nil(transformer.TransformFeatures(profileSNES, profileSNES, features))
}

func TestControllerTransformerTieBreak(t *testing.T) {
	assert := assert.New(t)

	transformer := NewControllerTransformer(0)

	transformer.OnAdd(trainingDevice(0, map[string][]Feature{
		profileDefault: {NewScalar("a", NewButton(0))},
		profileSNES:    {NewScalar("y", NewButton(0))},
	}))

	transformer.OnAdd(trainingDevice(1, map[string][]Feature{
		profileDefault: {NewScalar("a", NewButton(0))},
		profileSNES:    {NewScalar("x", NewButton(0))},
	}))

	for range 5 {
		features := transformer.TransformFeatures(profileDefault, profileSNES, []Feature{
			NewScalar("a", NewButton(2)),
		})

		assert.Equal([]Feature{NewScalar("x", NewButton(2))}, features)
	}
}

func TestControllerTransformerDeduplicatesAndCaps(t *testing.T) {
	assert := assert.New(t)

	transformer := NewControllerTransformer(2)

	x := map[string][]Feature{
		profileDefault: {NewScalar("a", NewButton(0))},
		profileSNES:    {NewScalar("x", NewButton(0))},
	}

	y := map[string][]Feature{
		profileDefault: {NewScalar("a", NewButton(0))},
		profileSNES:    {NewScalar("y", NewButton(0))},
	}

	device, dm := trainingDevice(0, x)
	transformer.OnAdd(device, dm)

	device.DriverIndex = 4
	transformer.OnAdd(device, dm)
	assert.Equal(1, transformer.DeviceCount())

	transformer.OnAdd(trainingDevice(1, y))
	transformer.OnAdd(trainingDevice(2, y))
	transformer.OnAdd(trainingDevice(3, y))
	assert.Equal(2, transformer.DeviceCount())

	// x and y were each learned once; the tie goes to x.
	features := transformer.TransformFeatures(profileDefault, profileSNES, []Feature{
		NewScalar("a", NewButton(1)),
	})

	assert.Equal([]Feature{NewScalar("x", NewButton(1))}, features)
}

func TestControllerTransformerCompoundFeatures(t *testing.T) {
	assert := assert.New(t)

	transformer := NewControllerTransformer(0)

	transformer.OnAdd(trainingDevice(0, map[string][]Feature{
		profileDefault: {
			NewScalar("up", NewHatDirection(0, HatDirectionUp)),
			NewScalar("down", NewHatDirection(0, HatDirectionDown)),
		},
		profileSNES: {
			NewAnalogStick("dpad",
				NewHatDirection(0, HatDirectionUp),
				NewHatDirection(0, HatDirectionDown),
				DriverPrimitive{},
				DriverPrimitive{},
			),
		},
	}))

	features := transformer.TransformFeatures(profileDefault, profileSNES, []Feature{
		NewScalar("up", NewButton(11)),
		NewScalar("down", NewButton(12)),
	})

	assert.Equal([]Feature{
		NewAnalogStick("dpad", NewButton(11), NewButton(12), DriverPrimitive{}, DriverPrimitive{}),
	}, features)
}

func TestFeatureMapKey(t *testing.T) {
	assert := assert.New(t)

	from := []Feature{NewScalar("b", NewButton(1)), NewScalar("a", NewButton(0))}
	to := []Feature{NewScalar("x", NewButton(0)), NewScalar("y", NewButton(1))}

	fm := NewFeatureMap(from, to)
	assert.Len(fm, 2)
	assert.Equal("a", fm[0].From.Feature)
	assert.Equal("x", fm[0].To.Feature)

	assert.Equal(fm.Key(), NewFeatureMap(from, to).Key())
	assert.Empty(NewFeatureMap(from, nil))
}

func TestFeatureMapKeyDistinguishesSeparators(t *testing.T) {
	assert := assert.New(t)

	slot := strconv.Itoa(int(SlotScalar))

	two := FeatureMap{
		{From: FeaturePrimitive{"a", SlotScalar}, To: FeaturePrimitive{"b", SlotScalar}},
		{From: FeaturePrimitive{"c", SlotScalar}, To: FeaturePrimitive{"d", SlotScalar}},
	}

	one := FeatureMap{
		{From: FeaturePrimitive{"a", SlotScalar}, To: FeaturePrimitive{"b:" + slot + ";c:" + slot + ">d", SlotScalar}},
	}

	assert.NotEqual(two.Key(), one.Key())
}
