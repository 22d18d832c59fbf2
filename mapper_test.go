package joystick

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDatabase struct {
	maps     []*DeviceButtonMap
	readOnly bool
	saved    int
}

func (db *fakeDatabase) find(device DeviceDescriptor) *DeviceButtonMap {
	for _, dm := range db.maps {
		if dm.Device.SimilarTo(device) {
			return dm
		}
	}

	return nil
}

func (db *fakeDatabase) findOrCreate(device DeviceDescriptor) *DeviceButtonMap {
	dm := db.find(device)
	if dm == nil {
		dm = NewDeviceButtonMap(device)
		db.maps = append(db.maps, dm)
	}

	return dm
}

func (db *fakeDatabase) ButtonMap(device DeviceDescriptor) (*DeviceButtonMap, error) {
	dm := db.find(device)
	if dm == nil {
		return nil, ErrDeviceNotFound
	}

	return dm.Clone(), nil
}

func (db *fakeDatabase) MapFeatures(device DeviceDescriptor, controllerID string, features []Feature) error {
	if db.readOnly {
		return ErrReadOnly
	}

	db.findOrCreate(device).MapFeatures(controllerID, features)
	return nil
}

func (db *fakeDatabase) IgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error) {
	dm := db.find(device)
	if dm == nil {
		return nil, ErrDeviceNotFound
	}

	return dm.Configuration.IgnoredPrimitives(), nil
}

func (db *fakeDatabase) SetIgnoredPrimitives(device DeviceDescriptor, primitives []DriverPrimitive) error {
	if db.readOnly {
		return ErrReadOnly
	}

	db.findOrCreate(device).Configuration.SetIgnoredPrimitives(primitives)
	return nil
}

func (db *fakeDatabase) SaveButtonMap(device DeviceDescriptor) error {
	if db.readOnly {
		return ErrReadOnly
	}

	if db.find(device) == nil {
		return ErrDeviceNotFound
	}

	db.saved++
	return nil
}

func (db *fakeDatabase) RevertButtonMap(device DeviceDescriptor) error {
	if db.readOnly {
		return ErrReadOnly
	}

	return errors.New("revert failed")
}

func (db *fakeDatabase) ResetButtonMap(device DeviceDescriptor, controllerID string) error {
	if db.readOnly {
		return ErrReadOnly
	}

	dm := db.find(device)
	if dm == nil {
		return ErrDeviceNotFound
	}

	dm.ResetButtonMap(controllerID)
	return nil
}

var testPad = DeviceDescriptor{
	Name:        "Test Pad",
	Provider:    "sdl",
	VendorID:    0x1234,
	ProductID:   0x5678,
	ButtonCount: 12,
	AxisCount:   4,
}

func trainedTransformer() *ControllerTransformer {
	transformer := NewControllerTransformer(0)

	for i := range 2 {
		transformer.OnAdd(trainingDevice(i, map[string][]Feature{
			profileDefault: {
				NewScalar("a", NewButton(0)),
				NewScalar("b", NewButton(1)),
			},
			profileSNES: {
				NewScalar("b", NewButton(0)),
				NewScalar("a", NewButton(1)),
			},
		}))
	}

	return transformer
}

func TestButtonMapperGetFeatures(t *testing.T) {
	assert := assert.New(t)

	user := &fakeDatabase{}
	resources := &fakeDatabase{readOnly: true}

	dm := NewDeviceButtonMap(testPad)
	dm.MapFeatures(profileDefault, []Feature{
		NewScalar("a", NewButton(5)),
		NewScalar("x", NewButton(6)),
	})
	resources.maps = append(resources.maps, dm)

	mapper := NewButtonMapper(nil, nil)
	mapper.RegisterDatabase(user)
	mapper.RegisterDatabase(resources)

	err := mapper.MapFeatures(testPad, profileDefault, []Feature{
		NewScalar("a", NewButton(2)),
		NewScalar("y", NewButton(5)),
	})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	features, ok := mapper.GetFeatures(testPad, profileDefault)
	assert.True(ok)

	assert.Equal([]Feature{
		NewScalar("a", NewButton(2)),
		NewScalar("x", NewButton(6)),
		NewScalar("y", NewButton(5)),
	}, features)

	_, ok = mapper.GetFeatures(testPad, profileSNES)
	assert.False(ok)
}

func TestButtonMapperDerivesMissingProfile(t *testing.T) {
	assert := assert.New(t)

	db := &fakeDatabase{}

	mapper := NewButtonMapper(trainedTransformer(), nil)
	mapper.RegisterDatabase(db)

	mapper.MapFeatures(testPad, profileDefault, []Feature{
		NewScalar("a", NewButton(3)),
		NewScalar("b", NewButton(4)),
	})

	features, ok := mapper.GetFeatures(testPad, profileSNES)
	assert.True(ok)

	assert.Equal([]Feature{
		NewScalar("a", NewButton(4)),
		NewScalar("b", NewButton(3)),
	}, features)
}

func TestButtonMapperDerivesBelowFeatureCount(t *testing.T) {
	assert := assert.New(t)

	db := &fakeDatabase{}

	counts := FeatureCounts{profileSNES: 2}

	mapper := NewButtonMapper(trainedTransformer(), counts)
	mapper.RegisterDatabase(db)

	mapper.MapFeatures(testPad, profileDefault, []Feature{
		NewScalar("a", NewButton(3)),
		NewScalar("b", NewButton(4)),
	})

	mapper.MapFeatures(testPad, profileSNES, []Feature{
		NewScalar("a", NewButton(9)),
	})

	features, ok := mapper.GetFeatures(testPad, profileSNES)
	assert.True(ok)

	assert.Equal([]Feature{
		NewScalar("a", NewButton(9)),
		NewScalar("b", NewButton(3)),
	}, features)

	mapper = NewButtonMapper(trainedTransformer(), nil)
	mapper.RegisterDatabase(db)

	features, _ = mapper.GetFeatures(testPad, profileSNES)
	assert.Equal([]Feature{NewScalar("a", NewButton(9))}, features)
}

func TestButtonMapperWritable(t *testing.T) {
	assert := assert.New(t)

	resources := &fakeDatabase{readOnly: true}

	mapper := NewButtonMapper(nil, nil)
	mapper.RegisterDatabase(resources)

	err := mapper.MapFeatures(testPad, profileDefault, []Feature{NewScalar("a", NewButton(0))})
	assert.ErrorIs(err, ErrReadOnly)

	user := &fakeDatabase{}
	mapper.RegisterDatabase(user)

	err = mapper.SaveButtonMap(testPad)
	assert.ErrorIs(err, ErrDeviceNotFound)

	err = mapper.SetIgnoredPrimitives(testPad, []DriverPrimitive{NewButton(11)})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	err = mapper.SaveButtonMap(testPad)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(1, user.saved)

	primitives, err := mapper.IgnoredPrimitives(testPad)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal([]DriverPrimitive{NewButton(11)}, primitives)

	err = mapper.RevertButtonMap(testPad)
	assert.EqualError(err, "revert failed")

	_, err = mapper.IgnoredPrimitives(DeviceDescriptor{Name: "Other", Provider: "sdl"})
	assert.ErrorIs(err, ErrDeviceNotFound)
}

func TestButtonMapperOnAdd(t *testing.T) {
	assert := assert.New(t)

	transformer := NewControllerTransformer(0)
	mapper := NewButtonMapper(transformer, nil)

	var callbacks DatabaseCallbacks = mapper
	callbacks.OnAdd(trainingDevice(0, map[string][]Feature{
		profileDefault: {NewScalar("a", NewButton(0))},
		profileSNES:    {NewScalar("b", NewButton(0))},
	}))

	assert.Equal(1, transformer.DeviceCount())
}
