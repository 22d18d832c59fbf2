package joystick

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceSimilarTo(t *testing.T) {
	assert := assert.New(t)

	sparse := DeviceDescriptor{Name: "X", Provider: "sdl"}
	full := DeviceDescriptor{Name: "X", Provider: "sdl", VendorID: 1, ProductID: 2, ButtonCount: 10}

	assert.True(sparse.SimilarTo(full))
	assert.True(full.SimilarTo(sparse))

	other := DeviceDescriptor{Name: "Y", Provider: "sdl"}
	assert.False(sparse.SimilarTo(other))

	assert.False(sparse.SimilarTo(DeviceDescriptor{Name: "X", Provider: "linux"}))

	unnamed := DeviceDescriptor{Provider: "sdl", VendorID: 1, ProductID: 2}
	assert.True(unnamed.SimilarTo(full))

	assert.False(full.SimilarTo(DeviceDescriptor{Name: "X", Provider: "sdl", VendorID: 1, ProductID: 3}))
	assert.False(full.SimilarTo(DeviceDescriptor{Name: "X", Provider: "sdl", ButtonCount: 11}))
}

func TestDeviceCompare(t *testing.T) {
	assert := assert.New(t)

	a := DeviceDescriptor{Name: "A", Provider: "sdl"}
	b := DeviceDescriptor{Name: "B", Provider: "linux"}

	assert.True(a.Less(b))
	assert.False(b.Less(a))
	assert.False(a.Less(a))

	c := a
	c.AxisCount = 4
	assert.True(a.Less(c))

	c.DriverIndex = 3
	assert.False(c.Equal(c.Identity()))
	assert.Equal(0, c.Compare(c.Identity()))
}

func TestDeviceMergeProperties(t *testing.T) {
	assert := assert.New(t)

	d := DeviceDescriptor{Name: "Pad", Provider: "sdl", ButtonCount: 10}
	d.MergeProperties(DeviceDescriptor{Provider: "sdl", VendorID: 0x045e, ProductID: 0x028e, AxisCount: 6})

	assert.Equal(DeviceDescriptor{
		Name:        "Pad",
		Provider:    "sdl",
		VendorID:    0x045e,
		ProductID:   0x028e,
		ButtonCount: 10,
		AxisCount:   6,
	}, d)
}

func TestDeviceRootFileName(t *testing.T) {
	assert := assert.New(t)

	d := DeviceDescriptor{
		Name:        "Xbox 360 Controller",
		Provider:    "linux",
		VendorID:    0x045e,
		ProductID:   0x028e,
		ButtonCount: 11,
		HatCount:    1,
		AxisCount:   8,
	}

	assert.Equal("Xbox_360_Controller_v045e_p028e_11b_1h_8a", d.RootFileName())
	assert.Equal(d.RootFileName(), d.RootFileName())

	d = DeviceDescriptor{Name: "a__b  c!!", Provider: "linux"}
	assert.Equal("a_b_c", d.RootFileName())

	valid := regexp.MustCompile(`^[A-Za-z0-9._~-]*$`)

	d = DeviceDescriptor{
		Name:        strings.Repeat("Gamepäd ", 20),
		Provider:    "sdl",
		VendorID:    0xffff,
		ProductID:   0xffff,
		ButtonCount: 128,
		HatCount:    4,
		AxisCount:   32,
	}

	name := d.RootFileName()
	assert.Regexp(valid, name)
	assert.LessOrEqual(len(name), 70)
	assert.False(strings.Contains(name, "__"))
	assert.Equal(name, d.RootFileName())
}

func TestDeviceRootFileNameUnsafeNames(t *testing.T) {
	assert := assert.New(t)

	valid := regexp.MustCompile(`^[A-Za-z0-9.~-][A-Za-z0-9._~-]*$`)

	pad := DeviceDescriptor{Name: "手柄", Provider: "linux"}
	wheel := DeviceDescriptor{Name: "方向盤", Provider: "linux"}

	name := pad.RootFileName()
	assert.Regexp(valid, name)
	assert.True(strings.HasPrefix(name, "device_"))
	assert.Equal(name, pad.RootFileName())
	assert.NotEqual(name, wheel.RootFileName())

	d := DeviceDescriptor{Name: "!!!", Provider: "linux", ButtonCount: 4}
	name = d.RootFileName()
	assert.Regexp(valid, name)
	assert.True(strings.HasSuffix(name, "_4b"))
	assert.NotEqual("_4b", name)

	d = DeviceDescriptor{Name: "  Pad", Provider: "linux"}
	assert.Equal("Pad", d.RootFileName())
}

func TestDeviceIsValid(t *testing.T) {
	assert := assert.New(t)

	assert.True(DeviceDescriptor{Name: "Pad", Provider: "sdl"}.IsValid())
	assert.False(DeviceDescriptor{Name: "Pad"}.IsValid())
	assert.False(DeviceDescriptor{Provider: "sdl"}.IsValid())
}
