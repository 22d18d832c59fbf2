//go:build !sdl

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/joystick"
)

func TestNewSDLDisabled(t *testing.T) {
	assert := assert.New(t)

	_, err := New(joystick.BackendSDL)
	assert.ErrorIs(err, ErrBackendNotSupported)

	scanners, err := NewAll([]joystick.Backend{joystick.BackendLinux, joystick.BackendSDL})
	assert.ErrorIs(err, ErrBackendNotSupported)
	assert.Nil(scanners)
}
