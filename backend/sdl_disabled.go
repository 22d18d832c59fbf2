//go:build !sdl

package backend

import (
	"fmt"

	"github.com/flarexio/joystick"
)

// Loading purego-sdl3 fails at init when libSDL3 is missing, so the SDL
// backend is only compiled with -tags sdl.
func newSDL() (joystick.DeviceScanner, error) {
	return nil, fmt.Errorf("%w: sdl (build with -tags sdl)", ErrBackendNotSupported)
}
