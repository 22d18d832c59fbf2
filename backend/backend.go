package backend

import (
	"errors"

	"github.com/flarexio/joystick"
)

var ErrBackendNotSupported = errors.New("backend not supported")

// New returns the scanner of the given backend.
func New(backend joystick.Backend) (joystick.DeviceScanner, error) {
	switch backend {
	case joystick.BackendLinux:
		return NewLinux(DefaultMaxJoysticks), nil
	case joystick.BackendSDL:
		return newSDL()
	default:
		return nil, ErrBackendNotSupported
	}
}

// NewAll opens every backend and stops at the first failure.
func NewAll(backends []joystick.Backend) ([]joystick.DeviceScanner, error) {
	scanners := make([]joystick.DeviceScanner, 0, len(backends))
	for _, b := range backends {
		scanner, err := New(b)
		if err != nil {
			for _, s := range scanners {
				s.Close()
			}

			return nil, err
		}

		scanners = append(scanners, scanner)
	}

	return scanners, nil
}
