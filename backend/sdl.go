//go:build sdl

package backend

import (
	"errors"
	"runtime"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"go.uber.org/zap"

	"github.com/flarexio/joystick"
)

const (
	sdlProvider      = "sdl"
	sdlAxisAmplitude = 32767
)

var ErrDisconnected = errors.New("joystick disconnected")

// SDL reads joysticks through SDL3. SDL is thread affine, so every call
// runs on one locked OS thread owned by the scanner.
type SDL struct {
	log   *zap.Logger
	calls chan func()
	done  chan struct{}

	once    sync.Once
	initErr error
	closed  bool

	devices map[sdl.JoystickID]*sdlDevice
	sync.Mutex
}

func newSDL() (joystick.DeviceScanner, error) {
	return NewSDL(), nil
}

func NewSDL() *SDL {
	s := &SDL{
		log: zap.L().With(
			zap.String("backend", sdlProvider),
		),
		calls:   make(chan func()),
		done:    make(chan struct{}),
		devices: make(map[sdl.JoystickID]*sdlDevice),
	}

	go s.loop()

	return s
}

func (s *SDL) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case fn := <-s.calls:
			fn()

		case <-s.done:
			return
		}
	}
}

func (s *SDL) do(fn func()) {
	finished := make(chan struct{})

	select {
	case s.calls <- func() {
		defer close(finished)
		fn()
	}:
		<-finished

	case <-s.done:
	}
}

func (s *SDL) Name() string {
	return sdlProvider
}

func (s *SDL) init() error {
	s.once.Do(func() {
		s.do(func() {
			if !sdl.Init(sdl.InitJoystick) {
				s.initErr = errors.New(sdl.GetError())
				return
			}

			s.log.Info("joystick subsystem initialized")
		})
	})

	return s.initErr
}

// ScanDevices opens every joystick SDL reports and returns all open
// devices. SDL is initialised on the first scan.
func (s *SDL) ScanDevices() ([]joystick.Device, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	var devices []joystick.Device

	s.do(func() {
		s.Lock()
		defer s.Unlock()

		for _, id := range sdl.GetJoysticks() {
			device, ok := s.devices[id]
			if !ok {
				device = s.open(id)
				if device == nil {
					continue
				}

				s.devices[id] = device
			}

			devices = append(devices, device)
		}
	})

	return devices, nil
}

func (s *SDL) open(id sdl.JoystickID) *sdlDevice {
	handle := sdl.OpenJoystick(id)
	if handle == nil {
		s.log.Warn(sdl.GetError(), zap.Uint32("id", uint32(id)))
		return nil
	}

	descriptor := joystick.DeviceDescriptor{
		Name:        sdl.GetJoystickName(handle),
		Provider:    sdlProvider,
		VendorID:    sdl.GetJoystickVendor(handle),
		ProductID:   sdl.GetJoystickProduct(handle),
		ButtonCount: count(sdl.GetNumJoystickButtons(handle)),
		HatCount:    count(sdl.GetNumJoystickHats(handle)),
		AxisCount:   count(sdl.GetNumJoystickAxes(handle)),
		DriverIndex: int(id),
	}

	s.log.Debug("device opened",
		zap.Uint32("id", uint32(id)),
		zap.String("name", descriptor.Name),
	)

	return &sdlDevice{
		scanner:    s,
		id:         id,
		handle:     handle,
		descriptor: descriptor,
	}
}

// count maps SDL's negative error results to zero.
func count(n int32) uint {
	if n < 0 {
		return 0
	}

	return uint(n)
}

// Pump drains pending SDL events so joystick state is current.
func (s *SDL) Pump() {
	if s.init() != nil {
		return
	}

	s.do(func() {
		var event sdl.Event
		for sdl.PollEvent(&event) {
		}
	})
}

func (s *SDL) Close() error {
	s.Lock()
	if s.closed {
		s.Unlock()
		return nil
	}

	s.closed = true
	devices := s.devices
	s.devices = make(map[sdl.JoystickID]*sdlDevice)
	s.Unlock()

	for _, device := range devices {
		device.Close()
	}

	if s.initErr == nil {
		s.do(sdl.Quit)
	}

	close(s.done)
	return nil
}

type sdlDevice struct {
	scanner    *SDL
	id         sdl.JoystickID
	handle     *sdl.Joystick
	descriptor joystick.DeviceDescriptor
	once       sync.Once
}

func (d *sdlDevice) Descriptor() joystick.DeviceDescriptor {
	return d.descriptor
}

func (d *sdlDevice) Poll() (joystick.RawState, error) {
	var (
		state joystick.RawState
		err   error
	)

	d.scanner.do(func() {
		if !sdl.JoystickConnected(d.handle) {
			err = ErrDisconnected
			return
		}

		state.Buttons = make([]bool, d.descriptor.ButtonCount)
		for i := range state.Buttons {
			state.Buttons[i] = sdl.GetJoystickButton(d.handle, int32(i))
		}

		state.Hats = make([]joystick.HatState, d.descriptor.HatCount)
		for i := range state.Hats {
			state.Hats[i] = joystick.HatState(sdl.GetJoystickHat(d.handle, int32(i)))
		}

		state.Axes = make([]float64, d.descriptor.AxisCount)
		for i := range state.Axes {
			raw := sdl.GetJoystickAxis(d.handle, int32(i))
			state.Axes[i] = joystick.NormalizeAxis(int(raw), sdlAxisAmplitude)
		}
	})

	return state, err
}

func (d *sdlDevice) Close() error {
	d.once.Do(func() {
		d.scanner.do(func() {
			sdl.CloseJoystick(d.handle)
		})

		d.scanner.Lock()
		if d.scanner.devices[d.id] == d {
			delete(d.scanner.devices, d.id)
		}
		d.scanner.Unlock()
	})

	return nil
}
