package backend

import (
	"sync"

	js "github.com/0xcafed00d/joystick"
	"go.uber.org/zap"

	"github.com/flarexio/joystick"
)

const (
	DefaultMaxJoysticks = 16

	linuxProvider      = "linux"
	linuxAxisAmplitude = 32767
)

// Linux reads the kernel joystick API (/dev/input/js*). Hats are reported
// by the kernel as axes.
type Linux struct {
	log     *zap.Logger
	max     int
	devices map[int]*linuxDevice
	sync.Mutex
}

func NewLinux(max int) *Linux {
	if max <= 0 {
		max = DefaultMaxJoysticks
	}

	return &Linux{
		log: zap.L().With(
			zap.String("backend", linuxProvider),
		),
		max:     max,
		devices: make(map[int]*linuxDevice),
	}
}

func (l *Linux) Name() string {
	return linuxProvider
}

// ScanDevices opens every joystick id not opened yet and returns all open
// devices.
func (l *Linux) ScanDevices() ([]joystick.Device, error) {
	l.Lock()
	defer l.Unlock()

	for id := range l.max {
		if _, ok := l.devices[id]; ok {
			continue
		}

		handle, err := js.Open(id)
		if err != nil {
			continue
		}

		device := &linuxDevice{
			id:     id,
			handle: handle,
			descriptor: joystick.DeviceDescriptor{
				Name:        handle.Name(),
				Provider:    linuxProvider,
				ButtonCount: uint(handle.ButtonCount()),
				AxisCount:   uint(handle.AxisCount()),
				DriverIndex: id,
			},
			release: l.release,
		}

		l.devices[id] = device

		l.log.Debug("device opened",
			zap.Int("id", id),
			zap.String("name", device.descriptor.Name),
		)
	}

	devices := make([]joystick.Device, 0, len(l.devices))
	for id := range l.max {
		if device, ok := l.devices[id]; ok {
			devices = append(devices, device)
		}
	}

	return devices, nil
}

func (l *Linux) release(id int) {
	l.Lock()
	delete(l.devices, id)
	l.Unlock()
}

func (l *Linux) Close() error {
	l.Lock()
	devices := l.devices
	l.devices = make(map[int]*linuxDevice)
	l.Unlock()

	for _, device := range devices {
		device.Close()
	}

	return nil
}

type linuxDevice struct {
	id         int
	handle     js.Joystick
	descriptor joystick.DeviceDescriptor
	release    func(id int)
	once       sync.Once
}

func (d *linuxDevice) Descriptor() joystick.DeviceDescriptor {
	return d.descriptor
}

func (d *linuxDevice) Poll() (joystick.RawState, error) {
	info, err := d.handle.Read()
	if err != nil {
		return joystick.RawState{}, err
	}

	buttons := make([]bool, d.descriptor.ButtonCount)
	for i := range buttons {
		buttons[i] = info.Buttons&(1<<uint32(i)) != 0
	}

	axes := make([]float64, len(info.AxisData))
	for i, v := range info.AxisData {
		axes[i] = joystick.NormalizeAxis(v, linuxAxisAmplitude)
	}

	return joystick.RawState{
		Buttons: buttons,
		Axes:    axes,
	}, nil
}

func (d *linuxDevice) Close() error {
	d.once.Do(func() {
		d.handle.Close()
		d.release(d.id)
	})

	return nil
}
