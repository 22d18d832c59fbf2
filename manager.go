package joystick

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Device is a joystick handle opened by a backend.
type Device interface {
	Descriptor() DeviceDescriptor
	Poll() (RawState, error)
	Close() error
}

// DeviceScanner enumerates the devices of one backend. Name is the provider
// of every descriptor the scanner reports. A scanner may return the same
// Device across scans; the manager closes a Device once it is no longer
// reported.
type DeviceScanner interface {
	Name() string
	ScanDevices() ([]Device, error)
	Close() error
}

// Pumper is implemented by scanners that must process backend events once
// per frame before their devices are polled.
type Pumper interface {
	Pump()
}

// IgnoredPrimitivesProvider supplies the per-device ignore list.
type IgnoredPrimitivesProvider interface {
	IgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error)
}

type ManagerConfig struct {
	ScanInterval time.Duration
	PollInterval time.Duration
	EventBuffer  int
}

const (
	DefaultScanInterval = 2 * time.Second
	DefaultPollInterval = 16 * time.Millisecond
	DefaultEventBuffer  = 256
)

// JoystickInfo describes a connected joystick.
type JoystickInfo struct {
	Index  int              `json:"index"`
	Device DeviceDescriptor `json:"device"`
}

// Manager owns the enabled backends, keeps a stable index for every
// connected joystick and pumps their state changes into Events.
type Manager struct {
	log      *zap.Logger
	cfg      ManagerConfig
	scanners []DeviceScanner
	ignored  IgnoredPrimitivesProvider

	joysticks map[int]*Joystick
	events    chan Event
	sync.Mutex
}

func NewManager(cfg ManagerConfig, ignored IgnoredPrimitivesProvider, scanners ...DeviceScanner) *Manager {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultEventBuffer
	}

	return &Manager{
		log: zap.L().With(
			zap.String("component", "joystick_manager"),
		),
		cfg:       cfg,
		scanners:  scanners,
		ignored:   ignored,
		joysticks: make(map[int]*Joystick),
		events:    make(chan Event, cfg.EventBuffer),
	}
}

// Events delivers joystick events. Events are dropped while the channel is
// full.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) Joysticks() []JoystickInfo {
	m.Lock()
	defer m.Unlock()

	infos := make([]JoystickInfo, 0, len(m.joysticks))
	for index, j := range m.joysticks {
		infos = append(infos, JoystickInfo{index, j.Descriptor()})
	}

	slices.SortFunc(infos, func(a, b JoystickInfo) int {
		return a.Index - b.Index
	})

	return infos
}

// Scan asks every backend for its devices, drops joysticks that vanished
// and assigns the lowest free index to new ones. Joysticks of a backend
// whose scan failed are kept until its next successful scan.
func (m *Manager) Scan() error {
	var (
		scanned []Device
		errs    []error
	)

	failed := make(map[string]bool)

	for _, scanner := range m.scanners {
		devices, err := scanner.ScanDevices()
		if err != nil {
			m.log.Warn("scan failed",
				zap.String("backend", scanner.Name()),
				zap.Error(err),
			)

			failed[scanner.Name()] = true
			errs = append(errs, err)
			continue
		}

		scanned = append(scanned, devices...)
	}

	m.Lock()
	defer m.Unlock()

	matched := make(map[int]bool)
	var added []Device

	for _, device := range scanned {
		descriptor := device.Descriptor()

		found := false
		for index, j := range m.joysticks {
			if matched[index] || !j.descriptor.Equal(descriptor) {
				continue
			}

			if j.device != device {
				device.Close()
			}

			matched[index] = true
			found = true
			break
		}

		if !found {
			added = append(added, device)
		}
	}

	for index, j := range m.joysticks {
		if !matched[index] && !failed[j.descriptor.Provider] {
			m.remove(index, j)
		}
	}

	for _, device := range added {
		m.add(device)
	}

	return errors.Join(errs...)
}

func (m *Manager) add(device Device) {
	index := 0
	for {
		if _, ok := m.joysticks[index]; !ok {
			break
		}

		index++
	}

	j := NewJoystick(index, device)

	if m.ignored != nil {
		primitives, err := m.ignored.IgnoredPrimitives(j.descriptor)
		if err == nil {
			j.SetIgnoredPrimitives(primitives)
		} else if !errors.Is(err, ErrDeviceNotFound) {
			m.log.Warn(err.Error(), zap.String("device", j.descriptor.String()))
		}
	}

	m.joysticks[index] = j

	m.log.Info("joystick connected",
		zap.Int("index", index),
		zap.String("device", j.descriptor.String()),
		zap.Uint("buttons", j.descriptor.ButtonCount),
		zap.Uint("hats", j.descriptor.HatCount),
		zap.Uint("axes", j.descriptor.AxisCount),
	)

	descriptor := j.descriptor
	m.emit(Event{Joystick: index, Type: EventConnected, Device: &descriptor})
}

func (m *Manager) remove(index int, j *Joystick) {
	delete(m.joysticks, index)

	if err := j.device.Close(); err != nil {
		m.log.Warn(err.Error(), zap.Int("index", index))
	}

	m.log.Info("joystick disconnected",
		zap.Int("index", index),
		zap.String("device", j.descriptor.String()),
	)

	descriptor := j.descriptor
	m.emit(Event{Joystick: index, Type: EventDisconnected, Device: &descriptor})
}

// RefreshIgnoredPrimitives reloads the ignore list of every joystick
// similar to device.
func (m *Manager) RefreshIgnoredPrimitives(device DeviceDescriptor) {
	if m.ignored == nil {
		return
	}

	m.Lock()
	defer m.Unlock()

	for _, j := range m.joysticks {
		if !j.descriptor.SimilarTo(device) {
			continue
		}

		primitives, err := m.ignored.IgnoredPrimitives(j.descriptor)
		if err != nil {
			primitives = nil
		}

		j.SetIgnoredPrimitives(primitives)
	}
}

// Process polls every joystick once and emits their changes. Joysticks
// whose poll fails are disconnected.
func (m *Manager) Process() {
	for _, scanner := range m.scanners {
		if pumper, ok := scanner.(Pumper); ok {
			pumper.Pump()
		}
	}

	m.Lock()
	defer m.Unlock()

	for index, j := range m.joysticks {
		state, err := j.device.Poll()
		if err != nil {
			m.log.Warn("poll failed",
				zap.Int("index", index),
				zap.Error(err),
			)

			m.remove(index, j)
			continue
		}

		for _, e := range j.Update(state) {
			m.emit(e)
		}
	}
}

func (m *Manager) emit(e Event) {
	select {
	case m.events <- e:
	default:
		m.log.Debug("event dropped",
			zap.Int("index", e.Joystick),
			zap.String("type", e.Type.String()),
		)
	}
}

// Run scans and polls until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if err := m.Scan(); err != nil {
		m.log.Warn(err.Error())
	}

	scan := time.NewTicker(m.cfg.ScanInterval)
	defer scan.Stop()

	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("done")
			return

		case <-scan.C:
			m.Scan()

		case <-poll.C:
			m.Process()
		}
	}
}

// Close disconnects every joystick and closes the backends.
func (m *Manager) Close() error {
	m.Lock()
	for index, j := range m.joysticks {
		m.remove(index, j)
	}
	m.Unlock()

	var errs []error
	for _, scanner := range m.scanners {
		if err := scanner.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
