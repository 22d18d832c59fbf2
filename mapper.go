package joystick

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrReadOnly       = errors.New("database is read-only")
	ErrDeviceNotFound = errors.New("device not found")
)

// Database is a source of persisted button maps. Read-only databases
// return ErrReadOnly from every mutation.
type Database interface {
	// ButtonMap returns the profiles known for the device, or
	// ErrDeviceNotFound.
	ButtonMap(device DeviceDescriptor) (*DeviceButtonMap, error)
	MapFeatures(device DeviceDescriptor, controllerID string, features []Feature) error
	IgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error)
	SetIgnoredPrimitives(device DeviceDescriptor, primitives []DriverPrimitive) error
	SaveButtonMap(device DeviceDescriptor) error
	RevertButtonMap(device DeviceDescriptor) error
	ResetButtonMap(device DeviceDescriptor, controllerID string) error
}

// DatabaseCallbacks is notified by databases whenever they index a
// persisted device.
type DatabaseCallbacks interface {
	OnAdd(device DeviceDescriptor, dm *DeviceButtonMap)
}

// FeatureCounter reports how many features a controller profile defines.
// Zero means unknown.
type FeatureCounter interface {
	FeatureCount(controllerID string) int
}

type FeatureCounts map[string]int

func (counts FeatureCounts) FeatureCount(controllerID string) int {
	return counts[controllerID]
}

// ButtonMapper answers feature queries from every registered database and
// infers missing profiles through the ControllerTransformer.
type ButtonMapper struct {
	log         *zap.Logger
	transformer *ControllerTransformer
	counter     FeatureCounter

	databases []Database
	sync.RWMutex
}

func NewButtonMapper(transformer *ControllerTransformer, counter FeatureCounter) *ButtonMapper {
	if counter == nil {
		counter = FeatureCounts{}
	}

	return &ButtonMapper{
		log: zap.L().With(
			zap.String("component", "button_mapper"),
		),
		transformer: transformer,
		counter:     counter,
	}
}

// RegisterDatabase appends db; databases registered first take precedence.
func (m *ButtonMapper) RegisterDatabase(db Database) {
	m.Lock()
	m.databases = append(m.databases, db)
	m.Unlock()
}

func (m *ButtonMapper) dbs() []Database {
	m.RLock()
	defer m.RUnlock()

	return append([]Database(nil), m.databases...)
}

// OnAdd feeds newly indexed devices to the transformer.
func (m *ButtonMapper) OnAdd(device DeviceDescriptor, dm *DeviceButtonMap) {
	if m.transformer == nil {
		return
	}

	m.transformer.OnAdd(device, dm)
}

// ButtonMap merges the profiles of every database for the device.
func (m *ButtonMapper) ButtonMap(device DeviceDescriptor) map[string][]Feature {
	accumulated := make(map[string][]Feature)
	for _, db := range m.dbs() {
		dm, err := db.ButtonMap(device)
		if err != nil {
			if !errors.Is(err, ErrDeviceNotFound) {
				m.log.Warn(err.Error(), zap.String("device", device.String()))
			}

			continue
		}

		for controllerID, features := range dm.Profiles() {
			accumulated[controllerID] = MergeFeatures(accumulated[controllerID], features)
		}
	}

	return accumulated
}

// GetFeatures returns the features of controllerID for the device. When
// the profile is missing or has fewer features than advertised, features
// are derived from the device's largest other profile.
func (m *ButtonMapper) GetFeatures(device DeviceDescriptor, controllerID string) ([]Feature, bool) {
	profiles := m.ButtonMap(device)

	features := profiles[controllerID]

	needsFeatures := len(features) == 0
	if count := m.counter.FeatureCount(controllerID); count > 0 && len(features) < count {
		needsFeatures = true
	}

	if needsFeatures && m.transformer != nil {
		derived := m.deriveFeatures(controllerID, profiles)
		features = MergeFeatures(features, derived)
	}

	SortFeatures(features)
	return features, len(features) > 0
}

func (m *ButtonMapper) deriveFeatures(toController string, profiles map[string][]Feature) []Feature {
	var (
		bestController string
		bestFeatures   []Feature
	)

	for controllerID, features := range profiles {
		if controllerID == toController {
			continue
		}

		if len(features) > len(bestFeatures) ||
			(len(features) == len(bestFeatures) && len(features) > 0 && controllerID < bestController) {
			bestController = controllerID
			bestFeatures = features
		}
	}

	if bestController == "" {
		return nil
	}

	derived := m.transformer.TransformFeatures(bestController, toController, bestFeatures)

	m.log.Debug("features derived",
		zap.String("from", bestController),
		zap.String("to", toController),
		zap.Int("count", len(derived)),
	)

	return derived
}

// MapFeatures stores features in every writable database.
func (m *ButtonMapper) MapFeatures(device DeviceDescriptor, controllerID string, features []Feature) error {
	return m.writable(func(db Database) error {
		return db.MapFeatures(device, controllerID, features)
	})
}

// IgnoredPrimitives returns the ignored primitives of the first database
// that knows the device.
func (m *ButtonMapper) IgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error) {
	for _, db := range m.dbs() {
		primitives, err := db.IgnoredPrimitives(device)
		if err != nil {
			if errors.Is(err, ErrDeviceNotFound) {
				continue
			}

			return nil, err
		}

		return primitives, nil
	}

	return nil, ErrDeviceNotFound
}

func (m *ButtonMapper) SetIgnoredPrimitives(device DeviceDescriptor, primitives []DriverPrimitive) error {
	return m.writable(func(db Database) error {
		return db.SetIgnoredPrimitives(device, primitives)
	})
}

func (m *ButtonMapper) SaveButtonMap(device DeviceDescriptor) error {
	return m.writable(func(db Database) error {
		return db.SaveButtonMap(device)
	})
}

func (m *ButtonMapper) RevertButtonMap(device DeviceDescriptor) error {
	return m.writable(func(db Database) error {
		return db.RevertButtonMap(device)
	})
}

func (m *ButtonMapper) ResetButtonMap(device DeviceDescriptor, controllerID string) error {
	return m.writable(func(db Database) error {
		return db.ResetButtonMap(device, controllerID)
	})
}

// writable applies fn to every database, skipping read-only ones. It
// fails with ErrReadOnly when no database accepted the call.
func (m *ButtonMapper) writable(fn func(db Database) error) error {
	accepted, notFound := false, false

	var errs []error
	for _, db := range m.dbs() {
		err := fn(db)
		switch {
		case err == nil:
			accepted = true
		case errors.Is(err, ErrReadOnly):
		case errors.Is(err, ErrDeviceNotFound):
			notFound = true
		default:
			errs = append(errs, err)
		}
	}

	switch {
	case len(errs) > 0:
		return errors.Join(errs...)
	case accepted:
		return nil
	case notFound:
		return ErrDeviceNotFound
	default:
		return ErrReadOnly
	}
}
