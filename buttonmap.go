package joystick

import (
	"maps"
	"slices"
)

// ButtonMap holds the features of one controller profile for one device.
// No two valid features of a ButtonMap hold conflicting primitives.
type ButtonMap struct {
	features map[string]Feature
}

func NewButtonMap(features ...Feature) *ButtonMap {
	bm := &ButtonMap{
		features: make(map[string]Feature),
	}

	for _, f := range features {
		bm.MapFeature(f)
	}

	return bm
}

func (bm *ButtonMap) Len() int {
	return len(bm.features)
}

func (bm *ButtonMap) Feature(name string) (Feature, bool) {
	f, ok := bm.features[name]
	return f, ok
}

// Features returns a copy of the features sorted by name.
func (bm *ButtonMap) Features() []Feature {
	features := slices.Collect(maps.Values(bm.features))
	SortFeatures(features)
	return features
}

// MapFeature stores f, clearing any primitive of another feature that
// conflicts with it. Mapping a feature without known primitives removes
// the feature of that name. It reports whether the map changed.
func (bm *ButtonMap) MapFeature(f Feature) bool {
	if f.Name == "" {
		return false
	}

	existing, ok := bm.features[f.Name]
	if !ok {
		if !f.IsValid() {
			return false
		}

		bm.UnmapFeature(f)
		bm.features[f.Name] = f
		return true
	}

	if f.Type == FeatureTypeUnknown || !f.IsValid() {
		delete(bm.features, f.Name)
		return true
	}

	if existing == f {
		return false
	}

	bm.UnmapFeature(f)
	bm.features[f.Name] = f
	return true
}

// UnmapFeature clears, on every other feature, each slot holding a
// primitive that conflicts with a primitive of f. Features left without
// any known primitive are removed.
func (bm *ButtonMap) UnmapFeature(f Feature) {
	for _, p := range f.Primitives() {
		for name, other := range bm.features {
			if name == f.Name {
				continue
			}

			modified := false
			for _, slot := range other.Slots() {
				if PrimitivesConflict(other.Primitive(slot), p) {
					other.SetPrimitive(slot, DriverPrimitive{})
					modified = true
				}
			}

			if modified {
				bm.features[name] = other
			}
		}
	}

	for name, other := range bm.features {
		if name != f.Name && !other.IsValid() {
			delete(bm.features, name)
		}
	}
}

func (bm *ButtonMap) Clone() *ButtonMap {
	return &ButtonMap{
		features: maps.Clone(bm.features),
	}
}

// MergeFeatures appends the features of newFeatures that neither share a
// name with, nor hold a primitive conflicting with, a feature already in
// features. Earlier features win.
func MergeFeatures(features []Feature, newFeatures []Feature) []Feature {
	for _, f := range newFeatures {
		if !f.IsValid() {
			continue
		}

		if !slices.ContainsFunc(features, func(known Feature) bool {
			return known.Name == f.Name || featuresOverlap(known, f)
		}) {
			features = append(features, f)
		}
	}

	return features
}

func featuresOverlap(f1, f2 Feature) bool {
	for _, p := range f2.Primitives() {
		if f1.Conflicts(p) {
			return true
		}
	}

	return false
}

// DeviceConfiguration holds per-device settings that apply to every
// controller profile.
type DeviceConfiguration struct {
	ignored []DriverPrimitive
}

func (cfg *DeviceConfiguration) IgnoredPrimitives() []DriverPrimitive {
	return slices.Clone(cfg.ignored)
}

// SetIgnoredPrimitives reports whether the ignored set changed.
func (cfg *DeviceConfiguration) SetIgnoredPrimitives(primitives []DriverPrimitive) bool {
	var ignored []DriverPrimitive
	for _, p := range primitives {
		if p.IsKnown() && !slices.Contains(ignored, p) {
			ignored = append(ignored, p)
		}
	}

	if slices.Equal(cfg.ignored, ignored) {
		return false
	}

	cfg.ignored = ignored
	return true
}

func (cfg *DeviceConfiguration) IsIgnored(p DriverPrimitive) bool {
	return slices.ContainsFunc(cfg.ignored, func(ignored DriverPrimitive) bool {
		return PrimitivesConflict(ignored, p)
	})
}

// DeviceButtonMap is everything persisted for a device: its descriptor,
// its configuration and a ButtonMap per controller profile id.
type DeviceButtonMap struct {
	Device        DeviceDescriptor
	Configuration DeviceConfiguration

	controllers map[string]*ButtonMap
}

func NewDeviceButtonMap(device DeviceDescriptor) *DeviceButtonMap {
	return &DeviceButtonMap{
		Device:      device,
		controllers: make(map[string]*ButtonMap),
	}
}

// Controllers returns the mapped controller profile ids in order.
func (dm *DeviceButtonMap) Controllers() []string {
	ids := make([]string, 0, len(dm.controllers))
	for id, bm := range dm.controllers {
		if bm.Len() > 0 {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)
	return ids
}

// ButtonMap returns the map of the given profile, creating it if needed.
func (dm *DeviceButtonMap) ButtonMap(controllerID string) *ButtonMap {
	bm, ok := dm.controllers[controllerID]
	if !ok {
		bm = NewButtonMap()
		dm.controllers[controllerID] = bm
	}

	return bm
}

func (dm *DeviceButtonMap) Features(controllerID string) []Feature {
	bm, ok := dm.controllers[controllerID]
	if !ok {
		return nil
	}

	return bm.Features()
}

// MapFeatures reports whether any feature changed.
func (dm *DeviceButtonMap) MapFeatures(controllerID string, features []Feature) bool {
	if controllerID == "" {
		return false
	}

	bm := dm.ButtonMap(controllerID)

	modified := false
	for _, f := range features {
		if bm.MapFeature(f) {
			modified = true
		}
	}

	return modified
}

// ResetButtonMap drops every feature of the given profile.
func (dm *DeviceButtonMap) ResetButtonMap(controllerID string) bool {
	bm, ok := dm.controllers[controllerID]
	if !ok {
		return false
	}

	delete(dm.controllers, controllerID)
	return bm.Len() > 0
}

// Profiles returns the features of every mapped profile.
func (dm *DeviceButtonMap) Profiles() map[string][]Feature {
	profiles := make(map[string][]Feature, len(dm.controllers))
	for _, id := range dm.Controllers() {
		profiles[id] = dm.controllers[id].Features()
	}

	return profiles
}

func (dm *DeviceButtonMap) IsEmpty() bool {
	return len(dm.Controllers()) == 0 && len(dm.Configuration.ignored) == 0
}

func (dm *DeviceButtonMap) Clone() *DeviceButtonMap {
	clone := &DeviceButtonMap{
		Device: dm.Device,
		Configuration: DeviceConfiguration{
			ignored: slices.Clone(dm.Configuration.ignored),
		},
		controllers: make(map[string]*ButtonMap, len(dm.controllers)),
	}

	for id, bm := range dm.controllers {
		clone.controllers[id] = bm.Clone()
	}

	return clone
}
