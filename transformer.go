package joystick

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxDevices bounds how many distinct devices the transformer
// learns from.
const DefaultMaxDevices = 200

// ControllerTranslation is an unordered pair of controller profile ids,
// stored with From < To.
type ControllerTranslation struct {
	From string
	To   string
}

// NewControllerTranslation canonicalises the pair and reports whether the
// ids were swapped to do so.
func NewControllerTranslation(from, to string) (ControllerTranslation, bool) {
	if from > to {
		return ControllerTranslation{From: to, To: from}, true
	}

	return ControllerTranslation{From: from, To: to}, false
}

// FeaturePrimitive addresses one slot of a named feature.
type FeaturePrimitive struct {
	Feature string
	Slot    Slot
}

// FeatureCorrespondence records that From on one profile and To on the
// other profile held the same driver primitive.
type FeatureCorrespondence struct {
	From FeaturePrimitive
	To   FeaturePrimitive
}

// FeatureMap is the set of correspondences observed between two profiles
// on a single device, ordered by From.
type FeatureMap []FeatureCorrespondence

// NewFeatureMap pairs every known primitive of featuresFrom with the slot
// of featuresTo holding the identical primitive.
func NewFeatureMap(featuresFrom, featuresTo []Feature) FeatureMap {
	targets := make(map[DriverPrimitive]FeaturePrimitive)
	for _, f := range sortedFeatures(featuresTo) {
		for _, slot := range f.Slots() {
			p := f.Primitive(slot)
			if !p.IsKnown() {
				continue
			}

			if _, ok := targets[p]; !ok {
				targets[p] = FeaturePrimitive{f.Name, slot}
			}
		}
	}

	var fm FeatureMap
	for _, f := range sortedFeatures(featuresFrom) {
		for _, slot := range f.Slots() {
			p := f.Primitive(slot)
			if !p.IsKnown() {
				continue
			}

			to, ok := targets[p]
			if !ok {
				continue
			}

			fm = append(fm, FeatureCorrespondence{
				From: FeaturePrimitive{f.Name, slot},
				To:   to,
			})
		}
	}

	return fm
}

// Key is the canonical text form of the map, used to count identical maps
// and to break ties between equally frequent ones. Feature names are quoted
// so that distinct maps never share a key.
func (fm FeatureMap) Key() string {
	var sb strings.Builder
	for _, c := range fm {
		sb.WriteString(strconv.Quote(c.From.Feature))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(c.From.Slot)))
		sb.WriteByte('>')
		sb.WriteString(strconv.Quote(c.To.Feature))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(c.To.Slot)))
		sb.WriteByte(';')
	}

	return sb.String()
}

type featureMapCount struct {
	featureMap FeatureMap
	count      int
}

// ControllerTransformer learns how the features of one controller profile
// correspond to those of another from devices mapped for both, and uses
// the most frequently observed correspondence to translate button maps.
type ControllerTransformer struct {
	log        *zap.Logger
	maxDevices int

	devices       map[DeviceDescriptor]struct{}
	controllerMap map[ControllerTranslation]map[string]*featureMapCount
	reduced       map[ControllerTranslation]FeatureMap

	sync.Mutex
}

func NewControllerTransformer(maxDevices int) *ControllerTransformer {
	if maxDevices <= 0 {
		maxDevices = DefaultMaxDevices
	}

	return &ControllerTransformer{
		log: zap.L().With(
			zap.String("component", "controller_transformer"),
		),
		maxDevices:    maxDevices,
		devices:       make(map[DeviceDescriptor]struct{}),
		controllerMap: make(map[ControllerTranslation]map[string]*featureMapCount),
		reduced:       make(map[ControllerTranslation]FeatureMap),
	}
}

// OnAdd learns from every pair of profiles mapped for the device. Each
// device is counted once; once maxDevices devices have been seen further
// devices are ignored.
func (t *ControllerTransformer) OnAdd(device DeviceDescriptor, dm *DeviceButtonMap) {
	t.Lock()
	defer t.Unlock()

	id := device.Identity()
	if _, ok := t.devices[id]; ok {
		return
	}

	if len(t.devices) >= t.maxDevices {
		return
	}

	t.devices[id] = struct{}{}

	profiles := dm.Profiles()
	controllers := dm.Controllers()

	for i, from := range controllers {
		for _, to := range controllers[i+1:] {
			fm := NewFeatureMap(profiles[from], profiles[to])
			if len(fm) == 0 {
				continue
			}

			key := ControllerTranslation{From: from, To: to}

			featureMaps, ok := t.controllerMap[key]
			if !ok {
				featureMaps = make(map[string]*featureMapCount)
				t.controllerMap[key] = featureMaps
			}

			k := fm.Key()
			if entry, ok := featureMaps[k]; ok {
				entry.count++
			} else {
				featureMaps[k] = &featureMapCount{fm, 1}
			}

			delete(t.reduced, key)
		}
	}

	t.log.Debug("device learned",
		zap.String("device", device.String()),
		zap.Int("devices", len(t.devices)),
	)
}

func (t *ControllerTransformer) DeviceCount() int {
	t.Lock()
	defer t.Unlock()

	return len(t.devices)
}

// TransformFeatures translates features of fromController into features of
// toController using the majority FeatureMap. Features without a learned
// correspondence are dropped.
func (t *ControllerTransformer) TransformFeatures(fromController, toController string, features []Feature) []Feature {
	if fromController == toController {
		return nil
	}

	key, swap := NewControllerTranslation(fromController, toController)

	t.Lock()
	fm := t.featureMap(key)
	t.Unlock()

	source := make(map[string]Feature, len(features))
	for _, f := range features {
		source[f.Name] = f
	}

	transformed := make(map[string]Feature)
	for _, c := range fm {
		from, to := c.From, c.To
		if swap {
			from, to = to, from
		}

		f, ok := source[from.Feature]
		if !ok {
			continue
		}

		p := f.Primitive(from.Slot)
		if !p.IsKnown() {
			continue
		}

		target, ok := transformed[to.Feature]
		if !ok {
			target = NewFeature(to.Feature, to.Slot.FeatureType())
		}

		target.SetPrimitive(to.Slot, p)
		transformed[to.Feature] = target
	}

	result := make([]Feature, 0, len(transformed))
	for _, f := range transformed {
		if f.IsValid() {
			result = append(result, f)
		}
	}

	SortFeatures(result)
	return result
}

// featureMap returns the most frequent FeatureMap for the pair. Equal
// counts are resolved in favour of the smallest Key.
func (t *ControllerTransformer) featureMap(key ControllerTranslation) FeatureMap {
	if fm, ok := t.reduced[key]; ok {
		return fm
	}

	featureMaps := t.controllerMap[key]

	keys := make([]string, 0, len(featureMaps))
	for k := range featureMaps {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	var best *featureMapCount
	for _, k := range keys {
		entry := featureMaps[k]
		if best == nil || entry.count > best.count {
			best = entry
		}
	}

	var fm FeatureMap
	if best != nil {
		fm = best.featureMap
	}

	t.reduced[key] = fm
	return fm
}

func sortedFeatures(features []Feature) []Feature {
	sorted := slices.Clone(features)
	SortFeatures(sorted)
	return sorted
}
