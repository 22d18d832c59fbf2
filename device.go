package joystick

import (
	"cmp"
	"fmt"
	"hash/fnv"
	"strings"
)

// DeviceDescriptor identifies a physical device and its geometry. Zero
// values mean unknown: vendor and product ids of 0 and element counts of 0
// act as wildcards when matching.
type DeviceDescriptor struct {
	Name          string `json:"name" yaml:"name"`
	Provider      string `json:"provider" yaml:"provider"`
	VendorID      uint16 `json:"vid,omitempty" yaml:"vid,omitempty"`
	ProductID     uint16 `json:"pid,omitempty" yaml:"pid,omitempty"`
	ButtonCount   uint   `json:"buttonCount,omitempty" yaml:"buttonCount,omitempty"`
	HatCount      uint   `json:"hatCount,omitempty" yaml:"hatCount,omitempty"`
	AxisCount     uint   `json:"axisCount,omitempty" yaml:"axisCount,omitempty"`
	DriverIndex   int    `json:"driverIndex,omitempty" yaml:"driverIndex,omitempty"`
	RequestedPort int    `json:"requestedPort,omitempty" yaml:"requestedPort,omitempty"`
}

func (d DeviceDescriptor) IsValid() bool {
	return d.Name != "" && d.Provider != ""
}

func (d DeviceDescriptor) IsVidPidKnown() bool {
	return d.VendorID != 0 || d.ProductID != 0
}

func (d DeviceDescriptor) Equal(other DeviceDescriptor) bool {
	return d == other
}

// Compare orders descriptors by name, provider, vendor id, product id and
// element counts.
func (d DeviceDescriptor) Compare(other DeviceDescriptor) int {
	return cmp.Or(
		strings.Compare(d.Name, other.Name),
		strings.Compare(d.Provider, other.Provider),
		cmp.Compare(d.VendorID, other.VendorID),
		cmp.Compare(d.ProductID, other.ProductID),
		cmp.Compare(d.ButtonCount, other.ButtonCount),
		cmp.Compare(d.HatCount, other.HatCount),
		cmp.Compare(d.AxisCount, other.AxisCount),
	)
}

func (d DeviceDescriptor) Less(other DeviceDescriptor) bool {
	return d.Compare(other) < 0
}

// SimilarTo matches a sparse descriptor, e.g. a freshly scanned one,
// against a fully populated record. Fields unknown on either side are not
// compared; the provider must always match.
func (d DeviceDescriptor) SimilarTo(other DeviceDescriptor) bool {
	if d.Provider != other.Provider {
		return false
	}

	if d.Name != "" && other.Name != "" && d.Name != other.Name {
		return false
	}

	if d.IsVidPidKnown() && other.IsVidPidKnown() {
		if d.VendorID != other.VendorID || d.ProductID != other.ProductID {
			return false
		}
	}

	counts := [][2]uint{
		{d.ButtonCount, other.ButtonCount},
		{d.HatCount, other.HatCount},
		{d.AxisCount, other.AxisCount},
	}

	for _, c := range counts {
		if c[0] != 0 && c[1] != 0 && c[0] != c[1] {
			return false
		}
	}

	return true
}

// MergeProperties copies every known field of other into d. Fields that
// other leaves unknown keep d's value.
func (d *DeviceDescriptor) MergeProperties(other DeviceDescriptor) {
	if other.Name != "" {
		d.Name = other.Name
	}

	if other.Provider != "" {
		d.Provider = other.Provider
	}

	if other.IsVidPidKnown() {
		d.VendorID = other.VendorID
		d.ProductID = other.ProductID
	}

	if other.ButtonCount != 0 {
		d.ButtonCount = other.ButtonCount
	}

	if other.HatCount != 0 {
		d.HatCount = other.HatCount
	}

	if other.AxisCount != 0 {
		d.AxisCount = other.AxisCount
	}

	if other.DriverIndex != 0 {
		d.DriverIndex = other.DriverIndex
	}

	if other.RequestedPort != 0 {
		d.RequestedPort = other.RequestedPort
	}
}

// Identity strips the fields assigned at runtime by a backend.
func (d DeviceDescriptor) Identity() DeviceDescriptor {
	d.DriverIndex = 0
	d.RequestedPort = 0
	return d
}

// maxBaseNameLength keeps RootFileName within 70 characters for element
// counts below 1000.
const maxBaseNameLength = 40

// RootFileName derives the storage key of the descriptor. The result only
// contains [A-Za-z0-9._~-], never starts with "_" and is stable for equal
// descriptors. Names without any safe character are keyed by their hash.
func (d DeviceDescriptor) RootFileName() string {
	base := sanitizeName(d.Name)
	if len(base) > maxBaseNameLength {
		base = strings.TrimRight(base[:maxBaseNameLength], "_")
	}

	if base == "" {
		h := fnv.New32a()
		h.Write([]byte(d.Name))
		base = fmt.Sprintf("device_%08x", h.Sum32())
	}

	var sb strings.Builder
	sb.WriteString(base)

	if d.IsVidPidKnown() {
		fmt.Fprintf(&sb, "_v%04x_p%04x", d.VendorID, d.ProductID)
	}

	if d.ButtonCount != 0 {
		fmt.Fprintf(&sb, "_%db", d.ButtonCount)
	}

	if d.HatCount != 0 {
		fmt.Fprintf(&sb, "_%dh", d.HatCount)
	}

	if d.AxisCount != 0 {
		fmt.Fprintf(&sb, "_%da", d.AxisCount)
	}

	return sb.String()
}

func sanitizeName(name string) string {
	var sb strings.Builder

	lastPlaceholder := false
	for _, r := range name {
		safe := r < 0x80 && (r >= 'a' && r <= 'z' ||
			r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' ||
			r == '.' || r == '_' || r == '~' || r == '-')

		if !safe || r == '_' {
			if !lastPlaceholder {
				sb.WriteByte('_')
			}

			lastPlaceholder = true
			continue
		}

		sb.WriteRune(r)
		lastPlaceholder = false
	}

	return strings.Trim(sb.String(), "_")
}

func (d DeviceDescriptor) String() string {
	return fmt.Sprintf("%s [%s %04x:%04x]", d.Name, d.Provider, d.VendorID, d.ProductID)
}
