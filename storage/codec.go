package storage

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/joystick"
)

var ErrInvalidButtonMap = errors.New("invalid button map")

// Codec reads and writes one button-map file.
type Codec interface {
	Extension() string
	Decode(r io.Reader) (*joystick.DeviceButtonMap, error)
	Encode(w io.Writer, dm *joystick.DeviceButtonMap) error
}

func NewCodec(format joystick.Format) (Codec, error) {
	switch format {
	case joystick.FormatXML:
		return XMLCodec{}, nil
	case joystick.FormatYAML:
		return YAMLCodec{}, nil
	default:
		return nil, errors.New("format not supported")
	}
}

type buttonMapRecord struct {
	XMLName xml.Name      `xml:"buttonmap" yaml:"-"`
	Device  *deviceRecord `xml:"device" yaml:"device"`
}

type deviceRecord struct {
	Name        string `xml:"name,attr" yaml:"name"`
	Provider    string `xml:"provider,attr" yaml:"provider"`
	VendorID    string `xml:"vid,attr,omitempty" yaml:"vid,omitempty"`
	ProductID   string `xml:"pid,attr,omitempty" yaml:"pid,omitempty"`
	ButtonCount uint   `xml:"buttoncount,attr,omitempty" yaml:"buttoncount,omitempty"`
	HatCount    uint   `xml:"hatcount,attr,omitempty" yaml:"hatcount,omitempty"`
	AxisCount   uint   `xml:"axiscount,attr,omitempty" yaml:"axiscount,omitempty"`

	Configuration *configurationRecord `xml:"configuration,omitempty" yaml:"configuration,omitempty"`
	Controllers   []controllerRecord   `xml:"controller" yaml:"controllers,omitempty"`
}

type configurationRecord struct {
	Ignore []joystick.PrimitiveRecord `xml:"ignore>primitive" yaml:"ignore"`
}

type controllerRecord struct {
	ID       string                   `xml:"id,attr" yaml:"id"`
	Features []joystick.FeatureRecord `xml:"feature" yaml:"features"`
}

func newButtonMapRecord(dm *joystick.DeviceButtonMap) *buttonMapRecord {
	d := dm.Device

	device := &deviceRecord{
		Name:        d.Name,
		Provider:    d.Provider,
		ButtonCount: d.ButtonCount,
		HatCount:    d.HatCount,
		AxisCount:   d.AxisCount,
	}

	if d.IsVidPidKnown() {
		device.VendorID = fmt.Sprintf("%04x", d.VendorID)
		device.ProductID = fmt.Sprintf("%04x", d.ProductID)
	}

	if ignored := dm.Configuration.IgnoredPrimitives(); len(ignored) > 0 {
		device.Configuration = &configurationRecord{
			Ignore: joystick.NewPrimitiveRecords(ignored),
		}
	}

	for _, id := range dm.Controllers() {
		device.Controllers = append(device.Controllers, controllerRecord{
			ID:       id,
			Features: joystick.NewFeatureRecords(dm.Features(id)),
		})
	}

	return &buttonMapRecord{Device: device}
}

// buttonMap converts the record. Rejected features and primitives are
// logged and skipped; a missing or invalid device fails the whole record.
func (r *buttonMapRecord) buttonMap() (*joystick.DeviceButtonMap, error) {
	if r.Device == nil {
		return nil, fmt.Errorf("%w: device required", ErrInvalidButtonMap)
	}

	raw := r.Device

	device := joystick.DeviceDescriptor{
		Name:        raw.Name,
		Provider:    raw.Provider,
		ButtonCount: raw.ButtonCount,
		HatCount:    raw.HatCount,
		AxisCount:   raw.AxisCount,
	}

	if !device.IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidButtonMap, joystick.ErrInvalidDevice)
	}

	vid, err := parseID(raw.VendorID)
	if err != nil {
		return nil, fmt.Errorf("%w: vid: %w", ErrInvalidButtonMap, err)
	}

	pid, err := parseID(raw.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: pid: %w", ErrInvalidButtonMap, err)
	}

	device.VendorID = vid
	device.ProductID = pid

	log := zap.L().With(
		zap.String("component", "codec"),
		zap.String("device", device.String()),
	)

	dm := joystick.NewDeviceButtonMap(device)

	if cfg := raw.Configuration; cfg != nil {
		primitives, err := joystick.DecodePrimitives(cfg.Ignore)
		if err != nil {
			log.Warn(err.Error())
		}

		dm.Configuration.SetIgnoredPrimitives(primitives)
	}

	for _, controller := range raw.Controllers {
		if controller.ID == "" {
			log.Warn("controller id required")
			continue
		}

		features, err := joystick.DecodeFeatures(controller.Features)
		if err != nil {
			log.Warn(err.Error(), zap.String("controller", controller.ID))
		}

		dm.MapFeatures(controller.ID, features)
	}

	return dm, nil
}

func parseID(s string) (uint16, error) {
	if s == "" {
		return 0, nil
	}

	id, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}

	return uint16(id), nil
}

// XMLCodec reads and writes the <buttonmap> document format.
type XMLCodec struct{}

func (XMLCodec) Extension() string {
	return "xml"
}

func (XMLCodec) Decode(r io.Reader) (*joystick.DeviceButtonMap, error) {
	var record *buttonMapRecord
	if err := xml.NewDecoder(r).Decode(&record); err != nil {
		return nil, err
	}

	return record.buttonMap()
}

func (XMLCodec) Encode(w io.Writer, dm *joystick.DeviceButtonMap) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")

	if err := enc.Encode(newButtonMapRecord(dm)); err != nil {
		return err
	}

	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

type YAMLCodec struct{}

func (YAMLCodec) Extension() string {
	return "yaml"
}

func (YAMLCodec) Decode(r io.Reader) (*joystick.DeviceButtonMap, error) {
	var record *buttonMapRecord
	if err := yaml.NewDecoder(r).Decode(&record); err != nil {
		return nil, err
	}

	if record == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidButtonMap)
	}

	return record.buttonMap()
}

func (YAMLCodec) Encode(w io.Writer, dm *joystick.DeviceButtonMap) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(newButtonMapRecord(dm)); err != nil {
		return err
	}

	return enc.Close()
}
