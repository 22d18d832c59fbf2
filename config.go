package joystick

import (
	"errors"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Path        string            `yaml:"-"`
	Storage     StorageConfig     `yaml:"storage"`
	Backends    []Backend         `yaml:"backends"`
	Scan        ScanConfig        `yaml:"scan"`
	Transformer TransformerConfig `yaml:"transformer"`
	Controllers []*Controller     `yaml:"controllers"`
}

var ErrEmptyConfig = errors.New("config is empty")

// LoadConfig decodes a yaml config. An empty document is an error.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg *Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyConfig
		}

		return nil, err
	}

	if cfg == nil {
		return nil, ErrEmptyConfig
	}

	return cfg, nil
}

// FeatureCounts returns the advertised feature count of every configured
// controller profile.
func (cfg *Config) FeatureCounts() FeatureCounts {
	counts := make(FeatureCounts, len(cfg.Controllers))
	for _, controller := range cfg.Controllers {
		counts[controller.ID] = controller.Features
	}

	return counts
}

type StorageConfig struct {
	Format    Format        `yaml:"format"`
	User      string        `yaml:"user"`
	Resources []string      `yaml:"resources"`
	Remote    *RemoteConfig `yaml:"remote"`
}

type RemoteConfig struct {
	URL    string `yaml:"url"`
	Format Format `yaml:"format"`
}

type ScanConfig struct {
	Interval time.Duration `yaml:"interval"`
	Poll     time.Duration `yaml:"poll"`
}

func (cfg ScanConfig) ManagerConfig() ManagerConfig {
	return ManagerConfig{
		ScanInterval: cfg.Interval,
		PollInterval: cfg.Poll,
	}
}

type TransformerConfig struct {
	MaxDevices int `yaml:"maxDevices"`
}

type Controller struct {
	ID       string `yaml:"id"`
	Features int    `yaml:"features"`
}

type Format int

const (
	FormatXML Format = iota
	FormatYAML
)

func ParseFormat(format string) (Format, error) {
	switch format {
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return -1, errors.New("format not supported")
	}
}

func (format *Format) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	f, err := ParseFormat(raw)
	if err != nil {
		return err
	}

	*format = f

	return nil
}

func (format Format) String() string {
	switch format {
	case FormatXML:
		return "xml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

type Backend int

const (
	BackendLinux Backend = iota
	BackendSDL
)

func ParseBackend(backend string) (Backend, error) {
	switch backend {
	case "linux":
		return BackendLinux, nil
	case "sdl":
		return BackendSDL, nil
	default:
		return -1, errors.New("backend not supported")
	}
}

func (backend *Backend) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	b, err := ParseBackend(raw)
	if err != nil {
		return err
	}

	*backend = b

	return nil
}

func (backend Backend) String() string {
	switch backend {
	case BackendLinux:
		return "linux"
	case BackendSDL:
		return "sdl"
	default:
		return "unknown"
	}
}
