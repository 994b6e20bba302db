package log

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

var (
	// ErrInvalidSinkSpec indicates a malformed sink expression.
	ErrInvalidSinkSpec = errors.New("invalid sink spec")
	// ErrReadConfig indicates the configuration file could not be read or
	// decoded.
	ErrReadConfig = errors.New("read log config")
)

// FileConfig is the YAML form of a log configuration.
//
// Example:
//
//	fields:
//	  date: true
//	  func: false
//	color: auto
//	max_sinks: 4
//	sinks:
//	  - path: "-"
//	  - path: error.log
//	    tags: error+
type FileConfig struct {
	Fields   *FileFields `json:"fields,omitempty"    yaml:"fields,omitempty"    jsonschema:"optional line fields; omitted fields keep their flag values"`
	Color    string      `json:"color,omitempty"     yaml:"color,omitempty"     jsonschema:"color output: auto, always or never"`
	Sinks    []SinkSpec  `json:"sinks,omitempty"     yaml:"sinks,omitempty"     jsonschema:"sinks in dispatch order"`
	MaxSinks int         `json:"max_sinks,omitempty" yaml:"max_sinks,omitempty" jsonschema:"maximum number of sinks"`
}

// FileFields is the YAML form of [Fields]. Nil entries are left unchanged.
type FileFields struct {
	Date *bool `json:"date,omitempty" yaml:"date,omitempty"`
	Time *bool `json:"time,omitempty" yaml:"time,omitempty"`
	Tag  *bool `json:"tag,omitempty"  yaml:"tag,omitempty"`
	Func *bool `json:"func,omitempty" yaml:"func,omitempty"`
}

// LoadFile reads and validates the YAML configuration at path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	fc, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return fc, nil
}

// ParseFile decodes and validates a YAML configuration. Unknown keys are
// rejected.
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig

	err := yaml.UnmarshalWithOptions(data, &fc, yaml.DisallowUnknownField())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	if fc.Color != "" {
		_, err = ParseColorMode(fc.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	if fc.MaxSinks < 0 {
		return nil, fmt.Errorf("%w: max_sinks must be positive, got %d", ErrInvalidArgument, fc.MaxSinks)
	}

	for i, s := range fc.Sinks {
		_, err = s.Mask()
		if err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
	}

	return &fc, nil
}
