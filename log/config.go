package log

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/taglog/tag"
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Date     string
	Time     string
	Tag      string
	Func     string
	Color    string
	MaxSinks string
	Sinks    string
	File     string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for log configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Call [Config.Load] after flag parsing to merge the
// optional YAML file, then [Config.NewDispatcher] to build a [Dispatcher].
// Opening the writers named by [Config.SinkSpecs] is left to the caller.
type Config struct {
	Flags    Flags
	Color    string
	File     string
	Sinks    []string
	Fields   Fields
	MaxSinks int
}

// NewConfig returns a new [Config] with zero-value fields.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Date:     "log-date",
		Time:     "log-time",
		Tag:      "log-tag",
		Func:     "log-func",
		Color:    "log-color",
		MaxSinks: "log-max-sinks",
		Sinks:    "sink",
		File:     "log-config",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.Fields.Date, c.Flags.Date, true, "include the date in each line")
	flags.BoolVar(&c.Fields.Time, c.Flags.Time, true, "include the time in each line")
	flags.BoolVar(&c.Fields.Tag, c.Flags.Tag, true, "include the tag name in each line")
	flags.BoolVar(&c.Fields.Func, c.Flags.Func, true, "include the calling function in each line")
	flags.StringVar(&c.Color, c.Flags.Color, string(ColorAuto),
		fmt.Sprintf("color output, one of: %s", GetAllColorStrings()))
	flags.IntVar(&c.MaxSinks, c.Flags.MaxSinks, DefaultCapacity, "maximum number of sinks")
	flags.StringArrayVar(&c.Sinks, c.Flags.Sinks, nil,
		"sink as path=tags, e.g. -=all or error.log=error+ (repeatable)")
	flags.StringVar(&c.File, c.Flags.File, "", "YAML log configuration file")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Color,
		cobra.FixedCompletions(GetAllColorStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Color, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.MaxSinks,
		cobra.FixedCompletions(nil, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.MaxSinks, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.File,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.File, err)
	}

	return nil
}

// Load merges the YAML file named by [Config.File], if any. Values from the
// file apply only where the corresponding flag was not set explicitly on
// flags; file sinks are placed before flag sinks. A nil flags treats every
// flag as unset.
func (c *Config) Load(flags *pflag.FlagSet) error {
	if c.File == "" {
		return nil
	}

	fc, err := LoadFile(c.File)
	if err != nil {
		return err
	}

	c.Apply(fc, flags)

	return nil
}

// Apply merges fc into c using the precedence described on [Config.Load].
func (c *Config) Apply(fc *FileConfig, flags *pflag.FlagSet) {
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	setBool := func(dst *bool, src *bool, name string) {
		if src != nil && !changed(name) {
			*dst = *src
		}
	}

	if fc.Fields != nil {
		setBool(&c.Fields.Date, fc.Fields.Date, c.Flags.Date)
		setBool(&c.Fields.Time, fc.Fields.Time, c.Flags.Time)
		setBool(&c.Fields.Tag, fc.Fields.Tag, c.Flags.Tag)
		setBool(&c.Fields.Func, fc.Fields.Func, c.Flags.Func)
	}

	if fc.Color != "" && !changed(c.Flags.Color) {
		c.Color = fc.Color
	}

	if fc.MaxSinks > 0 && !changed(c.Flags.MaxSinks) {
		c.MaxSinks = fc.MaxSinks
	}

	if len(fc.Sinks) > 0 {
		sinks := make([]string, 0, len(fc.Sinks)+len(c.Sinks))
		for _, s := range fc.Sinks {
			sinks = append(sinks, s.String())
		}

		c.Sinks = append(sinks, c.Sinks...)
	}
}

// SinkSpecs parses the configured sink expressions.
func (c *Config) SinkSpecs() ([]SinkSpec, error) {
	specs := make([]SinkSpec, 0, len(c.Sinks))

	for _, s := range c.Sinks {
		spec, err := ParseSinkSpec(s)
		if err != nil {
			return nil, err
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// NewDispatcher validates c and creates a [Dispatcher] with no sinks.
// Additional options are applied after the configured ones.
func (c *Config) NewDispatcher(opts ...Option) (*Dispatcher, error) {
	color := ColorAuto
	if c.Color != "" {
		var err error

		color, err = ParseColorMode(c.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	capacity := DefaultCapacity
	if c.MaxSinks != 0 {
		if c.MaxSinks < 0 {
			return nil, fmt.Errorf("%w: %s must be positive, got %d",
				ErrInvalidArgument, c.Flags.MaxSinks, c.MaxSinks)
		}

		capacity = c.MaxSinks
	}

	_, err := c.SinkSpecs()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	base := []Option{
		WithFields(c.Fields),
		WithColor(color),
		WithCapacity(capacity),
	}

	return New(append(base, opts...)...), nil
}

// SinkSpec names a sink destination and the tags it receives.
type SinkSpec struct {
	// Path is a file path, or one of "-", "stderr", "stdout".
	Path string `json:"path" yaml:"path" jsonschema:"file path, or - / stderr / stdout"`
	// Tags is a mask expression understood by [tag.ParseMask].
	Tags string `json:"tags,omitempty" yaml:"tags,omitempty" jsonschema:"mask expression such as all, error+ or debug,info; defaults to all"`
}

// ParseSinkSpec parses "path=tags". The tags part is optional and defaults
// to "all". The last "=" separates the path from the tags.
func ParseSinkSpec(s string) (SinkSpec, error) {
	path, tags := s, ""
	if i := strings.LastIndexByte(s, '='); i >= 0 {
		path, tags = s[:i], s[i+1:]
	}

	spec := SinkSpec{Path: strings.TrimSpace(path), Tags: strings.TrimSpace(tags)}

	_, err := spec.Mask()
	if err != nil {
		return SinkSpec{}, err
	}

	return spec, nil
}

// Mask parses the spec's tag expression.
func (s SinkSpec) Mask() (tag.Mask, error) {
	if s.Path == "" {
		return tag.None, fmt.Errorf("%w: empty path", ErrInvalidSinkSpec)
	}

	if s.Tags == "" {
		return tag.All, nil
	}

	m, err := tag.ParseMask(s.Tags)
	if err != nil {
		return tag.None, fmt.Errorf("%w: %s: %w", ErrInvalidSinkSpec, s.Path, err)
	}

	return m, nil
}

// String formats s in the form accepted by [ParseSinkSpec].
func (s SinkSpec) String() string {
	if s.Tags == "" {
		return s.Path
	}

	return s.Path + "=" + s.Tags
}

// IsStderr reports whether s names the standard error stream.
func (s SinkSpec) IsStderr() bool {
	return s.Path == "-" || s.Path == "stderr"
}

// IsStdout reports whether s names the standard output stream.
func (s SinkSpec) IsStdout() bool {
	return s.Path == "stdout"
}
