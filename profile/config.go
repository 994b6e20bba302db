package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Kinds         string
	Dir           string
	BlockRate     string
	MutexFraction string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:         f,
		Dir:           ".",
		BlockRate:     1,
		MutexFraction: 1,
	}
}

// Config selects the profiles to collect. A Config with no kinds collects
// nothing.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags].
type Config struct {
	Flags Flags

	// Dir receives one "taglog.<kind>.pprof" file per kind.
	Dir   string
	Kinds []string

	BlockRate     int
	MutexFraction int
}

// NewConfig creates a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Kinds:         "profile",
		Dir:           "profile-dir",
		BlockRate:     "profile-block-rate",
		MutexFraction: "profile-mutex-fraction",
	}

	return f.NewConfig()
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&c.Kinds, c.Flags.Kinds, nil,
		fmt.Sprintf("profiles to collect, any of: %s", GetAllKindStrings()))
	flags.StringVar(&c.Dir, c.Flags.Dir, c.Dir, "directory for profile output")
	flags.IntVar(&c.BlockRate, c.Flags.BlockRate, c.BlockRate, "block profile rate (nanoseconds)")
	flags.IntVar(&c.MutexFraction, c.Flags.MutexFraction, c.MutexFraction, "mutex profile fraction (1/N sampling)")
}

// RegisterCompletions registers shell completions for profile flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Kinds,
		cobra.FixedCompletions(GetAllKindStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Kinds, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Dir,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Dir, err)
	}

	for _, name := range []string{c.Flags.BlockRate, c.Flags.MutexFraction} {
		err = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(nil, cobra.ShellCompDirectiveNoFileComp))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// NewSession validates the configuration and creates a [Session].
func (c *Config) NewSession() (*Session, error) {
	kinds := make([]Kind, 0, len(c.Kinds))

	for _, s := range c.Kinds {
		k, err := ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}

		kinds = append(kinds, k)
	}

	return &Session{
		dir:           c.Dir,
		kinds:         kinds,
		blockRate:     c.BlockRate,
		mutexFraction: c.MutexFraction,
	}, nil
}
