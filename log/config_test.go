package log_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/taglog/log"
	"go.jacobcolvin.com/taglog/stringtest"
	"go.jacobcolvin.com/taglog/tag"
)

func TestConfigRegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	err := flags.Parse([]string{
		"--log-date=false",
		"--log-func=false",
		"--log-color=never",
		"--log-max-sinks=3",
		"--sink=-=all",
		"--sink=error.log=error+",
	})
	require.NoError(t, err)

	assert.Equal(t, log.Fields{Date: false, Time: true, Tag: true, Func: false}, cfg.Fields)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, 3, cfg.MaxSinks)

	specs, err := cfg.SinkSpecs()
	require.NoError(t, err)
	assert.Equal(t, []log.SinkSpec{
		{Path: "-", Tags: "all"},
		{Path: "error.log", Tags: "error+"},
	}, specs)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse(nil))

	assert.Equal(t, log.DefaultFields(), cfg.Fields)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, log.DefaultCapacity, cfg.MaxSinks)
	assert.Empty(t, cfg.Sinks)
}

func TestConfigRegisterCompletions(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		flag          string
		want          []string
		wantDirective cobra.ShellCompDirective
	}{
		"log-color completions": {
			flag:          "log-color",
			want:          log.GetAllColorStrings(),
			wantDirective: cobra.ShellCompDirectiveNoFileComp,
		},
		"log-max-sinks completions": {
			flag:          "log-max-sinks",
			want:          nil,
			wantDirective: cobra.ShellCompDirectiveNoFileComp,
		},
		"log-config completions": {
			flag:          "log-config",
			want:          []string{"yaml", "yml"},
			wantDirective: cobra.ShellCompDirectiveFilterFileExt,
		},
	}

	cfg := log.NewConfig()

	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())

	err := cfg.RegisterCompletions(cmd)
	require.NoError(t, err)

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			completionFn, ok := cmd.GetFlagCompletionFunc(tc.flag)
			require.True(t, ok)

			values, directive := completionFn(cmd, nil, "")
			assert.Equal(t, tc.wantDirective, directive)
			assert.Equal(t, tc.want, values)
		})
	}
}

func TestConfigNewDispatcher(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg         func(*log.Config)
		wantCap     int
		expectError bool
	}{
		"defaults": {
			cfg:     func(*log.Config) {},
			wantCap: log.DefaultCapacity,
		},
		"custom capacity": {
			cfg:     func(c *log.Config) { c.MaxSinks = 2 },
			wantCap: 2,
		},
		"negative capacity": {
			cfg:         func(c *log.Config) { c.MaxSinks = -1 },
			expectError: true,
		},
		"unknown color": {
			cfg:         func(c *log.Config) { c.Color = "rainbow" },
			expectError: true,
		},
		"bad sink": {
			cfg:         func(c *log.Config) { c.Sinks = []string{"out.log=loud"} },
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := log.NewConfig()
			tc.cfg(cfg)

			d, err := cfg.NewDispatcher()
			if tc.expectError {
				require.ErrorIs(t, err, log.ErrInvalidArgument)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantCap, d.Cap())
			assert.Zero(t, d.Len())
		})
	}
}

func TestConfigNewDispatcherRendersFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := log.NewConfig()
	cfg.Fields = log.Fields{Tag: true}
	cfg.Color = "always"

	d, err := cfg.NewDispatcher(log.WithClock(fixedClock))
	require.NoError(t, err)
	require.True(t, d.Register(&buf, tag.All))

	d.Emit(tag.Warn, "main", "careful")

	assert.Equal(t, "\x1b[33mWARN \x1b[0m careful\n", buf.String())
}

func TestParseSinkSpec(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		want        log.SinkSpec
		wantMask    tag.Mask
		expectError bool
	}{
		"path only": {
			input:    "app.log",
			want:     log.SinkSpec{Path: "app.log"},
			wantMask: tag.All,
		},
		"stderr with mask": {
			input:    "-=warn+",
			want:     log.SinkSpec{Path: "-", Tags: "warn+"},
			wantMask: tag.AtOrAbove(tag.Warn),
		},
		"last equals splits": {
			input:    "a=b.log=debug,info",
			want:     log.SinkSpec{Path: "a=b.log", Tags: "debug,info"},
			wantMask: tag.AtOrBelow(tag.Info),
		},
		"empty path": {
			input:       "=all",
			expectError: true,
		},
		"bad mask": {
			input:       "x.log=nope",
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			spec, err := log.ParseSinkSpec(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, log.ErrInvalidSinkSpec)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, spec)

			m, err := spec.Mask()
			require.NoError(t, err)
			assert.Equal(t, tc.wantMask, m)
			assert.Equal(t, tc.input, spec.String())
		})
	}
}

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "log.yaml")
	err := os.WriteFile(path, []byte(stringtest.JoinLF(
		"fields:",
		"  date: false",
		"  func: false",
		"color: never",
		"max_sinks: 4",
		"sinks:",
		"  - path: '-'",
		"  - path: error.log",
		"    tags: error+",
		"",
	)), 0o600)
	require.NoError(t, err)

	cfg := log.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{
		"--log-config", path,
		"--log-func=true",
		"--sink=debug.log=info-",
	}))
	require.NoError(t, cfg.Load(flags))

	// Explicit flags win over the file.
	assert.Equal(t, log.Fields{Date: false, Time: true, Tag: true, Func: true}, cfg.Fields)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, 4, cfg.MaxSinks)
	assert.Equal(t, []string{"-", "error.log=error+", "debug.log=info-"}, cfg.Sinks)
}

func TestConfigLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	cfg.File = filepath.Join(t.TempDir(), "missing.yaml")

	err := cfg.Load(nil)
	require.ErrorIs(t, err, log.ErrReadConfig)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input     string
		wantError error
	}{
		"empty document": {
			input: "",
		},
		"unknown key": {
			input:     "colour: auto\n",
			wantError: log.ErrReadConfig,
		},
		"bad color": {
			input:     "color: rainbow\n",
			wantError: log.ErrInvalidArgument,
		},
		"negative max sinks": {
			input:     "max_sinks: -2\n",
			wantError: log.ErrInvalidArgument,
		},
		"bad sink mask": {
			input:     "sinks:\n  - path: x.log\n    tags: loud\n",
			wantError: log.ErrInvalidSinkSpec,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := log.ParseFile([]byte(tc.input))
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)

				return
			}

			require.NoError(t, err)
		})
	}
}
