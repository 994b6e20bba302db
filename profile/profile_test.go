package profile_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/taglog/profile"
)

func TestConfigRegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse(nil))
	assert.Empty(t, cfg.Kinds)
	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, 1, cfg.BlockRate)
	assert.Equal(t, 1, cfg.MutexFraction)

	require.NoError(t, flags.Parse([]string{
		"--profile=cpu,mutex",
		"--profile=heap",
		"--profile-dir=/tmp/p",
		"--profile-mutex-fraction=5",
	}))
	assert.Equal(t, []string{"cpu", "mutex", "heap"}, cfg.Kinds)
	assert.Equal(t, "/tmp/p", cfg.Dir)
	assert.Equal(t, 5, cfg.MutexFraction)
}

func TestConfigRegisterCompletions(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		flag          string
		want          []string
		wantDirective cobra.ShellCompDirective
	}{
		"kinds": {
			flag:          "profile",
			want:          profile.GetAllKindStrings(),
			wantDirective: cobra.ShellCompDirectiveNoFileComp,
		},
		"dir": {
			flag:          "profile-dir",
			wantDirective: cobra.ShellCompDirectiveFilterDirs,
		},
		"mutex fraction": {
			flag:          "profile-mutex-fraction",
			wantDirective: cobra.ShellCompDirectiveNoFileComp,
		},
	}

	cfg := profile.NewConfig()
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

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

func TestParseKind(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		want        profile.Kind
		expectError bool
	}{
		"cpu":          {input: "cpu", want: profile.KindCPU},
		"upper mutex":  {input: "MUTEX", want: profile.KindMutex},
		"padded":       {input: " heap ", want: profile.KindHeap},
		"unknown":      {input: "trace", expectError: true},
		"threadcreate": {input: "threadcreate", expectError: true},
		"empty kind":   {input: "", expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := profile.ParseKind(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, profile.ErrUnknownKind)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewSessionInvalid(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	cfg.Kinds = []string{"heap", "bogus"}

	_, err := cfg.NewSession()
	require.ErrorIs(t, err, profile.ErrInvalidArgument)
	require.ErrorIs(t, err, profile.ErrUnknownKind)
}

func TestSessionSnapshots(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	cfg.Dir = t.TempDir()
	cfg.Kinds = []string{"heap", "goroutine", "allocs"}

	s, err := cfg.NewSession()
	require.NoError(t, err)
	assert.Equal(t, []profile.Kind{profile.KindHeap, profile.KindGoroutine, profile.KindAllocs}, s.Kinds())

	_, err = s.Stop()
	require.ErrorIs(t, err, profile.ErrSessionState)

	require.NoError(t, s.Start())
	require.ErrorIs(t, s.Start(), profile.ErrSessionState)

	paths, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cfg.Dir, "taglog.heap.pprof"),
		filepath.Join(cfg.Dir, "taglog.goroutine.pprof"),
		filepath.Join(cfg.Dir, "taglog.allocs.pprof"),
	}, paths)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = s.Stop()
	require.ErrorIs(t, err, profile.ErrSessionState)
}

// Only one CPU profile may run per process, so this test is not parallel.
func TestSessionCPUAndContention(t *testing.T) {
	cfg := profile.NewConfig()
	cfg.Dir = t.TempDir()
	cfg.Kinds = []string{"cpu", "mutex", "block"}

	s, err := cfg.NewSession()
	require.NoError(t, err)
	require.NoError(t, s.Start())

	paths, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, []string{
		s.Path(profile.KindCPU),
		s.Path(profile.KindMutex),
		s.Path(profile.KindBlock),
	}, paths)
}

func TestSessionBadDir(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	cfg.Dir = filepath.Join(t.TempDir(), "missing")
	cfg.Kinds = []string{"heap"}

	s, err := cfg.NewSession()
	require.NoError(t, err)
	require.NoError(t, s.Start())

	_, err = s.Stop()
	require.Error(t, err)
}

// Changes the process-wide mutex fraction, so this test is not parallel.
func TestSessionStartFailureRestoresRates(t *testing.T) {
	before := runtime.SetMutexProfileFraction(-1)

	cfg := profile.NewConfig()
	cfg.Dir = filepath.Join(t.TempDir(), "missing")
	cfg.Kinds = []string{"mutex", "block", "cpu"}
	cfg.MutexFraction = before + 7

	s, err := cfg.NewSession()
	require.NoError(t, err)

	require.Error(t, s.Start())
	assert.Equal(t, before, runtime.SetMutexProfileFraction(-1))

	_, err = s.Stop()
	require.ErrorIs(t, err, profile.ErrSessionState)
}
