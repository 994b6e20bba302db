package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"
	"strings"
)

var (
	// ErrInvalidArgument indicates an invalid profiling configuration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownKind indicates an unrecognized profile kind.
	ErrUnknownKind = errors.New("unknown profile kind")

	// ErrSessionState indicates Start or Stop was called out of order.
	ErrSessionState = errors.New("profile session state")
)

// Kind names a pprof profile.
type Kind string

const (
	// KindCPU samples CPU time for the whole session.
	KindCPU Kind = "cpu"
	// KindHeap snapshots live heap allocations at Stop.
	KindHeap Kind = "heap"
	// KindAllocs snapshots all past allocations at Stop.
	KindAllocs Kind = "allocs"
	// KindGoroutine snapshots goroutine stacks at Stop.
	KindGoroutine Kind = "goroutine"
	// KindBlock records blocking on synchronization primitives.
	KindBlock Kind = "block"
	// KindMutex records contended mutex holders.
	KindMutex Kind = "mutex"
)

var kinds = []Kind{KindCPU, KindHeap, KindAllocs, KindGoroutine, KindBlock, KindMutex}

// GetAllKindStrings returns all profile kinds as strings.
func GetAllKindStrings() []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}

	return out
}

// ParseKind parses a profile kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(kinds, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}

	return k, nil
}

// Session collects the configured profiles between [Session.Start] and
// [Session.Stop]. A Session is single use.
//
// Create instances with [Config.NewSession].
type Session struct {
	cpuFile       *os.File
	dir           string
	kinds         []Kind
	blockRate     int
	mutexFraction int
	prevMutex     int
	started       bool
	stopped       bool
}

// Kinds returns the profiles this session collects.
func (s *Session) Kinds() []Kind {
	return slices.Clone(s.kinds)
}

// Path returns the output file for k.
func (s *Session) Path(k Kind) string {
	return filepath.Join(s.dir, "taglog."+string(k)+".pprof")
}

// Start enables the requested sampling and begins CPU profiling if asked.
// On failure the sampling rates are restored and the session may be started
// again.
func (s *Session) Start() error {
	if s.started {
		return fmt.Errorf("%w: already started", ErrSessionState)
	}

	s.started = true

	if slices.Contains(s.kinds, KindBlock) {
		runtime.SetBlockProfileRate(s.blockRate)
	}

	if slices.Contains(s.kinds, KindMutex) {
		s.prevMutex = runtime.SetMutexProfileFraction(s.mutexFraction)
	}

	if !slices.Contains(s.kinds, KindCPU) {
		return nil
	}

	f, err := os.Create(s.Path(KindCPU))
	if err != nil {
		s.abort()

		return fmt.Errorf("creating CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		s.abort()

		return errors.Join(fmt.Errorf("starting CPU profile: %w", err), f.Close())
	}

	s.cpuFile = f

	return nil
}

// Stop ends CPU profiling, writes every snapshot profile, and restores the
// sampling rates. It returns the paths written.
func (s *Session) Stop() ([]string, error) {
	if !s.started || s.stopped {
		return nil, fmt.Errorf("%w: not running", ErrSessionState)
	}

	s.stopped = true

	var (
		paths []string
		errs  []error
	)

	if s.cpuFile != nil {
		pprof.StopCPUProfile()

		err := s.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("closing CPU profile: %w", err))
		} else {
			paths = append(paths, s.cpuFile.Name())
		}
	}

	for _, k := range s.kinds {
		if k == KindCPU {
			continue
		}

		err := s.writeProfile(k)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		paths = append(paths, s.Path(k))
	}

	s.restoreRates()

	return paths, errors.Join(errs...)
}

// abort undoes a failed Start.
func (s *Session) abort() {
	s.restoreRates()

	s.started = false
}

func (s *Session) restoreRates() {
	if slices.Contains(s.kinds, KindBlock) {
		runtime.SetBlockProfileRate(0)
	}

	if slices.Contains(s.kinds, KindMutex) {
		runtime.SetMutexProfileFraction(s.prevMutex)
	}
}

func (s *Session) writeProfile(k Kind) error {
	prof := pprof.Lookup(string(k))
	if prof == nil {
		return fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}

	f, err := os.Create(s.Path(k))
	if err != nil {
		return fmt.Errorf("create %s profile: %w", k, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		return errors.Join(fmt.Errorf("write %s profile: %w", k, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("write %s profile: %w", k, err)
	}

	return nil
}
