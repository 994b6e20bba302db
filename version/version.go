// Package version exposes build metadata for the taglog binary.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release version, set via ldflags.
	Version = "dev"
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the VCS revision recorded by the Go toolchain.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
)

// Fprint writes a short multi-line summary of the build to w.
func Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w, "taglog %s\n  revision: %s\n  built:    %s\n  go:       %s %s/%s\n",
		Version, Revision, orUnknown(BuildDate), GoVersion, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

func getRevision() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	rev, dirty := "unknown", false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			dirty = v.Value == "true"
		}
	}

	if dirty {
		return rev + "-dirty"
	}

	return rev
}
