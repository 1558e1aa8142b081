// Package version provides build-time version information for portion.
//
// Variables in this package are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/portion/internal/version.Version=1.0.0 ..."
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name is the program name shown in version output.
const Name = "portion"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info contains structured version information
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		Name:      Name,
		Version:   String(),
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the version with a -dirty suffix for modified trees.
func String() string {
	if Dirty == "true" {
		return Version + "-dirty"
	}
	return Version
}

// Full returns a multi-line description of the build.
func Full() string {
	info := Get()
	lines := []string{
		fmt.Sprintf("%s %s", info.Name, info.Version),
		fmt.Sprintf("  Commit:     %s", info.Commit),
		fmt.Sprintf("  Built:      %s", info.BuildDate),
		fmt.Sprintf("  Go version: %s", info.GoVersion),
		fmt.Sprintf("  OS/Arch:    %s", info.Platform),
	}
	return strings.Join(lines, "\n")
}
