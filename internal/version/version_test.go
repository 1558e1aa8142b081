package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origVersion, origDirty := Version, Dirty
	defer func() { Version, Dirty = origVersion, origDirty }()

	tests := []struct {
		version, dirty, want string
	}{
		{"1.2.0", "false", "1.2.0"},
		{"1.2.0", "true", "1.2.0-dirty"},
		{"dev", "", "dev"},
	}
	for _, tt := range tests {
		Version, Dirty = tt.version, tt.dirty
		if got := String(); got != tt.want {
			t.Errorf("String() with %q/%q = %q, want %q", tt.version, tt.dirty, got, tt.want)
		}
	}
}

func TestFull(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()
	Version = "0.3.1"

	full := Full()
	if !strings.HasPrefix(full, "portion 0.3.1\n") {
		t.Errorf("Full() should start with name and version, got %q", full)
	}
	for _, want := range []string{"Commit:", "Go version:", "OS/Arch:"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q", want)
		}
	}
	if Get().Dirty {
		t.Error("Dirty should default to false")
	}
}
