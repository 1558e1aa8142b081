// Package output persists normalized recipes. Every sink is append-only:
// one Append call produces one row or document entry.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/portion/pkg/recipe"
)

// Format represents a destination type.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatYAML   Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatSQLite, FormatJSON, FormatJSONL, FormatYAML}

// FormatList returns the supported formats as "csv, sqlite, ...".
func FormatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ParseFormat resolves a user-supplied format name. Empty means csv.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatCSV, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s (use %s)", name, FormatList())
}

// DefaultCSVPath is used when the csv format is selected without a path.
const DefaultCSVPath = "rec.csv"

// ErrPathRequired is returned when a file-only format has no destination.
var ErrPathRequired = errors.New("output path required")

// Sink receives normalized recipes.
type Sink interface {
	// Append persists one record.
	Append(ctx context.Context, rec recipe.Record) error

	// Close flushes buffered output and releases resources.
	Close() error
}

// Options configures Open.
type Options struct {
	// Path is the destination file. Document formats write to Stdout when empty.
	Path string
	// Stdout receives document output when Path is empty (default os.Stdout).
	Stdout io.Writer
	// RunID tags rows in formats that keep run metadata (sqlite).
	RunID string
	// Detailed writes full records instead of the four-column row (json, jsonl, yaml).
	Detailed bool
}

// Open creates a sink for format.
func Open(format Format, opts Options) (Sink, error) {
	switch format {
	case FormatCSV, "":
		path := opts.Path
		if path == "" {
			path = DefaultCSVPath
		}
		return OpenCSV(path)
	case FormatSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("%w for %s output", ErrPathRequired, format)
		}
		return OpenSQLite(opts.Path, opts.RunID)
	case FormatJSON, FormatJSONL, FormatYAML:
		w, closer, err := documentTarget(format, opts)
		if err != nil {
			return nil, err
		}
		return newDocumentSink(format, w, closer, opts.Detailed), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use %s)", format, FormatList())
	}
}

// documentTarget resolves where a document sink writes. JSONL files are
// appended to; JSON and YAML files hold a single document and are replaced.
func documentTarget(format Format, opts Options) (io.Writer, io.Closer, error) {
	if opts.Path == "" {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		return out, nil, nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if format == FormatJSONL {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(opts.Path, flags, 0o644) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, f, nil
}
