package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmylchreest/portion/pkg/recipe"
)

// documentSink serializes records as JSON, JSONL or YAML. JSONL lines are
// written as they arrive; JSON and YAML are buffered into one list document
// written on Close.
type documentSink struct {
	format   Format
	w        *bufio.Writer
	closer   io.Closer
	detailed bool
	items    []any
	closed   bool
}

func newDocumentSink(format Format, w io.Writer, closer io.Closer, detailed bool) *documentSink {
	return &documentSink{
		format:   format,
		w:        bufio.NewWriter(w),
		closer:   closer,
		detailed: detailed,
		items:    make([]any, 0),
	}
}

func (s *documentSink) item(rec recipe.Record) any {
	if s.detailed {
		return rec
	}
	return rec.Row()
}

// Append buffers or streams one record.
func (s *documentSink) Append(_ context.Context, rec recipe.Record) error {
	if s.closed {
		return fmt.Errorf("append to closed %s sink", s.format)
	}
	if s.format != FormatJSONL {
		s.items = append(s.items, s.item(rec))
		return nil
	}

	line, err := json.Marshal(s.item(rec))
	if err != nil {
		return err
	}
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close writes any buffered document and closes the destination file.
func (s *documentSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	switch s.format {
	case FormatJSON:
		err = encodeJSON(s.w, s.items)
	case FormatYAML:
		err = encodeYAML(s.w, s.items)
	}
	if err == nil {
		err = s.w.Flush()
	}

	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func encodeJSON(w io.Writer, items []any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(items)
}
