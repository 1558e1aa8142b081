package output

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmylchreest/portion/internal/logger"
	"github.com/jmylchreest/portion/pkg/recipe"
)

// CSVSink appends recipe rows to a CSV file. The header row is written only
// when the file is new or empty.
type CSVSink struct {
	path string
	file *os.File
	w    *csv.Writer
}

// OpenCSV opens path for appending, creating it if needed.
func OpenCSV(path string) (*CSVSink, error) {
	needHeader := true
	info, err := os.Stat(path)
	switch {
	case err == nil:
		needHeader = info.Size() == 0
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to stat csv output: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return nil, fmt.Errorf("failed to open csv output: %w", err)
	}

	s := &CSVSink{path: path, file: f, w: csv.NewWriter(f)}
	if needHeader {
		if err := s.writeRecord(recipe.Columns); err != nil {
			_ = f.Close()
			return nil, err
		}
		logger.Debug("csv header written", "path", path)
	}
	return s, nil
}

// Append writes one row.
func (s *CSVSink) Append(_ context.Context, rec recipe.Record) error {
	if err := s.writeRecord(rec.Row().Values()); err != nil {
		return err
	}
	logger.Debug("csv row appended", "path", s.path, "dish", rec.DishName)
	return nil
}

func (s *CSVSink) writeRecord(cells []string) error {
	if err := s.w.Write(cells); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv row: %w", err)
	}
	return nil
}

// Close closes the file.
func (s *CSVSink) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	if err := s.file.Close(); err != nil {
		return err
	}
	return flushErr
}
