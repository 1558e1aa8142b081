package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/portion/pkg/recipe"
)

func testRecord(name string) recipe.Record {
	return recipe.Record{
		URL:         "https://example.com/" + name,
		DishName:    name,
		ReadyInTime: "30 minutes",
		Yield:       4,
		Servings:    1,
		Ingredients: []string{"1/2 cups flour", "salt to taste"},
		Directions:  []string{"Mix.", "Bake, then \"rest\"."},
		FetchedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open csv: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	return rows
}

// --- Open Factory Tests ---

func TestOpen_Formats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format Format
		path   string
		want   string
	}{
		{FormatCSV, filepath.Join(dir, "out.csv"), "*output.CSVSink"},
		{FormatSQLite, filepath.Join(dir, "out.db"), "*output.SQLiteSink"},
		{FormatJSON, "", "*output.documentSink"},
		{FormatJSONL, "", "*output.documentSink"},
		{FormatYAML, "", "*output.documentSink"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			s, err := Open(tt.format, Options{Path: tt.path, Stdout: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer func() { _ = s.Close() }()

			if got := reflect.TypeOf(s).String(); got != tt.want {
				t.Errorf("Open(%s) returned %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(Format("xlsx"), Options{}); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}

	if _, err := Open(FormatSQLite, Options{}); !errors.Is(err, ErrPathRequired) {
		t.Errorf("expected ErrPathRequired, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" SQLite ", FormatSQLite, false},
		{"jsonl", FormatJSONL, false},
		{"yaml", FormatYAML, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if err != nil && !strings.Contains(err.Error(), FormatList()) {
				t.Errorf("error should list supported formats: %v", err)
			}
		})
	}
}

func TestFormatList(t *testing.T) {
	if got := FormatList(); got != "csv, sqlite, json, jsonl, yaml" {
		t.Errorf("FormatList() = %q", got)
	}
}

// --- CSVSink Tests ---

func TestCSVSink_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.csv")
	ctx := context.Background()

	for i, name := range []string{"Soup", "Stew"} {
		s, err := OpenCSV(path)
		if err != nil {
			t.Fatalf("OpenCSV() run %d error = %v", i, err)
		}
		if err := s.Append(ctx, testRecord(name)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}
	if !reflect.DeepEqual(rows[0], recipe.Columns) {
		t.Errorf("header = %q, want %q", rows[0], recipe.Columns)
	}
	if rows[1][0] != "Soup" || rows[2][0] != "Stew" {
		t.Errorf("unexpected dish order: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][2] != "1/2 cups flour\nsalt to taste" {
		t.Errorf("ingredients cell = %q", rows[1][2])
	}
	if rows[1][3] != "Mix.\nBake, then \"rest\"." {
		t.Errorf("directions cell = %q", rows[1][3])
	}
}

func TestCSVSink_EmptyExistingFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], recipe.Columns) {
		t.Errorf("expected only the header row, got %q", rows)
	}
}

// --- SQLiteSink Tests ---

func TestSQLiteSink_AppendAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, "run-1")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Append(ctx, testRecord("Soup")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening must keep existing rows.
	s, err = OpenSQLite(path, "run-2")
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error = %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Append(ctx, testRecord("Stew")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	records, err := s.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	want := testRecord("Soup")
	got := records[0]
	if got.DishName != want.DishName || got.URL != want.URL || got.Yield != 4 {
		t.Errorf("unexpected first record: %+v", got)
	}
	if !reflect.DeepEqual(got.Ingredients, want.Ingredients) {
		t.Errorf("Ingredients = %q", got.Ingredients)
	}
	if !got.FetchedAt.Equal(want.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, want.FetchedAt)
	}
	if records[1].DishName != "Stew" {
		t.Errorf("second record = %q", records[1].DishName)
	}

	var runID string
	if err := s.db.QueryRowContext(ctx, "SELECT run_id FROM recipes WHERE dish_name = 'Stew'").Scan(&runID); err != nil {
		t.Fatalf("query run_id: %v", err)
	}
	if runID != "run-2" {
		t.Errorf("run_id = %q, want run-2", runID)
	}
}

// --- Document Sink Tests ---

func TestDocumentSink_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	s, err := Open(FormatJSON, Options{Stdout: buf})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	_ = s.Append(ctx, testRecord("Soup"))
	_ = s.Append(ctx, testRecord("Stew"))

	if buf.Len() != 0 {
		t.Error("json output should be buffered until Close")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var rows []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("failed to unmarshal output: %v\n%s", err, buf.String())
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["Dish Name"] != "Soup" || rows[0]["Ingredients"] != "1/2 cups flour\nsalt to taste" {
		t.Errorf("unexpected row: %v", rows[0])
	}
}

func TestDocumentSink_JSONEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	s, _ := Open(FormatJSON, Options{Stdout: buf})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestDocumentSink_JSONLAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.jsonl")
	ctx := context.Background()

	for _, name := range []string{"Soup", "Stew"} {
		s, err := Open(FormatJSONL, Options{Path: path, Detailed: true})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := s.Append(ctx, testRecord(name)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var rec recipe.Record
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("line 2 is not a record: %v", err)
	}
	if rec.DishName != "Stew" || rec.Yield != 4 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestDocumentSink_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	s, _ := Open(FormatYAML, Options{Stdout: buf})
	_ = s.Append(context.Background(), testRecord("Soup"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var rows []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}
	if len(rows) != 1 || rows[0]["Ready In Time"] != "30 minutes" {
		t.Errorf("unexpected yaml rows: %v", rows)
	}
}

func TestDocumentSink_AppendAfterClose(t *testing.T) {
	s, _ := Open(FormatJSONL, Options{Stdout: &bytes.Buffer{}})
	_ = s.Close()

	if err := s.Append(context.Background(), testRecord("Soup")); err == nil {
		t.Error("expected error appending to closed sink")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() should be a no-op, got %v", err)
	}
}
