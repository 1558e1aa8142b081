package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jmylchreest/portion/internal/logger"
	"github.com/jmylchreest/portion/pkg/recipe"
)

const recipesSchema = `CREATE TABLE IF NOT EXISTS recipes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id        TEXT    NOT NULL DEFAULT '',
    url           TEXT    NOT NULL DEFAULT '',
    dish_name     TEXT    NOT NULL,
    ready_in_time TEXT    NOT NULL,
    ingredients   TEXT    NOT NULL,
    directions    TEXT    NOT NULL,
    yield         INTEGER NOT NULL DEFAULT 1,
    servings      INTEGER NOT NULL DEFAULT 1,
    fetched_at    TEXT    NOT NULL DEFAULT '',
    created_at    TEXT    NOT NULL
)`

// SQLiteSink appends recipes to a "recipes" table, creating it on first use.
type SQLiteSink struct {
	db    *sql.DB
	path  string
	runID string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path, runID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(recipesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create recipes table: %w", err)
	}

	logger.Debug("sqlite sink opened", "path", path, "run_id", runID)
	return &SQLiteSink{db: db, path: path, runID: runID}, nil
}

// Append inserts one row.
func (s *SQLiteSink) Append(ctx context.Context, rec recipe.Record) error {
	var fetchedAt string
	if !rec.FetchedAt.IsZero() {
		fetchedAt = rec.FetchedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (
            run_id, url, dish_name, ready_in_time, ingredients, directions,
            yield, servings, fetched_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID,
		rec.URL,
		rec.DishName,
		rec.ReadyInTime,
		strings.Join(rec.Ingredients, "\n"),
		strings.Join(rec.Directions, "\n"),
		rec.Yield,
		rec.Servings,
		fetchedAt,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// Records returns every stored recipe in insertion order.
func (s *SQLiteSink) Records(ctx context.Context) ([]recipe.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, dish_name, ready_in_time, ingredients, directions, yield, servings, fetched_at
         FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []recipe.Record
	for rows.Next() {
		var (
			rec                     recipe.Record
			ingredients, directions string
			fetchedAt               string
		)
		if err := rows.Scan(&rec.URL, &rec.DishName, &rec.ReadyInTime, &ingredients, &directions,
			&rec.Yield, &rec.Servings, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		rec.Ingredients = strings.Split(ingredients, "\n")
		rec.Directions = strings.Split(directions, "\n")
		if fetchedAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
				rec.FetchedAt = t
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
