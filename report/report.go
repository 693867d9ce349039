// Package report answers analytical questions over archived game batches.
// It points an in-memory DuckDB at the parquet files via glob patterns, so
// no import or ETL step exists; new batches show up on the next Open.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DB wraps a DuckDB connection with a `turns` view over the archive roots.
type DB struct {
	db    *sql.DB
	roots []string
}

// Open creates the connection and the glob-backed view. Files under tmp/
// directories are in-flight writer output and are excluded.
func Open(roots []string) (*DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+strings.ReplaceAll(glob, "'", "''")+"'")
	}
	if len(globs) == 0 {
		_ = db.Close()
		return nil, fmt.Errorf("no archive roots given")
	}

	view := `CREATE OR REPLACE VIEW turns AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(view); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create turns view: %w", err)
	}

	return &DB{db: db, roots: roots}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Games counts distinct archived games.
func (d *DB) Games(ctx context.Context) (int64, error) {
	var total int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT game_id) FROM turns`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return total, nil
}

// StrategyStats is the per-strategy aggregate over whole games.
type StrategyStats struct {
	Strategy string
	Games    int64
	Wins     int64
	AvgScore float64
	AvgTicks float64
	MaxScore int64
}

// StrategyStats collapses turns to one row per game first; the final-game
// columns are repeated on every turn row, so MAX within a game is exact.
func (d *DB) StrategyStats(ctx context.Context) ([]StrategyStats, error) {
	query := `WITH games AS (
		SELECT
			game_id,
			MIN(strategy) AS strategy,
			MAX(final_score)::BIGINT AS score,
			MAX(final_ticks)::BIGINT AS ticks,
			BOOL_OR(won) AS won
		FROM turns
		GROUP BY game_id
	)
	SELECT
		strategy,
		COUNT(*)::BIGINT AS games,
		SUM(CASE WHEN won THEN 1 ELSE 0 END)::BIGINT AS wins,
		AVG(score)::DOUBLE AS avg_score,
		AVG(ticks)::DOUBLE AS avg_ticks,
		MAX(score)::BIGINT AS max_score
	FROM games
	GROUP BY strategy
	ORDER BY avg_score DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query strategy stats: %w", err)
	}
	defer rows.Close()

	out := make([]StrategyStats, 0, 8)
	for rows.Next() {
		var s StrategyStats
		if err := rows.Scan(&s.Strategy, &s.Games, &s.Wins, &s.AvgScore, &s.AvgTicks, &s.MaxScore); err != nil {
			return nil, fmt.Errorf("scan strategy stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeathCount is how many games of a strategy ended with a given cause.
type DeathCount struct {
	Strategy string
	Cause    string
	Games    int64
}

func (d *DB) DeathCauses(ctx context.Context) ([]DeathCount, error) {
	query := `WITH games AS (
		SELECT game_id, MIN(strategy) AS strategy, MIN(death_cause) AS cause
		FROM turns
		GROUP BY game_id
	)
	SELECT strategy, cause, COUNT(*)::BIGINT AS games
	FROM games
	WHERE cause <> ''
	GROUP BY strategy, cause
	ORDER BY strategy, games DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query death causes: %w", err)
	}
	defer rows.Close()

	out := make([]DeathCount, 0, 16)
	for rows.Next() {
		var c DeathCount
		if err := rows.Scan(&c.Strategy, &c.Cause, &c.Games); err != nil {
			return nil, fmt.Errorf("scan death causes: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
