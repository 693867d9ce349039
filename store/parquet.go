// Package store archives finished games as parquet batches. One row per
// turn keeps the schema flat and compresses well; readers query the batch
// directory as a glob, so writers must never leave a partially written file
// where a reader can see it.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const schemaVersion = "pilot_turn_v1"

// TurnRow is one (game, turn) snapshot plus the decision made on it.
// Coordinates follow the controller convention: (0,0) top-left, y grows
// downward. Move is 0=Up 1=Down 2=Left 3=Right.
type TurnRow struct {
	GameID    string `parquet:"game_id,dict"`
	Strategy  string `parquet:"strategy,dict"`
	Turn      int32  `parquet:"turn"`
	BoardSize int32  `parquet:"board_size"`

	SnakeX []int32 `parquet:"snake_x"`
	SnakeY []int32 `parquet:"snake_y"`

	GoalX int32 `parquet:"goal_x"`
	GoalY int32 `parquet:"goal_y"`

	ObstacleX []int32 `parquet:"obstacle_x"`
	ObstacleY []int32 `parquet:"obstacle_y"`

	Move int32 `parquet:"move"`

	// Final-game columns, repeated on every row of the game so per-strategy
	// aggregates never need a join.
	FinalScore int32  `parquet:"final_score"`
	FinalTicks int32  `parquet:"final_ticks"`
	Won        bool   `parquet:"won"`
	DeathCause string `parquet:"death_cause,dict"`
}

// WriteBatchAtomic writes rows into outDir/tmp and renames the finished file
// into outDir, so a reader globbing outDir never observes a partial batch.
// Returns the final file path.
func WriteBatchAtomic(outDir string, rows []TurnRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadBatch loads a batch back into memory. Used by tests and ad-hoc
// inspection; analytical queries go through the report package instead.
func ReadBatch(path string) ([]TurnRow, error) {
	rows, err := parquet.ReadFile[TurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
