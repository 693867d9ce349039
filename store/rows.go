package store

import (
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/sim"
)

// RowFromTurn flattens one decision into a TurnRow. Final-game columns are
// zero until FinalizeGame stamps them.
func RowFromTurn(gameID, strategy string, snap *game.Snapshot, dir game.Direction) TurnRow {
	row := TurnRow{
		GameID:    gameID,
		Strategy:  strategy,
		Turn:      snap.Turn,
		BoardSize: snap.BoardSize,
		GoalX:     snap.Goal.X,
		GoalY:     snap.Goal.Y,
		Move:      int32(dir),
	}
	for _, p := range snap.Snake {
		row.SnakeX = append(row.SnakeX, p.X)
		row.SnakeY = append(row.SnakeY, p.Y)
	}
	for _, o := range snap.Obstacles {
		row.ObstacleX = append(row.ObstacleX, o.X)
		row.ObstacleY = append(row.ObstacleY, o.Y)
	}
	return row
}

// FinalizeGame stamps the game's result onto every one of its rows.
func FinalizeGame(rows []TurnRow, result sim.GameResult) {
	for i := range rows {
		rows[i].FinalScore = result.Score
		rows[i].FinalTicks = result.Ticks
		rows[i].Won = result.Won
		rows[i].DeathCause = string(result.Cause)
	}
}
