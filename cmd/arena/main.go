// Package main runs batch self-play: worker goroutines play full games for a
// set of strategies, a writer loop flushes the turns to parquet batches, and
// a terminal dashboard shows throughput and recent results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/search"
	"github.com/brensch/snekpilot/sim"
	"github.com/brensch/snekpilot/store"
)

var totalMoves atomic.Int64
var totalGames atomic.Int64

type GameUpdate struct {
	WorkerID int
	Result   sim.GameResult
}

type gameWriteRequest struct {
	rows []store.TurnRow
}

type model struct {
	gamesPlayed int
	totalScore  int64
	wins        int
	moves       int64
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
}

func initialModel(updates chan GameUpdate) model {
	return model{
		startTime: time.Now(),
		updates:   updates,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = totalMoves.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalScore += int64(msg.Result.Score)
		if msg.Result.Won {
			m.wins++
		}
		outcome := string(msg.Result.Cause)
		if msg.Result.Won {
			outcome = "won"
		} else if outcome == "" {
			outcome = "tick limit"
		}
		logMsg := fmt.Sprintf("Worker %d: %s score %d, ticks %d, %s",
			msg.WorkerID, msg.Result.Strategy, msg.Result.Score, msg.Result.Ticks, outcome)
		m.recentGames = append([]string{logMsg}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec := 0.0
	movesPerSec := 0.0
	avgScore := 0.0
	if duration.Seconds() >= 1 {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
		movesPerSec = float64(m.moves) / duration.Seconds()
	}
	if m.gamesPlayed > 0 {
		avgScore = float64(m.totalScore) / float64(m.gamesPlayed)
	}

	s := fmt.Sprintf("Games Played: %d\n", m.gamesPlayed)
	s += fmt.Sprintf("Wins:         %d\n", m.wins)
	s += fmt.Sprintf("Avg Score:    %.2f\n", avgScore)
	s += fmt.Sprintf("Total Moves:  %d\n", m.moves)
	s += fmt.Sprintf("Duration:     %s\n", duration.Round(time.Second))
	s += fmt.Sprintf("Games/Sec:    %.2f\n", gamesPerSec)
	s += fmt.Sprintf("Moves/Sec:    %.2f\n\n", movesPerSec)

	s += "Recent Games:\n"
	for _, g := range m.recentGames {
		s += g + "\n"
	}

	s += "\nPress q to quit.\n"
	return s
}

func main() {
	outDir := flag.String("out-dir", "data/games", "Output directory for parquet batches")
	workers := flag.Int("workers", 8, "Number of game workers")
	strategies := flag.String("strategies", "astar,bfs,greedy,dijkstra,hamiltonian", "Comma-separated strategies to rotate through")
	boardSize := flag.Int("board-size", 10, "Board size")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Number of games to buffer per parquet flush")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after this many games")
	shortcutThreshold := flag.Int("shortcut-threshold", search.DefaultShortcutThreshold, "Hamiltonian shortcut window, percent of board size")
	noTUI := flag.Bool("no-tui", false, "Log results to stderr instead of the dashboard")
	flag.Parse()

	names := make([]string, 0, 5)
	for _, s := range strings.Split(*strategies, ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "no strategies given")
		os.Exit(1)
	}

	// The dashboard owns the terminal, so logs go to a file while it runs.
	logSink := os.Stderr
	if !*noTUI {
		f, err := os.OpenFile("arena.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logSink = f
	}
	log := slog.New(logging.NewPrettyJSONHandler(logSink, nil))
	slog.SetDefault(log)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	updates := make(chan GameUpdate, *workers)
	writeReqs := make(chan gameWriteRequest, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(log, *outDir, *gamesPerFlush, writeReqs)
		close(writerDone)
	}()

	maxTicks := int32(*boardSize) * int32(*boardSize) * 16

	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for played := 0; ; played++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				strategy := names[(workerID+played)%len(names)]
				cfg := search.Config{
					HeuristicWeight:   search.DefaultHeuristicWeight,
					ShortcutThreshold: *shortcutThreshold,
					Seed:              rng.Int63(),
					Logger:            log,
				}

				gameID := fmt.Sprintf("arena_%d_%d", time.Now().UnixNano(), workerID)
				rows := make([]store.TurnRow, 0, 256)
				result := sim.Play(strategy, int32(*boardSize), nil, cfg, rng, maxTicks,
					func(turn int32, snap *game.Snapshot, dir game.Direction) {
						totalMoves.Add(1)
						rows = append(rows, store.RowFromTurn(gameID, strategy, snap, dir))
					})
				store.FinalizeGame(rows, result)

				total := totalGames.Add(1)
				if *maxGames > 0 && total >= *maxGames {
					cancel()
				}

				writeReqs <- gameWriteRequest{rows: rows}

				// Never block shutdown on a stalled dashboard.
				select {
				case updates <- GameUpdate{WorkerID: workerID, Result: result}:
				default:
				}
			}
		}(i)
	}

	if *noTUI {
		runPlain(ctx, log, updates)
	} else {
		p := tea.NewProgram(initialModel(updates), tea.WithAltScreen())
		go func() {
			<-ctx.Done()
			p.Quit()
		}()
		if _, err := p.Run(); err != nil {
			log.Error("dashboard failed", "err", err)
		}
		cancel()
	}

	log.Info("shutdown requested, draining workers")
	workerWG.Wait()
	close(writeReqs)
	<-writerDone
	log.Info("shutdown complete", "games", totalGames.Load())
}

func runPlain(ctx context.Context, log *slog.Logger, updates chan GameUpdate) {
	startTime := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			log.Info("game finished",
				"worker", update.WorkerID,
				"strategy", update.Result.Strategy,
				"score", update.Result.Score,
				"ticks", update.Result.Ticks,
				"won", update.Result.Won,
				"cause", string(update.Result.Cause))
		case <-ticker.C:
			duration := time.Since(startTime)
			games := totalGames.Load()
			log.Info("throughput",
				"games", games,
				"games_per_sec", float64(games)/duration.Seconds(),
				"moves_per_sec", float64(totalMoves.Load())/duration.Seconds())
		}
	}
}

func parquetWriterLoop(log *slog.Logger, outDir string, gamesPerFlush int, in <-chan gameWriteRequest) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	pendingRows := make([]store.TurnRow, 0, 256*gamesPerFlush)
	pendingGames := 0

	flush := func() {
		if pendingGames == 0 || len(pendingRows) == 0 {
			return
		}
		outPath, err := store.WriteBatchAtomic(outDir, pendingRows)
		if err != nil {
			log.Error("parquet flush failed", "games", pendingGames, "rows", len(pendingRows), "err", err)
		} else {
			log.Info("parquet flush ok", "path", outPath, "games", pendingGames, "rows", len(pendingRows))
		}
		pendingRows = pendingRows[:0]
		pendingGames = 0
	}

	for req := range in {
		if len(req.rows) == 0 {
			continue
		}
		pendingRows = append(pendingRows, req.rows...)
		pendingGames++

		if pendingGames >= gamesPerFlush {
			flush()
		}
	}

	flush()
}
