// Package main serves the autopilot over HTTP: POST /move answers a single
// board position with a direction, and GET /watch streams a live simulated
// game over a websocket so a browser can spectate a strategy.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/snekpilot/controller"
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/search"
	"github.com/brensch/snekpilot/sim"
)

type Coord struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type InfoResponse struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Strategies []string `json:"strategies"`
}

type MoveRequest struct {
	BoardSize int32   `json:"board_size"`
	Snake     []Coord `json:"snake"`
	Goal      Coord   `json:"goal"`
	Obstacles []Coord `json:"obstacles,omitempty"`
	Turn      int32   `json:"turn"`

	Strategy          string   `json:"strategy,omitempty"`
	HeuristicWeight   *float64 `json:"heuristic_weight,omitempty"`
	ShortcutThreshold *int     `json:"shortcut_threshold,omitempty"`
}

type MoveResponse struct {
	Move string  `json:"move"`
	Path []Coord `json:"path,omitempty"`
}

// Frame is one tick of a spectated game.
type Frame struct {
	Turn  int32   `json:"turn"`
	Snake []Coord `json:"snake"`
	Goal  Coord   `json:"goal"`
	Move  string  `json:"move"`
	Score int32   `json:"score"`
	Path  []Coord `json:"path,omitempty"`
	Cycle []Coord `json:"cycle,omitempty"`
	Done  bool    `json:"done"`
	Won   bool    `json:"won,omitempty"`
	Cause string  `json:"cause,omitempty"`
}

type Server struct {
	defaultStrategy string
	cfg             search.Config
	frameDelay      time.Duration
	log             *slog.Logger
	upgrader        websocket.Upgrader
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InfoResponse{
		Name:    "snekpilot",
		Version: "1.0.0",
		Strategies: []string{
			search.AStar, search.BFS, search.Greedy, search.Dijkstra, search.Hamiltonian,
		},
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BoardSize <= 0 || len(req.Snake) == 0 {
		http.Error(w, "board_size and snake are required", http.StatusBadRequest)
		return
	}

	snap := snapshotFromRequest(&req)

	cfg := s.cfg
	if req.HeuristicWeight != nil {
		cfg.HeuristicWeight = *req.HeuristicWeight
	}
	if req.ShortcutThreshold != nil {
		cfg.ShortcutThreshold = *req.ShortcutThreshold
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = s.defaultStrategy
	}

	ctrl := controller.New(strategy, snap, cfg)
	dir := ctrl.NextDirection()

	s.log.Info("move decided",
		"strategy", strategy,
		"turn", req.Turn,
		"move", dir.String(),
		"elapsed", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MoveResponse{
		Move: dir.String(),
		Path: coordsFromPoints(ctrl.Path()),
	})
}

// handleWatch upgrades to a websocket and plays one full game, streaming a
// frame per tick. The game ends on a terminal tick, the tick cap, or the
// client going away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = s.defaultStrategy
	}
	boardSize := int32(10)
	if v := r.URL.Query().Get("board_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 1 {
			boardSize = int32(parsed)
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	snap := sim.NewGame(boardSize, nil, rng)
	ctrl := controller.New(strategy, snap, s.cfg)

	maxTicks := int32(snap.Cells()) * 16
	var score int32

	for tick := int32(0); tick < maxTicks; tick++ {
		ctrl.Update(snap)
		dir := ctrl.NextDirection()

		next, outcome := sim.Step(snap, dir, rng)
		if outcome.Ate {
			score++
		}

		frame := Frame{
			Turn:  snap.Turn,
			Snake: coordsFromPoints(snap.Snake),
			Goal:  Coord{X: snap.Goal.X, Y: snap.Goal.Y},
			Move:  dir.String(),
			Score: score,
			Path:  coordsFromPoints(ctrl.Path()),
			Done:  outcome.Terminal,
			Won:   outcome.Won,
			Cause: string(outcome.Cause),
		}
		if tick == 0 {
			frame.Cycle = coordsFromPoints(ctrl.Visualization().Cycle)
		}

		if err := conn.WriteJSON(frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("watch stream ended", "err", err)
			}
			return
		}

		if outcome.Terminal {
			s.log.Info("watch game finished",
				"strategy", strategy, "score", score, "ticks", tick+1,
				"won", outcome.Won, "cause", string(outcome.Cause))
			return
		}

		snap = next
		time.Sleep(s.frameDelay)
	}
}

func snapshotFromRequest(req *MoveRequest) *game.Snapshot {
	snap := &game.Snapshot{BoardSize: req.BoardSize, Turn: req.Turn}
	snap.Goal = game.Point{X: req.Goal.X, Y: req.Goal.Y}
	for _, c := range req.Snake {
		snap.Snake = append(snap.Snake, game.Point{X: c.X, Y: c.Y})
	}
	for _, c := range req.Obstacles {
		snap.Obstacles = append(snap.Obstacles, game.Point{X: c.X, Y: c.Y})
	}
	return snap
}

func coordsFromPoints(points []game.Point) []Coord {
	if len(points) == 0 {
		return nil
	}
	out := make([]Coord, len(points))
	for i, p := range points {
		out[i] = Coord{X: p.X, Y: p.Y}
	}
	return out
}

func main() {
	listen := flag.String("listen", ":8080", "HTTP listen address")
	strategy := flag.String("strategy", search.AStar, "Default strategy when a request names none")
	heuristicWeight := flag.Float64("heuristic-weight", search.DefaultHeuristicWeight, "A* heuristic weight")
	shortcutThreshold := flag.Int("shortcut-threshold", search.DefaultShortcutThreshold, "Hamiltonian shortcut window, percent of board size")
	frameDelay := flag.Duration("frame-delay", 50*time.Millisecond, "Delay between streamed watch frames")
	seed := flag.Int64("seed", 0, "Strategy RNG seed, 0 for time-based")
	flag.Parse()

	log := slog.New(logging.NewPrettyJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg := search.Config{
		HeuristicWeight:   *heuristicWeight,
		ShortcutThreshold: *shortcutThreshold,
		Seed:              *seed,
		Logger:            log,
	}

	server := &Server{
		defaultStrategy: *strategy,
		cfg:             cfg,
		frameDelay:      *frameDelay,
		log:             log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", server.handleIndex)
	mux.HandleFunc("/move", server.handleMove)
	mux.HandleFunc("/watch", server.handleWatch)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("pilotserver listening", "addr", *listen, "strategy", *strategy)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
