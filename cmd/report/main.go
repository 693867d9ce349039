// Package main prints per-strategy aggregates over archived game batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/report"
)

func main() {
	roots := flag.String("roots", "data/games", "Comma-separated archive root directories")
	timeout := flag.Duration("timeout", 60*time.Second, "Query timeout")
	flag.Parse()

	log := slog.New(logging.NewPrettyJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	rootList := make([]string, 0, 4)
	for _, r := range strings.Split(*roots, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rootList = append(rootList, r)
		}
	}

	db, err := report.Open(rootList)
	if err != nil {
		log.Error("open report db", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	total, err := db.Games(ctx)
	if err != nil {
		log.Error("count games", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Archived games: %d\n\n", total)

	stats, err := db.StrategyStats(ctx)
	if err != nil {
		log.Error("strategy stats", "err", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tGAMES\tWINS\tAVG SCORE\tAVG TICKS\tMAX SCORE")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.1f\t%d\n",
			s.Strategy, s.Games, s.Wins, s.AvgScore, s.AvgTicks, s.MaxScore)
	}
	w.Flush()

	causes, err := db.DeathCauses(ctx)
	if err != nil {
		log.Error("death causes", "err", err)
		os.Exit(1)
	}
	if len(causes) == 0 {
		return
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tCAUSE\tGAMES")
	for _, c := range causes {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.Strategy, c.Cause, c.Games)
	}
	w.Flush()
}
