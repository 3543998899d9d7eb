// Command analyze prints quick, human-readable heuristics about chess
// matches. It can replay a PGN file to report draw pressure (halfmove clock
// and position repetitions) or scan a file-store directory and summarize the
// matches stored there.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/mcp-arcade/chess-match-server/game/match"
	"github.com/mcp-arcade/chess-match-server/game/rules"
	"github.com/mcp-arcade/chess-match-server/game/store"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Inspect chess matches for draw pressure and store health",
		Commands: []*cli.Command{
			{
				Name:      "pgn",
				Usage:     "Replay a PGN file and report move counts and draw counters",
				ArgsUsage: "<file.pgn>",
				Action:    analyzePGNAction,
			},
			{
				Name:  "matches",
				Usage: "Summarize the matches in a file-store directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Value: "matches",
						Usage: "file store directory",
					},
				},
				Action: analyzeMatchesAction,
			},
		},
	}
}

func analyzePGNAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: analyze pgn <file.pgn>")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	engine, err := rules.NewFromPGN(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	report := analyzeGame(engine.MovesSAN())
	printGameReport(os.Stdout, path, engine, report)
	return nil
}

// gameReport is the draw-pressure trace of one replayed game.
type gameReport struct {
	Moves            int
	MaxHalfmoveClock int
	MaxRepetition    int
	RepeatedOnce     int // distinct positions seen at least twice
}

// analyzeGame replays moves from the starting position and tracks the
// halfmove clock and position occurrences move by move.
func analyzeGame(moves []string) gameReport {
	engine := rules.New()
	seen := map[string]int{engine.Fingerprint(): 1}
	var report gameReport

	for _, mv := range moves {
		if _, err := engine.ApplyMove(mv); err != nil {
			// Stop at the first unreplayable move; the report covers
			// the prefix that did replay.
			break
		}
		report.Moves++
		if hm := engine.HalfmoveClock(); hm > report.MaxHalfmoveClock {
			report.MaxHalfmoveClock = hm
		}
		seen[engine.Fingerprint()]++
		if n := seen[engine.Fingerprint()]; n > report.MaxRepetition {
			report.MaxRepetition = n
		}
	}

	for _, n := range seen {
		if n >= 2 {
			report.RepeatedOnce++
		}
	}
	return report
}

func printGameReport(w *os.File, path string, engine *rules.Engine, report gameReport) {
	fmt.Fprintf(w, "\n=== %s ===\n", path)
	fmt.Fprintf(w, "Moves: %d\n", report.Moves)

	outcome, method := engine.Outcome()
	if outcome != "" {
		fmt.Fprintf(w, "Result: %s (%s)\n", outcome, method)
	} else {
		fmt.Fprintf(w, "Result: unfinished (to move: %s)\n", engine.SideToMove())
	}

	fmt.Fprintf(w, "Peak halfmove clock: %d\n", report.MaxHalfmoveClock)
	if report.MaxHalfmoveClock >= 80 {
		fmt.Fprintf(w, "WARNING: the fifty-move rule was within %d moves of being claimable\n",
			50-report.MaxHalfmoveClock/2)
	}

	fmt.Fprintf(w, "Positions repeated: %d (max occurrences: %d)\n",
		report.RepeatedOnce, report.MaxRepetition)
	if report.MaxRepetition >= 3 {
		fmt.Fprintf(w, "WARNING: a position occurred %d times; a repetition draw was claimable\n",
			report.MaxRepetition)
	}
}

func analyzeMatchesAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")

	st, err := store.NewFileStore(dir)
	if err != nil {
		return err
	}
	defer st.Close()

	matches, err := st.LoadAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s ===\n", dir)
	fmt.Printf("Matches: %d\n", len(matches))
	if len(matches) == 0 {
		return nil
	}

	byStatus := map[match.Status]int{}
	for _, m := range matches {
		byStatus[m.Status()]++
	}
	statuses := make([]string, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Printf("  %s: %d\n", status, byStatus[match.Status(status)])
	}

	fmt.Println()
	for _, m := range matches {
		fmt.Printf("- %s: %s vs %s | %s | %d moves", m.ID(), m.White(), m.Black(), m.Status(), len(m.MoveLog()))
		if m.Result() != "" {
			fmt.Printf(" | %s", m.Result())
		}
		if draw := m.DrawStatus(); draw != nil {
			if draw.ApproachingFiftyMove {
				fmt.Printf(" | fifty-move claim in %d moves", draw.MovesUntilFiftyMoveRule)
			}
			if draw.ApproachingRepetition {
				fmt.Printf(" | position seen %d times", draw.RepetitionCount)
			}
		}
		fmt.Println()
	}
	return nil
}
