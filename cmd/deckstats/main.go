// Command deckstats deals many decks and checks that the shuffle is fair.
//
// For every board position it counts how often each image lands there and
// runs a chi-square test against the uniform distribution. A fair shuffle
// keeps the normalized statistic close to zero.
//
//	deckstats --config configs/quick.json --deals 20000
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/memory-match-game/game/config"
	"github.com/wricardo/memory-match-game/game/engine"
)

// fairZ is the largest |z| still reported as fair
const fairZ = 3.0

// Stats is the per-position image distribution over many deals
type Stats struct {
	Deals  int
	Cells  int
	Pairs  int
	Counts [][]int // [position][imageID]
}

// Collect deals n decks for cfg. A nil rng uses the global source.
func Collect(cfg *engine.GameConfig, n int, rng *rand.Rand) (*Stats, error) {
	stats := &Stats{
		Deals:  n,
		Cells:  cfg.Cells(),
		Pairs:  cfg.PairsNeeded(),
		Counts: make([][]int, cfg.Cells()),
	}
	for pos := range stats.Counts {
		stats.Counts[pos] = make([]int, stats.Pairs)
	}

	for i := 0; i < n; i++ {
		deck, err := engine.NewDeck(cfg, rng)
		if err != nil {
			return nil, err
		}
		for pos, card := range deck {
			stats.Counts[pos][card.ImageID]++
		}
	}
	return stats, nil
}

// Expected is the count per (position, image) under a uniform shuffle
func (s *Stats) Expected() float64 {
	return float64(s.Deals) * 2 / float64(s.Cells)
}

// ChiSquare is the Pearson statistic over every (position, image) cell
func (s *Stats) ChiSquare() float64 {
	expected := s.Expected()
	if expected == 0 {
		return 0
	}
	var chi float64
	for _, row := range s.Counts {
		for _, observed := range row {
			d := float64(observed) - expected
			chi += d * d / expected
		}
	}
	return chi
}

// DegreesOfFreedom for a cells x pairs contingency table
func (s *Stats) DegreesOfFreedom() int {
	return (s.Cells - 1) * (s.Pairs - 1)
}

// Z normalizes the statistic: (chi2 - dof) / sqrt(2 dof)
func (s *Stats) Z() float64 {
	dof := s.DegreesOfFreedom()
	if dof <= 0 {
		return 0
	}
	return (s.ChiSquare() - float64(dof)) / math.Sqrt(2*float64(dof))
}

// Fair reports whether the distribution looks uniform
func (s *Stats) Fair() bool {
	return math.Abs(s.Z()) < fairZ
}

// Report writes a per-position summary and the verdict
func (s *Stats) Report(w io.Writer, name string) {
	fmt.Fprintf(w, "=== %s: %d deals, %d cells, %d pairs ===\n", name, s.Deals, s.Cells, s.Pairs)
	fmt.Fprintf(w, "Expected per image per position: %.1f\n", s.Expected())

	for pos, row := range s.Counts {
		lo, hi := row[0], row[0]
		for _, c := range row[1:] {
			lo = min(lo, c)
			hi = max(hi, c)
		}
		fmt.Fprintf(w, "  position %2d: min %d, max %d\n", pos, lo, hi)
	}

	fmt.Fprintf(w, "Chi-square: %.2f (dof %d, z %.2f)\n", s.ChiSquare(), s.DegreesOfFreedom(), s.Z())
	if s.Fair() {
		fmt.Fprintln(w, "✅ Shuffle looks uniform")
	} else {
		fmt.Fprintln(w, "❌ Shuffle looks biased")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "deckstats",
		Usage: "check deck shuffle fairness for a board configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "game configuration file (default: built-in board)"},
			&cli.IntFlag{Name: "deals", Value: 10000, Usage: "number of decks to deal"},
			&cli.IntFlag{Name: "seed", Usage: "PCG seed for a reproducible run (0 = random)"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	deals := int(cmd.Int("deals"))
	if deals < 1 {
		return fmt.Errorf("deals must be positive, got %d", deals)
	}

	var rng *rand.Rand
	if seed := uint64(cmd.Int("seed")); seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	stats, err := Collect(cfg, deals, rng)
	if err != nil {
		return err
	}
	stats.Report(cmd.Root().Writer, cfg.Name)

	if !stats.Fair() {
		return fmt.Errorf("shuffle looks biased (z %.2f)", stats.Z())
	}
	return nil
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
