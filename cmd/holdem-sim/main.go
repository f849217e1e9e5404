package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/djacobfi/8bit-poker/internal/config"
	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/internal/simulator"
)

type CLI struct {
	Config   string        `short:"c" default:"holdem.hcl" help:"Path to HCL configuration file"`
	Tables   int           `short:"t" default:"4" help:"Number of tables to run in parallel"`
	Hands    int           `short:"n" default:"200" help:"Hands to play per table"`
	Seed     int64         `default:"0" help:"RNG seed (0 for random)"`
	Hero     string        `default:"intermediate" enum:"beginner,intermediate,advanced" help:"Difficulty of the tracked bot"`
	Timeout  time.Duration `default:"2m" help:"Time limit per table"`
	LogLevel string        `short:"l" help:"Log level (overrides config)"`
	History  string        `type:"path" help:"Directory to write PHH hand histories to"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("holdem-sim"),
		kong.Description("Play bot-only Texas Hold'em tables and report how one bot fares."))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, cli CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true})

	if cli.Seed == 0 {
		cli.Seed = time.Now().UnixNano()
	}
	fmt.Fprintf(w, "Starting simulation: %d tables x %d hands, %s hero (seed: %d)\n",
		cli.Tables, cli.Hands, cli.Hero, cli.Seed)

	start := time.Now()
	sim := simulator.New(simulator.Config{
		Tables:     cli.Tables,
		Hands:      cli.Hands,
		Seed:       cli.Seed,
		Timeout:    cli.Timeout,
		Hero:       game.Difficulty(cli.Hero),
		Game:       cfg,
		Logger:     logger,
		HistoryDir: cli.History,
	})
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	printResults(w, res, time.Since(start))
	return nil
}

func signed(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	if v < 0 {
		return badStyle.Render(s)
	}
	return goodStyle.Render(s)
}

func printResults(w io.Writer, res *simulator.Result, d time.Duration) {
	stats := res.Hero

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("=== TABLES ==="))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "table\thands\trake\tstacks")
	for _, t := range res.Tables {
		stacks := make([]string, len(t.Seats))
		for i, s := range t.Seats {
			stacks[i] = fmt.Sprintf("%s(%s)=%d", s.Name, s.Difficulty, s.Chips)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.ID, t.Hands, t.Rake, strings.Join(stacks, " "))
	}
	tw.Flush()
	for _, t := range res.Tables {
		if t.HistoryFile != "" {
			fmt.Fprintf(w, "Hand history: %s\n", t.HistoryFile)
		}
	}

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("=== HERO RESULTS ==="))
	fmt.Fprintf(w, "Hands played: %d of %d dealt\n", stats.Hands, res.Hands)
	fmt.Fprintf(w, "Total time: %v (%.0f hands/sec)\n", d.Round(time.Millisecond), float64(res.Hands)/d.Seconds())
	if stats.Hands == 0 {
		return
	}

	low, high := stats.ConfidenceInterval95()
	fmt.Fprintf(w, "Mean: %s bb/hand\n", signed(stats.Mean(), "%.4f"))
	fmt.Fprintf(w, "Median: %.4f bb/hand\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bb\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("=== PROFIT SOURCE ==="))
	fmt.Fprintf(w, "Showdown: %d wins, %s bb\n", stats.ShowdownWins, signed(stats.ShowdownBB, "%.2f"))
	fmt.Fprintf(w, "Non-showdown: %d wins, %s bb\n", stats.NonShowdownWins, signed(stats.NonShowdownBB, "%.2f"))
	fmt.Fprintf(w, "Largest pot: %d chips\n", stats.MaxPot)

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("=== STREETS ==="))
	for r := game.PreFlop; r <= game.Showdown; r++ {
		if n := stats.Reached[r]; n > 0 {
			fmt.Fprintf(w, "%-9s %d hands (%.1f%%)\n", r, n, float64(n)/float64(stats.Hands)*100)
		}
	}

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("=== POSITION (seats after button) ==="))
	for pos := range game.MaxPlayers {
		if ps := stats.Positions[pos]; ps.Hands > 0 {
			fmt.Fprintf(w, "Position %d: %d hands, %s bb/hand\n", pos, ps.Hands, signed(stats.PositionMean(pos), "%.3f"))
		}
	}
}
