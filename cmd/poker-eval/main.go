package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/djacobfi/8bit-poker/internal/randutil"
	"github.com/djacobfi/8bit-poker/poker"
)

type CLI struct {
	Hands         []string `arg:"" help:"Hole cards per player, e.g. 'AcKd' 'QhJs'" required:"true"`
	Board         string   `short:"b" help:"Community cards (e.g. 'Td7s8h')"`
	Possibilities bool     `short:"p" help:"Show made-hand probabilities by the river"`
	Iterations    int      `short:"i" help:"Number of Monte Carlo iterations" default:"100000"`
	Seed          *int64   `help:"Random seed for reproducible results"`
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	handStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	winStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tieStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	percentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("poker-eval"),
		kong.Description("Evaluate Texas Hold'em hands and estimate their equity."))

	if err := run(context.Background(), os.Stdout, cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, cli CLI) error {
	rng, _ := randutil.NewFromTime()
	if cli.Seed != nil {
		rng = randutil.New(*cli.Seed)
	}

	hands, err := parseHands(cli.Hands)
	if err != nil {
		return err
	}
	board, err := poker.ParseCards(cli.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}

	start := time.Now()
	results, err := poker.Equity(ctx, hands, board, cli.Iterations, rng)
	if err != nil {
		return err
	}
	display(w, results, board, cli.Possibilities)
	fmt.Fprintf(w, "\n%d iterations in %v\n", results[0].Total, time.Since(start).Truncate(time.Millisecond))
	return nil
}

func parseHands(in []string) ([][]poker.Card, error) {
	hands := make([][]poker.Card, 0, len(in))
	for i, s := range in {
		hand, err := poker.ParseCards(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		if len(hand) != 2 {
			return nil, fmt.Errorf("hand %d: must contain exactly 2 cards, got %d", i+1, len(hand))
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

// made describes what a hand holds on the current board. Before the flop
// that is the starting-hand category.
func made(hand, board []poker.Card) string {
	if len(board) < 3 {
		return string(poker.CategorizeHoleCards(hand[0], hand[1]))
	}
	return poker.MustEvaluate(append(append([]poker.Card(nil), hand...), board...)).Name()
}

func display(w io.Writer, results []poker.EquityResult, board []poker.Card, possibilities bool) {
	if len(board) > 0 {
		fmt.Fprintf(w, "%s\n%s\n\n", headerStyle.Render("board"), poker.FormatCards(board))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"), headerStyle.Render("win"), headerStyle.Render("tie"),
		headerStyle.Render("equity"), headerStyle.Render("now"))
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			handStyle.Render(poker.FormatCards(r.Hand)),
			winStyle.Render(pct(r.Win())),
			tieStyle.Render(pct(r.Tie())),
			pct(r.Equity()),
			made(r.Hand, board))
	}
	tw.Flush()

	if possibilities {
		fmt.Fprintln(w)
		displayPossibilities(w, results)
	}
}

func displayPossibilities(w io.Writer, results []poker.EquityResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, categoryStyle.Render("hand"))
	for _, r := range results {
		fmt.Fprintf(tw, "\t%s", handStyle.Render(poker.FormatCards(r.Hand)))
	}
	fmt.Fprintln(tw)

	for t := poker.RoyalFlush; t >= poker.HighCard; t-- {
		seen := false
		for _, r := range results {
			seen = seen || r.Types[t] > 0
		}
		if !seen {
			continue
		}
		fmt.Fprint(tw, categoryStyle.Render(t.String()))
		for _, r := range results {
			if n := r.Types[t]; n > 0 {
				fmt.Fprintf(tw, "\t%s", percentStyle.Render(pct(float64(n)/float64(r.Total))))
			} else {
				fmt.Fprintf(tw, "\t%s", percentStyle.Render("."))
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
