package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/internal/portfolio"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type correlationReport struct {
	Matrix           portfolio.Matrix        `json:"matrix" yaml:"matrix"`
	HighlyCorrelated []portfolio.Correlation `json:"highlyCorrelated" yaml:"highly_correlated"`
	Diversifying     []portfolio.Correlation `json:"diversifying" yaml:"diversifying"`
	Portfolio        portfolio.Metrics       `json:"portfolio" yaml:"portfolio"`
	Active           []string                `json:"active" yaml:"active"`
}

func correlateCommand() *cli.Command {
	return &cli.Command{
		Name:  "correlate",
		Usage: "Correlate the instruments of one or more data files and propose a diversified set",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Data `FILE`; every symbol in it is analysed",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "period",
				Usage: "Bars correlated per pair",
				Value: portfolio.DefaultPeriod,
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Absolute correlation above which two instruments are not traded together",
				Value: 0.7,
			},
			&cli.IntFlag{
				Name:  "max-pairs",
				Usage: "Largest proposed active set",
				Value: 4,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or yaml",
				Value:   "text",
			},
		},
		Action: correlateAction,
	}
}

// loadSymbols reads every symbol of path into the analyzer.
func loadSymbols(path string, analyzer *portfolio.Analyzer, log *logger.Logger) error {
	ds, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer func() { _ = ds.Close() }()

	if err := ds.Initialize(path); err != nil {
		return err
	}

	symbols, err := ds.Symbols()
	if err != nil {
		return err
	}

	for _, symbol := range symbols {
		bars, err := datasource.LoadBars(ds, optional.Some(symbol), optional.None[time.Time](), optional.None[time.Time]())
		if err != nil {
			return err
		}

		analyzer.UpdatePrices(symbol, bars)
		log.Debug("Loaded instrument", zap.String("symbol", symbol), zap.Int("bars", len(bars)))
	}

	return nil
}

func correlateAction(_ context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	threshold := cmd.Float("threshold")
	analyzer := portfolio.NewAnalyzer(int(cmd.Int("period")))

	for _, path := range cmd.StringSlice("data") {
		if err := loadSymbols(path, analyzer, log); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	symbols := analyzer.Symbols()
	if len(symbols) < 2 {
		return fmt.Errorf("need at least two instruments, found %d", len(symbols))
	}

	manager := portfolio.NewManager(analyzer, int(cmd.Int("max-pairs")), threshold)
	if err := manager.Add(symbols[0]); err != nil {
		return err
	}

	for {
		next, ok := manager.Recommend()
		if !ok || manager.Add(next) != nil {
			break
		}
	}

	report := correlationReport{
		Matrix:           analyzer.Matrix(),
		HighlyCorrelated: analyzer.HighlyCorrelatedPairs(threshold),
		Diversifying:     analyzer.DiversificationPairs(-1, 0.3),
		Portfolio:        manager.Metrics(),
		Active:           manager.Active(),
	}

	w := out(cmd)

	switch cmd.String("format") {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	case "yaml":
		return yaml.NewEncoder(w).Encode(report)
	case "text":
		printReport(w, report)
		return nil
	default:
		return fmt.Errorf("unknown format %q", cmd.String("format"))
	}
}

func printReport(w io.Writer, r correlationReport) {
	fmt.Fprintln(w, TitleStyle.Render("Correlation matrix"))
	fmt.Fprintf(w, "%-10s", "")

	for _, s := range r.Matrix.Symbols {
		fmt.Fprintf(w, " %8s", s)
	}

	fmt.Fprintln(w)

	for i, s := range r.Matrix.Symbols {
		fmt.Fprintf(w, "%-10s", s)

		for _, c := range r.Matrix.Values[i] {
			fmt.Fprintf(w, "   %s", FormatCoefficient(c))
		}

		fmt.Fprintln(w)
	}

	printPairs(w, "Highly correlated", r.HighlyCorrelated)
	printPairs(w, "Diversifying", r.Diversifying)

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Proposed set"))
	fmt.Fprintf(w, "%s (score %.1f)\n", strings.Join(r.Active, ", "), r.Portfolio.DiversificationScore)
}

func printPairs(w io.Writer, title string, pairs []portfolio.Correlation) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(title))

	if len(pairs) == 0 {
		fmt.Fprintln(w, HelpStyle.Render("none"))
		return
	}

	for _, c := range pairs {
		fmt.Fprintf(w, "%-10s %-10s %s  %s\n", c.A, c.B, FormatCoefficient(c.Coefficient), HelpStyle.Render(string(c.Strength)))
	}
}
