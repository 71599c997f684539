package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func backtestCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "Run a strategy over one or more CSV or Parquet data files",
		Flags: []cli.Flag{
			strategyFlag(),
			&cli.StringSliceFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Data `FILE`; repeat for several files",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Backtest config YAML; every omitted key keeps its default",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Results `DIR`",
				Value:   "results",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "Data files backtested at the same time",
				Value: 2,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Hide the progress bar",
			},
		},
		Action: backtestAction,
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	strategy, err := loadStrategy(cmd)
	if err != nil {
		return err
	}

	config := ""
	if path := cmd.String("config"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		config = string(raw)
	}

	files := cmd.StringSlice("data")
	output := cmd.String("output")

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Backtesting "+strategy.Name),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
		progressbar.OptionSetVisibility(!cmd.Bool("quiet")),
	)

	// total grows as each run reports its bar count
	var (
		mu        sync.Mutex
		total     int
		summaries = make([]types.RunSummary, len(files))
	)

	onRunStart := engine.OnRunStartCallback(func(_ string, _ string, totalBars int) error {
		mu.Lock()
		defer mu.Unlock()

		total += totalBars
		bar.ChangeMax(total)

		return nil
	})
	onProcessData := engine.OnProcessDataCallback(func(int, int) error {
		return bar.Add(1)
	})
	callbacks := engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProcessData,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, int(cmd.Int("parallel"))))

	for i, file := range files {
		g.Go(func() error {
			eng := engine_v1.NewBacktestEngineV1()
			if err := eng.Initialize(config); err != nil {
				return err
			}

			if _, err := eng.RunFile(gctx, strategy, file, callbacks); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			summary, err := eng.WriteResults(output)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			summaries[i] = summary

			log.Debug("Backtest finished",
				zap.String("data", file),
				zap.Int("trades", summary.Metrics.TotalTrades),
			)

			return nil
		})
	}

	err = g.Wait()
	_ = bar.Finish()

	if err != nil {
		return err
	}

	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].DataPath < summaries[j].DataPath })

	summaryPath := filepath.Join(output, "summary.yaml")
	if err := types.WriteRunSummaries(summaryPath, summaries); err != nil {
		return err
	}

	w := out(cmd)
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(strategy.Name))

	for _, s := range summaries {
		fmt.Fprintf(w, "%-32s trades %4d  win rate %6.2f%%  net %10.2f  max dd %6.2f%%\n",
			filepath.Base(s.DataPath),
			s.Metrics.TotalTrades,
			s.Metrics.WinRate,
			s.Metrics.TotalProfit,
			s.Metrics.MaxDrawdownPercent,
		)
	}

	fmt.Fprintln(w, HelpStyle.Render("results written to "+output))

	log.Info("Backtests completed",
		zap.String("strategy", strategy.ID),
		zap.Int("runs", len(summaries)),
		zap.String("summary", summaryPath),
	)

	return nil
}
