package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-strategy/internal/codegen"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "Generate an MQL4 or MQL5 expert advisor from a strategy",
		Flags: []cli.Flag{
			strategyFlag(),
			&cli.StringFlag{
				Name:    "dialect",
				Aliases: []string{"d"},
				Usage:   "Target dialect: mql4 or mql5",
				Value:   string(codegen.DialectMQL5),
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Expert advisor name (defaults to the strategy name)",
			},
			&cli.IntFlag{
				Name:  "magic",
				Usage: "Base magic number of the generated orders",
				Value: codegen.DefaultMagicNumber,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output `DIR`; the file is named after the strategy",
				Value:   ".",
			},
		},
		Action: compileAction,
	}
}

func compileAction(_ context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dialect, err := codegen.ParseDialect(cmd.String("dialect"))
	if err != nil {
		return err
	}

	strategy, err := loadStrategy(cmd)
	if err != nil {
		return err
	}

	opts := codegen.Options{
		Dialect:      dialect,
		StrategyName: cmd.String("name"),
		MagicNumber:  int(cmd.Int("magic")),
	}

	source, err := codegen.Compile(strategy, opts)
	if err != nil {
		return err
	}

	name := opts.StrategyName
	if name == "" {
		name = firstNonEmpty(strategy.Name, strategy.ID)
	}

	dir := cmd.String("output")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, codegen.FileName(name)+dialect.Extension())
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info("Expert advisor generated",
		zap.String("strategy", strategy.ID),
		zap.String("dialect", string(dialect)),
		zap.String("path", path),
	)

	fmt.Fprintln(out(cmd), path)

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
