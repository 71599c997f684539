package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
)

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "strategy",
		Usage:     "Validate, backtest and compile node-graph trading strategies",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			backtestCommand(),
			compileCommand(),
			correlateCommand(),
			serveCommand(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newLogger builds the logger of one invocation from the root log-level flag.
func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return logger.NewLoggerWithLevel(level)
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func strategyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "strategy",
		Aliases:  []string{"s"},
		Usage:    "Path to the strategy `FILE` (.json, .yaml or .yml)",
		Required: true,
	}
}

func loadStrategy(cmd *cli.Command) (*graph.Strategy, error) {
	return graph.Load(cmd.String("strategy"))
}
