package main

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve validation, backtesting and compilation over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				Value:   ":8080",
				Sources: cli.EnvVars("STRATEGY_SERVER_ADDRESS"),
			},
			&cli.IntFlag{
				Name:  "max-body-bytes",
				Usage: "Largest accepted request body",
				Value: server.DefaultMaxBodyBytes,
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv := server.New(log, server.WithMaxBodyBytes(int64(cmd.Int("max-body-bytes"))))
	if err := srv.Start(cmd.String("address")); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down", zap.String("address", srv.Address()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
