package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rxtech-lab/argo-strategy/internal/validator"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a strategy graph and list its issues",
		Flags: []cli.Flag{
			strategyFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or yaml",
				Value:   "text",
			},
		},
		Action: validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	strategy, err := loadStrategy(cmd)
	if err != nil {
		return err
	}

	result := validator.Validate(strategy)
	w := out(cmd)

	switch cmd.String("format") {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	case "yaml":
		if err := yaml.NewEncoder(w).Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	case "text":
		fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s (%d nodes, %d edges)", strategy.Name, len(strategy.Nodes), len(strategy.Edges))))

		for _, issue := range result.Issues {
			fmt.Fprintln(w, FormatIssue(issue))
		}

		if result.Valid {
			fmt.Fprintln(w, OKStyle.Render("valid"))
		} else {
			fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("invalid: %d error(s)", len(result.Errors()))))
		}

		fmt.Fprintln(w, HelpStyle.Render(fmt.Sprintf("%d warning(s), %d info", len(result.Warnings()), len(result.Info()))))
	default:
		return fmt.Errorf("unknown format %q", cmd.String("format"))
	}

	return result.Err()
}
