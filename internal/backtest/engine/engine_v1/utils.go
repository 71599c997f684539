package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/graph"
)

// getResultFolder lays results out as folder/<strategy>/<time range>/<data>.
// The time range level only exists when the config bounds the run, and a run
// over in-memory bars is named after its run id.
func getResultFolder(folder string, dataPath string, b *BacktestEngineV1, strategy *graph.Strategy) string {
	name := strategy.ID
	if name == "" {
		name = strategy.Name
	}

	strategyFolder := filepath.Join(folder, sanitize(name))

	dataFolder := strategyFolder

	if b.config.Start.IsSome() || b.config.End.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if b.config.Start.IsSome() {
			startTimeStr = b.config.Start.Unwrap().Format("20060102")
		}

		if b.config.End.IsSome() {
			endTimeStr = b.config.End.Unwrap().Format("20060102")
		}

		dataFolder = filepath.Join(strategyFolder, fmt.Sprintf("%s_%s", startTimeStr, endTimeStr))
	}

	if dataPath == "" {
		if b.last == nil {
			return dataFolder
		}

		return filepath.Join(dataFolder, b.last.RunID)
	}

	dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(dataFolder, dataFileName)
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "strategy"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		default:
			return r
		}
	}, name)
}
