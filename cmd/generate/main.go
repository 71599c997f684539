package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	engine "github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-strategy/pkg/utils"
	"gopkg.in/yaml.v2"
)

const (
	configDir  = "./config"
	schemaName = "backtest-engine-v1-config.json"
	sampleName = "backtest-engine-v1-config.yaml"
	graphName  = "strategy-graph.json"
)

func main() {
	schemaPath := filepath.Join(configDir, schemaName)
	sampleConfigPath := filepath.Join(configDir, sampleName)

	if err := validatePaths(schemaPath, sampleConfigPath); err != nil {
		log.Fatalf("Invalid output paths: %v", err)
	}

	if err := generateSchemaFile(engine.EmptyConfig(), schemaPath); err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	// the sample carries every default so it documents what a blank file means
	if err := generateSampleConfig(engine.DefaultConfig(), sampleConfigPath, schemaName); err != nil {
		log.Fatalf("Failed to generate sample config: %v", err)
	}

	graphPath := filepath.Join(configDir, graphName)
	if err := generateStrategySchema(graphPath); err != nil {
		log.Fatalf("Failed to generate strategy schema: %v", err)
	}

	log.Printf("Schemas successfully generated at %s and %s", schemaPath, graphPath)
}

// generateStrategySchema writes the schema of strategy graph documents to path.
func generateStrategySchema(path string) error {
	schemaJSON, err := utils.StrategySchema()
	if err != nil {
		return fmt.Errorf("failed to generate strategy schema: %w", err)
	}

	return writeFile(path, []byte(schemaJSON))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}

// generateSchemaFile writes the JSON schema of the backtest config to path.
func generateSchemaFile(config engine.BacktestEngineV1Config, path string) error {
	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	return writeFile(path, []byte(schemaJSON))
}

// generateSampleConfig writes config as YAML to path unless the file already
// exists, so hand edits survive regeneration.
func generateSampleConfig(config engine.BacktestEngineV1Config, path string, schema string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat sample config: %w", err)
	}

	if err := validateSchemaName(schema); err != nil {
		return err
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schema)), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", path)

	return nil
}

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

// getSchemaReference is the modeline that points YAML editors at the schema.
func getSchemaReference(schema string) string {
	return "# yaml-language-server: $schema=" + schema + "\n"
}
