package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	engine "github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1"
	"github.com/stretchr/testify/suite"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
	workDir string
}

func TestGenerateCmdSuite(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}

// main writes relative to the working directory, so every test runs in its
// own temp dir.
func (suite *GenerateCmdTestSuite) SetupTest() {
	var err error

	suite.tempDir = suite.T().TempDir()
	suite.workDir, err = os.Getwd()
	suite.Require().NoError(err)
	suite.Require().NoError(os.Chdir(suite.tempDir))
}

func (suite *GenerateCmdTestSuite) TearDownTest() {
	suite.Require().NoError(os.Chdir(suite.workDir))
}

func (suite *GenerateCmdTestSuite) configFile(name string) string {
	return filepath.Join(suite.tempDir, "config", name)
}

func (suite *GenerateCmdTestSuite) readFile(path string) string {
	content, err := os.ReadFile(path)
	suite.Require().NoError(err)

	return string(content)
}

func (suite *GenerateCmdTestSuite) TestMainWritesEveryFile() {
	main()

	suite.DirExists(filepath.Join(suite.tempDir, "config"))

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(suite.readFile(suite.configFile(schemaName))), &schema))
	suite.Contains(schema, "$schema")

	sample := suite.readFile(suite.configFile(sampleName))
	suite.Contains(sample, "# yaml-language-server: $schema=backtest-engine-v1-config.json")

	suite.Contains(suite.readFile(suite.configFile(graphName)), "Strategy graph")
}

func (suite *GenerateCmdTestSuite) TestMainKeepsAnEditedSample() {
	main()

	edited := "initial_balance: 2500\n"
	suite.Require().NoError(os.WriteFile(suite.configFile(sampleName), []byte(edited), 0644))

	main()

	suite.Equal(edited, suite.readFile(suite.configFile(sampleName)))
}

func (suite *GenerateCmdTestSuite) TestSampleConfigLoadsIntoTheEngine() {
	main()

	eng := engine.NewBacktestEngineV1()
	suite.NoError(eng.Initialize(suite.readFile(suite.configFile(sampleName))))
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFile() {
	path := filepath.Join(suite.tempDir, "nested", "schema.json")

	suite.Require().NoError(generateSchemaFile(engine.EmptyConfig(), path))

	content := suite.readFile(path)
	suite.Contains(content, "initial_balance")
	suite.Contains(content, "filters")
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFileBlockedDirectory() {
	blocker := filepath.Join(suite.tempDir, "blocker")
	suite.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))

	err := generateSchemaFile(engine.EmptyConfig(), filepath.Join(blocker, "schema.json"))
	suite.Require().Error(err)
	suite.Contains(err.Error(), "failed to create directory")
}

func (suite *GenerateCmdTestSuite) TestGenerateStrategySchema() {
	path := filepath.Join(suite.tempDir, "schemas", graphName)

	suite.Require().NoError(generateStrategySchema(path))

	content := suite.readFile(path)
	suite.Contains(content, "money_management")
	suite.Contains(content, "Strategy graph")
}

func (suite *GenerateCmdTestSuite) TestGenerateSampleConfig() {
	path := filepath.Join(suite.tempDir, "sample.yaml")

	suite.Require().NoError(generateSampleConfig(engine.DefaultConfig(), path, "test-schema.json"))

	content := suite.readFile(path)
	suite.Contains(content, "# yaml-language-server: $schema=test-schema.json")
	suite.Contains(content, "initial_balance: 10000")
	suite.Contains(content, "leverage: 100")
	suite.NotContains(content, "start_time")
}

func (suite *GenerateCmdTestSuite) TestGenerateSampleConfigRejectsSchemaName() {
	path := filepath.Join(suite.tempDir, "sample.yaml")

	suite.Error(generateSampleConfig(engine.DefaultConfig(), path, "schema.yaml"))
	suite.NoFileExists(path)
}

func (suite *GenerateCmdTestSuite) TestValidatePaths() {
	tests := []struct {
		name       string
		schemaPath string
		samplePath string
		wantErr    string
	}{
		{name: "both set", schemaPath: "config/schema.json", samplePath: "config/sample.yaml"},
		{name: "no schema", samplePath: "config/sample.yaml", wantErr: "schema path cannot be empty"},
		{name: "no sample", schemaPath: "config/schema.json", wantErr: "sample config path cannot be empty"},
		{name: "neither", wantErr: "schema path cannot be empty"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := validatePaths(tt.schemaPath, tt.samplePath)
			if tt.wantErr == "" {
				suite.NoError(err)
				return
			}

			suite.ErrorContains(err, tt.wantErr)
		})
	}
}

func (suite *GenerateCmdTestSuite) TestValidateSchemaName() {
	tests := []struct {
		name    string
		schema  string
		wantErr string
	}{
		{name: "json", schema: "schema.json"},
		{name: "dashed", schema: "backtest-engine-v1-config.json"},
		{name: "empty", wantErr: "schema name cannot be empty"},
		{name: "yaml extension", schema: "schema.yaml", wantErr: "must have .json extension"},
		{name: "no extension", schema: "schema", wantErr: "must have .json extension"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := validateSchemaName(tt.schema)
			if tt.wantErr == "" {
				suite.NoError(err)
				return
			}

			suite.ErrorContains(err, tt.wantErr)
		})
	}
}

func (suite *GenerateCmdTestSuite) TestGetSchemaReference() {
	suite.Equal("# yaml-language-server: $schema=strategy-graph.json\n", getSchemaReference("strategy-graph.json"))
}
