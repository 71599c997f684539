package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type sampleSettings struct {
	Symbol    string   `json:"symbol" jsonschema:"description=Instrument traded"`
	Timeframe string   `json:"timeframe"`
	Tags      []string `json:"tags,omitempty"`
}

type sampleDocument struct {
	ID       string         `json:"id"`
	Settings sampleSettings `json:"settings"`
}

func decodeSchema(suite *UtilsTestSuite, raw string) map[string]any {
	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(raw), &schema))

	return schema
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfigInlinesNestedTypes() {
	raw, err := GetSchemaFromConfig(sampleDocument{})
	suite.Require().NoError(err)

	schema := decodeSchema(suite, raw)
	suite.Contains(schema, "$schema")
	suite.NotContains(schema, "$defs")

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)

	settings, ok := properties["settings"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(settings["properties"], "symbol")
}

func (suite *UtilsTestSuite) TestStrategySchema() {
	raw, err := StrategySchema()
	suite.Require().NoError(err)

	schema := decodeSchema(suite, raw)
	suite.Equal(StrategySchemaID, schema["$id"])
	suite.Equal("Strategy graph", schema["title"])
	suite.ElementsMatch([]any{"id", "name", "nodes", "edges"}, schema["required"])

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)

	for _, key := range []string{"id", "name", "version", "nodes", "edges", "settings"} {
		suite.Contains(properties, key)
	}
}

func (suite *UtilsTestSuite) TestStrategySchemaDescribesNodes() {
	raw, err := StrategySchema()
	suite.Require().NoError(err)

	schema := decodeSchema(suite, raw)
	nodes := schema["properties"].(map[string]any)["nodes"].(map[string]any)
	suite.Equal("array", nodes["type"])

	node := nodes["items"].(map[string]any)
	properties := node["properties"].(map[string]any)
	suite.Contains(properties, "category")
	suite.Contains(properties, "data")

	category := properties["category"].(map[string]any)
	suite.Contains(category["enum"], "money_management")
	suite.Contains(category["enum"], "indicator")
}
