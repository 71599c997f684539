// Package utils holds helpers shared by the strategy commands and the HTTP server.
package utils

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
)

// StrategySchemaID names the schema editors resolve strategy documents against.
const StrategySchemaID = "https://rxlab.app/schemas/argo-strategy/strategy-graph.json"

// GetSchemaFromConfig reflects v into an indented JSON schema. Additional
// properties stay allowed because node fields and parameters are open maps.
func GetSchemaFromConfig(v any) (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	return marshalSchema(reflector.Reflect(v))
}

// StrategySchema returns the schema of a strategy graph document as the
// editor writes it.
func StrategySchema() (string, error) {
	nodeType := reflect.TypeOf(graph.Node{})

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == nodeType {
				return nodeSchema()
			}

			return nil
		},
	}

	schema := reflector.Reflect(&graph.Strategy{})
	schema.ID = jsonschema.ID(StrategySchemaID)
	schema.Title = "Strategy graph"
	schema.Required = []string{"id", "name", "nodes", "edges"}

	return marshalSchema(schema)
}

// nodeSchema describes the wire shape of a node; graph.Node decodes it by hand.
func nodeSchema() *jsonschema.Schema {
	categories := make([]any, 0, len(graph.AllCategories))
	for _, c := range graph.AllCategories {
		categories = append(categories, string(c))
	}

	data := jsonschema.NewProperties()
	data.Set("label", &jsonschema.Schema{Type: "string"})
	data.Set("parameters", &jsonschema.Schema{Type: "object", Description: "Numeric and string parameters of the node"})
	data.Set("inputs", &jsonschema.Schema{Type: "array", Items: portSchema()})
	data.Set("outputs", &jsonschema.Schema{Type: "array", Items: portSchema()})

	properties := jsonschema.NewProperties()
	properties.Set("id", &jsonschema.Schema{Type: "string"})
	properties.Set("category", &jsonschema.Schema{Type: "string", Enum: categories})
	properties.Set("type", &jsonschema.Schema{Type: "string", Description: "Editor alias of category", Enum: categories})
	properties.Set("position", &jsonschema.Schema{Type: "object"})
	properties.Set("data", &jsonschema.Schema{
		Type:        "object",
		Description: "Keys other than label, parameters, inputs and outputs select the node subtype",
		Properties:  data,
	})

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   []string{"id"},
	}
}

func portSchema() *jsonschema.Schema {
	types := []any{
		string(graph.PortNumber),
		string(graph.PortBoolean),
		string(graph.PortString),
		string(graph.PortAny),
	}

	properties := jsonschema.NewProperties()
	properties.Set("id", &jsonschema.Schema{Type: "string"})
	properties.Set("type", &jsonschema.Schema{Type: "string", Enum: types})
	properties.Set("dataType", &jsonschema.Schema{Type: "string", Enum: types})
	properties.Set("label", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   []string{"id"},
	}
}

func marshalSchema(schema *jsonschema.Schema) (string, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
