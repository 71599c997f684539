package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Strategy is the root aggregate handed to the validator, interpreter and
// code generator. None of them mutate it.
type Strategy struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	// Version is the strategy schema version the editor wrote, if any.
	Version  string         `json:"version,omitempty" yaml:"version,omitempty"`
	Nodes    []Node         `json:"nodes" yaml:"nodes"`
	Edges    []Edge         `json:"edges" yaml:"edges"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Edge is a directed arc between two node ports.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Port describes one typed handle on a node.
type Port struct {
	ID       string   `json:"id"`
	Type     PortType `json:"type,omitempty"`
	DataType PortType `json:"dataType,omitempty"`
	Label    string   `json:"label,omitempty"`
}

// PortType returns the declared type, preferring dataType over type.
func (p Port) PortType() PortType {
	if p.DataType != "" {
		return p.DataType
	}

	if p.Type != "" {
		return p.Type
	}

	return PortAny
}

// NodeData holds the label, subtype fields and parameters of a node.
// Fields keeps every key of the editor's data object other than label,
// parameters, inputs and outputs.
type NodeData struct {
	Label      string
	Fields     map[string]any
	Parameters map[string]any
	Inputs     []Port
	Outputs    []Port
}

// Node is one vertex of the strategy graph.
type Node struct {
	ID       string
	Category Category
	Data     NodeData
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Category Category        `json:"category,omitempty"`
	Type     Category        `json:"type,omitempty"`
	Position json.RawMessage `json:"position,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON accepts both "category" and the editor's "type" key.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	n.ID = raw.ID
	n.Category = raw.Category
	if n.Category == "" {
		n.Category = raw.Type
	}

	n.Data = NodeData{Fields: map[string]any{}, Parameters: map[string]any{}}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return fmt.Errorf("node %s: invalid data: %w", raw.ID, err)
	}

	for key, value := range data {
		var err error

		switch key {
		case "label":
			err = json.Unmarshal(value, &n.Data.Label)
		case "parameters":
			err = json.Unmarshal(value, &n.Data.Parameters)
		case "inputs":
			err = json.Unmarshal(value, &n.Data.Inputs)
		case "outputs":
			err = json.Unmarshal(value, &n.Data.Outputs)
		default:
			var v any
			err = json.Unmarshal(value, &v)
			n.Data.Fields[key] = v
		}

		if err != nil {
			return fmt.Errorf("node %s: invalid data.%s: %w", raw.ID, key, err)
		}
	}

	if n.Data.Parameters == nil {
		n.Data.Parameters = map[string]any{}
	}

	return nil
}

// MarshalJSON writes the node in the editor's shape.
func (n Node) MarshalJSON() ([]byte, error) {
	data := make(map[string]any, len(n.Data.Fields)+4)
	for k, v := range n.Data.Fields {
		data[k] = v
	}

	data["label"] = n.Data.Label
	data["parameters"] = n.Data.Parameters

	if len(n.Data.Inputs) > 0 {
		data["inputs"] = n.Data.Inputs
	}

	if len(n.Data.Outputs) > 0 {
		data["outputs"] = n.Data.Outputs
	}

	return json.Marshal(map[string]any{
		"id":       n.ID,
		"category": n.Category,
		"data":     data,
	})
}

// String looks key up in the subtype fields, then in parameters.
func (n Node) String(key string) string {
	for _, src := range []map[string]any{n.Data.Fields, n.Data.Parameters} {
		if v, ok := src[key]; ok {
			switch s := v.(type) {
			case string:
				return s
			case fmt.Stringer:
				return s.String()
			case nil:
			default:
				return fmt.Sprint(s)
			}
		}
	}

	return ""
}

// Number looks key up in parameters, then in the subtype fields.
// Numeric strings are accepted.
func (n Node) Number(key string) (float64, bool) {
	for _, src := range []map[string]any{n.Data.Parameters, n.Data.Fields} {
		v, ok := src[key]
		if !ok {
			continue
		}

		switch x := v.(type) {
		case float64:
			return x, true
		case float32:
			return float64(x), true
		case int:
			return float64(x), true
		case int64:
			return float64(x), true
		case json.Number:
			f, err := x.Float64()
			return f, err == nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err == nil {
				return f, true
			}
		}
	}

	return 0, false
}

// NumberOr returns the number at key or def when absent.
func (n Node) NumberOr(key string, def float64) float64 {
	if v, ok := n.Number(key); ok {
		return v
	}

	return def
}

// Has reports whether key exists in either the fields or the parameters.
func (n Node) Has(key string) bool {
	if _, ok := n.Data.Parameters[key]; ok {
		return true
	}

	_, ok := n.Data.Fields[key]

	return ok
}

// IndicatorType returns the lower-cased indicator subtype.
func (n Node) IndicatorType() string {
	t := n.String("indicatorType")
	if t == "" {
		t = n.String("indicatorId")
	}

	return strings.ToLower(t)
}

// Operator returns the comparison operator of a condition node.
func (n Node) Operator() string {
	return strings.ToLower(n.String("operator"))
}

// ActionType returns buy, sell or close for an action node. long/short are
// folded into buy/sell.
func (n Node) ActionType() string {
	t := n.String("actionType")
	if t == "" {
		t = n.String("action")
	}

	switch t = strings.ToLower(t); t {
	case "long":
		return "buy"
	case "short":
		return "sell"
	case "close_all", "close_position", "exit":
		return "close"
	default:
		return t
	}
}

// RiskType returns the risk subtype (stop_loss, take_profit, position_size...).
func (n Node) RiskType() string {
	return strings.ToLower(n.String("riskType"))
}

// LogicType returns AND, OR, NOT or XOR. Logic nodes may carry the gate in
// logicType or in operator.
func (n Node) LogicType() string {
	t := n.String("logicType")
	if t == "" {
		t = n.String("operator")
	}

	if t == "" {
		return "AND"
	}

	return strings.ToUpper(t)
}

// Label returns the node label, falling back to the id.
func (n Node) Label() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}

	return n.ID
}

// InputPortType returns the declared type of an input handle.
func (n Node) InputPortType(handle string) PortType {
	return findPort(n.Data.Inputs, handle)
}

// OutputPortType returns the declared type of an output handle.
func (n Node) OutputPortType(handle string) PortType {
	return findPort(n.Data.Outputs, handle)
}

func findPort(ports []Port, handle string) PortType {
	if handle == "" {
		return PortAny
	}

	for _, p := range ports {
		if p.ID == handle {
			return p.PortType()
		}
	}

	return PortAny
}
