package graph

import "fmt"

// PortType is the value type carried by a node handle.
type PortType string

const (
	PortNumber  PortType = "number"
	PortBoolean PortType = "boolean"
	PortString  PortType = "string"
	PortAny     PortType = "any"
)

// PortTypesCompatible reports whether a value of type from may flow into to.
func PortTypesCompatible(from, to PortType) bool {
	if from == "" || to == "" || from == PortAny || to == PortAny {
		return true
	}

	return from == to
}

// CoercionHint explains how to bridge two incompatible port types.
func CoercionHint(from, to PortType) string {
	switch {
	case from == PortNumber && to == PortBoolean:
		return "use a condition node to turn a number into a boolean"
	case from == PortBoolean && to == PortNumber:
		return "booleans cannot feed numeric inputs, store the flag in a variable node"
	case to == PortString:
		return fmt.Sprintf("convert the %s value with a variable node before using it as text", from)
	default:
		return fmt.Sprintf("connect a %s output to a %s input", to, to)
	}
}
