// Package tools builds function-calling tool descriptions for language model
// APIs.
package tools

import "fmt"

const (
	defaultArgType        = "string"
	defaultArgDescription = "No description provided"
)

// Tool is the {"type":"function","function":{...}} mapping accepted by
// function-calling APIs.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function names and describes the callable and its parameters.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the object schema wrapping every argument property.
type Parameters struct {
	Type       string         `json:"type"`
	Properties map[string]Arg `json:"properties"`
}

// Arg describes one argument. Empty Type and Description are filled with
// defaults by BuildUserTool; Enum is emitted only when set.
type Arg struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum,omitempty"`
}

// BuildUserTool returns the tool description for a function taking args.
func BuildUserTool(name, description string, args map[string]Arg) Tool {
	properties := make(map[string]Arg, len(args))
	for argName, arg := range args {
		if arg.Type == "" {
			arg.Type = defaultArgType
		}
		if arg.Description == "" {
			arg.Description = defaultArgDescription
		}
		properties[argName] = arg
	}

	return Tool{
		Type: "function",
		Function: Function{
			Name:        name,
			Description: description,
			Parameters: Parameters{
				Type:       "object",
				Properties: properties,
			},
		},
	}
}

// BuildToolFromStruct derives the arguments from the fields of value (see
// ArgsFromStruct) and builds the tool.
func BuildToolFromStruct(name, description string, value any) (Tool, error) {
	args, err := ArgsFromStruct(value)
	if err != nil {
		return Tool{}, fmt.Errorf("tools: build %q: %w", name, err)
	}
	return BuildUserTool(name, description, args), nil
}
