package world

import (
	"encoding/json"
)

// Trace records how a template was resolved pass by pass.
type Trace struct {
	Template  string      `json:"template"`
	Result    string      `json:"result"`
	Converged bool        `json:"converged"`
	Passes    []PassTrace `json:"passes"`
}

// PassTrace holds the substitutions made during one function+lookup pass.
type PassTrace struct {
	Pass          int            `json:"pass"`
	Output        string         `json:"output"`
	Substitutions []Substitution `json:"substitutions,omitempty"`
}

// Substitution details one placeholder replacement.
type Substitution struct {
	Kind        string `json:"kind"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
	Error       string `json:"error,omitempty"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
