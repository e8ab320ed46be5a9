package pstack

import (
	"encoding/json"
)

// Walk directions recorded in a trace step.
const (
	WalkForward = "forward"
	WalkReverse = "reverse"
)

// WalkTrace captures the path the reversible cursor took to materialize a
// requested version.
type WalkTrace struct {
	Design string     `json:"design"`
	From   int        `json:"from"`
	To     int        `json:"to"`
	Steps  []WalkStep `json:"steps,omitempty"`
}

// WalkStep details one cursor movement: which log entry was applied, in
// which direction, the kind of operation actually executed, and the cursor
// version after the step.
type WalkStep struct {
	Direction string `json:"direction"`
	Entry     int    `json:"entry"`
	Kind      OpKind `json:"kind"`
	Version   int    `json:"version"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t WalkTrace) ToJSON() ([]byte, error) {
	type alias WalkTrace
	return json.Marshal(alias(t))
}

// WalkTraceFromJSON deserialises a JSON payload that was previously
// generated via ToJSON.
func WalkTraceFromJSON(payload []byte) (WalkTrace, error) {
	type alias WalkTrace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return WalkTrace{}, err
	}
	return WalkTrace(trace), nil
}
