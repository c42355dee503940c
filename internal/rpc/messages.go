package rpc

// Plain Go structs standing in for the protobuf messages the teacher's
// codec package would otherwise generate; the JSON codec serializes
// these directly over the wire.

// InitialStatesRequest has no fields: the server enumerates the loaded
// model's own initial states.
type InitialStatesRequest struct{}

type InitialStatesResponse struct {
	PackedStates []string `json:"packed_states"`
}

type LoadRequest struct {
	PackedState string `json:"packed_state"`
}

type LoadResponse struct{}

type SuccessorWire struct {
	PackedState string  `json:"packed_state"`
	Rate        float64 `json:"rate"`
}

type ChoiceWire struct {
	Label      string          `json:"label"`
	Successors []SuccessorWire `json:"successors"`
}

type ExpandRequest struct{}

type ExpandResponse struct {
	Choices []ChoiceWire `json:"choices"`
	Reward  float64      `json:"reward"`
}

type VariableInfoRequest struct{}

type VariableInfoResponse struct {
	AbsorbingVarIndex int `json:"absorbing_var_index"`
	AbsorbingBitWidth int `json:"absorbing_bit_width"`
	TotalVars         int `json:"total_vars"`
}

type ModelTypeRequest struct{}

type ModelTypeResponse struct {
	ModelType string `json:"model_type"`
}

type CheckRequest struct {
	Rows        [][]EdgeWire        `json:"rows"`
	Initial     []uint32            `json:"initial"`
	Labels      map[string][]uint32 `json:"labels"`
	TargetLabel string              `json:"target_label"`
	TimeBound   *float64            `json:"time_bound,omitempty"`
}

type EdgeWire struct {
	Target uint32  `json:"target"`
	Rate   float64 `json:"rate"`
}

type CheckResponse struct {
	Probability float64 `json:"probability"`
}
