package domain

// DecisionKind discriminates the oracle's step decisions. Exactly one
// variant is active per step.
type DecisionKind string

const (
	DecisionFinalAnswer       DecisionKind = "final_answer"
	DecisionAskUser           DecisionKind = "ask_user"
	DecisionGatherInformation DecisionKind = "gather_information"
	DecisionPerformAction     DecisionKind = "perform_action"
)

// AgentDecision is one structured step decision from the oracle.
type AgentDecision struct {
	Kind DecisionKind `json:"kind"`

	// Response is set for final_answer.
	Response string `json:"response,omitempty"`

	// Question and Options are set for ask_user.
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`

	// Reasoning is set for perform_action.
	Reasoning string `json:"reasoning,omitempty"`

	// ToolCalls is set for gather_information and perform_action.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}
