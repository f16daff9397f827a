package domain

// ResultKind tags the single active alternative of an AgentResult.
type ResultKind string

const (
	ResultResponse      ResultKind = "response"
	ResultAskUser       ResultKind = "ask_user"
	ResultPerformAction ResultKind = "perform_action"
	ResultError         ResultKind = "error"
)

// ErrorKind distinguishes fatal loop outcomes for programmatic callers.
type ErrorKind string

const (
	ErrorKindOracle          ErrorKind = "oracle_fault"
	ErrorKindBudgetExhausted ErrorKind = "budget_exhausted"
)

// AgentResult is the loop's terminal outcome for one invocation. It is
// built only through the constructors below, so exactly one alternative is
// ever populated.
type AgentResult struct {
	Kind ResultKind `json:"kind"`

	Response string `json:"response,omitempty"`

	// AskUser holds the clarifying question awaiting an external choice.
	AskUser *AgentDecision `json:"ask_user,omitempty"`

	// PendingAction holds a perform_action decision awaiting approval.
	// Its tool calls have not been executed.
	PendingAction *AgentDecision `json:"pending_action,omitempty"`

	ErrKind ErrorKind `json:"error_kind,omitempty"`
	Err     string    `json:"error,omitempty"`
}

func ResponseResult(text string) AgentResult {
	return AgentResult{Kind: ResultResponse, Response: text}
}

func AskUserResult(decision AgentDecision) AgentResult {
	return AgentResult{Kind: ResultAskUser, AskUser: &decision}
}

func PerformActionResult(decision AgentDecision) AgentResult {
	return AgentResult{Kind: ResultPerformAction, PendingAction: &decision}
}

func ErrorResult(kind ErrorKind, message string) AgentResult {
	return AgentResult{Kind: ResultError, ErrKind: kind, Err: message}
}
