package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
	"github.com/kirillkom/discord-research-agent/internal/core/ports"
)

const (
	// DefaultMaxIterations bounds how many oracle steps one invocation may
	// take before it is cut off.
	DefaultMaxIterations = 5

	noToolsNudge  = "No tools were called. Please provide a response."
	denialMarker  = "[User denied tool execution]"
	budgetMessage = "I've done extensive research but couldn't formulate a complete answer. Please try rephrasing your question."
)

// Limits carries the loop's resource bounds. Individual tool calls get
// their own timeout inside the dispatcher; the loop itself is bounded by
// iteration count only.
type Limits struct {
	MaxIterations int
	OracleTimeout time.Duration
}

func (l Limits) normalize() Limits {
	if l.MaxIterations <= 0 {
		l.MaxIterations = DefaultMaxIterations
	}
	if l.OracleTimeout <= 0 {
		l.OracleTimeout = 60 * time.Second
	}
	return l
}

// AgentLoop drives the research/act/respond state machine: it repeatedly
// asks the oracle for the next step, executes information-tier tool calls,
// folds results back into the session transcript, and stops on a terminal
// decision or the iteration budget. Action-tier tool calls are never
// executed without an explicit approval resume.
type AgentLoop struct {
	oracle     ports.StepOracle
	dispatcher *Dispatcher
	sessions   ports.SessionRegistry
	events     ports.RunEventPublisher
	limits     Limits
	logger     *slog.Logger
}

func NewAgentLoop(
	oracle ports.StepOracle,
	dispatcher *Dispatcher,
	sessions ports.SessionRegistry,
	events ports.RunEventPublisher,
	limits Limits,
	logger *slog.Logger,
) *AgentLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentLoop{
		oracle:     oracle,
		dispatcher: dispatcher,
		sessions:   sessions,
		events:     events,
		limits:     limits.normalize(),
		logger:     logger,
	}
}

// Run starts a fresh invocation for a user message.
func (l *AgentLoop) Run(ctx context.Context, sessionID, userText string) domain.AgentResult {
	mem := l.sessions.Memory(sessionID)
	mem.AddUser(userText)
	return l.run(ctx, sessionID, mem)
}

// ResumeAfterChoice continues the loop after the user picked one of the
// options from an ask_user result. The choice re-enters as ordinary user
// input.
func (l *AgentLoop) ResumeAfterChoice(ctx context.Context, sessionID, choice string) domain.AgentResult {
	mem := l.sessions.Memory(sessionID)
	mem.AddUser(fmt.Sprintf("I choose: %s", choice))
	return l.run(ctx, sessionID, mem)
}

// ResumeAfterApproval continues the loop after the user approved or denied
// a pending perform_action decision. Approval executes the held tool calls
// through the dispatcher; denial appends a fixed marker instead and the
// calls are never executed.
func (l *AgentLoop) ResumeAfterApproval(ctx context.Context, sessionID string, pending domain.AgentDecision, approved bool) domain.AgentResult {
	mem := l.sessions.Memory(sessionID)

	if approved {
		successes, failures, events := l.dispatcher.Dispatch(ctx, pending.ToolCalls)
		for _, result := range successes {
			mem.AddToolResult(result)
		}
		for _, failure := range failures {
			mem.AddError(failure)
		}
		l.logger.Info("action_dispatched",
			"session_id", sessionID,
			"tool_calls", len(pending.ToolCalls),
			"failures", len(failures),
		)
		return l.runWithEvents(ctx, sessionID, mem, events)
	}

	mem.AddUser(denialMarker)
	l.logger.Info("action_denied", "session_id", sessionID, "tool_calls", len(pending.ToolCalls))
	return l.run(ctx, sessionID, mem)
}

// ClearSession drops the session's conversation history.
func (l *AgentLoop) ClearSession(sessionID string) {
	l.sessions.Clear(sessionID)
}

func (l *AgentLoop) run(ctx context.Context, sessionID string, mem ports.ConversationMemory) domain.AgentResult {
	return l.runWithEvents(ctx, sessionID, mem, nil)
}

func (l *AgentLoop) runWithEvents(ctx context.Context, sessionID string, mem ports.ConversationMemory, events []domain.ToolEvent) domain.AgentResult {
	iterations := 0
	result := l.step(ctx, sessionID, mem, &iterations, &events)
	l.publish(ctx, sessionID, result, iterations, events)
	return result
}

func (l *AgentLoop) step(ctx context.Context, sessionID string, mem ports.ConversationMemory, iterations *int, events *[]domain.ToolEvent) domain.AgentResult {
	for i := 0; i < l.limits.MaxIterations; i++ {
		*iterations = i + 1

		decision, err := l.askOracle(ctx, mem.Snapshot())
		if err != nil {
			// Fatal for this invocation: nothing of the failed step is
			// appended, and the loop never retries the oracle.
			l.logger.Error("oracle_step_failed", "session_id", sessionID, "iteration", i, "error", err)
			return domain.ErrorResult(domain.ErrorKindOracle, fmt.Sprintf("Agent error: %v", err))
		}

		switch decision.Kind {
		case domain.DecisionFinalAnswer:
			mem.AddAssistant(decision.Response)
			return domain.ResponseResult(decision.Response)

		case domain.DecisionAskUser:
			// The question joins the transcript only after the user answers.
			return domain.AskUserResult(decision)

		case domain.DecisionPerformAction:
			// The approval gate: hand the decision back unexecuted.
			return domain.PerformActionResult(decision)

		case domain.DecisionGatherInformation:
			l.gather(ctx, sessionID, mem, decision.ToolCalls, events)

		default:
			return domain.ErrorResult(domain.ErrorKindOracle, fmt.Sprintf("Agent error: unknown decision kind %q", decision.Kind))
		}
	}

	l.logger.Warn("iteration_budget_exhausted", "session_id", sessionID, "max_iterations", l.limits.MaxIterations)
	return domain.ErrorResult(domain.ErrorKindBudgetExhausted, budgetMessage)
}

func (l *AgentLoop) gather(ctx context.Context, sessionID string, mem ports.ConversationMemory, calls []domain.ToolCall, events *[]domain.ToolEvent) {
	if len(calls) == 0 {
		mem.AddToolResult(noToolsNudge)
		return
	}

	// Mutating calls must arrive through perform_action so they pass the
	// approval gate; smuggled into a gather step they are rejected per
	// call and surfaced to the oracle as failures.
	safe := make([]domain.ToolCall, 0, len(calls))
	for _, call := range calls {
		if call.Mutating() {
			mem.AddError(formatFailure(call, domain.ErrToolRejected))
			*events = append(*events, domain.ToolEvent{Tool: call.Kind, Status: domain.ToolStatusError})
			continue
		}
		safe = append(safe, call)
	}

	successes, failures, toolEvents := l.dispatcher.Dispatch(ctx, safe)
	for _, result := range successes {
		mem.AddToolResult(result)
	}
	for _, failure := range failures {
		mem.AddError(failure)
	}
	*events = append(*events, toolEvents...)

	l.logger.Debug("information_gathered",
		"session_id", sessionID,
		"tool_calls", len(calls),
		"failures", len(failures),
	)
}

func (l *AgentLoop) askOracle(ctx context.Context, messages []domain.Message) (domain.AgentDecision, error) {
	stepCtx, cancel := context.WithTimeout(ctx, l.limits.OracleTimeout)
	defer cancel()
	return l.oracle.Step(stepCtx, messages)
}

func (l *AgentLoop) publish(ctx context.Context, sessionID string, result domain.AgentResult, iterations int, events []domain.ToolEvent) {
	if l.events == nil {
		return
	}
	event := domain.RunEvent{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Outcome:    result.Kind,
		Iterations: iterations,
		ToolEvents: events,
		At:         time.Now().UTC(),
	}
	if err := l.events.PublishRunEvent(ctx, event); err != nil {
		l.logger.Warn("run_event_publish_failed", "session_id", sessionID, "error", err)
	}
}
