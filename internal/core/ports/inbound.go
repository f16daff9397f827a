package ports

import (
	"context"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

// AgentRunner is the caller-facing loop contract. The three entry points
// each run the loop to a terminal outcome; callers must not invoke them
// concurrently for the same session id.
type AgentRunner interface {
	Run(ctx context.Context, sessionID, userText string) domain.AgentResult
	ResumeAfterChoice(ctx context.Context, sessionID, choice string) domain.AgentResult
	ResumeAfterApproval(ctx context.Context, sessionID string, pending domain.AgentDecision, approved bool) domain.AgentResult
	ClearSession(sessionID string)
}
