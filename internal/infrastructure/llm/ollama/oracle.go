package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

// Oracle asks the model for the next structured step decision. It makes a
// single repair attempt on undecodable output and otherwise surfaces the
// fault unchanged; retry policy belongs to nobody — the loop treats oracle
// faults as fatal.
type Oracle struct {
	client *Client
}

func NewOracle(client *Client) *Oracle {
	return &Oracle{client: client}
}

func (o *Oracle) Step(ctx context.Context, messages []domain.Message) (domain.AgentDecision, error) {
	raw, err := o.client.generateJSON(ctx, buildStepPrompt(messages))
	if err != nil {
		return domain.AgentDecision{}, domain.WrapError(domain.ErrOracle, "agent step", err)
	}

	decision, err := parseDecision(raw)
	if err == nil {
		return decision, nil
	}

	repairedRaw, repairErr := o.client.generateJSON(ctx, buildRepairPrompt(raw))
	if repairErr != nil {
		return domain.AgentDecision{}, domain.WrapError(domain.ErrOracle, "agent step repair", repairErr)
	}
	decision, repairErr = parseDecision(repairedRaw)
	if repairErr != nil {
		return domain.AgentDecision{}, domain.WrapError(domain.ErrOracle, "agent step", err)
	}
	return decision, nil
}

type wireDecision struct {
	Type      string         `json:"type"`
	Response  string         `json:"response"`
	Question  string         `json:"question"`
	Options   []string       `json:"options"`
	Reasoning string         `json:"reasoning"`
	ToolCalls []wireToolCall `json:"tool_calls"`
}

type wireToolCall struct {
	Tool     string `json:"tool"`
	Reason   string `json:"reason"`
	URL      string `json:"url"`
	Query    string `json:"query"`
	SHAKey   string `json:"sha_key"`
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
	Command  string `json:"command"`
}

// parseDecision decodes the model output and normalizes it into a tagged
// AgentDecision. The tool kind comes from the explicit "tool" field; it is
// never guessed from which arguments are present.
func parseDecision(raw string) (domain.AgentDecision, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.AgentDecision{}, fmt.Errorf("empty step response")
	}

	var wire wireDecision
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
		return domain.AgentDecision{}, fmt.Errorf("unmarshal step json: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(wire.Type)) {
	case "final_answer":
		if strings.TrimSpace(wire.Response) == "" {
			return domain.AgentDecision{}, fmt.Errorf("final_answer without response text")
		}
		return domain.AgentDecision{
			Kind:     domain.DecisionFinalAnswer,
			Response: strings.TrimSpace(wire.Response),
		}, nil
	case "ask_user":
		if strings.TrimSpace(wire.Question) == "" {
			return domain.AgentDecision{}, fmt.Errorf("ask_user without question text")
		}
		return domain.AgentDecision{
			Kind:     domain.DecisionAskUser,
			Question: strings.TrimSpace(wire.Question),
			Options:  wire.Options,
		}, nil
	case "gather_information":
		calls, err := normalizeToolCalls(wire.ToolCalls)
		if err != nil {
			return domain.AgentDecision{}, err
		}
		return domain.AgentDecision{
			Kind:      domain.DecisionGatherInformation,
			ToolCalls: calls,
		}, nil
	case "perform_action":
		calls, err := normalizeToolCalls(wire.ToolCalls)
		if err != nil {
			return domain.AgentDecision{}, err
		}
		if len(calls) == 0 {
			return domain.AgentDecision{}, fmt.Errorf("perform_action without tool calls")
		}
		return domain.AgentDecision{
			Kind:      domain.DecisionPerformAction,
			Reasoning: strings.TrimSpace(wire.Reasoning),
			ToolCalls: calls,
		}, nil
	default:
		return domain.AgentDecision{}, fmt.Errorf("unknown decision type %q", wire.Type)
	}
}

func normalizeToolCalls(wire []wireToolCall) ([]domain.ToolCall, error) {
	calls := make([]domain.ToolCall, 0, len(wire))
	for _, w := range wire {
		call := domain.ToolCall{
			Reason:  strings.TrimSpace(w.Reason),
			URL:     strings.TrimSpace(w.URL),
			Query:   strings.TrimSpace(w.Query),
			SHAKey:  strings.TrimSpace(w.SHAKey),
			Path:    strings.TrimSpace(w.FilePath),
			Content: w.Content,
			Command: strings.TrimSpace(w.Command),
		}

		switch strings.TrimSpace(w.Tool) {
		case "FetchUrl":
			call.Kind = domain.ToolFetchURL
			if call.URL == "" {
				return nil, fmt.Errorf("FetchUrl call without url")
			}
		case "TavilySearch":
			call.Kind = domain.ToolTavilySearch
			if call.Query == "" {
				return nil, fmt.Errorf("TavilySearch call without query")
			}
		case "GetStoredContent":
			call.Kind = domain.ToolStoredContent
			if call.SHAKey == "" {
				return nil, fmt.Errorf("GetStoredContent call without sha_key")
			}
		case "GetOllamaModels":
			call.Kind = domain.ToolOllamaModels
		case "ReadFile":
			call.Kind = domain.ToolReadFile
			if call.Path == "" {
				return nil, fmt.Errorf("ReadFile call without file_path")
			}
		case "WriteFile":
			call.Kind = domain.ToolWriteFile
			if call.Path == "" {
				return nil, fmt.Errorf("WriteFile call without file_path")
			}
		case "Bash":
			call.Kind = domain.ToolBash
			if call.Command == "" {
				return nil, fmt.Errorf("Bash call without command")
			}
		default:
			return nil, fmt.Errorf("unknown tool %q", w.Tool)
		}

		calls = append(calls, call)
	}
	return calls, nil
}
