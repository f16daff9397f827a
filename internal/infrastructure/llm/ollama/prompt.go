package ollama

import (
	"fmt"
	"strings"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

func buildStepPrompt(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, content))
	}
	if len(lines) == 0 {
		lines = append(lines, "(empty)")
	}

	return fmt.Sprintf(`You are the decision component of a research assistant.
Return ONLY a valid JSON object describing the single next step.
Schema (exactly one type per response):
{"type":"final_answer","response":"..."}
or
{"type":"ask_user","question":"...","options":["...","..."]}
or
{"type":"gather_information","tool_calls":[{"tool":"FetchUrl","url":"...","reason":"..."},{"tool":"TavilySearch","query":"...","reason":"..."},{"tool":"GetStoredContent","sha_key":"...","reason":"..."},{"tool":"GetOllamaModels","reason":"..."}]}
or
{"type":"perform_action","reasoning":"...","tool_calls":[{"tool":"ReadFile","file_path":"...","reason":"..."},{"tool":"WriteFile","file_path":"...","content":"...","reason":"..."},{"tool":"Bash","command":"...","reason":"..."}]}

gather_information tools are read-only and run automatically.
perform_action tools touch the filesystem or shell and require explicit user approval; use them only when the user asked for such a change.
Messages with role "tool" are results of your previous tool calls; role "error" marks tool calls that failed.

Conversation:
%s
`, strings.Join(lines, "\n"))
}

func buildRepairPrompt(raw string) string {
	return fmt.Sprintf(`Convert the following text into a valid JSON object for this schema:
{"type":"final_answer","response":"..."}
or {"type":"ask_user","question":"...","options":["..."]}
or {"type":"gather_information","tool_calls":[{"tool":"...","reason":"...",...}]}
or {"type":"perform_action","reasoning":"...","tool_calls":[{"tool":"...","reason":"...",...}]}
Return only JSON.
Text:
%s`, raw)
}
