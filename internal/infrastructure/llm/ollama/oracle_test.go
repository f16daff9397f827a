package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

// generateServer replies to /api/generate with the scripted model outputs,
// one per request, wrapped in the Ollama response envelope.
func generateServer(t *testing.T, outputs ...string) *httptest.Server {
	t.Helper()
	calls := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["format"] != "json" || req["stream"] != false {
			t.Errorf("expected format=json stream=false, got %v", req)
		}
		if calls >= len(outputs) {
			t.Errorf("unexpected extra generate call %d", calls)
			http.Error(w, "script exhausted", http.StatusInternalServerError)
			return
		}
		out := outputs[calls]
		calls++
		json.NewEncoder(w).Encode(map[string]string{"response": out})
	}))
}

func stepOnce(t *testing.T, server *httptest.Server) (domain.AgentDecision, error) {
	t.Helper()
	oracle := NewOracle(New(server.URL, "llama3.1:8b"))
	return oracle.Step(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "hello"},
	})
}

func TestStepParsesFinalAnswer(t *testing.T) {
	server := generateServer(t, `{"type":"final_answer","response":"Paris."}`)
	defer server.Close()

	decision, err := stepOnce(t, server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Kind != domain.DecisionFinalAnswer || decision.Response != "Paris." {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestStepParsesAskUser(t *testing.T) {
	server := generateServer(t, `{"type":"ask_user","question":"Which city?","options":["Paris","Lyon"]}`)
	defer server.Close()

	decision, err := stepOnce(t, server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Kind != domain.DecisionAskUser || decision.Question != "Which city?" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if len(decision.Options) != 2 || decision.Options[0] != "Paris" {
		t.Fatalf("unexpected options: %v", decision.Options)
	}
}

func TestStepParsesGatherWithTaggedToolCalls(t *testing.T) {
	server := generateServer(t, `{"type":"gather_information","tool_calls":[
		{"tool":"FetchUrl","reason":"check docs","url":"https://example.com"},
		{"tool":"GetStoredContent","reason":"read the rest","sha_key":"0a1b2c3d"}
	]}`)
	defer server.Close()

	decision, err := stepOnce(t, server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Kind != domain.DecisionGatherInformation {
		t.Fatalf("unexpected kind: %s", decision.Kind)
	}
	if len(decision.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(decision.ToolCalls))
	}
	if decision.ToolCalls[0].Kind != domain.ToolFetchURL || decision.ToolCalls[0].URL != "https://example.com" {
		t.Fatalf("unexpected first call: %+v", decision.ToolCalls[0])
	}
	if decision.ToolCalls[1].Kind != domain.ToolStoredContent || decision.ToolCalls[1].SHAKey != "0a1b2c3d" {
		t.Fatalf("unexpected second call: %+v", decision.ToolCalls[1])
	}
}

func TestStepParsesPerformAction(t *testing.T) {
	server := generateServer(t, `{"type":"perform_action","reasoning":"persist the summary","tool_calls":[
		{"tool":"WriteFile","reason":"save summary","file_path":"/tmp/summary.md","content":"# Notes"}
	]}`)
	defer server.Close()

	decision, err := stepOnce(t, server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Kind != domain.DecisionPerformAction || decision.Reasoning != "persist the summary" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if decision.ToolCalls[0].Kind != domain.ToolWriteFile || decision.ToolCalls[0].Path != "/tmp/summary.md" {
		t.Fatalf("unexpected tool call: %+v", decision.ToolCalls[0])
	}
}

func TestStepRepairsMalformedOutputOnce(t *testing.T) {
	server := generateServer(t,
		"Sure! Here is my decision: final answer, Paris.",
		`{"type":"final_answer","response":"Paris."}`,
	)
	defer server.Close()

	decision, err := stepOnce(t, server)
	if err != nil {
		t.Fatalf("expected repair to recover, got %v", err)
	}
	if decision.Kind != domain.DecisionFinalAnswer {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestStepFailsWhenRepairStillMalformed(t *testing.T) {
	server := generateServer(t,
		"not json",
		"still not json",
	)
	defer server.Close()

	_, err := stepOnce(t, server)
	if err == nil {
		t.Fatalf("expected error after failed repair")
	}
	if !domain.IsKind(err, domain.ErrOracle) {
		t.Fatalf("expected oracle fault, got %v", err)
	}
}

func TestStepWrapsTransportFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := stepOnce(t, server)
	if err == nil {
		t.Fatalf("expected error on 500")
	}
	if !domain.IsKind(err, domain.ErrOracle) {
		t.Fatalf("expected oracle fault, got %v", err)
	}
}

func TestStepIgnoresProseAroundJSONObject(t *testing.T) {
	server := generateServer(t, "Here you go:\n{\"type\":\"final_answer\",\"response\":\"42\"}\nHope that helps!")
	defer server.Close()

	decision, err := stepOnce(t, server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Response != "42" {
		t.Fatalf("unexpected response: %q", decision.Response)
	}
}

func TestParseDecisionRejectsUnknownTool(t *testing.T) {
	_, err := parseDecision(`{"type":"gather_information","tool_calls":[{"tool":"Teleport","reason":"nope"}]}`)
	if err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestParseDecisionRejectsMissingRequiredArgument(t *testing.T) {
	_, err := parseDecision(`{"type":"gather_information","tool_calls":[{"tool":"FetchUrl","reason":"no url"}]}`)
	if err == nil {
		t.Fatalf("expected error for FetchUrl without url")
	}
}

func TestListModelsNativeShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3.1:8b"}, {"name": "qwen2.5:7b"}},
		})
	}))
	defer server.Close()

	catalog := NewModelCatalog(New(server.URL, "llama3.1:8b"), nil)
	models, err := catalog.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "llama3.1:8b" {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestListModelsOpenAIShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "gpt-oss:20b"}},
		})
	}))
	defer server.Close()

	catalog := NewModelCatalog(New(server.URL+"/v1", "gpt-oss:20b"), nil)
	models, err := catalog.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 1 || models[0] != "gpt-oss:20b" {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestListModelsMarksServerErrorsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	catalog := NewModelCatalog(New(server.URL, "llama3.1:8b"), nil)
	_, err := catalog.ListModels(context.Background())
	if err == nil {
		t.Fatalf("expected error on 503")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary failure, got %v", err)
	}
}
