package runner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/chain-tools/internal/provider"
	"github.com/petasbytes/chain-tools/internal/runner"
	"github.com/petasbytes/chain-tools/internal/telemetry"
	"github.com/petasbytes/chain-tools/tools"
)

type reply struct {
	status int
	body   string
}

// fakeTransport answers requests from a script, repeating the last entry
// once the script runs out.
type fakeTransport struct {
	mu     sync.Mutex
	script []reply
	err    error
	bodies [][]byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, b)
	if f.err != nil {
		return nil, f.err
	}
	r := f.script[0]
	if len(f.script) > 1 {
		f.script = f.script[1:]
	}
	resp := &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(r.body))),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

// request decodes the i-th captured request body.
func (f *fakeTransport) request(t *testing.T, i int) sentRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var r sentRequest
	if err := json.Unmarshal(f.bodies[i], &r); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, f.bodies[i])
	}
	return r
}

type sentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

type sentRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Tools []struct {
		Name string `json:"name"`
	} `json:"tools"`
	Messages []struct {
		Role    string      `json:"role"`
		Content []sentBlock `json:"content"`
	} `json:"messages"`
}

// resultText returns the text of a tool_result block.
func (b sentBlock) resultText() string {
	var parts []struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(b.Content, &parts) == nil && len(parts) > 0 {
		return parts[0].Text
	}
	var s string
	_ = json.Unmarshal(b.Content, &s)
	return s
}

func textMessage(text string) reply {
	return reply{200, fmt.Sprintf(`{
		"id": "msg_text", "type": "message", "role": "assistant", "model": "m",
		"content": [{"type": "text", "text": %q}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`, text)}
}

func toolUseMessage(id, name, input string) reply {
	return reply{200, fmt.Sprintf(`{
		"id": "msg_tool", "type": "message", "role": "assistant", "model": "m",
		"content": [{"type": "tool_use", "id": %q, "name": %q, "input": %s}],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`, id, name, input)}
}

func apiError(status int) reply {
	return reply{status, `{"type": "error", "error": {"type": "api_error", "message": "nope"}}`}
}

func newExecutor(rt http.RoundTripper, defs []tools.ToolDefinition, maxSteps int) *runner.Executor {
	client := provider.NewAnthropicClient("test-key", "", option.WithHTTPClient(&http.Client{Transport: rt}))
	return runner.New(client, defs, runner.Config{
		Model:       anthropic.ModelClaude3_7SonnetLatest,
		Temperature: 0.2,
		Name:        "James",
		Date:        "March 5, 2024",
		MaxTokens:   512,
		MaxSteps:    maxSteps,
	})
}

var errBoom = errors.New("boom")

func testTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.FromChain(tools.Uppercase()),
		{
			Name:        "err_tool",
			Description: "always errors",
			InputSchema: tools.GenerateSchema[struct{}](),
			Function: func(context.Context, json.RawMessage) (string, error) {
				return "", errBoom
			},
		},
	}
}

// observe turns telemetry on and points it at a fresh directory.
func observe(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AGT_OBSERVE_JSON", "1")
	t.Setenv("AGT_ARTIFACTS_DIR", dir)
	return dir
}

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, telemetry.EventsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func eventsNamed(events []map[string]any, name string) []map[string]any {
	var out []map[string]any
	for _, e := range events {
		if e["event"] == name {
			out = append(out, e)
		}
	}
	return out
}
