package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/petasbytes/chain-tools/internal/telemetry"
	"github.com/petasbytes/chain-tools/tools"
)

// agentPrefix is the standing instruction that follows the identity line.
const agentPrefix = "Have a conversation with a human, answering the following questions as best you can. You have access to tools; use them when they help."

var (
	// ErrMaxSteps means the model kept calling tools until Config.MaxSteps
	// requests had been made.
	ErrMaxSteps = errors.New("agent stopped after reaching the step limit")

	ErrEmptyInput = errors.New("empty input")
)

type Config struct {
	Model       anthropic.Model
	Temperature float64
	Name        string
	Date        string
	MaxTokens   int64
	MaxSteps    int
}

// ToolCall records one tool dispatch within a turn.
type ToolCall struct {
	Name    string
	IsError bool
}

// Turn is the outcome of one Run.
type Turn struct {
	ID        string
	Reply     string
	ToolCalls []ToolCall
	// Steps is the number of model requests made.
	Steps int
}

// Executor keeps the conversation for one session. Run calls are serialised.
type Executor struct {
	client *anthropic.Client
	tools  []tools.ToolDefinition
	cfg    Config
	system string

	mu   sync.Mutex
	conv []anthropic.MessageParam
}

func New(client *anthropic.Client, toolDefs []tools.ToolDefinition, cfg Config) *Executor {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Executor{
		client: client,
		tools:  toolDefs,
		cfg:    cfg,
		system: SystemPrompt(cfg.Name, cfg.Date),
	}
}

// SystemPrompt introduces the agent by name and date.
func SystemPrompt(name, date string) string {
	return fmt.Sprintf("Your name is %s. The current date is %s.\n%s", name, date, agentPrefix)
}

// Len returns the number of messages held in the conversation.
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.conv)
}

func (e *Executor) anthropicTools() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(e.tools))
	for _, t := range e.tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// Run sends input as the next user message and keeps calling the model,
// executing requested tools, until it answers without tool calls. On error
// the conversation is left as it was before Run.
func (e *Executor) Run(ctx context.Context, input string) (Turn, error) {
	if strings.TrimSpace(input) == "" {
		return Turn{}, ErrEmptyInput
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewTurnID()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}
	log := zerolog.Ctx(ctx).With().Str("turn_id", turnID).Logger()
	ctx = log.WithContext(ctx)

	start := time.Now()
	turn := Turn{ID: turnID}

	// Full slice expression so appends never write into e.conv's backing array.
	conv := append(e.conv[:len(e.conv):len(e.conv)], anthropic.NewUserMessage(anthropic.NewTextBlock(input)))
	var texts []string

	for turn.Steps < e.cfg.MaxSteps {
		turn.Steps++
		msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       e.cfg.Model,
			MaxTokens:   e.cfg.MaxTokens,
			Temperature: anthropic.Float(e.cfg.Temperature),
			System:      []anthropic.TextBlockParam{{Text: e.system}},
			Messages:    conv,
			Tools:       e.anthropicTools(),
		}, option.WithMaxRetries(0))
		if err != nil {
			err = fmt.Errorf("model request %d: %w", turn.Steps, err)
			e.emitTurn(turn, input, start, err)
			return turn, err
		}
		conv = append(conv, msg.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch v := block.AsAny().(type) {
			case anthropic.TextBlock:
				if t := strings.TrimSpace(v.Text); t != "" {
					texts = append(texts, t)
				}
			case anthropic.ToolUseBlock:
				args := json.RawMessage(v.JSON.Input.Raw())
				if len(args) == 0 {
					args = json.RawMessage("{}")
				}
				res, isErr := e.execTool(ctx, v.ID, v.Name, args)
				results = append(results, res)
				turn.ToolCalls = append(turn.ToolCalls, ToolCall{Name: v.Name, IsError: isErr})
			}
		}
		log.Debug().Int("step", turn.Steps).Int("tool_calls", len(results)).Str("stop_reason", string(msg.StopReason)).Msg("model step")

		if len(results) == 0 {
			turn.Reply = strings.Join(texts, "\n\n")
			e.conv = conv
			e.emitTurn(turn, input, start, nil)
			return turn, nil
		}
		conv = append(conv, anthropic.NewUserMessage(results...))
	}

	e.emitTurn(turn, input, start, ErrMaxSteps)
	return turn, ErrMaxSteps
}

// execTool runs the named tool. Unknown tools and tool failures become
// is_error results so the model can recover; they never end the turn.
func (e *Executor) execTool(ctx context.Context, id, name string, input json.RawMessage) (anthropic.ContentBlockParamUnion, bool) {
	var def *tools.ToolDefinition
	for i := range e.tools {
		if e.tools[i].Name == name {
			def = &e.tools[i]
			break
		}
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	emit := func(durationMs int64, inputSize, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
	}

	log := zerolog.Ctx(ctx)
	start := time.Now()
	inSize := len(input)

	if def == nil {
		log.Warn().Str("tool", name).Msg("model asked for an unknown tool")
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		return anthropic.NewToolResultBlock(id, fmt.Sprintf("tool %q not found", name), true), true
	}

	resp, err := def.Function(ctx, input)
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("tool execution error")
		// Telemetry gets a generic string; the model gets the detail.
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		return anthropic.NewToolResultBlock(id, err.Error(), true), true
	}
	log.Debug().Str("tool", name).Int("output_size", len(resp)).Msg("tool done")
	emit(time.Since(start).Milliseconds(), inSize, len(resp), "")
	return anthropic.NewToolResultBlock(id, resp, false), false
}

func (e *Executor) emitTurn(turn Turn, input string, start time.Time, err error) {
	names := make([]string, len(turn.ToolCalls))
	for i, c := range turn.ToolCalls {
		names[i] = c.Name
	}
	fields := map[string]any{
		"turn_id":     turn.ID,
		"model":       string(e.cfg.Model),
		"steps":       turn.Steps,
		"tool_calls":  names,
		"duration_ms": time.Since(start).Milliseconds(),
		"input":       telemetry.TextShape(input),
		"reply":       telemetry.TextShape(turn.Reply),
		"error":       nil,
	}
	if err != nil {
		fields["error"] = errorKind(err)
	}
	telemetry.Emit("turn", fields)
}
