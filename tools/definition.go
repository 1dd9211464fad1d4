package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/chain-tools/chain"
)

// ToolDefinition is what the agent sees: a name, a description, a JSON input
// schema and the handler that receives the model's raw JSON arguments.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// GenerateSchema derives an input schema from T's exported fields and their
// json / jsonschema tags.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
		Required:   schema.Required,
	}
}

// TextInput is the input of every text-to-text tool.
type TextInput struct {
	Input string `json:"input" jsonschema_description:"The text to transform."`
}

var TextInputSchema = GenerateSchema[TextInput]()

// FromChain exposes a chain.Tool to the agent with the TextInput schema.
// A bare JSON string is accepted as the input too, since models sometimes
// drop the wrapping object.
func FromChain(t chain.Tool) ToolDefinition {
	return ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: TextInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			text, err := textArg(input)
			if err != nil {
				return "", err
			}
			return t.Invoke(ctx, text)
		},
	}
}

func textArg(input json.RawMessage) (string, error) {
	if !gjson.ValidBytes(input) {
		return "", fmt.Errorf("invalid JSON input")
	}
	r := gjson.ParseBytes(input)
	if r.Type == gjson.String {
		return r.String(), nil
	}
	v := r.Get("input")
	if !v.Exists() {
		return "", fmt.Errorf(`missing required field "input"`)
	}
	return v.String(), nil
}

// AsText adapts a definition with exactly one required field into a
// chain.Tool: the text input becomes the value of that field.
func AsText(def ToolDefinition) (chain.Tool, error) {
	if len(def.InputSchema.Required) != 1 {
		return chain.Tool{}, fmt.Errorf("tool %q takes %d required fields, want 1", def.Name, len(def.InputSchema.Required))
	}
	field := def.InputSchema.Required[0]
	return chain.New(def.Name, def.Description, func(ctx context.Context, input string) (string, error) {
		args, err := json.Marshal(map[string]string{field: input})
		if err != nil {
			return "", err
		}
		return def.Function(ctx, args)
	}), nil
}
