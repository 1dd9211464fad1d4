package chain

import "context"

// Func is a tool's invocation: input text in, output text out.
type Func func(ctx context.Context, input string) (string, error)

// Tool is a named, described callable. Tools are values; copying one is cheap
// and all copies behave identically.
type Tool struct {
	name        string
	description string
	invoke      Func
}

// New returns a Tool wrapping fn. name and description are kept verbatim.
func New(name, description string, fn Func) Tool {
	return Tool{name: name, description: description, invoke: fn}
}

func (t Tool) Name() string        { return t.name }
func (t Tool) Description() string { return t.description }

// Invoke runs the tool on input.
func (t Tool) Invoke(ctx context.Context, input string) (string, error) {
	if t.invoke == nil {
		return input, nil
	}
	return t.invoke(ctx, input)
}

// NewTransformTool returns a Tool backed by a local deterministic transform.
func NewTransformTool(name, description string, fn func(string) string) Tool {
	return New(name, description, func(_ context.Context, input string) (string, error) {
		return fn(input), nil
	})
}
