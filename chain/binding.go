package chain

import (
	"context"
	"errors"
	"fmt"
)

const (
	// DefaultModel is the general-purpose chat model used by steps that do not
	// name one.
	DefaultModel = "claude-3-5-haiku-latest"
	// DefaultTemperature is the sampling temperature used by steps that do not
	// set one.
	DefaultTemperature = 0.7

	minTemperature = 0.0
	maxTemperature = 1.0
)

// ErrBinding is returned for bindings with an empty model identifier or an
// out-of-range temperature.
var ErrBinding = errors.New("invalid prompt binding")

// Request is a single completion request sent to a model-hosting client.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
}

// Completer sends a formatted prompt to a hosted model and returns its text
// response. Transport and API failures are returned as errors.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// PromptBinding ties a template to a model configuration. The zero value is
// not usable; build one with NewPromptBinding or Step.Binding.
type PromptBinding struct {
	template    *Template
	model       string
	temperature float64
}

// NewPromptBinding parses template and validates the model configuration.
func NewPromptBinding(template, model string, temperature float64) (PromptBinding, error) {
	t, err := ParseTemplate(template)
	if err != nil {
		return PromptBinding{}, err
	}
	return bind(t, model, temperature)
}

func bind(t *Template, model string, temperature float64) (PromptBinding, error) {
	if model == "" {
		return PromptBinding{}, fmt.Errorf("%w: empty model identifier", ErrBinding)
	}
	if temperature < minTemperature || temperature > maxTemperature {
		return PromptBinding{}, fmt.Errorf("%w: temperature %v outside [%v, %v]", ErrBinding, temperature, minTemperature, maxTemperature)
	}
	return PromptBinding{template: t, model: model, temperature: temperature}, nil
}

func (b PromptBinding) Template() *Template  { return b.template }
func (b PromptBinding) Model() string        { return b.model }
func (b PromptBinding) Temperature() float64 { return b.temperature }

// Request formats the template with input and returns the request to send.
func (b PromptBinding) Request(input string) Request {
	return Request{
		Prompt:      b.template.Format(input),
		Model:       b.model,
		Temperature: b.temperature,
	}
}

// Step describes one link of a chain. Model and Temperature are optional and
// independent of each other.
type Step struct {
	Template    string
	Model       string   // empty means DefaultModel
	Temperature *float64 // nil means DefaultTemperature
}

// Float returns a pointer to v, for Step.Temperature.
func Float(v float64) *float64 { return &v }

// Binding resolves the step's defaults and validates it.
func (s Step) Binding() (PromptBinding, error) {
	model := s.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := DefaultTemperature
	if s.Temperature != nil {
		temperature = *s.Temperature
	}
	return NewPromptBinding(s.Template, model, temperature)
}
