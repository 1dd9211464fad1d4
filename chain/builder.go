package chain

import (
	"context"
	"time"

	"github.com/petasbytes/chain-tools/internal/telemetry"
	"github.com/rs/zerolog"
)

// NewPromptTool returns a Tool that formats b's template with its input, sends
// it to c, and returns the response text unmodified. Errors from c are
// returned as is; there is no retry and no caching.
func NewPromptTool(name, description string, b PromptBinding, c Completer) Tool {
	return New(name, description, promptFunc(b, c))
}

func promptFunc(b PromptBinding, c Completer) Func {
	return func(ctx context.Context, input string) (string, error) {
		return c.Complete(ctx, b.Request(input))
	}
}

// NewChainTool returns a Tool that feeds its input through steps in order,
// each step's output becoming the next step's input. With no steps the tool
// returns its input unchanged.
//
// Every step is validated here; an invalid step is reported as a *StepError.
func NewChainTool(name, description string, steps []Step, c Completer) (Tool, error) {
	fns := make([]Func, 0, len(steps))
	for i, s := range steps {
		b, err := s.Binding()
		if err != nil {
			return Tool{}, &StepError{Chain: name, Index: i, Total: len(steps), Err: err}
		}
		fns = append(fns, promptFunc(b, c))
	}
	return New(name, description, compose(name, fns)), nil
}

// compose runs fns left to right. The first failure aborts the run.
func compose(name string, fns []Func) Func {
	return func(ctx context.Context, input string) (string, error) {
		log := zerolog.Ctx(ctx)
		log.Debug().Str("chain", name).Str("input", input).Msg("chain start")
		start := time.Now()

		current := input
		for i, fn := range fns {
			out, err := fn(ctx, current)
			if err != nil {
				emitChainExec(ctx, name, len(fns), start, input, "", i)
				log.Debug().Str("chain", name).Int("step", i+1).Err(err).Msg("chain failed")
				return "", &StepError{Chain: name, Index: i, Total: len(fns), Err: err}
			}
			current = out
		}

		emitChainExec(ctx, name, len(fns), start, input, current, -1)
		log.Debug().Str("chain", name).Str("output", current).Msg("chain done")
		return current, nil
	}
}

// emitChainExec records sizes only; prompt text never reaches telemetry.
func emitChainExec(ctx context.Context, name string, steps int, start time.Time, input, output string, failedStep int) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	fields := map[string]any{
		"chain":       name,
		"steps":       steps,
		"duration_ms": time.Since(start).Milliseconds(),
		"input":       telemetry.TextShape(input),
		"output":      telemetry.TextShape(output),
		"turn_id":     turnID,
		"failed_step": nil,
	}
	if failedStep >= 0 {
		fields["failed_step"] = failedStep + 1
	}
	telemetry.Emit("chain_exec", fields)
}
