// Package chain builds text-in/text-out tools from prompt templates and a
// hosted model client.
//
// Includes:
//   - Template: `{prompt}`-style text with exactly one substitution slot.
//   - PromptBinding: template + model identifier + temperature, validated once.
//   - Tool: immutable name, description and invocation.
//   - NewPromptTool: one model call per invocation.
//   - NewChainTool: steps applied strictly left to right; zero steps is identity.
//   - NewTransformTool: local deterministic transform, no model call.
//   - InvokeAll: bounded fan-out of one tool over many inputs.
//
// Invariants:
//   - A Tool holds no mutable state; concurrent invocations are safe.
//   - A failing chain step aborts the chain with a *StepError and no partial output.
package chain
