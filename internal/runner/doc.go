// Package runner drives one agent turn against the Anthropic Messages API and
// dispatches the tool calls the model makes along the way.
//
// Invariant:
//   - every tool_use in the conversation is followed by its tool_result in the
//     next message; a failed turn leaves the conversation as it was before
//     the turn started.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> ... -> assistant(text)
package runner
