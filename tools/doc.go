// Package tools defines the agent-facing tool contract and the tools wired
// into the agent.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - FromChain: expose a chain.Tool with a {"input": string} schema.
//   - Catalog: uppercase-tool, legal-talk, pun-converter, cool-function.
//   - LoadChainFile / BuildChains: user-defined chains from YAML.
//   - Utility tools: calculator, wikipedia, web_search.
//   - Registry: explicit assembly at start-up; names are validated and unique.
package tools
