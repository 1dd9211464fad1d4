package tools

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/petasbytes/chain-tools/chain"
)

// Names the Messages API accepts for tools.
var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Deps are the collaborators the registry wires into tools.
type Deps struct {
	Completer  chain.Completer
	HTTPClient *http.Client
	// Chains are extra text tools, typically loaded with LoadChainFile.
	Chains []chain.Tool

	WikipediaURL string
	SearchURL    string
}

// TextTools returns the built-in catalog followed by d.Chains, with names
// checked for validity and uniqueness.
func TextTools(d Deps) ([]chain.Tool, error) {
	catalog, err := Catalog(d.Completer)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	all := append(catalog, d.Chains...)
	seen := make(map[string]struct{}, len(all))
	for _, t := range all {
		if err := checkName(seen, t.Name()); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// Registry returns every tool definition wired for the agent: text tools
// first, then calculator, wikipedia and web_search.
func Registry(d Deps) ([]ToolDefinition, error) {
	text, err := TextTools(d)
	if err != nil {
		return nil, err
	}
	return RegistryWith(d, text)
}

// RegistryWith is Registry over text tools the caller already built with
// TextTools. The catalog is not rebuilt.
func RegistryWith(d Deps, text []chain.Tool) ([]ToolDefinition, error) {
	defs := make([]ToolDefinition, 0, len(text)+3)
	for _, t := range text {
		defs = append(defs, FromChain(t))
	}
	defs = append(defs,
		CalculatorDefinition,
		Wikipedia{Client: d.HTTPClient, BaseURL: d.WikipediaURL}.Definition(),
		WebSearch{Client: d.HTTPClient, BaseURL: d.SearchURL}.Definition(),
	)

	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if err := checkName(seen, def.Name); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func checkName(seen map[string]struct{}, name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid tool name %q: must match %s", name, validName)
	}
	if _, dup := seen[name]; dup {
		return fmt.Errorf("duplicate tool name %q", name)
	}
	seen[name] = struct{}{}
	return nil
}

// Find returns the text tool called name.
func Find(ts []chain.Tool, name string) (chain.Tool, bool) {
	for _, t := range ts {
		if t.Name() == name {
			return t, true
		}
	}
	return chain.Tool{}, false
}
