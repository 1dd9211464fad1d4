package tools

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/chain-tools/chain"
)

// ChainFile is the YAML layout of a user-defined chain catalog:
//
//	chains:
//	  - name: shout-summary
//	    description: Summarise, then shout.
//	    steps:
//	      - template: "Summarise: {prompt}"
//	      - template: "Rewrite in capitals: {prompt}"
//	        temperature: 0.2
type ChainFile struct {
	Chains []ChainSpec `yaml:"chains"`
}

type ChainSpec struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Steps       []StepSpec `yaml:"steps"`
}

// StepSpec mirrors chain.Step; omitted fields take the chain defaults.
type StepSpec struct {
	Template    string   `yaml:"template"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// LoadChainFile reads chain specs from a YAML file. Unknown keys are
// rejected so typos fail loudly. An empty file yields no specs.
func LoadChainFile(path string) ([]ChainSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chain file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var cf ChainFile
	if err := dec.Decode(&cf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse chain file %s: %w", path, err)
	}
	return cf.Chains, nil
}

// BuildChains turns specs into chain tools backed by c.
func BuildChains(specs []ChainSpec, c chain.Completer) ([]chain.Tool, error) {
	out := make([]chain.Tool, 0, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("chain #%d: missing name", i+1)
		}
		steps := make([]chain.Step, len(s.Steps))
		for j, st := range s.Steps {
			steps[j] = chain.Step{Template: st.Template, Model: st.Model, Temperature: st.Temperature}
		}
		t, err := chain.NewChainTool(s.Name, s.Description, steps, c)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
