package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/chain-tools/chain"
	"github.com/petasbytes/chain-tools/tools"
)

func runCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "run <tool> <input>...",
		Short: "Invoke one tool directly on each input",
		Long: `Invoke one tool on every input without going through the agent.
Inputs run concurrently (bounded by --parallel) and results print in input order.`,
		Example: `  agent run uppercase-tool "hello there"
  agent run cool-function "the weather" "my cat"
  agent run calculator "2 ^ 10"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.cfg.MaxConcurrency
			}
			results, err := chain.InvokeAll(cmd.Context(), t, args[1:], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range results {
				if len(results) > 1 {
					fmt.Fprintf(out, "[%d] ", i+1)
				}
				fmt.Fprintln(out, r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "parallel", "p", 0, "Inputs in flight at once (default AGENT_MAX_CONCURRENCY)")
	return cmd
}

// lookup prefers text tools and falls back to single-field registry tools.
func (a *app) lookup(name string) (chain.Tool, error) {
	if t, ok := tools.Find(a.text, name); ok {
		return t, nil
	}
	for _, d := range a.defs {
		if d.Name == name {
			return tools.AsText(d)
		}
	}
	return chain.Tool{}, fmt.Errorf("unknown tool %q; see 'agent tools'", name)
}
