package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func toolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the agent can call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			for _, d := range a.defs {
				bold.Fprint(out, d.Name)
				fmt.Fprintf(out, "\n  %s\n", d.Description)
			}
			return nil
		},
	}
}
