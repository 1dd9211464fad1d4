package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petasbytes/chain-tools/chain"
	"github.com/petasbytes/chain-tools/internal/config"
	"github.com/petasbytes/chain-tools/internal/logging"
	"github.com/petasbytes/chain-tools/internal/provider"
	"github.com/petasbytes/chain-tools/internal/repl"
	"github.com/petasbytes/chain-tools/internal/runner"
	"github.com/petasbytes/chain-tools/tools"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg       *config.Config
	client    *anthropic.Client
	completer chain.Completer
	text      []chain.Tool
	defs      []tools.ToolDefinition
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		a     app
		flags struct {
			model     string
			temp      float64
			maxSteps  int
			chains    string
			markdown  bool
			logLevel  string
			showTools bool
		}
	)

	root := &cobra.Command{
		Use:   "agent",
		Short: "Chat with a tool-calling agent built from prompt chains",
		Long: `agent starts a line-oriented chat with an Anthropic model that can call
prompt-chain tools, a calculator, Wikipedia and web search.

Configuration comes from the environment (and .env); flags override it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("model") {
				cfg.Model = flags.model
			}
			if f.Changed("temperature") {
				cfg.Temperature = flags.temp
			}
			if f.Changed("max-steps") {
				cfg.MaxSteps = flags.maxSteps
			}
			if f.Changed("chains") {
				cfg.ChainsFile = flags.chains
			}
			if f.Changed("markdown") {
				cfg.RenderMarkdown = flags.markdown
			}
			if f.Changed("log-level") {
				cfg.LogLevel = flags.logLevel
			}
			if err := cfg.Validate(); err != nil {
				// Listing tools never calls the model.
				if !(errors.Is(err, config.ErrMissingAPIKey) && cmd.Name() == "tools") {
					return err
				}
			}

			logger := logging.New(os.Stderr, cfg.LogLevel)
			zerolog.DefaultContextLogger = &logger
			cmd.SetContext(logger.WithContext(cmd.Context()))

			return a.wire(cmd.Context(), cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.chat(cmd, flags.showTools)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.model, "model", config.DefaultModel, "Agent model")
	pf.Float64Var(&flags.temp, "temperature", config.DefaultTemperature, "Agent sampling temperature in [0, 1]")
	pf.IntVar(&flags.maxSteps, "max-steps", config.DefaultMaxSteps, "Model requests allowed per turn")
	pf.StringVarP(&flags.chains, "chains", "c", "", "YAML file with extra chain tools")
	pf.BoolVar(&flags.markdown, "markdown", false, "Render replies as markdown")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	root.Flags().BoolVar(&flags.showTools, "show-tools", false, "Print the tools called in each turn")

	root.AddCommand(toolsCmd(&a), runCmd(&a))
	return root
}

// wire builds the model client and the tool registry from cfg.
func (a *app) wire(ctx context.Context, cfg *config.Config) error {
	a.cfg = cfg
	a.client = provider.NewAnthropicClient(cfg.APIKey, cfg.BaseURL)
	a.completer = provider.Limit(provider.NewCompleter(a.client, cfg.MaxTokens), cfg.MaxConcurrency)

	var extra []chain.Tool
	if cfg.ChainsFile != "" {
		specs, err := tools.LoadChainFile(cfg.ChainsFile)
		if err != nil {
			return err
		}
		if extra, err = tools.BuildChains(specs, a.completer); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().Str("file", cfg.ChainsFile).Int("chains", len(extra)).Msg("loaded chain file")
	}

	deps := tools.Deps{
		Completer:  a.completer,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Chains:     extra,
	}
	var err error
	if a.text, err = tools.TextTools(deps); err != nil {
		return err
	}
	if a.defs, err = tools.RegistryWith(deps, a.text); err != nil {
		return err
	}
	return nil
}

func (a *app) chat(cmd *cobra.Command, showTools bool) error {
	exec := runner.New(a.client, a.defs, runner.Config{
		Model:       anthropic.Model(a.cfg.Model),
		Temperature: a.cfg.Temperature,
		Name:        a.cfg.Name,
		Date:        a.cfg.Date,
		MaxTokens:   int64(a.cfg.MaxTokens),
		MaxSteps:    a.cfg.MaxSteps,
	})

	var render repl.Renderer
	if a.cfg.RenderMarkdown {
		r, err := repl.MarkdownRenderer(100)
		if err != nil {
			return err
		}
		render = r
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Chat with %s (Ctrl-C to quit)\n", a.cfg.Name)
	r := repl.New(exec, cmd.InOrStdin(), out, render)
	r.ShowTools = showTools
	return r.Loop(cmd.Context())
}
