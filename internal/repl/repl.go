// Package repl reads one line per turn, hands it to the agent and prints the
// reply.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/petasbytes/chain-tools/internal/runner"
)

// Prompt is printed before every line is read.
const Prompt = "Enter input: "

// Executor runs one agent turn.
type Executor interface {
	Run(ctx context.Context, input string) (runner.Turn, error)
}

// Renderer turns a reply into terminal output.
type Renderer func(reply string) (string, error)

// MarkdownRenderer renders replies with glamour at the given wrap width.
func MarkdownRenderer(width int) (Renderer, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render, nil
}

var (
	colorPrompt = color.New(color.FgHiBlue)
	colorAgent  = color.New(color.FgHiYellow)
	colorTool   = color.New(color.Faint)
	colorError  = color.New(color.FgRed)
)

type REPL struct {
	exec   Executor
	in     io.Reader
	out    io.Writer
	render Renderer
	// ShowTools prints the tools called during a turn.
	ShowTools bool
}

// New returns a REPL reading from in and writing to out. render may be nil.
func New(exec Executor, in io.Reader, out io.Writer, render Renderer) *REPL {
	return &REPL{exec: exec, in: in, out: out, render: render}
}

// Loop runs until input ends, ctx is cancelled or a turn fails with an error
// runner.IsFatal rejects; only the last case returns a non-nil error, and it
// is left to the caller to report. Other turn errors are printed and the loop
// continues. Blank lines are skipped.
func (r *REPL) Loop(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	// stdin reader goroutine -> lines into channel
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		colorPrompt.Fprint(r.out, Prompt)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(r.out)
			if err := <-readErr; err != nil {
				log.Warn().Err(err).Msg("stdin read error")
			}
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		turn, err := r.exec.Run(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(r.out)
				return nil
			}
			if runner.IsFatal(err) {
				return err
			}
			colorError.Fprintf(r.out, "error: %v\n", err)
			log.Debug().Err(err).Str("turn_id", turn.ID).Msg("turn failed; continuing")
			continue
		}
		r.printTurn(turn)
	}
}

func (r *REPL) printTurn(turn runner.Turn) {
	if r.ShowTools {
		for _, c := range turn.ToolCalls {
			status := "ok"
			if c.IsError {
				status = "error"
			}
			colorTool.Fprintf(r.out, "  └ %s (%s)\n", c.Name, status)
		}
	}
	reply := turn.Reply
	if r.render != nil {
		if rendered, err := r.render(reply); err == nil {
			reply = strings.TrimRight(rendered, "\n")
		}
	}
	colorAgent.Fprint(r.out, "Agent")
	fmt.Fprintf(r.out, ": %s\n", reply)
}
