// Package confirm implements the safety interlock in front of mutating
// operations. Without the force flag the gate asks a Prompter, and anything
// short of an explicit yes aborts.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Gate decides whether a mutating operation may proceed.
type Gate struct {
	prompter Prompter
}

// NewGate returns a gate asking p. A nil p aborts every unforced operation.
func NewGate(p Prompter) *Gate {
	return &Gate{prompter: p}
}

// Check reports whether operation may run against target. force proceeds
// without asking. An aborted check returns false and no error.
func (g *Gate) Check(ctx context.Context, operation, target string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if g == nil || g.prompter == nil {
		return false, nil
	}
	ok, err := g.prompter.Confirm(ctx, fmt.Sprintf("Perform %s on %s?", operation, target))
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return ok, nil
}

// Never is a Prompter for unattended runs; it always declines.
type Never struct{}

func (Never) Confirm(context.Context, string) (bool, error) { return false, nil }

// LinePrompter reads a y/N answer from a line-oriented reader. Confirm
// returns as soon as ctx is done; a read still in flight then answers the
// next question.
type LinePrompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	mu      sync.Mutex
	pending chan answer
}

type answer struct {
	line string
	err  error
}

// NewLinePrompter prompts on out and reads answers from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, interactive: true}
}

// NewTerminalPrompter prompts on out and reads from in only when in is a
// terminal; piped or redirected input declines without reading.
func NewTerminalPrompter(in *os.File, out io.Writer) *LinePrompter {
	p := NewLinePrompter(in, out)
	fi, err := in.Stat()
	p.interactive = err == nil && fi.Mode()&os.ModeCharDevice != 0
	return p
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if !p.interactive {
		return false, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", question); err != nil {
		return false, err
	}

	var a answer
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a = <-p.readLine():
		p.pending = nil
	}
	if a.err != nil && (!errors.Is(a.err, io.EOF) || a.line == "") {
		return false, a.err
	}
	switch strings.ToLower(strings.TrimSpace(a.line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// readLine starts a line read unless one is already in flight. Callers hold mu.
func (p *LinePrompter) readLine() <-chan answer {
	if p.pending == nil {
		ch := make(chan answer, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- answer{line: line, err: err}
		}()
	}
	return p.pending
}
