package safety

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks a human to approve a destructive operation on host
type Confirmer interface {
	Confirm(ctx context.Context, host string) (bool, error)
}

// TerminalConfirmer prompts on Out and reads one line from In
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints the warning and returns true only when the typed line equals host
func (c TerminalConfirmer) Confirm(ctx context.Context, host string) (bool, error) {
	fmt.Fprintln(c.Out, "WARNING: this will permanently delete seeded test data from:")
	fmt.Fprintf(c.Out, "    %s\n", host)
	fmt.Fprint(c.Out, "Type the hostname above to continue: ")

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(c.In).ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.err != nil && r.err != io.EOF {
			return false, r.err
		}
		return strings.TrimSpace(r.line) == host, nil
	}
}

// StaticConfirmer answers every prompt the same way. Used by tests and by
// callers that already obtained consent elsewhere.
type StaticConfirmer struct {
	Answer bool
	Asked  int
}

// Confirm returns the fixed answer
func (c *StaticConfirmer) Confirm(context.Context, string) (bool, error) {
	c.Asked++
	return c.Answer, nil
}
