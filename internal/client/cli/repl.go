package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// executor is the minimal surface the prompt needs. App satisfies it; tests
// provide a stub.
type executor interface {
	Exec(ctx context.Context, cmd string, args []string) error
}

// runREPL reads commands line by line and dispatches them to a. Errors are
// printed and the loop continues. It exits on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a executor, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprint(out, "sv> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		}

		if err := a.Exec(ctx, parts[0], parts[1:]); err != nil {
			fmt.Fprintln(out, "error:", describe(err))
		}

		if ctx.Err() != nil {
			return
		}
	}
}
