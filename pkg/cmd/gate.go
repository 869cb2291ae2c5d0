package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yami-cli/yami/pkg/errcode"
)

// gate guards destructive operations. --force proceeds unconditionally,
// a non-terminal stdin aborts without reading (an agent must never hang
// on an invisible prompt), otherwise the user is asked and anything but
// an explicit yes aborts.
type gate struct {
	force       bool
	interactive bool
	in          io.Reader
	out         io.Writer
}

func (g *gate) confirm(question string) error {
	if g.force {
		return nil
	}
	if !g.interactive {
		return errcode.ErrAborted
	}

	fmt.Fprintf(g.out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(g.in).ReadString('\n')
	if err != nil && line == "" {
		return errcode.ErrAborted
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return errcode.ErrAborted
	}
}

// interactiveStdin reports whether confirmation prompts can be
// answered: stdin must be an actual terminal, not a pipe or file.
func interactiveStdin(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
