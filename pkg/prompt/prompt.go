// Copyright (c) 2025 The FileSplitter developers

package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Console asks yes/no questions on a line-oriented stream.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool
}

// NewConsole creates a Console reading answers from in and writing questions
// to out. With assumeYes every question is answered yes without reading.
func NewConsole(in io.Reader, out io.Writer, assumeYes bool) *Console {
	return &Console{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

// Stdio returns a Console bound to the process's standard streams.
func Stdio(assumeYes bool) *Console {
	c := NewConsole(os.Stdin, os.Stdout, assumeYes)
	fd := os.Stdin.Fd()
	c.interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return c
}

// Interactive reports whether answers come from a terminal.
func (c *Console) Interactive() bool {
	return c.interactive
}

// Confirm prints the question and waits for an answer. End of input counts as
// no.
func (c *Console) Confirm(question string) bool {
	if c.assumeYes {
		fmt.Fprintf(c.out, "%s (y/n) yes\n", question)
		return true
	}

	fmt.Fprintf(c.out, "%s (y/n) ", question)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	if !c.interactive {
		fmt.Fprintln(c.out, strings.TrimSpace(line))
	}
	return ParseAnswer(line)
}

// ParseAnswer reports whether s is an affirmative answer.
func ParseAnswer(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return true
	}
	return false
}
