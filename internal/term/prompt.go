package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads line-oriented form input. Input is injectable so form
// flows can be driven from a script in tests.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a Prompter reading from in and echoing prompts
// to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prompts for a single line and returns it trimmed.
func (p *Prompter) Line(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

// LineDefault prompts with a default that is kept when the user enters
// nothing.
func (p *Prompter) LineDefault(label, def string) string {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	if !p.in.Scan() {
		return def
	}
	if s := strings.TrimSpace(p.in.Text()); s != "" {
		return s
	}
	return def
}

// Command prints the shell prompt verbatim and reads one command line.
// ok is false on end of input.
func (p *Prompter) Command(ps1 string) (line string, ok bool) {
	fmt.Fprint(p.out, ps1)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// Confirm asks a yes/no question; only "y" or "yes" count as yes.
func (p *Prompter) Confirm(label string) bool {
	answer := strings.ToLower(p.Line(label + " (y/n)"))
	return answer == "y" || answer == "yes"
}
