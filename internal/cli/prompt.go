package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// ErrAborted is returned when the user interrupts a prompt or input ends.
var ErrAborted = errors.New("aborted")

// Prompter asks the user questions.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	reader      *bufio.Reader
}

// NewPrompter reads answers from in and writes prompts to out. readline
// is used when both are terminals.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:          in,
		out:         out,
		interactive: IsTerminal(in) && IsTerminal(out),
		reader:      bufio.NewReader(in),
	}
}

// Line shows prompt and returns the trimmed answer.
func (p *Prompter) Line(prompt string) (string, error) {
	if p.interactive {
		return p.readline(prompt)
	}

	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) readline(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		Stdin:           io.NopCloser(p.in),
		Stdout:          p.out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err == readline.ErrInterrupt || err == io.EOF {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(statusPrompt(question + " [y/N]: "))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Select lists options numbered from 1 and returns the chosen index.
// Invalid answers are reported and the question is asked again.
func (p *Prompter) Select(printer *Printer, title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("nothing to choose from")
	}
	for {
		printer.Status("%s", title)
		for i, o := range options {
			printer.Message(i+1, o)
		}

		answer, err := p.Line(statusPrompt("Choose one: "))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		printer.Error("Invalid selection")
		printer.Separator()
	}
}

func statusPrompt(question string) string {
	return fmt.Sprintf("[ %-6s ] - %s", "Status", question)
}
