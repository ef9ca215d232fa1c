package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

const separator = "[ ------ ]"

var titleColors = map[string]text.Colors{
	"Name":   {text.FgYellow},
	"App ID": {text.FgYellow},
	"F-Name": {text.FgYellow},
	"Status": {text.FgGreen},
	"Done":   {text.FgGreen},
	"Error":  {text.FgRed},
	"Alert":  {text.FgRed},
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer writes status lines.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer for w, with colours when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w)}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Message prints "[ Title  ] - text". Titles shorter than six characters
// are padded so the dashes line up.
func (p *Printer) Message(title interface{}, msg interface{}) {
	label := fmt.Sprintf("%-6v", title)
	if p.color {
		if c, ok := titleColors[fmt.Sprint(title)]; ok {
			label = c.Sprint(label)
		}
	}
	fmt.Fprintf(p.w, "[ %s ] - %v\n", label, msg)
}

// Separator prints the line that starts a new block.
func (p *Printer) Separator() {
	fmt.Fprintln(p.w, separator)
}

// Info starts a block for one app or server. appID 0 is omitted.
func (p *Printer) Info(name string, appID int) {
	p.Separator()
	p.Message("Name", name)
	if appID != 0 {
		p.Message("App ID", appID)
	}
}

// Status prints a Status line.
func (p *Printer) Status(format string, args ...interface{}) {
	p.Message("Status", fmt.Sprintf(format, args...))
}

// Error prints an Error line.
func (p *Printer) Error(format string, args ...interface{}) {
	p.Message("Error", fmt.Sprintf(format, args...))
}

// Message prints one status line to w.
func Message(w io.Writer, title interface{}, msg interface{}) {
	NewPrinter(w).Message(title, msg)
}

// Separator prints the block separator to w.
func Separator(w io.Writer) {
	fmt.Fprintln(w, separator)
}

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("[ %-6s ] - %v", "Error", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("[ %-6s ] - %s", "Done", msg)
}
