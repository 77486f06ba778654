package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes UI components to a writer.
// Commands print everything through one Printer so tests can capture it.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(h *Header) {
	p.Println(h.SetWidth(p.width).Render())
}

// PrintResult prints a result box
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// Success prints a one-line success message
func (p *Printer) Success(format string, args ...any) {
	p.Println(SuccessTitleStyle.Render(SuccessMarker) + " " + fmt.Sprintf(format, args...))
}

// Failure prints a one-line error message
func (p *Printer) Failure(format string, args ...any) {
	p.Println(ErrorMessageStyle.Render(FailureMarker + " " + fmt.Sprintf(format, args...)))
}

// Warning prints a one-line warning
func (p *Printer) Warning(format string, args ...any) {
	p.Println(WarningMessageStyle.Render(WarningMarker + " " + fmt.Sprintf(format, args...)))
}
