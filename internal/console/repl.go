package console

import (
	"bufio"
	"fmt"
	"io"
)

// Prompt is printed before each command line.
const Prompt = "> "

// RunLines reads commands from in, one per line, until exit/quit or end of
// input. It is used when stdin is not a terminal.
func RunLines(sh *Shell, in io.Reader, out io.Writer, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			_, _ = fmt.Fprint(out, Prompt)
		}
		if !scanner.Scan() {
			break
		}
		if sh.Exec(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}
