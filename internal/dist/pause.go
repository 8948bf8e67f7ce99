package dist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PauseIfInteractive blocks until the operator presses Enter, but only
// when stdout is a terminal and pausing was not disabled by flag.
//
// The pause exists for double-click launches on Windows: the console
// window closes with the process, so without it a failure diagnostic
// vanishes before anyone can read it. Piped and CI invocations are not
// terminals and never pause.
func PauseIfInteractive(noPause bool) {
	if noPause || !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	WaitForEnter(os.Stdout, os.Stdin)
}

// WaitForEnter prints the pause prompt and blocks until a full line is
// read from r. Split out from PauseIfInteractive so tests can drive it
// with buffers.
func WaitForEnter(w io.Writer, r io.Reader) {
	fmt.Fprint(w, "\nPress Enter to exit...")
	_, _ = bufio.NewReader(r).ReadString('\n')
}
