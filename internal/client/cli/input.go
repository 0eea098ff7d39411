package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSecret prints prompt to w and reads a line from the terminal without
// echo. A newline is printed after the read to keep the UI tidy.
func GetSecret(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// PromptToken asks for the API token when none is configured and stdin is
// a terminal. It returns current unchanged otherwise.
func PromptToken(w io.Writer, current string) (string, error) {
	if current != "" || !isTerminal(int(os.Stdin.Fd())) {
		return current, nil
	}
	return GetSecret(w, "API token (empty to skip)")
}
