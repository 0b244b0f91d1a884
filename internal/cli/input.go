package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func prompt(sc *bufio.Scanner, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

// promptPassword reads without echo when stdin is a terminal and falls back
// to the line scanner otherwise.
func promptPassword(sc *bufio.Scanner, out io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return prompt(sc, out, label)
	}
	fmt.Fprint(out, label)
	pw, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
