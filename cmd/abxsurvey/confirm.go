package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// confirm prints prompt and reads a yes/no answer. End of input counts as no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if !isTerminal(in) {
		fmt.Fprintln(out, "Standard input is not a terminal; pass --yes to skip this prompt.")
	}
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Fprintln(out)
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
