package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"abxsurvey/internal/preflight"
)

type checkState int

const (
	checkOK checkState = iota
	checkWarn
	checkFailed
)

var checkStyles = map[checkState]struct {
	tag   string
	color text.Color
}{
	checkOK:     {"OK", text.FgGreen},
	checkWarn:   {"WARN", text.FgYellow},
	checkFailed: {"ERROR", text.FgRed},
}

// checkLine renders "  Label:   [TAG] detail" with the tag colored when
// colorize is set.
func checkLine(label string, state checkState, detail string, colorize bool) string {
	style := checkStyles[state]
	tag := "[" + style.tag + "]"
	if colorize {
		tag = style.color.Sprint(tag)
	}
	line := fmt.Sprintf("  %-20s %s", label+":", tag)
	if detail != "" {
		line += " " + detail
	}
	return line
}

func printHeading(out io.Writer, title string, colorize bool) {
	title = strings.TrimSpace(title)
	if colorize {
		fmt.Fprintln(out, text.Colors{text.Bold, text.FgCyan}.Sprint(title))
		return
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, strings.Repeat("-", len(title)))
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		state := checkOK
		if !r.Passed {
			state = checkFailed
		}
		lines = append(lines, checkLine(r.Name, state, r.Detail, colorize))
	}
	return lines
}

// isTerminal reports whether v is an *os.File attached to a terminal. Both
// color output and confirmation prompts key off it.
func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
