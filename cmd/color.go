package cmd

import (
	"os"
	"strings"

	"golang.org/x/term"
)

type colorMode int

const (
	colorOff colorMode = iota
	colorOn
)

// resolveColor determines whether to emit ANSI color codes.
// Priority: NPCPATH_COLOR env > NO_COLOR env > auto-detect stderr TTY.
func resolveColor() colorMode {
	if v := os.Getenv("NPCPATH_COLOR"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return colorOn
		case "0", "false", "no", "off":
			return colorOff
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return colorOff
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return colorOn
	}
	return colorOff
}

func red(s string, c colorMode) string {
	if c == colorOn {
		return "\033[31m" + s + "\033[0m"
	}
	return s
}

func green(s string, c colorMode) string {
	if c == colorOn {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

func yellow(s string, c colorMode) string {
	if c == colorOn {
		return "\033[33m" + s + "\033[0m"
	}
	return s
}
