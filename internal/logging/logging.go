// Package logging configures zerolog for console diagnostics on stderr.
// Log lines never mix with result output: stdout is reserved for the
// rendered check result so it stays pipeable.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var root zerolog.Logger

func init() {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
		NoColor:    noColor(),
	}
	root = zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// noColor disables ANSI sequences when stderr is not a terminal or the
// user asked for plain output via NO_COLOR.
func noColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stderr.Fd()))
}

// Setup sets the global level: debug when verbose, warn otherwise.
func Setup(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// NewLogger returns a logger tagged with the originating component.
func NewLogger(component string) zerolog.Logger {
	return root.With().Str("component", component).Logger()
}
