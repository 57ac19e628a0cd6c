package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// setupLogging builds the zerolog logger carried through every command's
// context. Debug runs get a console writer on stderr; normal runs stay at
// warn so the pterm output is the only thing the operator sees.
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(level)

	return logger.WithContext(ctx)
}
