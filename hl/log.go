package hl

import "github.com/rs/zerolog"

// logger is silent unless the embedding application installs one. The
// package never configures an output sink on its own.
var logger = zerolog.Nop()

// SetLogger installs a logger for the package. Pass zerolog.Nop() to silence
// it again.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// SetDebugLevel adjusts the verbosity of the installed logger. Write and
// Update emit one debug event per node at zerolog.DebugLevel.
func SetDebugLevel(level zerolog.Level) {
	logger = logger.Level(level)
}
