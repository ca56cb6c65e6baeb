// Package log provides the single slog backend shared by every subsystem.
package log

import (
	"os"

	"github.com/decred/slog"
)

var backend = slog.NewBackend(os.Stdout)

// subLogger returns a leveled logger tagged with the given subsystem, set
// to Info by default the way the teacher's threads logged at INFO.
func subLogger(subsystem string) slog.Logger {
	l := backend.Logger(subsystem)
	l.SetLevel(slog.LevelInfo)
	return l
}

var (
	Chain = subLogger("CHAN")
	P2P   = subLogger("P2P ")
	Miner = subLogger("MINR")
	Node  = subLogger("NODE")
)
