package quadbatch

import (
	"fmt"
	"log/slog"
	"time"
)

// globalDebug enables expansion stats logging and extra diagnostics.
// Written only from the update thread.
var globalDebug bool

// SetDebug turns debug diagnostics on or off. Output goes through Logger at
// Debug and Warn levels.
func SetDebug(on bool) {
	globalDebug = on
}

// MeshStats holds per-mesh expansion counters. Populated only in debug mode
// except for the counters the expander always tracks.
type MeshStats struct {
	ExpandStats
	BulkEdits    int
	LastBulkTime time.Duration
}

// debugLogPass logs one bulk edit when debug mode is on.
func debugLogPass(kind string, op string, area Rect, quads int, elapsed time.Duration) {
	if !globalDebug {
		return
	}
	Logger().Debug("quadbatch: bulk edit",
		slog.String("mesh", kind),
		slog.String("op", op),
		slog.Int("x", area.X), slog.Int("y", area.Y),
		slog.Int("w", area.Width), slog.Int("h", area.Height),
		slog.Int("quads", quads),
		slog.Duration("elapsed", elapsed))
}

// debugWarnNoop reports a bulk edit that was clipped to nothing.
func debugWarnNoop(kind, op string, requested Rect) {
	if !globalDebug {
		return
	}
	Logger().Warn("quadbatch: bulk edit clipped to empty region",
		slog.String("mesh", kind),
		slog.String("op", op),
		slog.Int("x", requested.X), slog.Int("y", requested.Y),
		slog.Int("w", requested.Width), slog.Int("h", requested.Height))
}

// checkDestroyed panics with a descriptive message when a destroyed mesh is
// edited. Editing after Destroy is a programmer error.
func checkDestroyed(destroyed bool, kind, op string) {
	if destroyed {
		panic(fmt.Sprintf("quadbatch: %s on destroyed %s", op, kind))
	}
}

// checkIndex panics when i is outside the fixed entity arena.
func checkIndex(i, n int, kind string) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("quadbatch: %s index %d out of range [0,%d)", kind, i, n))
	}
}
