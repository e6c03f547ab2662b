package nodes

import "github.com/someahole/nodes/internal/tracelog"

// Logger receives trace events for node lifecycle operations. See
// WithLogger.
type Logger = tracelog.Logger

// NewStdoutLogger returns a Logger that writes Debug-and-above trace lines
// to stdout, for ad-hoc debugging of a graph's compute/invalidate/overlay
// traffic.
func NewStdoutLogger() Logger { return tracelog.Stdout() }

type noopLogger = tracelog.Noop
