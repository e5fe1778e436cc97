package commands

import (
	"io"
	"os"

	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

// SinkFactory returns the report sink for an output format
type SinkFactory func(format string, w io.Writer) (export.Sink, error)

// Deps are shared by every command
type Deps struct {
	Registry cost.Registry
	Sinks    SinkFactory
	// Logs receives the process log, os.Stderr when nil
	Logs io.Writer
}

func (d Deps) logs() io.Writer {
	if d.Logs == nil {
		return os.Stderr
	}
	return d.Logs
}
