package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/de-tools/cost-atlas/pkg/models/api"
)

// JSONReporter writes the report as indented JSON
type JSONReporter struct {
	writer io.Writer
}

func NewJSONReporter(writer io.Writer) *JSONReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONReporter{writer: writer}
}

func (j *JSONReporter) Handle(_ context.Context, report *api.Report) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Multi fans a report out to every sink and stops at the first failure
type Multi []Sink

func (m Multi) Handle(ctx context.Context, report *api.Report) error {
	for _, s := range m {
		if err := s.Handle(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
