package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a report request that cannot be served at all
var ErrInvalidRequest = errors.New("invalid report request")

// NormalizationError rejects a raw row set whose shape would corrupt the series
type NormalizationError struct {
	RowIndex int
	Reason   string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization failed at row %d: %s", e.RowIndex, e.Reason)
}

// SourceUnavailableError wraps a failed fetch from a cost record source
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a SourceUnavailableError unless it already is one
func Unavailable(source string, err error) error {
	if err == nil {
		return nil
	}
	var su *SourceUnavailableError
	if errors.As(err, &su) {
		return err
	}
	return &SourceUnavailableError{Source: source, Err: err}
}
