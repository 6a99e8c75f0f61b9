package domain

import "errors"

// Failure taxonomy shared by the loader and the analysis engine. Callers match
// with errors.Is; producers wrap with fmt.Errorf("...: %w", err).
var (
	// ErrDatasetLoad means the source could not be opened or read.
	ErrDatasetLoad = errors.New("dataset load failed")

	// ErrSchema means one or more required columns are missing.
	ErrSchema = errors.New("dataset schema invalid")

	// ErrEmptySeries means statistics were requested over zero observations.
	ErrEmptySeries = errors.New("series is empty")

	// ErrInsufficientData means a trend fit was requested with fewer than two points.
	ErrInsufficientData = errors.New("insufficient data for trend fit")

	// ErrDegenerateInput means every observation shares the same year, so the
	// slope is undefined.
	ErrDegenerateInput = errors.New("degenerate input: all time values identical")

	// ErrEmptyQuery means a forecast was requested for no years.
	ErrEmptyQuery = errors.New("no forecast years requested")

	// ErrMalformedModel means a trend model carries a non-finite coefficient.
	ErrMalformedModel = errors.New("malformed trend model")
)
