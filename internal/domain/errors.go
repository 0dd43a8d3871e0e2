package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFetch               = errors.New("failed to fetch proxy page")
	ErrTableNotFound       = errors.New("proxy table not found")
	ErrMalformedTable      = errors.New("malformed proxy table")
	ErrEmptyProxyList      = errors.New("proxy list is empty")
	ErrInsufficientProxies = errors.New("not enough proxies for sample")
	ErrInvalidSampleSize   = errors.New("sample size must not be negative")
	ErrInvalidInterval     = errors.New("sticky interval must be a positive integer")
)

// Population stages
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageParse   = "parse"
)

// PopulationError represents a failure while building the proxy list
type PopulationError struct {
	Stage   string // The stage where the error occurred
	Message string // Human-readable error message
	Err     error  // Original error
}

func (e *PopulationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *PopulationError) Unwrap() error {
	return e.Err
}

func NewPopulationError(stage, message string, err error) error {
	return &PopulationError{
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// ErrorType maps an error to a short label for metrics.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrTableNotFound):
		return "table_not_found"
	case errors.Is(err, ErrMalformedTable):
		return "malformed_table"
	case errors.Is(err, ErrEmptyProxyList):
		return "empty_list"
	case errors.Is(err, ErrInsufficientProxies):
		return "insufficient"
	case errors.Is(err, ErrInvalidSampleSize):
		return "invalid_sample_size"
	case errors.Is(err, ErrInvalidInterval):
		return "invalid_interval"
	default:
		return "other"
	}
}
