package domain

import "fmt"

// ScopeError reports that the set of files (or tags) to analyze could not be
// enumerated. It aborts the whole run.
type ScopeError struct {
	Op  string
	Err error
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("failed to resolve scope (%s): %v", e.Op, e.Err)
}

func (e *ScopeError) Unwrap() error { return e.Err }

// AttributionError reports a failed blame of one file. The file is skipped.
type AttributionError struct {
	Path string
	Err  error
}

func (e *AttributionError) Error() string {
	return fmt.Sprintf("failed to attribute %s: %v", e.Path, e.Err)
}

func (e *AttributionError) Unwrap() error { return e.Err }

// LedgerError reports that commit history could not be read. Only the commit
// counts are lost; LOC and files are still valid.
type LedgerError struct {
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("failed to read commit history: %v", e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// ClockError reports that the current time could not be determined. Only the
// temporal views are affected.
type ClockError struct {
	Err error
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("clock error: %v", e.Err)
}

func (e *ClockError) Unwrap() error { return e.Err }
