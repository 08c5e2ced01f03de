package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrMissingKeyColumn is matched by every *MissingKeyColumnError.
	ErrMissingKeyColumn = errors.New("missing key column")

	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("persistence failed")

	// ErrRowLimit is matched by every *RowLimitError.
	ErrRowLimit = errors.New("row limit exceeded")

	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.New("invalid run transition")
)

// ConfigurationError reports an unusable run configuration, such as an empty
// join mapping or a table without columns.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %s", e.Message)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

// Is implements errors.Is.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// MissingKeyColumnError lists key columns that a table does not expose.
// Missing holds the names as they appear in that table, i.e. after key
// mappings were applied for the target side.
type MissingKeyColumnError struct {
	Side    string
	Missing []string
}

func (e *MissingKeyColumnError) Error() string {
	side := e.Side
	if side == "" {
		side = SideTarget
	}
	return fmt.Sprintf("key columns not found in %s table: %s", side, strings.Join(e.Missing, ", "))
}

// Is implements errors.Is.
func (e *MissingKeyColumnError) Is(target error) bool {
	return target == ErrMissingKeyColumn
}

// DegradedKeyResolutionWarning is attached to a KeyResolution when the key
// columns were guessed rather than declared. It is never returned as an error.
type DegradedKeyResolutionWarning struct {
	Strategy KeyStrategy
	Columns  []string
}

func (w *DegradedKeyResolutionWarning) Error() string {
	switch w.Strategy {
	case KeyStrategyHeuristic:
		return fmt.Sprintf("no primary key declared, using heuristic key column %s", strings.Join(w.Columns, ", "))
	default:
		return "no primary key could be determined, every column is used as the record key"
	}
}

// PersistenceError wraps a storage failure while saving a run and its results.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

// Is implements errors.Is.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// RowLimitError is returned when a side holds more rows than the configured
// in-memory bound.
type RowLimitError struct {
	Side  string
	Rows  int64
	Limit int
}

func (e *RowLimitError) Error() string {
	return fmt.Sprintf("%s table has %d rows, limit is %d", e.Side, e.Rows, e.Limit)
}

// Is implements errors.Is.
func (e *RowLimitError) Is(target error) bool {
	return target == ErrRowLimit
}

// TransitionError reports an illegal run status change.
type TransitionError struct {
	From RunStatus
	To   RunStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move run from %s to %s", e.From, e.To)
}

// Is implements errors.Is.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// IsClientError reports whether err was caused by the caller's input rather
// than by a data source or the store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrMissingKeyColumn) || errors.Is(err, ErrRowLimit)
}
