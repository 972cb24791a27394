package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat indicates no registered reader accepts the source.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrEmptyDataset indicates the source has no header row.
	ErrEmptyDataset = errors.New("dataset has no header row")
)

// LoadError is returned by Load when a dataset cannot be read or parsed.
// It is fatal to session start: no partial snapshot is ever returned.
type LoadError struct {
	Src string
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "dataset load failed"
	}
	return fmt.Sprintf("load dataset %s: %s: %v", e.Src, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
