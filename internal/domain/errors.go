package domain

import (
	"errors"
	"fmt"

	m "srcverify.dev/pkg/srcverify/internal/model"
)

var (
	// ErrNotFound classifies resolutions where no candidate path exists on disk.
	ErrNotFound = errors.New("source file not found")
	// ErrRead classifies read or decode failures of an existing candidate.
	ErrRead = errors.New("source file unreadable")
	// ErrChecksumMismatch classifies content whose digest differs from the record.
	ErrChecksumMismatch = errors.New("source checksum mismatch")
	// ErrNotReproducible is returned by strict verification runs that found
	// mismatched or missing sources.
	ErrNotReproducible = errors.New("artifact sources are not reproducible")
)

// NotFoundError names the path that was attempted last.
type NotFoundError struct {
	Path m.Path
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Path)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ReadError wraps a failure to read or decode an existing candidate.
type ReadError struct {
	Path m.Path
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRead, e.Path, e.Err)
}

// Is makes errors.Is(err, ErrRead) hold.
func (e *ReadError) Is(target error) bool {
	return target == ErrRead
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ChecksumMismatchError is returned under the fail-fast policy.
type ChecksumMismatchError struct {
	Path     m.Path
	Expected []byte
	Actual   []byte
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s: %s: expected %x, got %x", ErrChecksumMismatch, e.Path, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrChecksumMismatch) hold.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// StatusForError maps a resolution error to its terminal status.
func StatusForError(err error) m.Status {
	switch {
	case errors.Is(err, ErrNotFound):
		return m.NotFound
	case errors.Is(err, ErrChecksumMismatch):
		return m.Mismatched
	}

	return m.ReadError
}
