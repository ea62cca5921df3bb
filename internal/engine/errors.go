package engine

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrConfig            = errors.New("configuration error")
	ErrDestinationExists = errors.New("destination exists")
	ErrDirectoryCreate   = errors.New("directory creation failed")
	ErrSourceRead        = errors.New("source read failed")
	ErrDestinationWrite  = errors.New("destination write failed")
	ErrDestinationRead   = errors.New("destination read failed")
	ErrTransferIntegrity = errors.New("transfer integrity check failed")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrSourceDelete      = errors.New("source delete failed")
)

// Error carries the kind of failure plus the phase (Op) and file it
// happened on.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s %s", e.Kind, e.Op, e.Path)
	}
	return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func newError(kind error, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// MismatchError reports differing source and destination digests.
type MismatchError struct {
	Path      string
	Algorithm string
	SrcDigest string
	DstDigest string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s %s: source %s, destination %s",
		ErrChecksumMismatch, e.Algorithm, e.Path, e.SrcDigest, e.DstDigest)
}

// Is matches ErrChecksumMismatch.
func (e *MismatchError) Is(target error) bool { return target == ErrChecksumMismatch }

var (
	_ error = &Error{}
	_ error = &MismatchError{}
)
