package models

import (
	"errors"
	"fmt"
)

// ErrFileTooLarge marks a file skipped because it exceeds the configured
// size ceiling. Size-limit errors are reported per file and are never fatal.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ErrUnreachable marks a whole-operation failure: the extraction service
// could not be reached at all. Prior annotations and cache entries must be
// left untouched when this occurs.
var ErrUnreachable = errors.New("extraction service unreachable")

// FileError is a per-file failure collected during a workspace scan or
// extraction batch. A FileError never aborts the batch that produced it.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewSizeLimitError reports a file skipped for exceeding the byte ceiling.
func NewSizeLimitError(path string, size, limit int64) *FileError {
	return &FileError{
		Path: path,
		Err:  fmt.Errorf("%w: %d bytes > %d byte limit", ErrFileTooLarge, size, limit),
	}
}

// IsSizeLimit reports whether err is a size-limit error.
func IsSizeLimit(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

// FileContent is one (file identity, content) pair produced by a workspace
// scan. Files that failed to read appear in the scan's error list instead.
type FileContent struct {
	Path    DocKey
	Content string
}

// ScanResult is the outcome of one batched workspace scan: the files that
// were read plus the per-file errors that did not abort the scan.
type ScanResult struct {
	Files  []FileContent
	Errors []*FileError
}

// SizeLimitErrors returns only the size-limit entries from the error list.
func (r *ScanResult) SizeLimitErrors() []*FileError {
	var out []*FileError
	for _, e := range r.Errors {
		if IsSizeLimit(e) {
			out = append(out, e)
		}
	}
	return out
}
