package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned when a content tree yields no posts at all.
var ErrEmptyIndex = errors.New("there are no entries in the content index")

// MalformedPostError means a content file could not be turned into a Post.
type MalformedPostError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedPostError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed post %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed post %s: %s", e.Path, e.Reason)
}

func (e *MalformedPostError) Unwrap() error {
	return e.Err
}

// SyncError means the working tree could not be brought up to date.
type SyncError struct {
	Remote string
	Dir    string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s into %s: %v", e.Remote, e.Dir, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// SignatureMismatchError rejects a webhook request.
type SignatureMismatchError struct {
	Reason string
}

func (e *SignatureMismatchError) Error() string {
	return "signature mismatch: " + e.Reason
}

// UnresolvedReferenceError means a derived cache referenced a path absent from the snapshot.
type UnresolvedReferenceError struct {
	Source string
	Ref    string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: could not resolve reference %q in the content index", e.Source, e.Ref)
}
