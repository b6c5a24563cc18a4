package hl

import "errors"

// Construction-time errors. These are local and recoverable: fix the input
// and call again.
var (
	ErrUnrecognizedFormat       = errors.New("unrecognized format")
	ErrInvalidShape             = errors.New("invalid shape")
	ErrMissingCompoundType      = errors.New("missing compound type")
	ErrInvalidCompressionParams = errors.New("invalid compression parameters")
	ErrInvalidLayout            = errors.New("invalid compound layout")
	ErrSizeUndetermined         = errors.New("size cannot be determined from the format alone")
	ErrDuplicateNode            = errors.New("duplicate node path")
)

// Persistence-time errors. These carry the offending node name as wrapped
// context; the traversal halts on the first failure.
var (
	ErrParentNotFound    = errors.New("parent node not found")
	ErrTypeCommitFailed  = errors.New("type commit failed")
	ErrStoreCreateFailed = errors.New("could not create store")
	ErrStoreOpenFailed   = errors.New("could not open store")
	ErrWriteAborted      = errors.New("write aborted")
	ErrUpdateAborted     = errors.New("update aborted")
	ErrNodeNotFound      = errors.New("node not found")
)
