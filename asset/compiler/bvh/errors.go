package bvh

import "errors"

var (
	ErrEmptyWorkList   = errors.New("bvh: cannot build tree from an empty work list")
	ErrSplitMismatch   = errors.New("bvh: split produced partitions that do not cover the work list")
	ErrUnknownNodeKind = errors.New("bvh: unknown node kind")
	ErrInvalidNode     = errors.New("bvh: node index out of range")
	ErrBoundsMismatch  = errors.New("bvh: node bounds do not match the union of its children")
)
