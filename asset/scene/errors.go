package scene

import "errors"

var (
	ErrTruncatedHeader  = errors.New("scene: data texture too short to hold header")
	ErrCorruptLayout    = errors.New("scene: data texture layout does not match header")
	ErrUnknownSection   = errors.New("scene: unknown section")
	ErrRecordOutOfRange = errors.New("scene: record index out of range")
)
