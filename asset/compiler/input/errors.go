package input

import "errors"

var ErrMalformedGeometry = errors.New("input: malformed geometry")
