package domain

import "errors"

// Task failures are not distinguished by the runner; these sentinels only
// identify the failing stage when inspecting errors.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDecode         = errors.New("object is not valid UTF-8")
	ErrParse          = errors.New("object is not valid JSON")
)
