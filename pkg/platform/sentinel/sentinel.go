package sentinel

import "errors"

// Sentinel errors for storage and infrastructure facts. Stores return these,
// optionally wrapped, and services translate them into domain errors:
//   - ErrNotFound: no record under the requested key
//   - ErrAlreadyUsed: a create-if-absent found the key taken
//
// Input validation failures never use these; see pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
