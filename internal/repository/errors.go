package repository

import "errors"

// ErrTaskNotFound is returned when an operation references a task id
// that no longer exists, e.g. a double delete. Callers treat it as a
// benign no-op rather than a failure.
var ErrTaskNotFound = errors.New("task not found")
