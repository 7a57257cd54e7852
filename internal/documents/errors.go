package documents

import "errors"

var (
	// ErrValidation rejects an upload before any state is created.
	ErrValidation = errors.New("validation failed")

	// ErrStorage marks a failed blob or row write.
	ErrStorage = errors.New("storage failed")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyFinalized guards the single allowed terminal transition.
	ErrAlreadyFinalized = errors.New("analysis already finalized")
)
