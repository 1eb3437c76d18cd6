package campaign

import "errors"

var (
	// ErrValidation means a local precondition failed; no request was made
	// and no state was mutated.
	ErrValidation = errors.New("campaign: validation failed")

	// ErrPersistence means a create/delete against the store failed.
	ErrPersistence = errors.New("campaign: persistence failed")

	// ErrDuplicateImage means the image's URL already exists in the working
	// gallery; the working set is left unchanged.
	ErrDuplicateImage = errors.New("campaign: image already in gallery")

	// ErrNotFound means the referenced idea, image, or record does not exist.
	ErrNotFound = errors.New("campaign: not found")

	// ErrSuperseded means the session was reset while the request was in
	// flight and its result was discarded.
	ErrSuperseded = errors.New("campaign: request superseded")
)
