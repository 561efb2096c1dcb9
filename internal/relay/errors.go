package relay

import "errors"

// Domain precondition failures. These are deliberate rule violations, not
// transient faults, and must not be retried.
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrParentNotFound   = errors.New("parent post does not exist")
	ErrRootNotFound     = errors.New("root post does not exist")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskAlreadySaved = errors.New("post already saved as task")
	ErrHideOwnPost      = errors.New("cannot hide own post")
	ErrInvalidPeriod    = errors.New("invalid ranking period")
)
