package stories

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream matches any *UpstreamError with errors.Is.
	ErrUpstream = errors.New("upstream failure")
	// ErrUnexpected matches any *UnexpectedError with errors.Is.
	ErrUnexpected = errors.New("unexpected failure")
)

// UpstreamError means the new story ID list could not be fetched or decoded.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("error while fetching stories from the API: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// UnexpectedError wraps every failure that is not an UpstreamError.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error while getting stories: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

func (e *UnexpectedError) Is(target error) bool { return target == ErrUnexpected }

// classify leaves upstream errors alone and wraps everything else.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream
	}
	var unexpected *UnexpectedError
	if errors.As(err, &unexpected) {
		return unexpected
	}
	return &UnexpectedError{Err: err}
}
