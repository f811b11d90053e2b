package faultlog

import (
	"errors"
	"fmt"
)

// ExpiredError reports that the fetch deadline passed while waiting for a
// log entry. Entries retrieved before the deadline are still returned.
type ExpiredError struct {
	LogIdx int
	Err    error
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("fault log entry %d: fetch expired: %v", e.LogIdx, e.Err)
}

func (e *ExpiredError) Unwrap() error { return e.Err }

// IsExpired reports whether err is an expired fetch.
func IsExpired(err error) bool {
	var e *ExpiredError
	return errors.As(err, &e)
}
