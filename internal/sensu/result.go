package sensu

import (
	"fmt"
	"time"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	// KindConnect covers request construction, DNS, refused connections,
	// timeouts and other transport errors.
	KindConnect ErrorKind = "connect"

	// KindStatus means the API answered with a non-2xx status code.
	KindStatus ErrorKind = "status"

	// KindRead means the response body could not be read.
	KindRead ErrorKind = "read"

	// KindParse means the body was not a JSON array of events.
	KindParse ErrorKind = "parse"
)

// FetchError reports a failed fetch for one source.
type FetchError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source %q: %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of fetching one source.
//
// Exactly one of Events or Err is meaningful: a failed result never
// carries events, so callers can fold it in as "zero events".
type Result struct {
	// Source is the environment name.
	Source string

	// Events holds the decoded events in API response order.
	Events []Event

	// Latency is the time spent on the request.
	Latency time.Duration

	// Err is non-nil when the fetch failed.
	Err *FetchError
}

// Failed reports whether the fetch failed.
func (r Result) Failed() bool {
	return r.Err != nil
}
