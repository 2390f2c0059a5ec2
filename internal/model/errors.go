package model

import "fmt"

// FetchFailureKind classifies why a page fetch failed. Each kind maps to a
// fixed deterministic score in the pipeline; the aggregator never runs for
// a failed fetch.
type FetchFailureKind string

const (
	FetchSSLError         FetchFailureKind = "ssl_error"
	FetchTimeout          FetchFailureKind = "timeout"
	FetchConnectionError  FetchFailureKind = "connection_error"
	FetchNonSuccessStatus FetchFailureKind = "non_success_status"
)

// FetchError is returned by the fetch collaborator when the page could not
// be retrieved in a scoreable form.
type FetchError struct {
	Kind       FetchFailureKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchNonSuccessStatus {
		return fmt.Sprintf("fetch failed: status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s)", e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }
