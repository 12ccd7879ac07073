package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Wrap tags errors with one of
// these so callers can decide between retrying a call, skipping a record,
// and aborting the whole run.
var (
	// ErrStoreUnavailable means the backing row store could not be reached.
	// Fatal to the run: no partial writes should follow.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrConfiguration marks invalid or missing configuration. Fatal to the run.
	ErrConfiguration = errors.New("configuration error")
	// ErrRateLimited marks a provider throttling response. Retried with backoff.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstream marks a provider-side failure. Retried with backoff.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidResponse marks a malformed or unschema'd capability payload.
	// Not retried blindly; the record is skipped and the payload logged.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrValidation marks a record missing required fields before an external
	// call. The record is skipped and nothing is sent upstream.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes workflow context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error represents a transient failure worth
// another attempt against the same provider.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstream)
}

// Fatal reports whether an error must abort the whole run rather than skip
// the current record.
func Fatal(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
