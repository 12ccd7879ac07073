// Package completion wraps the OpenAI-compatible chat completion API.
//
// The HTTP client retries transient upstream failures with capped
// exponential backoff, honors Retry-After on rate limits, and tolerates the
// schema drift common across completion providers (delta messages, legacy
// text choices, tool-call payloads). DecodeJSON strips markdown code fences
// and extracts embedded objects before giving up on a payload.
//
// A scriptable Fake satisfies the same Service interface for dry-run mode
// and tests.
package completion
