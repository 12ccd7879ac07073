// Package services defines shared utilities consumed by the workflow
// handlers and external capability clients.
//
// Key responsibilities:
//   - Context helpers that stamp workflow IDs, record IDs, and run
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the pipeline's retry/skip/abort policy.
//
// Use these helpers when wiring new workflow logic so operational behaviour
// (error handling, observability, retries) stays uniform across the
// pipeline.
package services
