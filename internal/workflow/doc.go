// Package workflow defines the pipeline's execution engine.
//
// A Workflow reads its input records from the store, processes each one
// against external providers, and advances the survivors one status step.
// The Manager owns the registry, enforces one in-flight run per workflow,
// applies the run timeout, and emits notifications and structured logs with
// a per-run identifier.
//
// Record failures are isolated: one bad record marks itself failed and the
// batch carries on. Only fatal errors (store unavailable, configuration)
// abort a run.
package workflow
