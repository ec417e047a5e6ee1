// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the source file
//     being processed for logging.
//   - Structured error markers plus the Wrap helper so precondition failures
//     can be told apart from per-file and transient failures.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
