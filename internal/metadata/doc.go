// Package metadata defines the per-file records that flow from
// classification into planning.
//
// RawMetadata is whatever the model returned. Builder sanitizes it, applies
// the placeholder fallbacks, and produces an immutable FileRecord whose folder
// and file names are safe to join onto the output root.
package metadata
