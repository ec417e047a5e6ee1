// Package preflight provides readiness checks for the filesystem paths and
// the model endpoint fileorg depends on.
//
// These checks run in two contexts:
//   - `fileorg organize` calls Require before classifying anything. A missing
//     input directory or an output root that cannot be created aborts the
//     run before any model call or filesystem mutation.
//   - `fileorg check` calls RunAll and prints every result.
package preflight
