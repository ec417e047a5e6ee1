// Package organizer builds the plan for one organize pass.
//
// It collects the input files, asks the classifier for naming metadata in
// content mode (in parallel, bounded by the configured worker count), turns
// the answers into validated records and hands them to a planner session in
// input order. Date and type modes skip classification entirely. A file
// that fails classification is reported as a diagnostic and left out of the
// plan; it never aborts the pass.
//
// Nothing here mutates the filesystem. Committing the plan is the executor's
// job.
package organizer
