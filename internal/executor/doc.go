// Package executor replays an OperationPlan against the filesystem.
//
// A dry run reports every entry as Planned and touches nothing. A commit takes
// an advisory lock on the output root, then performs each operation in plan
// order: create the destination directory, then copy, hard link or symlink.
// A failing entry is recorded with its reason and the batch continues.
// Existing destinations are never overwritten.
package executor
