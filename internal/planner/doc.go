// Package planner converts sanitized file records into an OperationPlan: a
// collision-free mapping from each source file to its destination under the
// output root, with the copy or link action chosen per entry.
//
// A Session owns the two sets that make planning stateful: sources already
// planned and destinations already chosen. Every destination decision depends
// on the ones before it, so a Session plans strictly in input order and
// serializes callers with a mutex. Planning never mutates the filesystem; with
// CheckExisting it only Lstats candidate destinations so a dry run and a
// commit agree on the same names.
package planner
