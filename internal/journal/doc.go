// Package journal records organize runs in a SQLite database so earlier
// plans and their outcomes can be listed with `fileorg history`.
//
// The journal is advisory. Organize keeps working when the database cannot
// be opened or written; callers log the failure and continue.
package journal
