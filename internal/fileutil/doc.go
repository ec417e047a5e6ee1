// Package fileutil holds low-level file copy helpers shared by the executor.
package fileutil
