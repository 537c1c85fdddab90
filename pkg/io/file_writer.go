/*
Package io contains file system helpers used by the node.
*/
package io

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDirForFile creates a directory the given file is to be placed in,
// desc is used in error messages only.
func MakeDirForFile(filePath string, desc string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create dir for %s: %w", desc, err)
	}
	return nil
}
