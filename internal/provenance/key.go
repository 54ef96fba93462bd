// Package provenance memoizes per-line history and pull request lookups.
package provenance

import "fmt"

// Key identifies one line of one file. Line is zero-based.
type Key struct {
	FilePath string
	Line     int
}

// NewKey creates a key for line (zero-based) of filePath.
func NewKey(filePath string, line int) Key {
	return Key{FilePath: filePath, Line: line}
}

// String renders the key as "{filePath}:{line}".
func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.FilePath, k.Line)
}
