//go:build windows

package mmfile

import (
	"os"
)

// Map reads the file at path and returns its contents. Mutations are not
// written back on Windows; heap images there are inspected, not mutated.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
