package carryover

import (
	"fmt"
	"os"
	"path/filepath"
)

const outputMode = 0o644

// WriteFile writes the result to path atomically: the document goes to a
// temporary file in the same directory which then replaces path, so a failed
// write never leaves partial output behind.
func WriteFile(path string, r *Result) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := r.WriteTo(tmp); err != nil {
		if closeErr := tmp.Close(); closeErr != nil {
			return fmt.Errorf("write output %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, outputMode); err != nil {
		return fmt.Errorf("chmod output %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename output %s: %w", path, err)
	}
	return nil
}
