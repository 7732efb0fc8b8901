package probe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// SaveReport writes r as indented JSON, creating parent directories.
func SaveReport(path string, r *Report) error {
	if r == nil {
		return fmt.Errorf("no report to save")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
