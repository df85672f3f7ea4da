// Package report emits the JSON documents produced by the measurement and
// prediction tools: always to stdout, optionally to a file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
)

// Emit marshals payload with two-space indentation, prints it to stdout and,
// if outPath is non-empty, writes the same bytes to that file.
func Emit(payload any, outPath string) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	fmt.Println(string(data))

	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("write report to %s: %w", outPath, err)
		}
	}
	return nil
}
