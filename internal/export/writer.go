// Package export writes the interface table to disk as a timestamped JSON
// snapshot, for offline inspection and dry runs that skip the real table.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"EagleEye/internal/model"
)

// Summary is the metadata written next to an exported table.
type Summary struct {
	Total     int            `json:"total"`
	ByType    map[string]int `json:"by_type"`
	Timestamp string         `json:"timestamp"`
}

// Writer handles writing interface snapshots to disk.
type Writer struct{}

// NewWriter creates a new export writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write serializes the items into a timestamped directory under rootPath,
// with a summary.json next to the data.
func (w *Writer) Write(items []model.InterfaceItem, rootPath string, now time.Time) (string, error) {
	dir := filepath.Join(rootPath, now.UTC().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	dataPath := filepath.Join(dir, "interfaces.json")
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode interfaces: %w", err)
	}
	if err := os.WriteFile(dataPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write '%s': %w", dataPath, err)
	}

	summary := Summary{
		Total:     len(items),
		ByType:    map[string]int{},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	for _, item := range items {
		summary.ByType[item.ResourceType]++
	}
	summaryData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	summaryPath := filepath.Join(dir, "summary.json")
	if err := os.WriteFile(summaryPath, summaryData, 0644); err != nil {
		return "", fmt.Errorf("failed to write '%s': %w", summaryPath, err)
	}
	return dir, nil
}
