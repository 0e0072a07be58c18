package asset

import (
	"encoding/json"
	"os"
	"time"
)

// Report is the JSON output of a CLI pipeline run.
type Report struct {
	Version     int                        `json:"version"`
	GeneratedAt string                     `json:"generated_at"`
	Assets      map[string]*OptimizedAsset `json:"assets"`
	Stats       ReportStats                `json:"stats"`
}

// ReportStats aggregates run metrics.
type ReportStats struct {
	TotalAssets      int   `json:"total_assets"`
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	Failed           int   `json:"failed,omitempty"`
}

// SupportedReportVersion is the current schema version.
const SupportedReportVersion = 1

// NewReport creates an empty report with defaults.
func NewReport() *Report {
	return &Report{
		Version:     SupportedReportVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Assets:      make(map[string]*OptimizedAsset),
	}
}

// ComputeStats recalculates aggregate statistics from assets.
func (r *Report) ComputeStats() {
	s := ReportStats{Failed: r.Stats.Failed}
	s.TotalAssets = len(r.Assets)
	for _, a := range r.Assets {
		s.TotalInputBytes += a.Metadata.OriginalSize
		s.TotalOutputBytes += a.Metadata.OptimizedSize
	}
	r.Stats = s
}

// WriteJSON serializes the report to a JSON file with stable ordering.
func (r *Report) WriteJSON(path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
