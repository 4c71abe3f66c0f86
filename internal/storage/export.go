package storage

import (
	"encoding/json"
	"io"

	"github.com/kmataru/mdbox/internal/metrics"
)

// ExportData is the JSON export shape: run metadata plus the full
// diagnostics series.
type ExportData struct {
	RunMetadata
	Times             []float64 `json:"times"`
	Kinetic           []float64 `json:"kinetic"`
	Potential         []float64 `json:"potential"`
	Total             []float64 `json:"total"`
	TemperatureSeries []float64 `json:"temperature_series"`
	Momentum          []float64 `json:"momentum"`
}

// ExportJSON writes a run's metadata and series as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, series *metrics.Series) error {
	data := ExportData{
		RunMetadata:       *meta,
		Times:             series.Times,
		Kinetic:           series.Kinetic,
		Potential:         series.Potential,
		Total:             series.Total,
		TemperatureSeries: series.Temperature,
		Momentum:          series.Momentum,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
