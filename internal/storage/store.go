// Package storage keeps completed runs on disk, one directory per run:
// config.yaml, metadata.json, series.csv and traj.xyz.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kmataru/mdbox/internal/config"
	"github.com/kmataru/mdbox/internal/metrics"
	"github.com/kmataru/mdbox/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	seriesFile   = "series.csv"
	trajFile     = "traj.xyz"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Particles    int                `json:"particles"`
	Box          float64            `json:"box"`
	Mass         float64            `json:"mass"`
	Temperature  float64            `json:"temperature"`
	Dt           float64            `json:"dt"`
	Steps        int                `json:"steps"`
	DumpInterval int                `json:"dump_interval"`
	Thermostat   string             `json:"thermostat"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Begin creates the run directory and persists the config, so a run that
// dies mid-flight still leaves its parameters behind.
func (s *Store) Begin(cfg *config.Config) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	return runID, nil
}

// TrajPath returns where the run's trajectory is written.
func (s *Store) TrajPath(runID string) string {
	return filepath.Join(s.baseDir, runID, trajFile)
}

// Finish writes the metadata and diagnostics series of a completed run.
func (s *Store) Finish(runID string, cfg *config.Config, result *sim.Result, series *metrics.Series) error {
	runDir := filepath.Join(s.baseDir, runID)

	meta := RunMetadata{
		ID:           runID,
		Timestamp:    time.Now(),
		Seed:         cfg.Seed,
		Particles:    cfg.Particles,
		Box:          cfg.Box,
		Mass:         cfg.Mass,
		Temperature:  cfg.Temperature,
		Dt:           cfg.Dt,
		Steps:        cfg.Steps,
		DumpInterval: cfg.DumpInterval,
		Thermostat:   cfg.Thermostat.Kind,
		Metrics:      result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	return s.writeSeries(filepath.Join(runDir, seriesFile), series)
}

func (s *Store) writeSeries(path string, series *metrics.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "kinetic", "potential", "total", "temperature", "momentum"}); err != nil {
		return err
	}
	for i := 0; i < series.Len(); i++ {
		row := []string{
			strconv.FormatFloat(series.Times[i], 'f', 6, 64),
			strconv.FormatFloat(series.Kinetic[i], 'f', 6, 64),
			strconv.FormatFloat(series.Potential[i], 'f', 6, 64),
			strconv.FormatFloat(series.Total[i], 'f', 6, 64),
			strconv.FormatFloat(series.Temperature[i], 'f', 6, 64),
			strconv.FormatFloat(series.Momentum[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads back the diagnostics series of a run.
func (s *Store) LoadSeries(runID string) (*metrics.Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &metrics.Series{}
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != 6 {
			continue
		}
		vals := make([]float64, 6)
		ok := true
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		series.Times = append(series.Times, vals[0])
		series.Kinetic = append(series.Kinetic, vals[1])
		series.Potential = append(series.Potential, vals[2])
		series.Total = append(series.Total, vals[3])
		series.Temperature = append(series.Temperature, vals[4])
		series.Momentum = append(series.Momentum, vals[5])
	}
	return series, nil
}
