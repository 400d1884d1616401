// Package export writes scan and minimization results from the command-line
// tools as CSV.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/dockgrid/config"
)

// ScanRecord is one evaluated point along a scan line.
type ScanRecord struct {
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	Z      float64 `csv:"z"`
	Energy float64 `csv:"energy"`
	GX     float64 `csv:"gx"`
	GY     float64 `csv:"gy"`
	GZ     float64 `csv:"gz"`
}

// TraceRecord is one step of a minimization run.
type TraceRecord struct {
	Step     int     `csv:"step"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	Energy   float64 `csv:"energy"`
	GradNorm float64 `csv:"grad_norm"`
}

// OutputManager handles structured output for the tools.
// A nil OutputManager is valid and discards everything.
type OutputManager struct {
	dir string
}

// NewOutputManager creates the output directory. Returns nil if dir is empty
// (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// WriteConfig saves the configuration that produced this run as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteScan writes scan records to <dir>/<name>.csv.
func (om *OutputManager) WriteScan(name string, records []ScanRecord) error {
	if om == nil {
		return nil
	}
	return om.writeCSV(name, records)
}

// WriteTrace writes minimization trace records to <dir>/<name>.csv.
func (om *OutputManager) WriteTrace(name string, records []TraceRecord) error {
	if om == nil {
		return nil
	}
	return om.writeCSV(name, records)
}

func (om *OutputManager) writeCSV(name string, records interface{}) error {
	path := filepath.Join(om.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}
