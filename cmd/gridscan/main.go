// Command gridscan evaluates the grid potential term along a line through a
// tabulated surface and writes the energies and gradients as CSV.
//
// The surface is a synthetic pair of Gaussian wells; grid file parsing
// belongs to the host pipeline, not this repository.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/dockgrid/config"
	"github.com/pthm-cable/dockgrid/export"
	"github.com/pthm-cable/dockgrid/forcefield"
	"github.com/pthm-cable/dockgrid/grid"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	axis := flag.String("axis", "x", "Scan axis: x, y, or z")
	samples := flag.Int("samples", 0, "Points along the scan line (0 = config value)")
	outputDir := flag.String("output", "", "Output directory (empty = config value)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()
	if *samples > 0 {
		cfg.Scan.Samples = *samples
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	a := map[string]int{"x": 0, "y": 1, "z": 2}[*axis]
	if *axis != "x" && *axis != "y" && *axis != "z" {
		log.Fatalf("unknown axis %q", *axis)
	}

	g, err := grid.FromFunc(demoCounts, demoSpacing, cfg.ForceField.MaxCap, demoSurface)
	if err != nil {
		log.Fatalf("building grid: %v", err)
	}
	term := forcefield.NewGridTerm(g, cfg.ForceField.Strength, []float64{1}, forcefield.Options{
		RestraintK: cfg.ForceField.RestraintK,
	})

	extent := g.CornerExtent()
	lo := cfg.Scan.Margin * extent[a]
	hi := (1 - cfg.Scan.Margin) * extent[a]

	req := forcefield.Request{Gradient: true}
	out := forcefield.NewOutput(1, req)
	pos := [3]float64{extent[0] / 2, extent[1] / 2, extent[2] / 2}

	records := make([]export.ScanRecord, 0, cfg.Scan.Samples)
	energies := make([]float64, 0, cfg.Scan.Samples)
	for i := 0; i < cfg.Scan.Samples; i++ {
		pos[a] = lo + (hi-lo)*float64(i)/float64(cfg.Scan.Samples-1)
		out.Reset()
		e := term.Evaluate([][3]float64{pos}, req, out)
		records = append(records, export.ScanRecord{
			X: pos[0], Y: pos[1], Z: pos[2],
			Energy: e,
			GX:     out.Gradient[0][0],
			GY:     out.Gradient[0][1],
			GZ:     out.Gradient[0][2],
		})
		energies = append(energies, e)
	}

	fmt.Printf("scanned %d points along %s in [%.3f, %.3f] nm\n",
		len(records), *axis, lo, hi)
	fmt.Printf("energy: min %.4f  max %.4f  mean %.4f  std %.4f\n",
		floats.Min(energies), floats.Max(energies),
		stat.Mean(energies, nil), stat.StdDev(energies, nil))

	om, err := export.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("opening output: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		log.Fatalf("writing config: %v", err)
	}
	if err := om.WriteScan("scan_"+*axis, records); err != nil {
		log.Fatalf("writing scan: %v", err)
	}
	if om.Dir() != "" {
		fmt.Printf("wrote %s/scan_%s.csv\n", om.Dir(), *axis)
	}
}

// Demo lattice: 2 nm cube at 0.05 nm spacing, guard margin included.
var (
	demoCounts  = [3]int{41, 41, 41}
	demoSpacing = [3]float64{0.05, 0.05, 0.05}
)

// demoSurface is two Gaussian wells of different depth inside the lattice.
func demoSurface(x, y, z float64) float64 {
	return gaussianWell(x, y, z, 0.7, 1.0, 1.0, -8, 0.25) +
		gaussianWell(x, y, z, 1.4, 1.0, 1.0, -5, 0.18)
}

func gaussianWell(x, y, z, cx, cy, cz, depth, sigma float64) float64 {
	r2 := (x-cx)*(x-cx) + (y-cy)*(y-cy) + (z-cz)*(z-cz)
	return depth * math.Exp(-r2/(2*sigma*sigma))
}
