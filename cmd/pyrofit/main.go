// Command pyrofit corrects raw emission spectra for instrument response
// and fits a blackbody temperature to each.
//
// Usage:
//
//	pyrofit [flags] spectrum-file ...
//
// Each spectrum file holds two numeric columns (wavelength in nm, counts),
// comma- or whitespace-separated; blank lines and lines starting with '#'
// are skipped. Calibration tables may be CSV or XLSX.
//
// Examples:
//
//	pyrofit -grating grating.csv -qe camera_qe.csv run1.asc
//	pyrofit -fiber fiber.csv -fiber-length 2 -xmin 500 -xmax 900 run1.asc run2.asc
//	pyrofit -mirror mirrors.xlsx -mirror-bounces 3 -exclude 600:650,780:800 run1.asc
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-pyro/measure/planck"
	"github.com/cwbudde/algo-pyro/spectrum"
	"github.com/cwbudde/algo-pyro/spectrum/calib"
	"github.com/cwbudde/algo-pyro/spectrum/correction"
	"github.com/cwbudde/algo-pyro/spectrum/mask"
)

func main() {
	var (
		gratingPath = flag.String("grating", "", "grating efficiency table (percent)")
		fiberPath   = flag.String("fiber", "", "fiber attenuation table (dB/km, dB/m)")
		qePath      = flag.String("qe", "", "camera quantum efficiency table (percent)")
		lensPath    = flag.String("lens", "", "lens transmission table (percent)")
		mirrorPath  = flag.String("mirror", "", "mirror reflectivity table (percent)")

		fiberLength   = flag.Float64("fiber-length", correction.DefaultFiberLengthM, "fiber length in meters")
		mirrorBounces = flag.Int("mirror-bounces", correction.DefaultMirrorBounces, "mirror reflections in the light path")
		disable       = flag.String("disable", "", "comma-separated stage names to disable")

		xmin    = flag.Float64("xmin", math.NaN(), "lower fit bound in nm")
		xmax    = flag.Float64("xmax", math.NaN(), "upper fit bound in nm")
		exclude = flag.String("exclude", "", "excluded intervals, e.g. 600:650,780:800")

		initTemp  = flag.Float64("t0", 2000, "initial temperature guess in K")
		initScale = flag.Float64("s0", 1e-11, "initial scale guess")
		sigmaAbs  = flag.Float64("sigma", 0, "constant absolute per-point uncertainty (0 = unweighted)")

		jobs = flag.Int("jobs", 4, "max concurrent files")
	)

	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "pyrofit: no spectrum files given")
		flag.Usage()
		os.Exit(1)
	}

	pipe, err := buildPipeline(*gratingPath, *fiberPath, *qePath, *lensPath, *mirrorPath, *fiberLength, *mirrorBounces)
	if err != nil {
		fatal(err)
	}

	for _, name := range strings.Split(*disable, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		err := pipe.SetEnabled(name, false)
		if err != nil {
			fatal(err)
		}
	}

	excluded, err := parseIntervals(*exclude)
	if err != nil {
		fatal(err)
	}

	fitter := planck.NewFitter(planck.Config{InitTempK: *initTemp, InitScale: *initScale})

	rows := make([]reportRow, len(files))

	g := new(errgroup.Group)
	g.SetLimit(*jobs)

	for i, path := range files {
		g.Go(func() error {
			rows[i] = processFile(path, pipe, fitter, *xmin, *xmax, excluded, *sigmaAbs)
			return nil
		})
	}

	_ = g.Wait()

	report(rows)
}

// reportRow is one processed spectrum file.
type reportRow struct {
	file   string
	points int
	used   int

	meanCounts float64
	peakCounts float64

	fit    *planck.Result
	fitErr error
	err    error
}

func processFile(
	path string,
	pipe *correction.Pipeline,
	fitter *planck.Fitter,
	xmin, xmax float64,
	excluded []mask.Interval,
	sigmaAbs float64,
) reportRow {
	row := reportRow{file: filepath.Base(path)}

	spec, err := readSpectrum(path)
	if err != nil {
		row.err = err
		return row
	}

	row.points = spec.Len()

	corrected, err := pipe.Apply(spec.WavelengthsNm, spec.Counts)
	if err != nil {
		row.err = err
		return row
	}

	row.meanCounts, _ = stats.Mean(corrected)
	row.peakCounts, _ = stats.Max(corrected)

	m := mask.Build(spec.WavelengthsNm, xmin, xmax, excluded)
	row.used = mask.Count(m)

	wl := mask.Select(spec.WavelengthsNm, m)
	cts := mask.Select(corrected, m)

	var sigma []float64
	if sigmaAbs > 0 {
		sigma = make([]float64, len(cts))
		for i := range sigma {
			sigma[i] = sigmaAbs
		}
	}

	// A failed fit is not fatal; the corrected summary is still reported.
	row.fit, row.fitErr = fitter.Fit(wl, cts, sigma)

	return row
}

func buildPipeline(
	gratingPath, fiberPath, qePath, lensPath, mirrorPath string,
	fiberLength float64,
	mirrorBounces int,
) (*correction.Pipeline, error) {
	cfg := correction.StandardConfig{
		FiberLengthM:  fiberLength,
		MirrorBounces: mirrorBounces,
	}

	var err error

	if gratingPath != "" {
		cfg.Grating, err = loadPercentCurve(gratingPath, 0)
		if err != nil {
			return nil, err
		}
	}

	if fiberPath != "" {
		// dB/m lives in the third column of the fiber table.
		cfg.Fiber, err = loadRawCurve(fiberPath, 2)
		if err != nil {
			return nil, err
		}
	}

	if qePath != "" {
		cfg.CameraQE, err = loadPercentCurve(qePath, 0)
		if err != nil {
			return nil, err
		}
	}

	if lensPath != "" {
		cfg.Lens, err = loadPercentCurve(lensPath, 0)
		if err != nil {
			return nil, err
		}
	}

	if mirrorPath != "" {
		cfg.Mirror, err = loadPercentCurve(mirrorPath, 0)
		if err != nil {
			return nil, err
		}
	}

	return correction.NewStandard(cfg)
}

func loadTable(path string, valueColumn int) (*calib.Table, error) {
	opts := calib.Options{ValueColumn: valueColumn}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return calib.LoadXLSX(path, opts)
	}

	return calib.LoadCSV(path, opts)
}

func loadPercentCurve(path string, valueColumn int) (*calib.Curve, error) {
	t, err := loadTable(path, valueColumn)
	if err != nil {
		return nil, err
	}

	return t.PercentCurve()
}

func loadRawCurve(path string, valueColumn int) (*calib.Curve, error) {
	t, err := loadTable(path, valueColumn)
	if err != nil {
		return nil, err
	}

	return t.Curve()
}

// readSpectrum parses a two-column wavelength/counts text file.
func readSpectrum(path string) (*spectrum.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wavelengths, counts []float64

	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s:%d: expected two columns", path, lineNo)
		}

		wl, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		ct, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		wavelengths = append(wavelengths, wl)
		counts = append(counts, ct)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return spectrum.New(wavelengths, counts)
}

func parseIntervals(spec string) ([]mask.Interval, error) {
	if spec == "" {
		return nil, nil
	}

	var intervals []mask.Interval

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("pyrofit: bad interval %q, want min:max", part)
		}

		minNm, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("pyrofit: bad interval %q: %w", part, err)
		}

		maxNm, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("pyrofit: bad interval %q: %w", part, err)
		}

		iv := mask.Interval{Min: minNm, Max: maxNm}
		if !iv.Valid() {
			return nil, fmt.Errorf("pyrofit: bad interval %q: min must be < max", part)
		}

		intervals = append(intervals, iv)
	}

	return intervals, nil
}

func report(rows []reportRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "FILE\tPOINTS\tUSED\tMEAN\tPEAK\tT (K)\tT ERR\tGOF")

	for _, row := range rows {
		if row.err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", row.file, row.err)
			continue
		}

		fit := "n/a\tn/a\tn/a"
		if row.fit != nil {
			fit = fmt.Sprintf("%.1f\t%.1f\t%s = %.4f", row.fit.TempK, row.fit.TempErr, row.fit.GOFKind, row.fit.GOF)
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%.4g\t%.4g\t%s\n",
			row.file, row.points, row.used, row.meanCounts, row.peakCounts, fit)

		if row.fitErr != nil {
			fmt.Fprintf(os.Stderr, "pyrofit: %s: %v\n", row.file, row.fitErr)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "pyrofit:", err)
	os.Exit(1)
}
