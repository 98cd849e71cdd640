// Command genfixture generates the request and result fixtures for the test
// suites. It runs the actual compute path so the result fixture matches real
// pipeline behavior, under a fixed clock so regeneration is byte-stable.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -requests-out data/fixtures/directivity_requests.json \
//	  -results-out data/fixtures/directivity_results.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismoworks/directivity/internal/job"
	"github.com/seismoworks/directivity/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	requestsOut := flag.String("requests-out", "", "output path for the request fixture")
	resultsOut := flag.String("results-out", "", "output path for the result fixture")
	flag.Parse()

	if *requestsOut == "" || *resultsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -requests-out, -results-out")
	}

	// Set a fixed clock for reproducible computed_at timestamps.
	job.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
	))
	defer job.SetClock(nil)

	requests := buildRequests()
	computer := pipeline.NewEngineComputer(0)

	results := make([]job.Result, 0, len(requests))
	for _, req := range requests {
		res, err := computer.Compute(context.Background(), req)
		if err != nil {
			return fmt.Errorf("computing %s: %w", req.RunID, err)
		}
		results = append(results, job.BuildResult(req, res))
		log.Printf("%s: %d hypocentres, %d sites", req.RunID, res.NHypo, len(req.Sites))
	}

	if err := writeJSON(*requestsOut, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s", *requestsOut)

	if err := writeJSON(*resultsOut, results); err != nil {
		return fmt.Errorf("writing result fixture: %w", err)
	}
	log.Printf("wrote result fixture: %s", *resultsOut)

	printStats(results)
	return nil
}

// buildRequests returns the canonical fixture scenarios. run-0002 is the
// regression reference sweep, a seeded 100-draw Latin hypercube over a 3×3
// site grid. run-0005 repeats its compute inputs under a different run
// identifier so the suites can assert digest and adjustment equality.
func buildRequests() []job.Request {
	twinBend := job.FaultSpec{
		Name: "twin-bend",
		Planes: []job.PlaneSpec{
			{Strike: 90, Dip: 70, ZTop: 0, Width: 16, Length: 44.5},
			{Strike: 82, Dip: 70, ZTop: 0, Width: 16, Length: 39.3},
		},
		Trace: []job.TracePoint{{Lon: 0, Lat: 0}, {Lon: 0.4, Lat: 0}, {Lon: 0.75, Lat: 0.05}},
	}
	twinBendEvent := job.EventSpec{Magnitude: 7.4, Rake: 45}
	twinBendSites := []job.SiteSpec{
		{Lon: -0.1, Lat: -0.25}, {Lon: 0.375, Lat: -0.25}, {Lon: 0.85, Lat: -0.25},
		{Lon: -0.1, Lat: 0.05}, {Lon: 0.375, Lat: 0.05}, {Lon: 0.85, Lat: 0.05},
		{Lon: -0.1, Lat: 0.35}, {Lon: 0.375, Lat: 0.35}, {Lon: 0.85, Lat: 0.35},
	}
	twinBendPeriods := []float64{0.5, 3, 7.5}
	twinBendSampling := job.SamplingSpec{Method: "latin_hypercube", NHypo: 100, Seed: 7}

	return []job.Request{
		{
			RunID: "run-0001",
			Fault: job.FaultSpec{
				Name:   "ridgeline-a",
				Planes: []job.PlaneSpec{{Strike: 90, Dip: 90, ZTop: 0, Width: 15, Length: 44.5}},
				Trace:  []job.TracePoint{{Lon: 0, Lat: 0}, {Lon: 0.4, Lat: 0}},
			},
			Event:              job.EventSpec{Magnitude: 7.2, Rake: 0},
			Sites:              []job.SiteSpec{{Lon: 0.6, Lat: 0.01}, {Lon: -0.2, Lat: 0.01}, {Lon: 0.2, Lat: 0.15}, {Lon: 0.2, Lat: -0.15}},
			Periods:            []float64{1, 3, 5},
			Sampling:           job.SamplingSpec{Method: "uniform_grid", NStrike: 6, NDip: 4},
			IncludeHypocentres: true,
		},
		{
			RunID:    "run-0002",
			Fault:    twinBend,
			Event:    twinBendEvent,
			Sites:    twinBendSites,
			Periods:  twinBendPeriods,
			Sampling: twinBendSampling,
		},
		{
			RunID: "run-0003",
			Fault: job.FaultSpec{
				Name:   "eastfront-thrust",
				Planes: []job.PlaneSpec{{Strike: 0, Dip: 40, ZTop: 1, Width: 20, Length: 30}},
				Trace:  []job.TracePoint{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0.27}},
			},
			Event:    job.EventSpec{Magnitude: 7, Rake: 90},
			Sites:    []job.SiteSpec{{Lon: 0.15, Lat: 0.135}, {Lon: -0.15, Lat: 0.135}, {Lon: 0, Lat: 0.5}},
			Periods:  []float64{1, 5},
			Sampling: job.SamplingSpec{Method: "monte_carlo", NHypo: 64, Seed: 123},
		},
		{
			// The pin overrides the sampling block; the result reports "fixed".
			RunID: "run-0004",
			Fault: job.FaultSpec{
				Name:       "saddle-gap",
				Planes:     []job.PlaneSpec{{Strike: 135, Dip: 55, ZTop: 2, Width: 12, Length: 25}},
				Trace:      []job.TracePoint{{Lon: 0, Lat: 0}, {Lon: 0.159, Lat: -0.159}},
				Hypocentre: &job.HypocentrePin{StrikeFraction: 0.3, DipFraction: 0.6},
			},
			Event:    job.EventSpec{Magnitude: 6.5, Rake: -90},
			Sites:    []job.SiteSpec{{Lon: 0.2, Lat: -0.3}, {Lon: -0.05, Lat: 0.1}},
			Periods:  []float64{3},
			Sampling: job.SamplingSpec{Method: "uniform_grid", NStrike: 3, NDip: 3},
		},
		{
			RunID:    "run-0005",
			Fault:    twinBend,
			Event:    twinBendEvent,
			Sites:    twinBendSites,
			Periods:  twinBendPeriods,
			Sampling: twinBendSampling,
		},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(results []job.Result) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d results\n", len(results))

	byRun := map[string]job.Result{}
	for _, res := range results {
		byRun[res.RunID] = res

		minFD, maxFD := math.Inf(1), math.Inf(-1)
		maxPhi := 0.0
		for _, site := range res.Sites {
			for pi := range res.Periods {
				minFD = math.Min(minFD, site.FD[pi])
				maxFD = math.Max(maxFD, site.FD[pi])
				maxPhi = math.Max(maxPhi, site.PhiRed[pi])
			}
		}

		fmt.Printf("\n%s:\n", res.RunID)
		fmt.Printf("  RequestID: %s\n", res.RequestID)
		fmt.Printf("  Method: %s, hypocentres: %d, sites: %d\n", res.Method, res.NHypo, len(res.Sites))
		fmt.Printf("  Periods: %v\n", res.Periods)
		fmt.Printf("  fD range: [%.6f, %.6f]\n", minFD, maxFD)
		fmt.Printf("  Max phi reduction: %.6f\n", maxPhi)
	}

	if a, ok := byRun["run-0002"]; ok {
		if b, ok := byRun["run-0005"]; ok {
			fmt.Printf("\nDeterminism pair run-0002/run-0005 digests match: %v\n", a.RequestID == b.RequestID)
		}
	}
}
