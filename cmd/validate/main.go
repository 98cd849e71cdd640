// Command validate performs end-to-end integrity checks across the committed
// fixtures: request fixtures must satisfy the engine's input contracts, result
// fixtures must match a fresh recomputation, and every result must align with
// the wire schema the result topic promises downstream consumers.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -requests data/fixtures/directivity_requests.json \
//	  -results data/fixtures/directivity_results.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismoworks/directivity/bea20"
	"github.com/seismoworks/directivity/internal/job"
	"github.com/seismoworks/directivity/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	requestsPath := flag.String("requests", "", "path to the request fixture JSON")
	resultsPath := flag.String("results", "", "path to the result fixture JSON")
	flag.Parse()

	if *requestsPath == "" || *resultsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*requestsPath, *resultsPath); code != 0 {
		os.Exit(code)
	}
}

func run(requestsPath, resultsPath string) int {
	// Set a fixed clock matching genfixture so recomputed results align with
	// the committed fixture byte for byte.
	job.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
	))
	defer job.SetClock(nil)

	fmt.Println("=== Directivity Fixture Validation ===")
	fmt.Println()

	requests, err := loadJSON[job.Request](requestsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load request fixture: %v\n", err)
		return 1
	}

	results, err := loadJSON[job.Result](resultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load result fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRequestIntegrity(requests),
		validateRecomputeParity(requests, results),
		validateSchemaAlignment(requests, results),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d requests, %d results\n", len(requests), len(results))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Request Integrity ──
// Every fixture request must satisfy the engine's input contracts.

func validateRequestIntegrity(requests []job.Request) *phase {
	p := &phase{name: "Phase 1: Request Integrity"}

	seen := map[string]bool{}
	for i, req := range requests {
		id := req.RunID
		if id == "" {
			p.errorf("request %d: missing run_id", i)
			id = fmt.Sprintf("request %d", i)
		} else if seen[id] {
			p.errorf("%s: duplicate run_id", id)
		}
		seen[id] = true

		if err := req.EventParameters().Validate(); err != nil {
			p.errorf("%s: event: %v", id, err)
		}
		if err := req.Rupture().Validate(); err != nil {
			p.errorf("%s: fault: %v", id, err)
		}

		cfg, err := req.HypoConfig()
		if err != nil {
			p.errorf("%s: sampling: %v", id, err)
		} else if req.Fault.Hypocentre == nil {
			if err := cfg.Validate(); err != nil {
				p.errorf("%s: sampling: %v", id, err)
			}
		}

		if len(req.Sites) == 0 {
			p.errorf("%s: no sites", id)
		}
		if len(req.Periods) == 0 {
			p.errorf("%s: no periods", id)
		}
		for _, period := range req.Periods {
			if err := bea20.CheckPeriod(period); err != nil {
				p.errorf("%s: %v", id, err)
			}
		}
	}
	return p
}

// ── Phase 2: Recompute Parity ──
// Re-runs the compute path on each request and compares against the committed
// result fixture.

func validateRecomputeParity(requests []job.Request, results []job.Result) *phase {
	p := &phase{name: "Phase 2: Recompute Parity"}

	byRun := map[string]*job.Result{}
	for i := range results {
		byRun[results[i].RunID] = &results[i]
	}

	computer := pipeline.NewEngineComputer(0)
	for _, req := range requests {
		fixture, ok := byRun[req.RunID]
		if !ok {
			p.errorf("%s: no result in fixture", req.RunID)
			continue
		}

		res, err := computer.Compute(context.Background(), req)
		if err != nil {
			p.errorf("%s: recompute: %v", req.RunID, err)
			continue
		}
		compareResults(p, job.BuildResult(req, res), fixture)
	}
	return p
}

func compareResults(p *phase, recomputed job.Result, fixture *job.Result) {
	id := recomputed.RunID

	if fixture.RequestID != recomputed.RequestID {
		p.errorf("%s: request_id: expected %s, got %s", id, recomputed.RequestID, fixture.RequestID)
	}
	if fixture.Method != recomputed.Method {
		p.errorf("%s: method: expected %q, got %q", id, recomputed.Method, fixture.Method)
	}
	if fixture.NHypo != recomputed.NHypo {
		p.errorf("%s: n_hypocentres: expected %d, got %d", id, recomputed.NHypo, fixture.NHypo)
	}
	if !floatSliceEq(fixture.Periods, recomputed.Periods) {
		p.errorf("%s: periods: expected %v, got %v", id, recomputed.Periods, fixture.Periods)
	}

	if len(fixture.Sites) != len(recomputed.Sites) {
		p.errorf("%s: site count: expected %d, got %d", id, len(recomputed.Sites), len(fixture.Sites))
		return
	}

	for si := range recomputed.Sites {
		want, got := recomputed.Sites[si], fixture.Sites[si]
		if !floatEq(want.Lon, got.Lon) || !floatEq(want.Lat, got.Lat) {
			p.errorf("%s: site %d: coordinates: expected (%g, %g), got (%g, %g)", id, si, want.Lon, want.Lat, got.Lon, got.Lat)
		}
		if !floatSliceEq(want.FD, got.FD) {
			p.errorf("%s: site %d: fd: expected %v, got %v", id, si, want.FD, got.FD)
		}
		if !floatSliceEq(want.PhiRed, got.PhiRed) {
			p.errorf("%s: site %d: phi_red: expected %v, got %v", id, si, want.PhiRed, got.PhiRed)
		}
		compareHypocentreColumns(p, id, si, want.FDByHypocentre, got.FDByHypocentre)
	}
}

func compareHypocentreColumns(p *phase, id string, si int, want, got [][]float64) {
	if (want == nil) != (got == nil) {
		p.errorf("%s: site %d: fd_by_hypocentre presence: expected %v, got %v", id, si, want != nil, got != nil)
		return
	}
	if len(want) != len(got) {
		p.errorf("%s: site %d: fd_by_hypocentre rows: expected %d, got %d", id, si, len(want), len(got))
		return
	}
	for pi := range want {
		if !floatSliceEq(want[pi], got[pi]) {
			p.errorf("%s: site %d: fd_by_hypocentre[%d] mismatch", id, si, pi)
		}
	}
}

// ── Phase 3: Schema Alignment ──
// Validates that result fields honor the contracts the result topic promises
// downstream consumers.

var (
	requestIDPattern = regexp.MustCompile(`^dir-[0-9a-f]{16}$`)
	schemaMethods    = map[string]bool{
		"uniform_grid":        true,
		"uniform_grid_jitter": true,
		"latin_hypercube":     true,
		"monte_carlo":         true,
		"fixed":               true,
	}
)

func validateSchemaAlignment(requests []job.Request, results []job.Result) *phase {
	p := &phase{name: "Phase 3: Schema Alignment"}

	siteCounts := map[string]int{}
	for _, req := range requests {
		siteCounts[req.RunID] = len(req.Sites)
	}

	for i := range results {
		checkSchemaResult(p, i, &results[i], siteCounts)
	}
	return p
}

func checkSchemaResult(p *phase, i int, res *job.Result, siteCounts map[string]int) {
	pf := func(format string, args ...any) {
		p.errorf("result %d (run %s): "+format, append([]any{i, res.RunID}, args...)...)
	}

	if res.RunID == "" {
		pf("run_id is empty")
	}
	if !requestIDPattern.MatchString(res.RequestID) {
		pf("request_id %q does not match %s", res.RequestID, requestIDPattern)
	}
	if !schemaMethods[res.Method] {
		pf("method %q not in the sweep catalog", res.Method)
	}
	if res.NHypo < 1 {
		pf("n_hypocentres %d < 1", res.NHypo)
	}
	if res.ComputedAt.IsZero() {
		pf("computed_at is zero")
	}

	if expected, ok := siteCounts[res.RunID]; ok && expected != len(res.Sites) {
		pf("site count %d does not match request's %d", len(res.Sites), expected)
	}

	for _, period := range res.Periods {
		if err := bea20.CheckPeriod(period); err != nil {
			pf("%v", err)
		}
	}

	for si := range res.Sites {
		checkSchemaSite(pf, si, &res.Sites[si], len(res.Periods), res.NHypo)
	}
}

func checkSchemaSite(pf func(string, ...any), si int, site *job.SiteResult, nPeriods, nHypo int) {
	if len(site.FD) != nPeriods {
		pf("site %d: fd has %d entries, want %d", si, len(site.FD), nPeriods)
		return
	}
	if len(site.PhiRed) != nPeriods {
		pf("site %d: phi_red has %d entries, want %d", si, len(site.PhiRed), nPeriods)
		return
	}

	for pi := 0; pi < nPeriods; pi++ {
		if math.IsNaN(site.FD[pi]) || math.IsInf(site.FD[pi], 0) {
			pf("site %d period %d: fd is not finite: %v", si, pi, site.FD[pi])
		}
		if site.PhiRed[pi] < 0 {
			pf("site %d period %d: phi_red %g < 0", si, pi, site.PhiRed[pi])
		}
	}

	if site.FDByHypocentre == nil {
		return
	}
	if len(site.FDByHypocentre) != nPeriods {
		pf("site %d: fd_by_hypocentre has %d rows, want %d", si, len(site.FDByHypocentre), nPeriods)
		return
	}
	for pi, row := range site.FDByHypocentre {
		if len(row) != nHypo {
			pf("site %d: fd_by_hypocentre[%d] has %d columns, want %d", si, pi, len(row), nHypo)
		}
	}
}

// ── Helpers ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func floatSliceEq(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floatEq(a[i], b[i]) {
			return false
		}
	}
	return true
}
