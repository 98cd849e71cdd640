package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismoworks/directivity/bea20"
	"github.com/seismoworks/directivity/internal/job"
	"github.com/seismoworks/directivity/internal/observability"
	"github.com/seismoworks/directivity/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]job.RawRequest
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]job.RawRequest, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for requests
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw job.RawRequest) (job.OutputMessage, error) {
	if m.err != nil {
		return job.OutputMessage{}, m.err
	}
	return job.OutputMessage{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	loaded []job.OutputMessage
}

func (m *mockLoader) LoadBatch(_ context.Context, outs []job.OutputMessage) error {
	m.loaded = append(m.loaded, outs...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- pipeline tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRaw(t, computeRequest("run-1"))

	ext := &mockExtractor{batches: [][]job.RawRequest{{raw}}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_TransformError(t *testing.T) {
	commitCalled := false

	raw := makeRaw(t, computeRequest("run-2"))
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]job.RawRequest{{raw}}}
	tfm := &mockTransformer{err: errors.New("bad request")}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.True(t, commitCalled, "poison requests must still be committed")
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false

	raw := makeRaw(t, computeRequest("run-5"))
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]job.RawRequest{{raw}}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, commitCalled)
}

func TestPipeline_Run_SkipsPoisonProcessesRest(t *testing.T) {
	good := makeRaw(t, computeRequest("run-good"))
	poison := job.RawRequest{Key: []byte("bad"), Value: []byte("not-json{{{"), Topic: "directivity-requests"}

	ext := &mockExtractor{batches: [][]job.RawRequest{{poison, good}}}
	tfm := pipeline.NewTransformer(pipeline.NewEngineComputer(1), newTestMetrics(), slog.Default())
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 1, "only the valid request should produce a result")

	var res job.Result
	require.NoError(t, json.Unmarshal(ldr.loaded[0].Value, &res))
	assert.Equal(t, "run-good", res.RunID)
}

// --- transformer tests ---

func TestDirectivityTransformer_Transform(t *testing.T) {
	job.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { job.SetClock(nil) })

	tfm := pipeline.NewTransformer(pipeline.NewEngineComputer(1), newTestMetrics(), slog.Default())
	raw := makeRaw(t, computeRequest("run-3"))

	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "run-3", out.Headers["run_id"])
	assert.Equal(t, "uniform_grid", out.Headers["method"])
	assert.Equal(t, "2026-03-14T09:00:00Z", out.Headers["computed_at"])
	assert.Regexp(t, `^dir-[0-9a-f]{16}$`, string(out.Key))

	var res job.Result
	require.NoError(t, json.Unmarshal(out.Value, &res))
	assert.Equal(t, 4, res.NHypo)
	assert.Equal(t, []float64{3}, res.Periods)
	require.Len(t, res.Sites, 1)
	require.Len(t, res.Sites[0].FD, 1)
	assert.Positive(t, res.Sites[0].FD[0], "site beyond the east end should see forward directivity")
	assert.GreaterOrEqual(t, res.Sites[0].PhiRed[0], 0.0)
	assert.Nil(t, res.Sites[0].FDByHypocentre)
}

func TestDirectivityTransformer_IncludeHypocentres(t *testing.T) {
	req := computeRequest("run-4")
	req.IncludeHypocentres = true

	tfm := pipeline.NewTransformer(pipeline.NewEngineComputer(1), newTestMetrics(), slog.Default())
	out, err := tfm.Transform(context.Background(), makeRaw(t, req))
	require.NoError(t, err)

	var res job.Result
	require.NoError(t, json.Unmarshal(out.Value, &res))
	require.Len(t, res.Sites, 1)
	require.Len(t, res.Sites[0].FDByHypocentre, 1, "one row per period")
	assert.Len(t, res.Sites[0].FDByHypocentre[0], 4, "one column per hypocentre")
}

func TestDirectivityTransformer_Deterministic(t *testing.T) {
	job.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { job.SetClock(nil) })

	req := computeRequest("run-6")
	req.Sampling = job.SamplingSpec{Method: "latin_hypercube", NHypo: 16, Seed: 7}

	tfm := pipeline.NewTransformer(pipeline.NewEngineComputer(1), newTestMetrics(), slog.Default())

	first, err := tfm.Transform(context.Background(), makeRaw(t, req))
	require.NoError(t, err)
	second, err := tfm.Transform(context.Background(), makeRaw(t, req))
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value, "same request must serialize to identical bytes")
}

func TestDirectivityTransformer_InvalidJSON(t *testing.T) {
	tfm := pipeline.NewTransformer(pipeline.NewEngineComputer(1), newTestMetrics(), slog.Default())

	_, err := tfm.Transform(context.Background(), job.RawRequest{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestDirectivityTransformer_ComputeError(t *testing.T) {
	req := computeRequest("run-7")
	req.Periods = []float64{100} // outside the coefficient table

	tfm := pipeline.NewTransformer(pipeline.NewEngineComputer(1), newTestMetrics(), slog.Default())

	_, err := tfm.Transform(context.Background(), makeRaw(t, req))
	assert.ErrorIs(t, err, bea20.ErrPeriodRange)
}

// --- helpers ---

func computeRequest(runID string) job.Request {
	return job.Request{
		RunID: runID,
		Fault: job.FaultSpec{
			Name:   "test-fault",
			Planes: []job.PlaneSpec{{Strike: 90, Dip: 90, ZTop: 0, Width: 15, Length: 44.5}},
			Trace:  []job.TracePoint{{Lon: 0, Lat: 0}, {Lon: 0.4, Lat: 0}},
		},
		Event:    job.EventSpec{Magnitude: 7.2, Rake: 0},
		Sites:    []job.SiteSpec{{Lon: 0.6, Lat: 0.01}},
		Periods:  []float64{3},
		Sampling: job.SamplingSpec{Method: "uniform_grid", NStrike: 2, NDip: 2},
	}
}

func makeRaw(t *testing.T, req job.Request) job.RawRequest {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return job.RawRequest{
		Key:   []byte(req.RunID),
		Value: data,
		Topic: "directivity-requests",
	}
}
