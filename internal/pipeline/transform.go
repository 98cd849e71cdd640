package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seismoworks/directivity"
	"github.com/seismoworks/directivity/internal/job"
	"github.com/seismoworks/directivity/internal/observability"
)

// EngineComputer runs jobs directly on the in-process directivity engine.
type EngineComputer struct {
	workers int
}

// NewEngineComputer creates a computer with the given sweep parallelism.
// Zero workers means one worker per CPU.
func NewEngineComputer(workers int) *EngineComputer {
	return &EngineComputer{workers: workers}
}

func (e *EngineComputer) Compute(_ context.Context, req job.Request) (*directivity.Result, error) {
	cfg, err := req.HypoConfig()
	if err != nil {
		return nil, err
	}

	var opts []directivity.Option
	if e.workers > 0 {
		opts = append(opts, directivity.WithWorkers(e.workers))
	}

	return directivity.ComputeFaultDirectivity(
		req.Rupture(), req.SiteList(), req.EventParameters(), cfg, req.Periods, opts...)
}

// DirectivityTransformer parses a raw request, runs the hypocentre sweep,
// and serializes the result. It implements Transformer.
type DirectivityTransformer struct {
	computer job.Computer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewTransformer creates a transformer backed by the given computer.
func NewTransformer(computer job.Computer, metrics *observability.Metrics, logger *slog.Logger) *DirectivityTransformer {
	return &DirectivityTransformer{computer: computer, metrics: metrics, logger: logger}
}

// Transform converts one raw request into a serialized result message.
func (t *DirectivityTransformer) Transform(ctx context.Context, raw job.RawRequest) (job.OutputMessage, error) {
	req, err := job.ParseRequest(raw)
	if err != nil {
		return job.OutputMessage{}, err
	}

	start := time.Now()
	res, err := t.computer.Compute(ctx, req)
	if err != nil {
		return job.OutputMessage{}, fmt.Errorf("compute directivity: %w", err)
	}
	elapsed := time.Since(start)

	result := job.BuildResult(req, res)
	t.metrics.ComputeDuration.WithLabelValues(result.Method).Observe(elapsed.Seconds())
	t.metrics.HypocentreCount.Observe(float64(result.NHypo))
	t.metrics.SiteCount.Observe(float64(len(result.Sites)))

	t.logger.Debug("job computed",
		"run_id", result.RunID,
		"request_id", result.RequestID,
		"method", result.Method,
		"sites", len(result.Sites),
		"hypocentres", result.NHypo,
		"elapsed", elapsed,
	)

	return job.SerializeResult(result)
}
