package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seismoworks/directivity"
)

// SiteResult holds the hypocentre-averaged adjustment for one site. FD and
// PhiRed are indexed by period, matching the result's period list.
type SiteResult struct {
	Lon    float64   `json:"lon"`
	Lat    float64   `json:"lat"`
	FD     []float64 `json:"fd"`
	PhiRed []float64 `json:"phi_red"`

	// FDByHypocentre carries the per-hypocentre adjustments, indexed
	// [period][hypocentre]. Populated only when the request asks for it.
	FDByHypocentre [][]float64 `json:"fd_by_hypocentre,omitempty"`
}

// Result is the outcome of one directivity job, produced to the result topic.
type Result struct {
	RunID      string       `json:"run_id"`
	RequestID  string       `json:"request_id"`
	FaultName  string       `json:"fault_name,omitempty"`
	Method     string       `json:"method"`
	NHypo      int          `json:"n_hypocentres"`
	Periods    []float64    `json:"periods"`
	Sites      []SiteResult `json:"sites"`
	ComputedAt time.Time    `json:"computed_at"`
}

// OutputMessage is a serialized result ready for the result topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// BuildResult assembles the wire result from the engine output. The engine
// result is read, never mutated, so cached results can be shared across jobs.
func BuildResult(req Request, res *directivity.Result) Result {
	out := Result{
		RunID:      req.RunID,
		RequestID:  req.RequestID(),
		FaultName:  req.Fault.Name,
		Method:     req.MethodLabel(),
		NHypo:      res.NHypo,
		Periods:    res.Periods,
		Sites:      make([]SiteResult, len(req.Sites)),
		ComputedAt: clock.Now().UTC(),
	}

	for i, site := range req.Sites {
		sr := SiteResult{
			Lon:    site.Lon,
			Lat:    site.Lat,
			FD:     res.FD[i],
			PhiRed: res.PhiRed[i],
		}
		if req.IncludeHypocentres && res.FDArray != nil {
			sr.FDByHypocentre = res.FDArray[i]
		}
		out.Sites[i] = sr
	}
	return out
}

// SerializeResult marshals a result into a sink message. The key is the
// deterministic request ID, so replays overwrite rather than duplicate under
// log compaction.
func SerializeResult(res Result) (OutputMessage, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize result: %w", err)
	}
	return OutputMessage{
		Key:   []byte(res.RequestID),
		Value: data,
		Headers: map[string]string{
			"run_id":      res.RunID,
			"method":      res.Method,
			"computed_at": res.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}
