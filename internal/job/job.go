package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seismoworks/directivity"
	"github.com/seismoworks/directivity/seismic"
)

// RawRequest is an unparsed message consumed from the request topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time

	// Commit acknowledges the message's offset once it has been handled.
	// May be nil when the source does not track offsets.
	Commit func(ctx context.Context) error
}

// PlaneSpec describes one rectangular segment of the rupture surface.
type PlaneSpec struct {
	Strike float64 `json:"strike"`
	Dip    float64 `json:"dip"`
	ZTop   float64 `json:"z_top_km"`
	Width  float64 `json:"width_km"`
	Length float64 `json:"length_km"`
}

// TracePoint is one vertex of the rupture surface mesh.
type TracePoint struct {
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Depth float64 `json:"depth_km"`
}

// HypocentrePin fixes the nucleation point, replacing the sweep with a
// single scenario evaluation.
type HypocentrePin struct {
	StrikeFraction float64 `json:"strike_fraction"`
	DipFraction    float64 `json:"dip_fraction"`
}

// FaultSpec is the wire form of a rupture geometry.
type FaultSpec struct {
	Name       string         `json:"name,omitempty"`
	Planes     []PlaneSpec    `json:"planes"`
	Trace      []TracePoint   `json:"trace"`
	Hypocentre *HypocentrePin `json:"hypocentre,omitempty"`
}

// EventSpec carries the scenario earthquake parameters.
type EventSpec struct {
	Magnitude float64 `json:"magnitude"`
	Rake      float64 `json:"rake_deg"`
}

// SiteSpec is one location where the adjustment is evaluated.
type SiteSpec struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// SamplingSpec selects the hypocentre sweep. Grid methods use the strike and
// dip counts; the stochastic methods use the total count and seed.
type SamplingSpec struct {
	Method  string `json:"method"`
	NStrike int    `json:"n_strike,omitempty"`
	NDip    int    `json:"n_dip,omitempty"`
	NHypo   int    `json:"n_hypo,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
}

// Request is a directivity computation job consumed from the request topic.
type Request struct {
	RunID    string       `json:"run_id,omitempty"`
	Fault    FaultSpec    `json:"fault"`
	Event    EventSpec    `json:"event"`
	Sites    []SiteSpec   `json:"sites"`
	Periods  []float64    `json:"periods"`
	Sampling SamplingSpec `json:"sampling"`

	// IncludeHypocentres asks for the per-hypocentre adjustment columns in
	// the result payload. They are diagnostic and can be large, so the
	// default is averages only.
	IncludeHypocentres bool `json:"include_hypocentres,omitempty"`
}

// Computer produces a directivity result for a parsed job request.
type Computer interface {
	Compute(ctx context.Context, req Request) (*directivity.Result, error)
}

// ParseRequest deserializes a RawRequest's value into a Request. Requests
// without a run identifier are assigned a fresh one for correlation.
func ParseRequest(raw RawRequest) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return Request{}, fmt.Errorf("parse job request: %w", err)
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	return req, nil
}

// RequestID produces a deterministic ID from the job's compute inputs.
// Identical geometry, event, sites, periods, and sampling hash to the same
// ID, so replayed requests key idempotent result messages and hit the same
// cache entry. The run identifier and output flags are excluded.
func (r *Request) RequestID() string {
	var b strings.Builder
	fmt.Fprintf(&b, "event|%g|%g\n", r.Event.Magnitude, r.Event.Rake)
	for _, p := range r.Fault.Planes {
		fmt.Fprintf(&b, "plane|%g|%g|%g|%g|%g\n", p.Strike, p.Dip, p.ZTop, p.Width, p.Length)
	}
	for _, pt := range r.Fault.Trace {
		fmt.Fprintf(&b, "trace|%g|%g|%g\n", pt.Lon, pt.Lat, pt.Depth)
	}
	if h := r.Fault.Hypocentre; h != nil {
		fmt.Fprintf(&b, "pin|%g|%g\n", h.StrikeFraction, h.DipFraction)
	} else {
		s := r.Sampling
		fmt.Fprintf(&b, "sweep|%s|%d|%d|%d|%d\n", s.Method, s.NStrike, s.NDip, s.NHypo, s.Seed)
	}
	for _, site := range r.Sites {
		fmt.Fprintf(&b, "site|%g|%g\n", site.Lon, site.Lat)
	}
	for _, p := range r.Periods {
		fmt.Fprintf(&b, "period|%g\n", p)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return "dir-" + hex.EncodeToString(hash[:8])
}

// MethodLabel names the sweep for result headers and metrics. A pinned
// hypocentre reports "fixed" regardless of any sampling block.
func (r *Request) MethodLabel() string {
	if r.Fault.Hypocentre != nil {
		return "fixed"
	}
	if m, err := directivity.ParseHypoMethod(r.Sampling.Method); err == nil {
		return m.String()
	}
	return r.Sampling.Method
}

// Rupture converts the wire geometry into the engine's rupture type.
func (r *Request) Rupture() seismic.RuptureGeometry {
	planes := make([]seismic.FaultPlane, len(r.Fault.Planes))
	for i, p := range r.Fault.Planes {
		planes[i] = seismic.FaultPlane{
			Strike: p.Strike,
			Dip:    p.Dip,
			DTop:   p.ZTop,
			Width:  p.Width,
			Length: p.Length,
		}
	}

	points := make([]seismic.SurfacePoint, len(r.Fault.Trace))
	for i, pt := range r.Fault.Trace {
		points[i] = seismic.SurfacePoint{Lon: pt.Lon, Lat: pt.Lat, Depth: pt.Depth}
	}

	var pin *seismic.FixedHypocentre
	if h := r.Fault.Hypocentre; h != nil {
		pin = &seismic.FixedHypocentre{
			StrikeFraction: h.StrikeFraction,
			DipFraction:    h.DipFraction,
		}
	}

	return seismic.RuptureGeometry{Planes: planes, Points: points, FixedHypocentre: pin}
}

// EventParameters converts the wire event block into the engine's type.
func (r *Request) EventParameters() seismic.EventParameters {
	return seismic.EventParameters{Mw: r.Event.Magnitude, Rake: r.Event.Rake}
}

// SiteList converts the wire sites into the engine's type.
func (r *Request) SiteList() []seismic.Site {
	sites := make([]seismic.Site, len(r.Sites))
	for i, s := range r.Sites {
		sites[i] = seismic.Site{Lon: s.Lon, Lat: s.Lat}
	}
	return sites
}

// HypoConfig parses the sampling block into a sweep configuration. Pinned
// requests return the zero config, which the engine ignores.
func (r *Request) HypoConfig() (directivity.HypoConfig, error) {
	if r.Fault.Hypocentre != nil {
		return directivity.HypoConfig{}, nil
	}
	m, err := directivity.ParseHypoMethod(r.Sampling.Method)
	if err != nil {
		return directivity.HypoConfig{}, err
	}
	return directivity.HypoConfig{
		Method:  m,
		NStrike: r.Sampling.NStrike,
		NDip:    r.Sampling.NDip,
		NHypo:   r.Sampling.NHypo,
		Seed:    r.Sampling.Seed,
	}, nil
}
