// Package directivity computes hypocentre-averaged rupture-directivity
// adjustments to earthquake ground-motion predictions.
//
// Near a large rupture, ground motion in the direction the rupture
// propagates is systematically stronger than the azimuth-blind median of a
// ground-motion model, and weaker behind the rupture. For a fault source
// whose hypocentre is unknown a priori, the engine sweeps candidate
// hypocentres over the rupture surface, evaluates the Bayless, Somerville
// and Skarlatoudis (2020) adjustment model at every site for each candidate,
// and averages: the result is the expected log-space adjustment fD and the
// accompanying aleatory variability reduction phiRed, per site and spectral
// period.
//
// # Computation
//
// [ComputeFaultDirectivity] is the entry point for hazard work:
//
//	rupture  geometry from the fault catalog (planes + surface points)
//	sites    observation points
//	event    magnitude and rake
//	cfg      hypocentre sweep: method, resolution, seed
//	periods  spectral periods in seconds, within [bea20.MinPeriod, bea20.MaxPeriod]
//
// Site coordinates come from the GC2 system (package geometry), so
// multi-segment and kinked ruptures are handled without special cases. The
// per-hypocentre sweep fans out across sites; results are bit-identical
// regardless of worker count because each site's hypocentre loop runs in a
// fixed order.
//
// [ComputeDirectivityAtHypocentre] is the scenario variant: one known
// hypocentre, no averaging. A rupture carrying a pinned
// [seismic.RuptureGeometry.FixedHypocentre] short-circuits the sweep the
// same way.
//
// # Hypocentre sweeps
//
// Four methods are supported. The uniform grid places hypocentres at even
// open-interval fractions of the rupture and is fully deterministic; the
// jittered grid perturbs each cell with a seeded RNG. Latin hypercube and
// Monte Carlo draw fractional positions from empirical nucleation
// distributions conditioned on the event type (Normal along strike; Weibull
// or Gamma down dip), so sparse sweeps still concentrate candidates where
// hypocentres actually occur. Stochastic methods are reproducible for a
// fixed seed.
//
// # Conventions
//
// fD is additive in natural-log ground-motion space. phiRed is reported as a
// non-negative reduction; consumers subtract it from the phi sigma component
// of their base model. Results for the same inputs are reproducible across
// runs and machines.
package directivity
