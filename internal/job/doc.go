// Package job defines the wire envelopes for directivity compute work: the
// raw Kafka message consumed from the request topic, the parsed request
// schema, and the result payload produced after a hypocentre sweep.
//
// Request identifiers are deterministic digests of the compute inputs, so a
// replayed request keys the same result message and hits the same cache
// entry. The run identifier is caller-supplied correlation metadata and is
// excluded from the digest.
package job
