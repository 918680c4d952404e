// Package seis provides the in-memory waveform model used throughout rfkit.
//
// The central types are [Trace], a single evenly sampled time series with a
// [Stats] metadata record, and [Stream], an ordered collection of traces.
// Streams are plain slices: callers own the backing collection and the
// package never mutates a stream it did not create, unless the method name
// says so (Trim, Decimate).
//
// # Metadata
//
// Stats is a typed record with a fixed set of known fields (station
// identifiers, timing, receiver-function attributes) plus an open Extra map
// for arbitrary named values. Lookup resolves both uniformly, so grouping
// and plotting code can address "onset" and a user-defined "quality" key the
// same way.
//
// # Gaps
//
// Missing samples are represented as NaN. Merge fills the space between
// non-contiguous segments with NaN and HasGaps reports their presence, which
// is how the event iterator detects gappy data.
package seis
