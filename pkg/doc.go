// Package pkg provides the core libraries for rfkit receiver function
// processing and plotting.
//
// # Overview
//
// rfkit fetches teleseismic event seismograms, annotates them with receiver
// function statistics, and renders them as SVG figures. The pkg directory is
// organized by concern:
//
//  1. [seis] - Stream, trace, and stats types with trim/merge/stack operations
//  2. [events] - Catalog and inventory boundary types, event iteration, RF statistics
//  3. [geo] - Geodesy helpers, solver and projector capability interfaces
//  4. [plot] - Stack, profile, and map SVG renderers
//  5. [fdsn] - FDSN web service clients (stations, events, waveforms)
//  6. [cache], [store] - Waveform cache and figure store backends
//
// # Architecture
//
// The typical data flow through rfkit:
//
//	FDSN services (catalog, inventory, waveforms)
//	         ↓
//	    [events] package (iterate pairs, window, annotate)
//	         ↓
//	    [seis] package (trim, merge, stack)
//	         ↓
//	    [plot] package (stack / profile / map figures)
//	         ↓
//	    SVG output, served by internal/web
//
// Ambient concerns live in [errors] (coded errors), [observability] (hook
// registries), [httputil] (retries), [io] (stream JSON files), and
// [buildinfo].
package pkg
