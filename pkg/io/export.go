// Package io provides JSON import and export for seismogram streams.
//
// The format is a JSON object with a "traces" array; each trace carries its
// full stats header and the raw sample values:
//
//	{
//	  "traces": [
//	    {"stats": {"network": "IU", "station": "ANMO", ...}, "data": [0.1, ...]}
//	  ]
//	}
//
// Files written by [ExportJSON] round-trip through [ImportJSON], so fetched
// streams can be plotted in a later invocation without refetching.
package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/seis"
)

type document struct {
	Traces []traceDoc `json:"traces"`
}

type traceDoc struct {
	Stats seis.Stats `json:"stats"`
	Data  []float64  `json:"data"`
}

// WriteJSON encodes a stream as JSON and writes it to w. The output can be
// re-imported with [ReadJSON].
func WriteJSON(st seis.Stream, w io.Writer) error {
	out := document{Traces: make([]traceDoc, len(st))}
	for i, tr := range st {
		out.Traces[i] = traceDoc{Stats: tr.Stats, Data: tr.Data}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode stream")
	}
	return nil
}

// ExportJSON writes a stream to a JSON file at path.
func ExportJSON(st seis.Stream, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(st, f)
}
