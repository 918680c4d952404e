package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/seis"
)

// ReadJSON decodes a JSON stream document from r.
//
// Every trace must carry a positive sampling rate and at least one sample;
// malformed documents return an INVALID_FORMAT error naming the offending
// trace. The returned stream is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (seis.Stream, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode stream")
	}

	st := make(seis.Stream, 0, len(data.Traces))
	for i, td := range data.Traces {
		if td.Stats.SamplingRate <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"trace %d: sampling rate must be positive", i)
		}
		if len(td.Data) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "trace %d: no samples", i)
		}
		st = append(st, &seis.Trace{Stats: td.Stats, Data: td.Data})
	}
	return st, nil
}

// ImportJSON reads a JSON file at path and returns the decoded stream.
// A missing file maps to FILE_NOT_FOUND.
func ImportJSON(path string) (seis.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
