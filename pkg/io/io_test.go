package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/seis"
)

func sampleStream() seis.Stream {
	start := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	st := seis.Stream{}
	for _, cha := range []string{"BHZ", "BHN", "BHE"} {
		tr := &seis.Trace{Data: []float64{0, 1, -1, 0.5}}
		tr.Stats.Network = "IU"
		tr.Stats.Station = "ANMO"
		tr.Stats.Channel = cha
		tr.Stats.StartTime = start
		tr.Stats.SamplingRate = 20
		tr.Stats.Onset = start.Add(2 * time.Second)
		tr.Stats.Distance = 52.3
		st = append(st, tr)
	}
	return st
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.json")

	if err := ExportJSON(sampleStream(), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	st, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if len(st) != 3 {
		t.Fatalf("got %d traces, want 3", len(st))
	}
	if st[0].ID() != "IU.ANMO..BHZ" {
		t.Errorf("trace id = %q", st[0].ID())
	}
	if st[0].Stats.Distance != 52.3 {
		t.Errorf("distance = %g", st[0].Stats.Distance)
	}
	if st[1].Data[2] != -1 {
		t.Errorf("samples = %v", st[1].Data)
	}
}

func TestWriteJSONIncludesStats(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleStream(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	for _, want := range []string{`"network": "IU"`, `"distance": 52.3`, `"traces"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestReadJSONValidation(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"traces": [`},
		{"zero rate", `{"traces": [{"stats": {"network": "IU"}, "data": [1]}]}`},
		{"no samples", `{"traces": [{"stats": {"sampling_rate": 20}, "data": []}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %q, want INVALID_FORMAT", errors.GetCode(err))
			}
		})
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}
