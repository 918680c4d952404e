package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rfkit/rfkit/pkg/plot"
	"github.com/rfkit/rfkit/pkg/seis"
)

// fetchTestStream builds a minimal annotated three-component stream.
func fetchTestStream(eventID string) seis.Stream {
	start := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	st := seis.Stream{}
	for _, cha := range []string{"BHZ", "BHN", "BHE"} {
		tr := &seis.Trace{Data: []float64{0, 1, 0, -1}}
		tr.Stats.Network = "IU"
		tr.Stats.Station = "ANMO"
		tr.Stats.Channel = cha
		tr.Stats.StartTime = start
		tr.Stats.SamplingRate = 20
		tr.Stats.Onset = start.Add(2 * time.Second)
		tr.Stats.EventID = eventID
		st = append(st, tr)
	}
	return st
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *plot.Window
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "basic", in: "-5:22", want: &plot.Window{Start: -5, End: 22}},
		{name: "spaces", in: " -5 : 22 ", want: &plot.Window{Start: -5, End: 22}},
		{name: "no separator", in: "5", wantErr: true},
		{name: "bad start", in: "x:2", wantErr: true},
		{name: "bad end", in: "1:y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWindow(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWindow(%q): %v", tt.in, err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got != nil && (got.Start != tt.want.Start || got.End != tt.want.End) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDepthTicks(t *testing.T) {
	ticks, err := parseDepthTicks("30:3.5, 50:5.9")
	if err != nil {
		t.Fatalf("parseDepthTicks: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("got %d ticks, want 2", len(ticks))
	}
	if ticks[0].DepthKM != 30 || ticks[0].TimeS != 3.5 {
		t.Errorf("first tick: %+v", ticks[0])
	}
	if ticks[1].DepthKM != 50 || ticks[1].TimeS != 5.9 {
		t.Errorf("second tick: %+v", ticks[1])
	}

	if _, err := parseDepthTicks("30"); err == nil {
		t.Error("missing separator should error")
	}
	if _, err := parseDepthTicks("a:1"); err == nil {
		t.Error("bad depth should error")
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("", "streams/ev1_IU.ANMO.json"); got != "streams/ev1_IU.ANMO.svg" {
		t.Errorf("derived path = %q", got)
	}
	if got := outputPath("fig.svg", "in.json"); got != "fig.svg" {
		t.Errorf("explicit path = %q", got)
	}
}

func TestStationMarksDeduplicates(t *testing.T) {
	st := fetchTestStream("ev1")
	st = append(st, fetchTestStream("ev2")...)
	for _, tr := range st {
		tr.Stats.StationLatitude = 34.9
		tr.Stats.StationLongitude = -106.5
	}

	marks := stationMarks(st)
	if len(marks) != 1 {
		t.Fatalf("got %d marks, want 1", len(marks))
	}
	if marks[0].Label != "ANMO" || marks[0].Lat != 34.9 {
		t.Errorf("mark: %+v", marks[0])
	}
}

func TestLoadStreamsConcatenates(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
	}
	writeStreamFile(t, paths[0], fetchTestStream("ev1"))
	writeStreamFile(t, paths[1], fetchTestStream("ev2"))

	st, err := loadStreams(paths)
	if err != nil {
		t.Fatalf("loadStreams: %v", err)
	}
	if len(st) != 6 {
		t.Errorf("got %d traces, want 6", len(st))
	}
}
