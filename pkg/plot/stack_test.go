package plot

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/seis"
)

var plotEpoch = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

func rfTrace(station, channel string, baz, dist float64, data []float64) *seis.Trace {
	return &seis.Trace{
		Stats: seis.Stats{
			Network:      "XX",
			Station:      station,
			Channel:      channel,
			StartTime:    plotEpoch,
			SamplingRate: 10,
			Onset:        plotEpoch.Add(2 * time.Second),
			BackAzimuth:  baz,
			Distance:     dist,
		},
		Data: data,
	}
}

func rfStream(n int) seis.Stream {
	var st seis.Stream
	for i := 0; i < n; i++ {
		st = append(st, rfTrace("ABC", "LQZ", float64(i*40), 50+float64(i),
			[]float64{0, 0.2, 1, -0.4, 0.1, 0, -0.1, 0.05, 0, 0}))
	}
	return st
}

func TestRenderStackEmpty(t *testing.T) {
	svg, err := RenderStack(context.Background(), nil, StackOptions{})
	if err != nil {
		t.Fatalf("RenderStack: %v", err)
	}
	if svg != nil {
		t.Error("empty stream should yield no figure")
	}
}

func TestRenderStack(t *testing.T) {
	svg, err := RenderStack(context.Background(), rfStream(3), StackOptions{})
	if err != nil {
		t.Fatalf("RenderStack: %v", err)
	}
	s := string(svg)
	for _, want := range []string{
		"<svg", "</svg>",
		"3 traces  XX.ABC..LQZ",
		"time (s)",
		"baz (deg)", "dist (deg)",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("figure should contain %q", want)
		}
	}
}

func TestRenderStackNoTitleNoInfo(t *testing.T) {
	svg, err := RenderStack(context.Background(), rfStream(2), StackOptions{
		NoTitle: true,
		NoInfo:  true,
	})
	if err != nil {
		t.Fatalf("RenderStack: %v", err)
	}
	s := string(svg)
	if strings.Contains(s, "2 traces") {
		t.Error("title should be suppressed")
	}
	if strings.Contains(s, "baz (deg)") {
		t.Error("info columns should be suppressed")
	}
}

func TestRenderStackFill(t *testing.T) {
	svg, err := RenderStack(context.Background(), rfStream(1), StackOptions{
		FillPos: "#ff0000",
		FillNeg: "#0000ff",
	})
	if err != nil {
		t.Fatalf("RenderStack: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `fill="#ff0000"`) {
		t.Error("positive lobes should be filled")
	}
	if !strings.Contains(s, `fill="#0000ff"`) {
		t.Error("negative lobes should be filled")
	}
}

func TestRenderStackInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts StackOptions
	}{
		{"NegativeScale", StackOptions{Scale: -1}},
		{"NegativeWidth", StackOptions{FigWidth: -7}},
		{"BackwardsTrim", StackOptions{Trim: &Window{Start: 10, End: -5}}},
		{"NegativeDownsample", StackOptions{Downsample: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderStack(context.Background(), rfStream(1), tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %q, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestRenderStackEmptyAfterTrim(t *testing.T) {
	_, err := RenderStack(context.Background(), rfStream(1), StackOptions{
		Trim: &Window{Start: 100, End: 200},
	})
	if !errors.Is(err, errors.ErrCodeInvalidStream) {
		t.Errorf("error code = %q, want INVALID_STREAM", errors.GetCode(err))
	}
}

func TestRenderStackMultipleStationsWarns(t *testing.T) {
	var buf bytes.Buffer
	st := seis.Stream{
		rfTrace("ABC", "LQZ", 0, 50, []float64{0, 1, 0}),
		rfTrace("DEF", "LQZ", 0, 50, []float64{0, 1, 0}),
	}
	svg, err := RenderStack(context.Background(), st, StackOptions{
		Logger: log.New(&buf),
	})
	if err != nil {
		t.Fatalf("RenderStack: %v", err)
	}
	if svg == nil {
		t.Fatal("figure should still render without the stack band")
	}
	if !strings.Contains(buf.String(), "different stations") {
		t.Error("mixed stations should log a warning")
	}
}

func TestRenderStackDoesNotMutateInput(t *testing.T) {
	st := rfStream(1)
	before := len(st[0].Data)
	_, err := RenderStack(context.Background(), st, StackOptions{
		Trim:       &Window{Start: -1, End: 1},
		Downsample: 5,
	})
	if err != nil {
		t.Fatalf("RenderStack: %v", err)
	}
	if len(st[0].Data) != before {
		t.Error("input stream should be left untouched")
	}
}

func TestStackOptionsDefaults(t *testing.T) {
	var o StackOptions
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.Scale != 1 || o.FigWidth != 7 || o.TraceHeight != 0.5 || o.StackHeight != 0.5 {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if len(o.Info) != 2 {
		t.Fatalf("default info columns = %d, want 2", len(o.Info))
	}
	if o.Logger == nil {
		t.Error("logger default missing")
	}
}

func TestDefaultInfoIsFresh(t *testing.T) {
	a := DefaultInfo()
	a[0].Key = "mutated"
	if DefaultInfo()[0].Key != "back_azimuth" {
		t.Error("DefaultInfo should return a fresh slice each call")
	}
}
