package plot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/seis"
)

func boxTrace(pos, length float64, num int) *seis.Trace {
	return &seis.Trace{
		Stats: seis.Stats{
			Network:      "XX",
			Station:      "PROF",
			Channel:      "LQZ",
			StartTime:    plotEpoch,
			SamplingRate: 10,
			Onset:        plotEpoch.Add(2 * time.Second),
			BoxPos:       pos,
			BoxLength:    length,
			Num:          num,
		},
		Data: []float64{0, 0.3, 1, -0.5, 0.2, 0, -0.1, 0, 0, 0},
	}
}

func TestRenderProfileEmpty(t *testing.T) {
	svg, err := RenderProfile(context.Background(), nil, ProfileOptions{})
	if err != nil {
		t.Fatalf("RenderProfile: %v", err)
	}
	if svg != nil {
		t.Error("empty stream should yield no figure")
	}
}

func TestRenderProfile(t *testing.T) {
	st := seis.Stream{boxTrace(0, 10, 4), boxTrace(10, 10, 7), boxTrace(20, 10, 2)}
	svg, err := RenderProfile(context.Background(), st, ProfileOptions{
		FillPos: "#cc0000",
		FillNeg: "#3465a4",
	})
	if err != nil {
		t.Fatalf("RenderProfile: %v", err)
	}
	s := string(svg)
	for _, want := range []string{"<svg", "distance (km)", "time (s)", `fill="#cc0000"`} {
		if !strings.Contains(s, want) {
			t.Errorf("figure should contain %q", want)
		}
	}
	if strings.Contains(s, "depth (km)") {
		t.Error("depth axis should only appear when ticks are given")
	}
}

func TestRenderProfileMissingBoxGeometry(t *testing.T) {
	st := seis.Stream{boxTrace(0, 0, 1)}
	_, err := RenderProfile(context.Background(), st, ProfileOptions{})
	if !errors.Is(err, errors.ErrCodeInvalidStream) {
		t.Errorf("error code = %q, want INVALID_STREAM", errors.GetCode(err))
	}
}

func TestRenderProfileHistAndDepth(t *testing.T) {
	st := seis.Stream{boxTrace(0, 10, 4), boxTrace(10, 10, 9)}
	svg, err := RenderProfile(context.Background(), st, ProfileOptions{
		TopHist: true,
		DepthTicks: []DepthTick{
			{DepthKM: 50, TimeS: 0.2},
			{DepthKM: 100, TimeS: 0.6},
		},
	})
	if err != nil {
		t.Fatalf("RenderProfile: %v", err)
	}
	s := string(svg)
	for _, want := range []string{"max 9 traces per box", "depth (km)"} {
		if !strings.Contains(s, want) {
			t.Errorf("figure should contain %q", want)
		}
	}
}
