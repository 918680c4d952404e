package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfkit/rfkit/pkg/events"
	rfio "github.com/rfkit/rfkit/pkg/io"
	"github.com/rfkit/rfkit/pkg/seis"
)

func writeStreamFile(t *testing.T, path string, st seis.Stream) {
	t.Helper()
	if err := rfio.ExportJSON(st, path); err != nil {
		t.Fatal(err)
	}
}

func testCLI() *CLI {
	return &CLI{
		Logger: newLogger(io.Discard, log.InfoLevel),
		Config: DefaultConfig(),
	}
}

var fetchOrigin = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

func fetchTestInventory() *events.Inventory {
	open := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	sta := &events.Station{Network: "XX", Code: "ABC"}
	for _, cha := range []string{"BHZ", "BHN", "BHE"} {
		sta.Channels = append(sta.Channels, events.Channel{Code: cha, Start: open})
	}
	return &events.Inventory{Stations: []*events.Station{sta}}
}

func fetchTestCatalog() events.Catalog {
	return events.Catalog{{
		ID:        "ev1",
		Origin:    events.Origin{Time: fetchOrigin, Latitude: 50, DepthKM: 10},
		Magnitude: 6.1,
	}}
}

// stubWaveforms returns gap-free three-component data covering any request.
func stubWaveforms(_ context.Context, network, station, location, channel string,
	start, end time.Time) (seis.Stream, error) {
	n := int(end.Sub(start).Seconds() * 10)
	band := strings.TrimSuffix(channel, "?")
	var st seis.Stream
	for _, comp := range []string{"Z", "N", "E"} {
		tr := &seis.Trace{Data: make([]float64, n)}
		tr.Stats.Network = network
		tr.Stats.Station = station
		tr.Stats.Location = location
		tr.Stats.Channel = band + comp
		tr.Stats.StartTime = start
		tr.Stats.SamplingRate = 10
		st = append(st, tr)
	}
	return st, nil
}

func TestIteratePairsWritesStreams(t *testing.T) {
	c := testCLI()
	opts := &fetchOpts{
		phase:  "P",
		output: t.TempDir(),
		noTUI:  true,
	}

	written, err := c.iteratePairs(context.Background(),
		fetchTestCatalog(), fetchTestInventory(), stubWaveforms, opts, nil)
	if err != nil {
		t.Fatalf("iteratePairs: %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}

	path := filepath.Join(opts.output, "ev1_XX.ABC.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected stream file: %v", err)
	}
	st, err := rfio.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if len(st) != 3 {
		t.Errorf("got %d traces, want 3", len(st))
	}
	if st[0].Stats.EventID != "ev1" {
		t.Errorf("event id = %q", st[0].Stats.EventID)
	}
	if d := st[0].Stats.Distance; d < 49.9 || d > 50.1 {
		t.Errorf("distance = %g, want about 50", d)
	}
}

func TestIteratePairsOutOfRange(t *testing.T) {
	c := testCLI()
	opts := &fetchOpts{
		phase:  "P",
		output: t.TempDir(),
		noTUI:  true,
	}
	// 50 degrees is outside a custom 60..90 window, so nothing is fetched.
	written, err := c.iteratePairs(context.Background(),
		fetchTestCatalog(), fetchTestInventory(), stubWaveforms, opts, &[2]float64{60, 90})
	if err != nil {
		t.Fatalf("iteratePairs: %v", err)
	}
	if written != 0 {
		t.Errorf("written = %d, want 0", written)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := testCLI()
	backend := c.newCache(true)
	defer backend.Close()

	if err := backend.Set(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := backend.Get(context.Background(), "k"); ok {
		t.Error("null cache should never hit")
	}
}

func TestNewCacheFileBackend(t *testing.T) {
	c := testCLI()
	c.Config.Cache.Dir = t.TempDir()
	backend := c.newCache(false)
	defer backend.Close()

	if err := backend.Set(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := backend.Get(context.Background(), "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(data) != "v" {
		t.Errorf("data = %q", data)
	}
}
