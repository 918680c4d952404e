package fdsn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
)

const stationText = `#Network|Station|Location|Channel|Latitude|Longitude|Elevation|Depth|Azimuth|Dip|SensorDescription|Scale|ScaleFreq|ScaleUnits|SampleRate|StartTime|EndTime
IU|ANMO|00|BHZ|34.94591|-106.4572|1850.0|100.0|0.0|-90.0|Geotech KS-54000|3456610000.0|0.02|M/S|20.0|2018-07-09T20:45:00|
IU|ANMO|00|BHN|34.94591|-106.4572|1850.0|100.0|0.0|0.0|Geotech KS-54000|3456610000.0|0.02|M/S|20.0|2018-07-09T20:45:00|
IU|ANMO|00|BHE|34.94591|-106.4572|1850.0|100.0|90.0|0.0|Geotech KS-54000|3456610000.0|0.02|M/S|20.0|2018-07-09T20:45:00|2022-01-01T00:00:00
II|PFO|10|BHZ|33.6107|-116.45555|1280.0|5.3|0.0|-90.0|STS-1|3314400000.0|0.05|M/S|20.0|2005-02-25T00:00:00|
`

const eventText = `#EventID|Time|Latitude|Longitude|Depth/km|Author|Catalog|Contributor|ContributorID|MagType|Magnitude|MagAuthor|EventLocationName
us7000abcd|2023-05-01T11:51:00.123456|38.3215|142.3693|29.0|us|NEIC|us|us7000abcd|mww|7.1|us|Off Honshu
|2023-05-02T03:14:15|-3.2|100.9|15.0|us|NEIC|us|x|mb|5.6|us|Southern Sumatra
`

const geoCSVText = `# dataset: GeoCSV 2.0
# delimiter: ,
# field_unit: UTC, count
# field_type: datetime, integer
# SID: IU_ANMO_00_BHZ
# sample_count: 4
# sample_rate_hz: 20.0
Time, Sample
2023-05-01T12:00:00.000000Z, 100
2023-05-01T12:00:00.050000Z, 101
2023-05-01T12:00:00.100000Z, -99
2023-05-01T12:00:00.150000Z, 7
# dataset: GeoCSV 2.0
# SID: IU_ANMO_00_BHN
# sample_rate_hz: 20.0
Time, Sample
2023-05-01T12:00:00.000000Z, 1
2023-05-01T12:00:00.050000Z, 2
`

func TestParseStationText(t *testing.T) {
	inv, err := ParseStationText(stationText)
	if err != nil {
		t.Fatalf("ParseStationText: %v", err)
	}
	if len(inv.Stations) != 2 {
		t.Fatalf("got %d stations, want 2", len(inv.Stations))
	}
	anmo := inv.Stations[0]
	if anmo.Network != "IU" || anmo.Code != "ANMO" {
		t.Errorf("station identity: %s.%s", anmo.Network, anmo.Code)
	}
	if anmo.Latitude != 34.94591 || anmo.Longitude != -106.4572 {
		t.Errorf("station coordinates: %g, %g", anmo.Latitude, anmo.Longitude)
	}
	if len(anmo.Channels) != 3 {
		t.Fatalf("got %d channels, want 3", len(anmo.Channels))
	}
	if anmo.Channels[0].Code != "BHZ" || anmo.Channels[0].Location != "00" {
		t.Errorf("channel identity: %s.%s", anmo.Channels[0].Location, anmo.Channels[0].Code)
	}
	if !anmo.Channels[0].End.IsZero() {
		t.Error("open channel should have zero end time")
	}
	if anmo.Channels[2].End.IsZero() {
		t.Error("closed channel should carry its end time")
	}
}

func TestParseStationTextMalformed(t *testing.T) {
	_, err := ParseStationText("IU|ANMO|too|few|fields\n")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %q, want INVALID_FORMAT", errors.GetCode(err))
	}
}

func TestParseEventText(t *testing.T) {
	cat, err := ParseEventText(eventText)
	if err != nil {
		t.Fatalf("ParseEventText: %v", err)
	}
	if len(cat) != 2 {
		t.Fatalf("got %d events, want 2", len(cat))
	}
	ev := cat[0]
	if ev.ID != "us7000abcd" {
		t.Errorf("event id = %q", ev.ID)
	}
	if ev.Origin.Latitude != 38.3215 || ev.Origin.DepthKM != 29.0 || ev.Magnitude != 7.1 {
		t.Errorf("event fields: %+v", ev)
	}
	want := time.Date(2023, 5, 1, 11, 51, 0, 123456000, time.UTC)
	if !ev.Origin.Time.Equal(want) {
		t.Errorf("origin time = %v, want %v", ev.Origin.Time, want)
	}
	if cat[1].ID == "" {
		t.Error("missing event id should be generated")
	}
}

func TestParseGeoCSV(t *testing.T) {
	st, err := ParseGeoCSV(geoCSVText)
	if err != nil {
		t.Fatalf("ParseGeoCSV: %v", err)
	}
	if len(st) != 2 {
		t.Fatalf("got %d traces, want 2", len(st))
	}
	z := st[0]
	if z.ID() != "IU.ANMO.00.BHZ" {
		t.Errorf("trace id = %q", z.ID())
	}
	if z.Stats.SamplingRate != 20 {
		t.Errorf("sampling rate = %g", z.Stats.SamplingRate)
	}
	if len(z.Data) != 4 || z.Data[2] != -99 {
		t.Errorf("samples = %v", z.Data)
	}
	want := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	if !z.Stats.StartTime.Equal(want) {
		t.Errorf("start time = %v, want %v", z.Stats.StartTime, want)
	}
	if len(st[1].Data) != 2 {
		t.Errorf("second trace samples = %v", st[1].Data)
	}
}

func TestParseGeoCSVEmpty(t *testing.T) {
	_, err := ParseGeoCSV("# dataset: GeoCSV 2.0\n")
	if !errors.Is(err, errors.ErrCodeUnavailableWaveform) {
		t.Errorf("error code = %q, want UNAVAILABLE_WAVEFORM", errors.GetCode(err))
	}
}

func TestClientStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fdsnws/station/1/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("level") != "channel" {
			t.Error("stations must be queried at channel level")
		}
		w.Write([]byte(stationText))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	inv, err := c.Stations(context.Background(), StationQuery{Network: "IU"})
	if err != nil {
		t.Fatalf("Stations: %v", err)
	}
	if len(inv.Stations) != 2 {
		t.Errorf("got %d stations, want 2", len(inv.Stations))
	}
}

func TestClientWaveformsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Waveforms(context.Background(), "IU", "ANMO", "00", "BH?",
		time.Now().Add(-time.Hour), time.Now())
	if !errors.IsSkippable(err) {
		t.Errorf("204 should map to a skippable absence, got %v", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(eventText))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	cat, err := c.Events(context.Background(), EventQuery{MinMagnitude: 5})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
	if len(cat) != 2 {
		t.Errorf("got %d events, want 2", len(cat))
	}
}

func TestClientBadRequestDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Events(context.Background(), EventQuery{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}
