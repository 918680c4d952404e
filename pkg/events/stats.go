package events

import (
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/geo"
	"github.com/rfkit/rfkit/pkg/seis"
)

// ArrivalModel predicts the arrival of a seismic phase at an epicentral
// distance. Implementations return an unavailability error when the phase
// does not arrive at that distance.
type ArrivalModel interface {
	// Arrival returns the travel time from the origin and the ray
	// parameter (slowness, s/deg) of the given phase.
	Arrival(phase string, distDeg, depthKM float64) (travel time.Duration, slowness float64, err error)
}

// SurfaceFocusModel is a coarse built-in arrival model, linearly interpolating
// tabulated surface-focus travel times for direct P and S. It is good to a
// few seconds, enough for choosing request windows; inject a proper
// travel-time model where onset precision matters.
type SurfaceFocusModel struct{}

type ttRow struct {
	deg      float64
	travelS  float64
	slowness float64 // s/deg
}

var ttTables = map[string][]ttRow{
	"P": {
		{30, 372, 8.9},
		{40, 458, 8.4},
		{50, 538, 7.8},
		{60, 612, 7.1},
		{70, 680, 6.4},
		{80, 742, 5.7},
		{90, 799, 5.0},
	},
	"S": {
		{50, 973, 14.3},
		{60, 1107, 13.0},
		{70, 1231, 11.7},
		{80, 1343, 10.4},
		{85, 1395, 9.7},
	},
}

// Arrival implements ArrivalModel. Only the final leg of the phase name is
// considered, so "P", "PP" and "Pdiff" all use the P table.
func (SurfaceFocusModel) Arrival(phase string, distDeg, _ float64) (time.Duration, float64, error) {
	table, ok := ttTables[phaseMethod(phase)]
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput,
			"unknown phase %q", phase)
	}
	if distDeg < table[0].deg || distDeg > table[len(table)-1].deg {
		return 0, 0, errors.New(errors.ErrCodeUnavailableStation,
			"no %s arrival at %.1f degrees", phase, distDeg)
	}
	for i := 1; i < len(table); i++ {
		if distDeg <= table[i].deg {
			lo, hi := table[i-1], table[i]
			f := (distDeg - lo.deg) / (hi.deg - lo.deg)
			travel := lo.travelS + f*(hi.travelS-lo.travelS)
			slow := lo.slowness + f*(hi.slowness-lo.slowness)
			return time.Duration(travel * float64(time.Second)), slow, nil
		}
	}
	last := table[len(table)-1]
	return time.Duration(last.travelS * float64(time.Second)), last.slowness, nil
}

// phaseMethod reduces a phase name to the letter of its final leg.
func phaseMethod(phase string) string {
	if phase == "" {
		return ""
	}
	m := phase[len(phase)-1:]
	if m == "p" {
		m = "P"
	}
	if m == "s" {
		m = "S"
	}
	return m
}

// defaultDistRange returns the accepted epicentral distance window for a
// phase, in degrees.
func defaultDistRange(phase string) [2]float64 {
	if phaseMethod(phase) == "S" {
		return [2]float64{50, 85}
	}
	return [2]float64{30, 90}
}

// StatsOptions configures RFStats.
type StatsOptions struct {
	Phase     string       // default "P"
	DistRange *[2]float64  // accepted distance window, default per phase
	Model     ArrivalModel // default SurfaceFocusModel
}

func (o *StatsOptions) setDefaults() {
	if o.Phase == "" {
		o.Phase = "P"
	}
	if o.Model == nil {
		o.Model = SurfaceFocusModel{}
	}
	if o.DistRange == nil {
		r := defaultDistRange(o.Phase)
		o.DistRange = &r
	}
}

// RFStats computes the receiver-function attributes of one event/station
// pair: epicentral distance, azimuth and back-azimuth, and the predicted
// phase onset and slowness.
//
// A nil Stats with nil error means the pair should be skipped: the distance
// falls outside the accepted window or the phase does not arrive there.
// Invalid inputs (unknown phase) return an error.
func RFStats(stationLat, stationLon float64, ev Event, opts StatsOptions) (*seis.Stats, error) {
	opts.setDefaults()
	dist := geo.Degrees(ev.Origin.Latitude, ev.Origin.Longitude, stationLat, stationLon)
	if dist < opts.DistRange[0] || dist > opts.DistRange[1] {
		return nil, nil
	}
	travel, slowness, err := opts.Model.Arrival(opts.Phase, dist, ev.Origin.DepthKM)
	if err != nil {
		if errors.IsSkippable(err) {
			return nil, nil
		}
		return nil, err
	}

	azi, baz := geo.Azimuths(ev.Origin.Latitude, ev.Origin.Longitude, stationLat, stationLon)
	return &seis.Stats{
		Phase:            opts.Phase,
		Distance:         dist,
		Azimuth:          azi,
		BackAzimuth:      baz,
		Slowness:         slowness,
		Onset:            ev.Origin.Time.Add(travel),
		EventID:          ev.ID,
		StationLatitude:  stationLat,
		StationLongitude: stationLon,
		EventLatitude:    ev.Origin.Latitude,
		EventLongitude:   ev.Origin.Longitude,
		EventDepthKM:     ev.Origin.DepthKM,
		EventMagnitude:   ev.Magnitude,
	}, nil
}
