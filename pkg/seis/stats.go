package seis

import (
	"fmt"
	"time"
)

// Stats is the metadata record attached to every trace.
//
// Known fields cover station identity, timing, and the receiver-function
// attributes computed by the event iterator. Anything else lives in Extra.
// Lookup resolves both through one name space; the known keys use the
// conventional lower-snake names ("back_azimuth", "sampling_rate", ...).
type Stats struct {
	Network  string `json:"network" bson:"network"`
	Station  string `json:"station" bson:"station"`
	Location string `json:"location" bson:"location"`
	Channel  string `json:"channel" bson:"channel"`

	StartTime    time.Time `json:"starttime" bson:"starttime"`
	SamplingRate float64   `json:"sampling_rate" bson:"sampling_rate"`

	// Receiver-function attributes, filled in by events.RFStats.
	Onset       time.Time `json:"onset,omitempty" bson:"onset,omitempty"`
	Phase       string    `json:"phase,omitempty" bson:"phase,omitempty"`
	Distance    float64   `json:"distance,omitempty" bson:"distance,omitempty"` // epicentral, degrees
	Azimuth     float64   `json:"azimuth,omitempty" bson:"azimuth,omitempty"`
	BackAzimuth float64   `json:"back_azimuth,omitempty" bson:"back_azimuth,omitempty"`
	Slowness    float64   `json:"slowness,omitempty" bson:"slowness,omitempty"` // s/deg
	EventID     string    `json:"event_id,omitempty" bson:"event_id,omitempty"`

	StationLatitude  float64 `json:"station_latitude,omitempty" bson:"station_latitude,omitempty"`
	StationLongitude float64 `json:"station_longitude,omitempty" bson:"station_longitude,omitempty"`
	EventLatitude    float64 `json:"event_latitude,omitempty" bson:"event_latitude,omitempty"`
	EventLongitude   float64 `json:"event_longitude,omitempty" bson:"event_longitude,omitempty"`
	EventDepthKM     float64 `json:"event_depth_km,omitempty" bson:"event_depth_km,omitempty"`
	EventMagnitude   float64 `json:"event_magnitude,omitempty" bson:"event_magnitude,omitempty"`

	// Profile attributes, filled in by profile binning.
	BoxPos    float64 `json:"box_pos,omitempty" bson:"box_pos,omitempty"`       // km along profile
	BoxLength float64 `json:"box_length,omitempty" bson:"box_length,omitempty"` // km
	Num       int     `json:"num,omitempty" bson:"num,omitempty"`               // traces stacked into this box

	// Extra holds arbitrary named attributes not covered by the fixed fields.
	Extra map[string]any `json:"extra,omitempty" bson:"extra,omitempty"`
}

// Lookup resolves a named attribute against the known fields first, then the
// Extra map. The boolean reports whether the name resolved at all.
func (s *Stats) Lookup(name string) (any, bool) {
	switch name {
	case "network":
		return s.Network, true
	case "station":
		return s.Station, true
	case "location":
		return s.Location, true
	case "channel":
		return s.Channel, true
	case "starttime":
		return s.StartTime, true
	case "sampling_rate":
		return s.SamplingRate, true
	case "onset":
		return s.Onset, true
	case "phase":
		return s.Phase, true
	case "distance":
		return s.Distance, true
	case "azimuth":
		return s.Azimuth, true
	case "back_azimuth":
		return s.BackAzimuth, true
	case "slowness":
		return s.Slowness, true
	case "event_id":
		return s.EventID, true
	case "station_latitude":
		return s.StationLatitude, true
	case "station_longitude":
		return s.StationLongitude, true
	case "event_latitude":
		return s.EventLatitude, true
	case "event_longitude":
		return s.EventLongitude, true
	case "event_depth_km":
		return s.EventDepthKM, true
	case "event_magnitude":
		return s.EventMagnitude, true
	case "box_pos":
		return s.BoxPos, true
	case "box_length":
		return s.BoxLength, true
	case "num":
		return s.Num, true
	}
	v, ok := s.Extra[name]
	return v, ok
}

// Float resolves a named attribute and coerces it to float64.
// Integers and float32 values stored in Extra coerce; everything else fails.
func (s *Stats) Float(name string) (float64, bool) {
	v, ok := s.Lookup(name)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// String formats a resolved attribute for use in group keys.
// Times use RFC3339Nano so equal instants produce equal strings.
func (s *Stats) String(name string) (string, bool) {
	v, ok := s.Lookup(name)
	if !ok {
		return "", false
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), true
	}
	return fmt.Sprint(v), true
}

// SetExtra stores an arbitrary named attribute, allocating the map on first use.
func (s *Stats) SetExtra(name string, v any) {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[name] = v
}
