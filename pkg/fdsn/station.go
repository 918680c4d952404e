package fdsn

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/events"
)

// StationQuery selects channels from the station service.
type StationQuery struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Start    time.Time
	End      time.Time
}

// Stations queries the station service at channel level and parses the text
// format into an inventory.
func (c *Client) Stations(ctx context.Context, q StationQuery) (*events.Inventory, error) {
	v := url.Values{"level": {"channel"}, "format": {"text"}}
	setIf := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setIf("network", q.Network)
	setIf("station", q.Station)
	setIf("location", q.Location)
	setIf("channel", q.Channel)
	if !q.Start.IsZero() {
		v.Set("starttime", fdsnTime(q.Start))
	}
	if !q.End.IsZero() {
		v.Set("endtime", fdsnTime(q.End))
	}

	body, err := c.get(ctx, "/fdsnws/station/1/query", v)
	if err != nil {
		return nil, err
	}
	return ParseStationText(string(body))
}

// ParseStationText parses the channel-level FDSN station text format:
//
//	#Network|Station|Location|Channel|Latitude|Longitude|Elevation|Depth|
//	Azimuth|Dip|SensorDescription|Scale|ScaleFreq|ScaleUnits|SampleRate|
//	StartTime|EndTime
func ParseStationText(text string) (*events.Inventory, error) {
	inv := &events.Inventory{}
	byKey := make(map[string]*events.Station)

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) < 16 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"station text line %d has %d fields, want 16+", lineNo+1, len(f))
		}
		lat, err1 := strconv.ParseFloat(f[4], 64)
		lon, err2 := strconv.ParseFloat(f[5], 64)
		elev, err3 := strconv.ParseFloat(f[6], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"station text line %d has bad coordinates", lineNo+1)
		}
		start, err := parseFdsnTime(f[15])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err,
				"station text line %d", lineNo+1)
		}
		var end time.Time
		if len(f) > 16 && strings.TrimSpace(f[16]) != "" {
			if end, err = parseFdsnTime(f[16]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err,
					"station text line %d", lineNo+1)
			}
		}

		key := f[0] + "." + f[1]
		sta, ok := byKey[key]
		if !ok {
			sta = &events.Station{
				Network:   f[0],
				Code:      f[1],
				Latitude:  lat,
				Longitude: lon,
				Elevation: elev,
			}
			byKey[key] = sta
			inv.Stations = append(inv.Stations, sta)
		}
		sta.Channels = append(sta.Channels, events.Channel{
			Location: f[2],
			Code:     f[3],
			Start:    start,
			End:      end,
		})
	}
	return inv, nil
}
