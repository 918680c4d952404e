package fdsn

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/events"
)

// EventQuery selects events from the event service.
type EventQuery struct {
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	Limit        int
}

// Events queries the event service and parses the text format into a catalog.
func (c *Client) Events(ctx context.Context, q EventQuery) (events.Catalog, error) {
	v := url.Values{"format": {"text"}, "orderby": {"time"}}
	if !q.Start.IsZero() {
		v.Set("starttime", fdsnTime(q.Start))
	}
	if !q.End.IsZero() {
		v.Set("endtime", fdsnTime(q.End))
	}
	if q.MinMagnitude > 0 {
		v.Set("minmagnitude", fmt.Sprintf("%g", q.MinMagnitude))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	body, err := c.get(ctx, "/fdsnws/event/1/query", v)
	if err != nil {
		return nil, err
	}
	return ParseEventText(string(body))
}

// ParseEventText parses the FDSN event text format:
//
//	#EventID|Time|Latitude|Longitude|Depth/km|Author|Catalog|Contributor|
//	ContributorID|MagType|Magnitude|MagAuthor|EventLocationName
//
// Events without an ID get a generated one.
func ParseEventText(text string) (events.Catalog, error) {
	var cat events.Catalog
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) < 11 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"event text line %d has %d fields, want 11+", lineNo+1, len(f))
		}
		when, err := parseFdsnTime(f[1])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "event text line %d", lineNo+1)
		}
		lat, err1 := strconv.ParseFloat(f[2], 64)
		lon, err2 := strconv.ParseFloat(f[3], 64)
		depth, err3 := strconv.ParseFloat(f[4], 64)
		mag, err4 := strconv.ParseFloat(f[10], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"event text line %d has bad numeric fields", lineNo+1)
		}

		ev := events.Event{
			ID: strings.TrimSpace(f[0]),
			Origin: events.Origin{
				Time:      when,
				Latitude:  lat,
				Longitude: lon,
				DepthKM:   depth,
			},
			Magnitude: mag,
		}
		if ev.ID == "" {
			ev = events.NewEvent(ev.Origin, ev.Magnitude)
		}
		cat = append(cat, ev)
	}
	return cat, nil
}
