package fdsn

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/events"
	"github.com/rfkit/rfkit/pkg/seis"
)

// Waveforms fetches waveform data through the IRIS timeseries service in
// GeoCSV format. It satisfies events.WaveformFunc; wrap it with
// cache.Waveforms to avoid refetching.
func (c *Client) Waveforms(ctx context.Context, network, station, location, channel string,
	start, end time.Time) (seis.Stream, error) {
	if location == "" {
		location = "--" // the service spells the blank location code this way
	}
	v := url.Values{
		"net":    {network},
		"sta":    {station},
		"loc":    {location},
		"cha":    {channel},
		"start":  {fdsnTime(start)},
		"end":    {fdsnTime(end)},
		"format": {"geocsv"},
	}
	body, err := c.get(ctx, "/irisws/timeseries/1/query", v)
	if err != nil {
		return nil, err
	}
	return ParseGeoCSV(string(body))
}

// ParseGeoCSV parses GeoCSV timeseries output into a stream. Each dataset
// block carries "# key: value" headers (SID, sample_rate_hz) followed by
// time/sample rows; sampling is assumed even, so only the first row's time
// is read per block.
func ParseGeoCSV(text string) (seis.Stream, error) {
	var st seis.Stream
	var cur *seis.Trace

	flush := func() {
		if cur != nil && len(cur.Data) > 0 {
			st = append(st, cur)
		}
		cur = nil
	}

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			key, val, ok := strings.Cut(strings.TrimSpace(line[1:]), ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(strings.ToLower(key))
			val = strings.TrimSpace(val)
			switch key {
			case "dataset":
				flush()
				cur = &seis.Trace{}
			case "sid":
				if cur == nil {
					cur = &seis.Trace{}
				}
				parts := strings.Split(val, "_")
				if len(parts) >= 4 {
					cur.Stats.Network = parts[0]
					cur.Stats.Station = parts[1]
					cur.Stats.Location = parts[2]
					cur.Stats.Channel = parts[3]
				}
			case "sample_rate_hz":
				if cur == nil {
					cur = &seis.Trace{}
				}
				rate, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, errors.New(errors.ErrCodeInvalidFormat,
						"geocsv line %d: bad sample rate %q", lineNo+1, val)
				}
				cur.Stats.SamplingRate = rate
			}
			continue
		}

		ts, sample, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		sample = strings.TrimSpace(sample)
		val, err := strconv.ParseFloat(sample, 64)
		if err != nil {
			// Column header row ("Time, Sample").
			continue
		}
		if cur == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"geocsv line %d: sample row before any dataset header", lineNo+1)
		}
		if len(cur.Data) == 0 {
			when, err := parseFdsnTime(strings.TrimSpace(ts))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "geocsv line %d", lineNo+1)
			}
			cur.Stats.StartTime = when
		}
		cur.Data = append(cur.Data, val)
	}
	flush()

	if len(st) == 0 {
		return nil, errors.New(errors.ErrCodeUnavailableWaveform, "geocsv payload holds no samples")
	}
	return st, nil
}

var _ events.WaveformFunc = (*Client)(nil).Waveforms
