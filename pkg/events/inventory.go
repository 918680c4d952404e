package events

import (
	"fmt"
	"sort"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
)

// Channel is one recorded component of a station, with its availability
// window. A zero End means the channel is still open.
type Channel struct {
	Location string    `json:"location" bson:"location"`
	Code     string    `json:"code" bson:"code"` // e.g. "BHZ"
	Start    time.Time `json:"start" bson:"start"`
	End      time.Time `json:"end,omitempty" bson:"end,omitempty"`
}

// AvailableAt reports whether the channel was recording at t.
func (c *Channel) AvailableAt(t time.Time) bool {
	if t.Before(c.Start) {
		return false
	}
	return c.End.IsZero() || !t.After(c.End)
}

// Station holds the station coordinates and its channels.
type Station struct {
	Network   string    `json:"network" bson:"network"`
	Code      string    `json:"code" bson:"code"`
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	Elevation float64   `json:"elevation" bson:"elevation"`
	Channels  []Channel `json:"channels" bson:"channels"`
}

// Inventory is the station metadata the event iterator walks.
type Inventory struct {
	Stations []*Station `json:"stations" bson:"stations"`
}

// channelGroup is one (network, station, location, band) combination; the
// band is the channel code with the component stripped, so "BHZ", "BHN" and
// "BHE" collapse into one group queried as "BH?".
type channelGroup struct {
	station *Station
	loc     string
	band    string
	sample  Channel // representative channel for availability checks
}

func (g *channelGroup) seedID() string {
	return fmt.Sprintf("%s.%s.%s.%s?", g.station.Network, g.station.Code, g.loc, g.band)
}

// channelGroups collapses the inventory into distinct station/band groups,
// sorted by seed id so iteration order is deterministic.
func (inv *Inventory) channelGroups() []channelGroup {
	seen := make(map[string]bool)
	var groups []channelGroup
	for _, sta := range inv.Stations {
		for _, ch := range sta.Channels {
			if ch.Code == "" {
				continue
			}
			g := channelGroup{
				station: sta,
				loc:     ch.Location,
				band:    ch.Code[:len(ch.Code)-1],
				sample:  ch,
			}
			if seen[g.seedID()] {
				continue
			}
			seen[g.seedID()] = true
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].seedID() < groups[j].seedID() })
	return groups
}

// Coordinates returns the station coordinates for a channel group, failing
// with an unavailability error when the representative channel was not
// recording at t.
func (g *channelGroup) coordinates(t time.Time) (lat, lon float64, err error) {
	if !g.sample.AvailableAt(t) {
		return 0, 0, errors.New(errors.ErrCodeUnavailableStation,
			"channel %s not available at %s", g.seedID(), t.UTC().Format(time.RFC3339))
	}
	return g.station.Latitude, g.station.Longitude, nil
}
