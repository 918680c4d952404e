// Package events assembles three-component waveform streams for earthquake
// catalog events and station inventories, attaching the receiver-function
// attributes (distance, azimuths, onset, slowness) each trace needs for
// later grouping and plotting.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Origin is an event origin: where and when the rupture happened.
type Origin struct {
	Time      time.Time `json:"time" bson:"time"`
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	DepthKM   float64   `json:"depth_km" bson:"depth_km"`
}

// Event is one catalog entry with its preferred origin.
type Event struct {
	ID        string  `json:"id" bson:"_id"`
	Origin    Origin  `json:"origin" bson:"origin"`
	Magnitude float64 `json:"magnitude" bson:"magnitude"`
}

// NewEvent builds an event with a generated identifier.
func NewEvent(o Origin, magnitude float64) Event {
	return Event{ID: uuid.NewString(), Origin: o, Magnitude: magnitude}
}

// Catalog is an ordered collection of events.
type Catalog []Event
