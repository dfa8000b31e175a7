package model

import (
	"encoding/json"
	"time"
)

// Peer is one aircraft seen by the radar node, as reported by /peermanager/status.
// Field names follow the node's JSON so the map page and the node share one shape.
type Peer struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Age              int64   `json:"age"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	Alt              int     `json:"alt"`
	GroundSpeed      int     `json:"groundSpeed"`
	GroundCourse     int     `json:"groundCourse"`
	Distance         float64 `json:"distance"`
	CourseTo         int     `json:"courseTo"`
	RelativeAltitude int     `json:"relativeAltitude"`
	PacketsReceived  int     `json:"packetsReceived"`
}

// UnmarshalJSON accepts any JSON number for the integer fields and truncates
// it toward zero, so one fractional value does not reject the whole report.
func (p *Peer) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID               string  `json:"id"`
		Name             string  `json:"name"`
		Age              float64 `json:"age"`
		Lat              float64 `json:"lat"`
		Lon              float64 `json:"lon"`
		Alt              float64 `json:"alt"`
		GroundSpeed      float64 `json:"groundSpeed"`
		GroundCourse     float64 `json:"groundCourse"`
		Distance         float64 `json:"distance"`
		CourseTo         float64 `json:"courseTo"`
		RelativeAltitude float64 `json:"relativeAltitude"`
		PacketsReceived  float64 `json:"packetsReceived"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Peer{
		ID:               raw.ID,
		Name:             raw.Name,
		Age:              int64(raw.Age),
		Lat:              raw.Lat,
		Lon:              raw.Lon,
		Alt:              int(raw.Alt),
		GroundSpeed:      int(raw.GroundSpeed),
		GroundCourse:     int(raw.GroundCourse),
		Distance:         raw.Distance,
		CourseTo:         int(raw.CourseTo),
		RelativeAltitude: int(raw.RelativeAltitude),
		PacketsReceived:  int(raw.PacketsReceived),
	}
	return nil
}

// PeerReport is the full peer manager payload.
type PeerReport struct {
	MyID        string `json:"myID"`
	Count       int    `json:"count"`
	CountActive int    `json:"countActive"`
	Peers       []Peer `json:"peers"`
}

// Snapshot is the latest known radar state served to the map page.
type Snapshot struct {
	Online      bool       `json:"online"`
	MyID        string     `json:"my_id"`
	Count       int        `json:"count"`
	CountActive int        `json:"count_active"`
	Peers       []Peer     `json:"peers"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}
