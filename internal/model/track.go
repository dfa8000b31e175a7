package model

import "time"

// TrackPoint is one recorded position of a peer.
// This is a pure domain model with no database-specific dependencies or tags.
type TrackPoint struct {
	PeerID       string    `json:"peer_id"`
	Name         string    `json:"name"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Alt          int       `json:"alt"`
	GroundSpeed  int       `json:"ground_speed"`
	GroundCourse int       `json:"ground_course"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// TrackPointFromPeer captures p's position at t.
func TrackPointFromPeer(p Peer, t time.Time) TrackPoint {
	return TrackPoint{
		PeerID:       p.ID,
		Name:         p.Name,
		Lat:          p.Lat,
		Lon:          p.Lon,
		Alt:          p.Alt,
		GroundSpeed:  p.GroundSpeed,
		GroundCourse: normalizeCourse(p.GroundCourse),
		RecordedAt:   t,
	}
}

// normalizeCourse maps any heading in degrees onto [0, 360).
func normalizeCourse(c int) int {
	return ((c % 360) + 360) % 360
}
