package session

import "time"

// Session is a contiguous span of presence at one monitored location.
// At most one session has a null ended_at.
type Session struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// Sample is a high-resolution fix recorded while a session is open.
// Optional fields are nil when the device reported them as unknown.
type Sample struct {
	ID                int64      `json:"id"`
	SessionID         string     `json:"session_id"`
	Lat               float64    `json:"lat"`
	Lng               float64    `json:"lng"`
	RecordedAt        time.Time  `json:"recorded_at"`
	AccuracyM         float64    `json:"accuracy_m"`
	AltitudeM         float64    `json:"altitude_m"`
	VerticalAccuracyM *float64   `json:"vertical_accuracy_m,omitempty"`
	SpeedMps          *float64   `json:"speed_mps,omitempty"`
	CourseDeg         *float64   `json:"course_deg,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
