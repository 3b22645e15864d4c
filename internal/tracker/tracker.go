// Package tracker turns geofence region events and raw coordinate fixes into
// durable presence sessions with batched location samples.
package tracker

import (
	"context"
	"errors"
	"time"

	"backend-presence/internal/location"
	"backend-presence/internal/session"
)

// ErrSessionActive is returned when a manual session start would overlap an
// already open session.
var ErrSessionActive = errors.New("a session is already active")

type EventKind string

const (
	RegionEntered EventKind = "entered"
	RegionExited  EventKind = "exited"
)

// RegionEvent is a transient enter/exit signal for one monitored location.
type RegionEvent struct {
	LocationID string
	Timestamp  time.Time
	Kind       EventKind
}

type RegionStateValue string

const (
	StateInside  RegionStateValue = "inside"
	StateOutside RegionStateValue = "outside"
	StateUnknown RegionStateValue = "unknown"
)

// RegionState is produced only in response to RequestStateForAllRegions.
type RegionState struct {
	LocationID string
	State      RegionStateValue
}

// Fix is a raw coordinate update. VerticalAccuracyM, SpeedMps and CourseDeg
// carry a negative value when the device reported them as unknown.
type Fix struct {
	Lat               float64
	Lng               float64
	Timestamp         time.Time
	AccuracyM         float64
	AltitudeM         float64
	VerticalAccuracyM float64
	SpeedMps          float64
	CourseDeg         float64
}

type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"
)

// Provider is the geofence/positioning source the coordinator drives.
// Implementations must not call back into the coordinator from these methods.
type Provider interface {
	StartMonitoring(loc location.Location)
	StopAllMonitoring()
	StartHighFrequencyTracking()
	StopHighFrequencyTracking()
	RequestStateForAllRegions()
}

// Store is the durable repository for sessions and samples.
type Store interface {
	ActiveLocations(ctx context.Context) ([]location.Location, error)
	ActiveSession(ctx context.Context) (*session.Session, error)
	StartSession(ctx context.Context, locationID string, at time.Time) (session.Session, error)
	EndSession(ctx context.Context, id string, at time.Time) error
	AddSamples(ctx context.Context, samples []session.Sample) error
	PruneSamples(ctx context.Context, olderThan time.Time) (int64, error)
}

// Sink observes session transitions and buffer activity. It replaces inline
// debug prints so tests and live streams can watch the same events.
type Sink interface {
	SessionStarted(sess session.Session)
	SessionEnded(sess session.Session)
	SamplesFlushed(sessionID string, count int)
	SamplesDropped(sessionID string, count int)
}

type noopSink struct{}

func (noopSink) SessionStarted(session.Session)  {}
func (noopSink) SessionEnded(session.Session)    {}
func (noopSink) SamplesFlushed(string, int)      {}
func (noopSink) SamplesDropped(string, int)      {}
