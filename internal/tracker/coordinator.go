package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"backend-presence/internal/session"
)

const (
	defaultBatchSize = 6
	defaultRetention = 30 * 24 * time.Hour
)

// Coordinator owns the active session and applies region and coordinate
// events to it. Every state transition runs under one mutex, so two events
// are never processed concurrently against the same state. Repository
// failures inside event handlers are logged and not retried.
type Coordinator struct {
	mu            sync.Mutex
	store         Store
	provider      Provider
	sink          Sink
	logger        *log.Logger
	buf           *sampleBuffer
	active        *session.Session
	tracking      bool
	authorization AuthorizationStatus
	retention     time.Duration
}

type Option func(*Coordinator)

func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func WithSink(sink Sink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

func WithBatchSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.buf = newSampleBuffer(n)
		}
	}
}

func WithRetention(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.retention = d
		}
	}
}

func NewCoordinator(store Store, provider Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:         store,
		provider:      provider,
		sink:          noopSink{},
		logger:        log.New(log.Writer(), "[tracker] ", log.LstdFlags),
		buf:           newSampleBuffer(defaultBatchSize),
		authorization: AuthorizationNotDetermined,
		retention:     defaultRetention,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartTracking registers all active locations with the provider and resumes
// a session that survived a restart. Safe to call repeatedly.
func (c *Coordinator) StartTracking(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	locations, err := c.store.ActiveLocations(ctx)
	if err != nil {
		recordStoreError("active_locations")
		return fmt.Errorf("load active locations: %w", err)
	}
	for _, loc := range locations {
		c.provider.StartMonitoring(loc)
	}

	existing, err := c.store.ActiveSession(ctx)
	if err != nil {
		recordStoreError("active_session")
		return fmt.Errorf("load active session: %w", err)
	}
	if existing != nil {
		c.active = existing
		c.provider.StartHighFrequencyTracking()
		c.tracking = true
		c.logger.Printf("resumed session %s at location %s", existing.ID, existing.LocationID)
	}
	return nil
}

// StopTracking disables monitoring and high-frequency updates. It does not
// close an open session; pausing the signal source is orthogonal to the
// session lifecycle.
func (c *Coordinator) StopTracking() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.provider.StopAllMonitoring()
	c.provider.StopHighFrequencyTracking()
	c.tracking = false
}

// RefreshMonitoredLocations re-registers the active location set after the
// user edits locations. The open session, if any, is untouched.
func (c *Coordinator) RefreshMonitoredLocations(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	locations, err := c.store.ActiveLocations(ctx)
	if err != nil {
		recordStoreError("active_locations")
		return fmt.Errorf("load active locations: %w", err)
	}
	c.provider.StopAllMonitoring()
	for _, loc := range locations {
		c.provider.StartMonitoring(loc)
	}
	return nil
}

// StartSession opens a session manually. It is rejected with
// ErrSessionActive while any session is open; callers must end the current
// session first.
func (c *Coordinator) StartSession(ctx context.Context, locationID string) (session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return session.Session{}, ErrSessionActive
	}
	sess, ok := c.openLocked(ctx, locationID, time.Now())
	if !ok {
		return session.Session{}, fmt.Errorf("start session for %s failed", locationID)
	}
	return sess, nil
}

// EndActiveSession flushes buffered samples, closes the open session and
// disables high-frequency updates. No-op when no session is open.
func (c *Coordinator) EndActiveSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil
	}
	if !c.closeLocked(ctx, time.Now()) {
		return fmt.Errorf("end session %s failed", c.active.ID)
	}
	return nil
}

// PruneOldSamples deletes samples older than the configured retention window.
func (c *Coordinator) PruneOldSamples(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-c.retention)
	n, err := c.store.PruneSamples(ctx, cutoff)
	if err != nil {
		recordStoreError("prune_samples")
		return 0, fmt.Errorf("prune samples: %w", err)
	}
	if n > 0 {
		c.logger.Printf("pruned %d samples older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// Status is a snapshot of the coordinator for the API surface.
type Status struct {
	Tracking      bool                `json:"tracking"`
	Authorization AuthorizationStatus `json:"authorization"`
	BufferedCount int                 `json:"buffered_samples"`
	ActiveSession *session.Session    `json:"active_session,omitempty"`
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Tracking:      c.tracking,
		Authorization: c.authorization,
		BufferedCount: c.buf.len(),
	}
	if c.active != nil {
		copied := *c.active
		st.ActiveSession = &copied
	}
	return st
}

// HandleRegionEvent applies an enter or exit signal. Only entered events
// switch the session to a different location; duplicate enters and
// mismatched exits are ignored so the machine stays idempotent under event
// re-ordering.
func (c *Coordinator) HandleRegionEvent(ctx context.Context, ev RegionEvent) {
	queryStates := false

	c.mu.Lock()
	switch ev.Kind {
	case RegionEntered:
		recordEvent("entered")
		switch {
		case c.active == nil:
			c.openLocked(ctx, ev.LocationID, ev.Timestamp)
		case c.active.LocationID == ev.LocationID:
			// duplicate signal
		default:
			c.switchLocked(ctx, ev)
		}
	case RegionExited:
		recordEvent("exited")
		if c.active != nil && c.active.LocationID == ev.LocationID {
			if c.closeLocked(ctx, ev.Timestamp) {
				queryStates = true
			}
		}
	}
	c.mu.Unlock()

	// Issued outside the lock so the resulting state callbacks can re-enter.
	if queryStates {
		c.provider.RequestStateForAllRegions()
	}
}

// HandleRegionState applies a state-query result. Inside states only fill in
// a missing session; they never override an open one, which avoids flapping
// when a query lands mid-transition.
func (c *Coordinator) HandleRegionState(ctx context.Context, st RegionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recordEvent("state")
	if st.State != StateInside {
		return
	}
	if c.active == nil {
		c.openLocked(ctx, st.LocationID, time.Now())
		return
	}
	if c.active.LocationID != st.LocationID {
		c.logger.Printf("region %s reports inside while session %s is open at %s; ignoring",
			st.LocationID, c.active.ID, c.active.LocationID)
	}
}

// HandleLocationUpdate buffers a sample for the open session, flushing when
// the batch threshold is reached. Fixes without an open session are dropped.
func (c *Coordinator) HandleLocationUpdate(ctx context.Context, fix Fix) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recordEvent("fix")
	if c.active == nil {
		return
	}
	full := c.buf.append(sampleFromFix(c.active.ID, fix))
	recordBufferedSamples(c.buf.len())
	if full {
		c.flushLocked(ctx)
	}
}

func (c *Coordinator) setAuthorization(status AuthorizationStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.authorization = status
	if status == AuthorizationDenied {
		c.logger.Printf("location authorization denied")
	}
}

// openLocked starts a session. On failure the in-memory state is left
// exactly as it was before the call.
func (c *Coordinator) openLocked(ctx context.Context, locationID string, at time.Time) (session.Session, bool) {
	sess, err := c.store.StartSession(ctx, locationID, at)
	if err != nil {
		recordStoreError("start_session")
		c.logger.Printf("start session for %s failed: %v", locationID, err)
		return session.Session{}, false
	}
	c.active = &sess
	c.provider.StartHighFrequencyTracking()
	c.tracking = true
	c.sink.SessionStarted(sess)
	c.logger.Printf("session %s started at location %s", sess.ID, locationID)
	return sess, true
}

// closeLocked flushes the buffer and ends the active session at the given
// time. If the end write fails the in-memory session stays open so the
// store and the coordinator do not diverge.
func (c *Coordinator) closeLocked(ctx context.Context, at time.Time) bool {
	c.flushLocked(ctx)

	ended := *c.active
	if err := c.store.EndSession(ctx, ended.ID, at); err != nil {
		recordStoreError("end_session")
		c.logger.Printf("end session %s failed: %v", ended.ID, err)
		return false
	}
	ended.EndedAt = &at
	c.active = nil
	c.provider.StopHighFrequencyTracking()
	c.tracking = false
	c.sink.SessionEnded(ended)
	c.logger.Printf("session %s ended", ended.ID)
	return true
}

// switchLocked closes the current session and opens one for the entered
// location, both stamped with the event time. High-frequency tracking stays
// on across the boundary. If closing fails the switch is aborted so two
// sessions can never be open at once.
func (c *Coordinator) switchLocked(ctx context.Context, ev RegionEvent) {
	c.flushLocked(ctx)

	ended := *c.active
	if err := c.store.EndSession(ctx, ended.ID, ev.Timestamp); err != nil {
		recordStoreError("end_session")
		c.logger.Printf("switch aborted, end session %s failed: %v", ended.ID, err)
		return
	}
	ended.EndedAt = &ev.Timestamp
	c.active = nil
	c.sink.SessionEnded(ended)

	c.openLocked(ctx, ev.LocationID, ev.Timestamp)
}

// flushLocked hands the buffered samples to the store in one batch. A failed
// batch is dropped rather than requeued: bounded memory wins over lossless
// capture, and the drop is counted so callers can detect it.
func (c *Coordinator) flushLocked(ctx context.Context) {
	batch := c.buf.take()
	recordBufferedSamples(0)
	if len(batch) == 0 {
		return
	}

	if err := c.store.AddSamples(ctx, batch); err != nil {
		recordStoreError("add_samples")
		recordDroppedSamples(len(batch))
		c.sink.SamplesDropped(batch[0].SessionID, len(batch))
		c.logger.Printf("flush failed, dropped %d samples: %v", len(batch), err)
		return
	}
	c.sink.SamplesFlushed(batch[0].SessionID, len(batch))
}

func sampleFromFix(sessionID string, fix Fix) session.Sample {
	smp := session.Sample{
		SessionID:  sessionID,
		Lat:        fix.Lat,
		Lng:        fix.Lng,
		RecordedAt: fix.Timestamp,
		AccuracyM:  fix.AccuracyM,
		AltitudeM:  fix.AltitudeM,
	}
	if fix.VerticalAccuracyM >= 0 {
		v := fix.VerticalAccuracyM
		smp.VerticalAccuracyM = &v
	}
	if fix.SpeedMps >= 0 {
		v := fix.SpeedMps
		smp.SpeedMps = &v
	}
	if fix.CourseDeg >= 0 {
		v := fix.CourseDeg
		smp.CourseDeg = &v
	}
	return smp
}
