// Package geofence implements the tracker's provider interface with
// server-side circular-region evaluation of device fixes.
package geofence

import (
	"context"
	"sort"
	"sync"

	"backend-presence/internal/location"
	"backend-presence/internal/shared/geo"
	"backend-presence/internal/tracker"
)

// Callbacks receives the events the evaluator derives from incoming fixes.
// Satisfied by *tracker.Router.
type Callbacks interface {
	OnRegionEvent(ctx context.Context, ev tracker.RegionEvent)
	OnRegionState(ctx context.Context, st tracker.RegionState)
	OnLocationUpdate(ctx context.Context, fix tracker.Fix)
}

// Evaluator tracks which monitored regions currently contain the device and
// emits enter/exit events on transitions. Callbacks are always invoked
// outside the evaluator's lock so handlers may call back into it.
type Evaluator struct {
	mu        sync.Mutex
	callbacks Callbacks
	regions   map[string]location.Location
	inside    map[string]bool
	lastFix   *tracker.Fix
	highFreq  bool
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		regions: map[string]location.Location{},
		inside:  map[string]bool{},
	}
}

// Bind attaches the callback target. Must be called before any fix arrives.
func (e *Evaluator) Bind(cb Callbacks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = cb
}

func (e *Evaluator) StartMonitoring(loc location.Location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regions[loc.ID] = loc
}

func (e *Evaluator) StopAllMonitoring() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regions = map[string]location.Location{}
	e.inside = map[string]bool{}
}

func (e *Evaluator) StartHighFrequencyTracking() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highFreq = true
}

func (e *Evaluator) StopHighFrequencyTracking() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highFreq = false
}

// RequestStateForAllRegions reports inside/outside for every monitored
// region based on the last seen fix, or unknown when no fix has arrived yet.
func (e *Evaluator) RequestStateForAllRegions() {
	e.mu.Lock()
	cb := e.callbacks
	states := make([]tracker.RegionState, 0, len(e.regions))
	for id, loc := range e.regions {
		st := tracker.RegionState{LocationID: id, State: tracker.StateUnknown}
		if e.lastFix != nil {
			if contains(loc, e.lastFix.Lat, e.lastFix.Lng) {
				st.State = tracker.StateInside
			} else {
				st.State = tracker.StateOutside
			}
		}
		states = append(states, st)
	}
	e.mu.Unlock()

	if cb == nil {
		return
	}
	sort.Slice(states, func(i, j int) bool { return states[i].LocationID < states[j].LocationID })
	for _, st := range states {
		cb.OnRegionState(context.Background(), st)
	}
}

// Observe ingests one device fix: it emits enter/exit events for region
// transitions and forwards the fix while high-frequency tracking is on.
func (e *Evaluator) Observe(ctx context.Context, fix tracker.Fix) {
	e.mu.Lock()
	e.lastFix = &fix

	var events []tracker.RegionEvent
	for id, loc := range e.regions {
		in := contains(loc, fix.Lat, fix.Lng)
		was, known := e.inside[id]
		e.inside[id] = in

		if in == was && known {
			continue
		}
		if in {
			events = append(events, tracker.RegionEvent{LocationID: id, Timestamp: fix.Timestamp, Kind: tracker.RegionEntered})
		} else if known {
			events = append(events, tracker.RegionEvent{LocationID: id, Timestamp: fix.Timestamp, Kind: tracker.RegionExited})
		}
	}
	cb := e.callbacks
	forward := e.highFreq
	e.mu.Unlock()

	if cb == nil {
		return
	}
	sort.Slice(events, func(i, j int) bool { return events[i].LocationID < events[j].LocationID })
	for _, ev := range events {
		cb.OnRegionEvent(ctx, ev)
	}
	if forward {
		cb.OnLocationUpdate(ctx, fix)
	}
}

func contains(loc location.Location, lat, lng float64) bool {
	return geo.HaversineKm(loc.Lat, loc.Lng, lat, lng)*1000 <= loc.RadiusM
}
