package tracker

import (
	"context"
	"sync"
)

// Router adapts provider callbacks into coordinator calls. It holds no
// business state beyond the authorization status it caches for display.
type Router struct {
	coord *Coordinator

	mu            sync.RWMutex
	authorization AuthorizationStatus
}

func NewRouter(coord *Coordinator) *Router {
	return &Router{coord: coord, authorization: AuthorizationNotDetermined}
}

func (r *Router) OnRegionEvent(ctx context.Context, ev RegionEvent) {
	r.coord.HandleRegionEvent(ctx, ev)
}

func (r *Router) OnRegionState(ctx context.Context, st RegionState) {
	r.coord.HandleRegionState(ctx, st)
}

func (r *Router) OnLocationUpdate(ctx context.Context, fix Fix) {
	r.coord.HandleLocationUpdate(ctx, fix)
}

func (r *Router) OnAuthorizationChange(status AuthorizationStatus) {
	r.mu.Lock()
	r.authorization = status
	r.mu.Unlock()

	r.coord.setAuthorization(status)
}

func (r *Router) AuthorizationStatus() AuthorizationStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authorization
}
