// Package position reconciles the competing map-focus sources. URL-encoded
// coordinates are authoritative while present; a device geolocation fix is
// sticky once obtained; otherwise a fixed default applies. The resolver
// never polls, it only reacts to pushed updates.
package position

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

// DefaultFocus is the fallback map center when no source provides one.
var DefaultFocus = types.MapFocus{Lat: 40, Lng: 0}

// Locator is the device geolocation capability. A single call corresponds to
// one one-shot acquisition; it blocks until the device answers.
type Locator interface {
	CurrentPosition(ctx context.Context) (types.MapFocus, error)
}

// Status describes the geolocation acquisition state machine.
type Status int

const (
	StatusIdle Status = iota
	StatusAcquiring
	StatusAvailable
	StatusFailed
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAcquiring:
		return "acquiring"
	case StatusAvailable:
		return "available"
	case StatusFailed:
		return "failed"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

type Resolver struct {
	logger  *slog.Logger
	locator Locator

	mu       sync.RWMutex
	urlFocus *types.MapFocus
	fix      *types.MapFocus
	status   Status
	geoErr   string
}

// NewResolver creates a resolver. A nil locator marks the capability as
// absent and every acquisition request resolves to unsupported.
func NewResolver(locator Locator, logger *slog.Logger) *Resolver {
	return &Resolver{
		logger:  logger,
		locator: locator,
		status:  StatusIdle,
	}
}

// ApplyURLQuery pushes the current navigable location's query parameters.
// The pair is provided only when both lat and lng parse as numbers; anything
// else clears the URL source.
func (r *Resolver) ApplyURLQuery(query url.Values) {
	lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(query.Get("lng"), 64)

	r.mu.Lock()
	defer r.mu.Unlock()

	if latErr != nil || lngErr != nil {
		r.urlFocus = nil
		return
	}
	r.urlFocus = &types.MapFocus{Lat: lat, Lng: lng}
}

// URLFocus returns the URL-provided coordinate, if any. The creation
// workflow keys off this source alone.
func (r *Resolver) URLFocus() (types.MapFocus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.urlFocus == nil {
		return types.MapFocus{}, false
	}
	return *r.urlFocus, true
}

// Resolve derives the authoritative map focus from the sources.
func (r *Resolver) Resolve() types.MapFocus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.urlFocus != nil {
		return *r.urlFocus
	}
	if r.fix != nil {
		return *r.fix
	}
	return DefaultFocus
}

// RequestGeolocation starts a one-shot acquisition. It returns immediately;
// the outcome lands in GeolocationStatus exactly once per request. A fix
// already held makes further requests no-ops.
func (r *Resolver) RequestGeolocation(ctx context.Context) error {
	r.mu.Lock()

	if r.locator == nil {
		r.status = StatusUnsupported
		r.geoErr = types.ErrUnsupportedGeolocation.Error()
		r.mu.Unlock()
		return types.ErrUnsupportedGeolocation
	}
	if r.status == StatusAcquiring {
		r.mu.Unlock()
		return types.ErrAcquisitionInProgress
	}
	if r.fix != nil {
		r.mu.Unlock()
		return nil
	}

	r.status = StatusAcquiring
	r.geoErr = ""
	r.mu.Unlock()

	go r.acquire(ctx)
	return nil
}

func (r *Resolver) acquire(ctx context.Context) {
	focus, err := r.locator.CurrentPosition(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.status = StatusFailed
		r.geoErr = err.Error()
		r.logger.ErrorContext(ctx, "Geolocation acquisition failed", slog.Any("error", err))
		return
	}

	r.fix = &focus
	r.status = StatusAvailable
	r.logger.InfoContext(ctx, "Geolocation fix obtained",
		slog.Float64("lat", focus.Lat),
		slog.Float64("lng", focus.Lng))
}

// GeolocationStatus reports the acquisition state and, for failures, the
// device error message.
func (r *Resolver) GeolocationStatus() (Status, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status, r.geoErr
}
