package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/FACorreiaa/wanderlog-api/internal/domain/geocode"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/itinerary"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/position"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/store"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/travelhandler"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/trip"
	"github.com/FACorreiaa/wanderlog-api/internal/types"
	"github.com/FACorreiaa/wanderlog-api/pkg/config"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Store    store.Client
	Geocoder geocode.Adapter
	Resolver *position.Resolver

	Itinerary itinerary.Service
	Trips     trip.Service

	Handler *travelhandler.Handler
}

// InitDependencies wires clients, services and handlers together.
func InitDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.Store = store.NewHTTPClient(cfg.StoreBaseURL, nil, logger)
	deps.Geocoder = geocode.NewAdapter(cfg.GeocodeBaseURL, nil, logger)
	deps.Resolver = position.NewResolver(locatorFromEnv(), logger)

	itin := itinerary.NewService(deps.Store, logger)
	deps.Itinerary = itin
	deps.Trips = trip.NewService(deps.Geocoder, itin, deps.Resolver, logger)

	deps.Handler = travelhandler.NewHandler(deps.Itinerary, deps.Trips, deps.Resolver, logger)

	logger.Info("all dependencies initialized successfully")
	return deps
}

// staticLocator satisfies the geolocation capability with a fixed
// coordinate, for deployments that pin the device position.
type staticLocator struct {
	focus types.MapFocus
}

func (l staticLocator) CurrentPosition(ctx context.Context) (types.MapFocus, error) {
	return l.focus, nil
}

// locatorFromEnv builds a Locator from DEVICE_POSITION ("lat,lng"). Absent
// or malformed values leave the capability unsupported.
func locatorFromEnv() position.Locator {
	raw := config.DevicePosition()
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return nil
	}
	return staticLocator{focus: types.MapFocus{Lat: lat, Lng: lng}}
}
