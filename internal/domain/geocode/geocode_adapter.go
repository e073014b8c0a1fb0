// Package geocode resolves a map coordinate to a city name and country via
// an external reverse-geocoding service. A transport-clean response without
// a country code is a domain failure (types.ErrNotACity), not an error in
// talking to the service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wanderlog-api/internal/types"
	"github.com/FACorreiaa/wanderlog-api/pkg/observability"
)

var _ Adapter = (*AdapterImpl)(nil)

// Adapter performs exactly one reverse-geocoding request per invocation.
// No retries, no caching.
type Adapter interface {
	Resolve(ctx context.Context, lat, lng float64) (types.Place, error)
}

// response mirrors the service payload. countryCode is the success marker;
// city is the primary name field with locality as the documented fallback.
type response struct {
	CountryCode string `json:"countryCode"`
	CountryName string `json:"countryName"`
	City        string `json:"city"`
	Locality    string `json:"locality"`
}

type AdapterImpl struct {
	logger  *slog.Logger
	http    *http.Client
	baseURL string
}

func NewAdapter(baseURL string, httpClient *http.Client, logger *slog.Logger) *AdapterImpl {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AdapterImpl{
		logger:  logger,
		http:    httpClient,
		baseURL: baseURL,
	}
}

// Resolve looks up the place at (lat, lng).
func (a *AdapterImpl) Resolve(ctx context.Context, lat, lng float64) (types.Place, error) {
	ctx, span := otel.Tracer("GeocodeAdapter").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.Float64("position.lat", lat),
		attribute.Float64("position.lng", lng),
	))
	defer span.End()

	l := a.logger.With(slog.String("method", "Resolve"))

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return types.Place{}, a.fail(ctx, span, l, err)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return types.Place{}, a.fail(ctx, span, l, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Place{}, a.fail(ctx, span, l, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Place{}, a.fail(ctx, span, l, fmt.Errorf("decode response body: %w", err))
	}

	if body.CountryCode == "" {
		l.InfoContext(ctx, "Coordinate does not resolve to a city",
			slog.Float64("lat", lat), slog.Float64("lng", lng))
		observability.GeocodeRequests.WithLabelValues(observability.OutcomeNotACity).Inc()
		span.SetStatus(codes.Ok, "Not a city")
		return types.Place{}, types.ErrNotACity
	}

	// Primary name field, documented fallback, else empty.
	name := body.City
	if name == "" {
		name = body.Locality
	}

	place := types.Place{
		CityName:    name,
		Country:     body.CountryName,
		CountryCode: body.CountryCode,
		Emoji:       FlagEmoji(body.CountryCode),
	}

	observability.GeocodeRequests.WithLabelValues(observability.OutcomeOK).Inc()
	span.SetAttributes(attribute.String("place.country_code", place.CountryCode))
	span.SetStatus(codes.Ok, "Place resolved")
	return place, nil
}

func (a *AdapterImpl) fail(ctx context.Context, span trace.Span, l *slog.Logger, err error) error {
	l.ErrorContext(ctx, "Reverse-geocoding request failed", slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "Geocoding request failed")
	observability.GeocodeRequests.WithLabelValues(observability.OutcomeError).Inc()
	return &types.TransportError{Op: "reverse geocode", Cause: err}
}
