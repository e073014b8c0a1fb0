package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wanderlog-api/internal/types"
	"github.com/FACorreiaa/wanderlog-api/pkg/observability"
)

var _ Client = (*HTTPClient)(nil)

// Client is the contract against the remote cities collection. Each call is
// a single request/response exchange; failures are surfaced verbatim as a
// *types.StoreError with no retries and no local caching.
type Client interface {
	List(ctx context.Context) ([]types.City, error)
	Get(ctx context.Context, id int64) (types.City, error)
	Create(ctx context.Context, city types.City) (types.City, error)
	Delete(ctx context.Context, id int64) error
}

type HTTPClient struct {
	logger  *slog.Logger
	http    *http.Client
	baseURL string
}

// NewHTTPClient creates a client against baseURL (e.g. http://localhost:8000).
// A nil httpClient falls back to a default with a 10s timeout.
func NewHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		logger:  logger,
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// List retrieves the full cities collection in store order.
func (c *HTTPClient) List(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CityStore").Start(ctx, "List")
	defer span.End()

	var cities []types.City
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/cities", nil, &cities); err != nil {
		return nil, c.fail(ctx, span, "list", err)
	}

	observability.StoreRequests.WithLabelValues("list", observability.OutcomeOK).Inc()
	span.SetAttributes(attribute.Int("cities.count", len(cities)))
	span.SetStatus(codes.Ok, "Cities listed")
	return cities, nil
}

// Get retrieves a single city. Absent ids map to types.ErrNotFound.
func (c *HTTPClient) Get(ctx context.Context, id int64) (types.City, error) {
	ctx, span := otel.Tracer("CityStore").Start(ctx, "Get", trace.WithAttributes(
		attribute.Int64("city.id", id),
	))
	defer span.End()

	var city types.City
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/cities/%d", c.baseURL, id), nil, &city); err != nil {
		return types.City{}, c.fail(ctx, span, "get", err)
	}

	observability.StoreRequests.WithLabelValues("get", observability.OutcomeOK).Inc()
	span.SetStatus(codes.Ok, "City retrieved")
	return city, nil
}

// Create persists a new city. The store may echo or reassign the id; the
// returned representation is authoritative.
func (c *HTTPClient) Create(ctx context.Context, city types.City) (types.City, error) {
	ctx, span := otel.Tracer("CityStore").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("city.name", city.CityName),
	))
	defer span.End()

	var created types.City
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/cities", &city, &created); err != nil {
		return types.City{}, c.fail(ctx, span, "create", err)
	}

	observability.StoreRequests.WithLabelValues("create", observability.OutcomeOK).Inc()
	span.SetAttributes(attribute.Int64("city.id", created.ID))
	span.SetStatus(codes.Ok, "City created")
	return created, nil
}

// Delete removes a city. Absent ids map to types.ErrNotFound.
func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("CityStore").Start(ctx, "Delete", trace.WithAttributes(
		attribute.Int64("city.id", id),
	))
	defer span.End()

	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/cities/%d", c.baseURL, id), nil, nil); err != nil {
		return c.fail(ctx, span, "delete", err)
	}

	observability.StoreRequests.WithLabelValues("delete", observability.OutcomeOK).Inc()
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}

// do performs one exchange. body and out may be nil; a 404 is returned as
// types.ErrNotFound, any other non-2xx status or transport failure as-is for
// the caller to wrap.
func (c *HTTPClient) do(ctx context.Context, method, url string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return types.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// fail records the failure once and classifies it: lookup misses stay
// ErrNotFound, everything else becomes a StoreError.
func (c *HTTPClient) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	if errors.Is(err, types.ErrNotFound) {
		observability.StoreRequests.WithLabelValues(op, observability.OutcomeNotFound).Inc()
		span.SetStatus(codes.Error, "Not found")
		return err
	}

	c.logger.ErrorContext(ctx, "Cities store request failed",
		slog.String("operation", op),
		slog.Any("error", err))
	observability.StoreRequests.WithLabelValues(op, observability.OutcomeError).Inc()
	span.SetStatus(codes.Error, "Store request failed")
	return &types.StoreError{Op: op, Cause: err}
}
