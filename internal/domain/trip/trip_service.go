// Package trip orchestrates the city-creation workflow: a URL-provided map
// position feeds the reverse geocoder, whose result pre-populates an
// editable draft that is finally submitted to the itinerary manager. Every
// failed step halts the workflow with no side effects from later steps.
package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wanderlog-api/internal/domain/geocode"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/itinerary"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/position"
	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

// User-facing terminal messages of the workflow.
const (
	MsgNeedPosition = "Start by clicking somewhere on the map"
	MsgNotACity     = "That doesn't seem to be a city. Click somewhere else 😉"
)

// Status is where the workflow currently stands.
type Status int

const (
	// StatusNeedPosition prompts the user to pick a point first.
	StatusNeedPosition Status = iota
	// StatusNotACity is the terminal domain failure of the geocoding step.
	StatusNotACity
	// StatusEditing holds a pre-populated draft awaiting user confirmation.
	StatusEditing
)

// Draft carries the user-editable creation fields.
type Draft struct {
	CityName string         `json:"cityName"`
	Country  string         `json:"country"`
	Emoji    string         `json:"emoji"`
	Date     time.Time      `json:"date"`
	Notes    string         `json:"notes"`
	Position types.Position `json:"position"`
}

// Form is the workflow state handed back to the UI.
type Form struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Draft   *Draft `json:"draft,omitempty"`
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Begin(ctx context.Context) (Form, error)
	Submit(ctx context.Context, draft Draft) (types.City, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	geocoder  geocode.Adapter
	itinerary itinerary.Service
	resolver  *position.Resolver
	now       func() time.Time
}

func NewService(geocoder geocode.Adapter, itin itinerary.Service, resolver *position.Resolver, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		geocoder:  geocoder,
		itinerary: itin,
		resolver:  resolver,
		now:       time.Now,
	}
}

// Begin resolves the URL-provided position into a pre-populated draft. When
// no position is present the user is prompted to pick one; when the
// coordinate has no resolvable country the workflow halts with the domain
// message and no creation occurs.
func (s *ServiceImpl) Begin(ctx context.Context) (Form, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "Begin")
	defer span.End()

	l := s.logger.With(slog.String("method", "Begin"))

	focus, ok := s.resolver.URLFocus()
	if !ok {
		span.SetStatus(codes.Ok, "No position selected")
		return Form{Status: StatusNeedPosition, Message: MsgNeedPosition}, nil
	}

	span.SetAttributes(
		attribute.Float64("position.lat", focus.Lat),
		attribute.Float64("position.lng", focus.Lng),
	)

	place, err := s.geocoder.Resolve(ctx, focus.Lat, focus.Lng)
	if err != nil {
		if errors.Is(err, types.ErrNotACity) {
			span.SetStatus(codes.Ok, "Not a city")
			return Form{Status: StatusNotACity, Message: MsgNotACity}, nil
		}
		l.ErrorContext(ctx, "Reverse geocoding failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocoding failed")
		return Form{}, fmt.Errorf("failed to geocode position: %w", err)
	}

	draft := Draft{
		CityName: place.CityName,
		Country:  place.Country,
		Emoji:    place.Emoji,
		Date:     s.now(),
		Notes:    "",
		Position: types.Position{Lat: focus.Lat, Lng: focus.Lng},
	}

	l.InfoContext(ctx, "Draft prepared", slog.String("cityName", draft.CityName))
	span.SetStatus(codes.Ok, "Draft prepared")
	return Form{Status: StatusEditing, Draft: &draft}, nil
}

// Submit validates the confirmed draft and delegates creation to the
// itinerary manager. Validation failures are reported before any store call
// is made; a creation failure means the UI must not navigate forward.
func (s *ServiceImpl) Submit(ctx context.Context, draft Draft) (types.City, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "Submit", trace.WithAttributes(
		attribute.String("city.name", draft.CityName),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Submit"), slog.String("cityName", draft.CityName))

	if draft.CityName == "" {
		span.SetStatus(codes.Error, "Missing city name")
		return types.City{}, &types.ValidationError{Field: "cityName", Reason: "must not be empty"}
	}
	if draft.Date.IsZero() {
		span.SetStatus(codes.Error, "Missing date")
		return types.City{}, &types.ValidationError{Field: "date", Reason: "must be set"}
	}
	if !draft.Position.Valid() {
		span.SetStatus(codes.Error, "Invalid position")
		return types.City{}, &types.ValidationError{Field: "position", Reason: "coordinates out of range"}
	}

	city := types.City{
		ID:       s.now().UnixMilli(),
		CityName: draft.CityName,
		Country:  draft.Country,
		Emoji:    draft.Emoji,
		Date:     draft.Date,
		Notes:    draft.Notes,
		Position: draft.Position,
	}

	created, err := s.itinerary.CreateCity(ctx, city)
	if err != nil {
		l.ErrorContext(ctx, "City creation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Creation failed")
		return types.City{}, err
	}

	l.InfoContext(ctx, "City submitted", slog.Int64("cityID", created.ID))
	span.SetAttributes(attribute.Int64("city.id", created.ID))
	span.SetStatus(codes.Ok, "City submitted")
	return created, nil
}
