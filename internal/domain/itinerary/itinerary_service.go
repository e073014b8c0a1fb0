// Package itinerary owns the canonical in-memory model of visited cities.
// All mutations route through the remote cities store and are applied to the
// model as pure reducer commands under one mutex, so sequence, selection and
// the loading flag always change as a single atomic unit.
package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wanderlog-api/internal/domain/store"
	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Bootstrap performs the initial full fetch. Failures are logged and
	// surfaced on BootstrapErrors only; the itinerary stays empty.
	Bootstrap(ctx context.Context)

	SelectCity(ctx context.Context, id int64) error
	CreateCity(ctx context.Context, city types.City) (types.City, error)
	DeleteCity(ctx context.Context, id int64) error

	Snapshot() types.Snapshot
	Subscribe() <-chan types.Snapshot
	Unsubscribe(ch <-chan types.Snapshot)
	BootstrapErrors() <-chan error

	// Reset bumps the request generation and empties the model. In-flight
	// completions issued before the reset are discarded on arrival.
	Reset()
}

type ServiceImpl struct {
	logger *slog.Logger
	store  store.Client

	mu  sync.Mutex
	st  state
	gen uint64

	subs     map[chan types.Snapshot]struct{}
	bootErrs chan error
}

func NewService(storeClient store.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		store:    storeClient,
		subs:     make(map[chan types.Snapshot]struct{}),
		bootErrs: make(chan error, 4),
	}
}

// Bootstrap fetches the full city list and replaces the sequence. A failure
// leaves the sequence empty and is deliberately not returned: the session
// starts best-effort, with the error observable on BootstrapErrors.
func (s *ServiceImpl) Bootstrap(ctx context.Context) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Bootstrap")
	defer span.End()

	l := s.logger.With(slog.String("method", "Bootstrap"))

	gen := s.beginLoading()

	cities, err := s.store.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.dispatchLocked(loading{on: false})

	if err != nil {
		l.ErrorContext(ctx, "Initial city fetch failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Initial fetch failed")
		select {
		case s.bootErrs <- err:
		default:
		}
		return
	}

	s.dispatchLocked(citiesFetched{cities: cities})
	l.InfoContext(ctx, "Itinerary populated", slog.Int("count", len(cities)))
	span.SetAttributes(attribute.Int("cities.count", len(cities)))
	span.SetStatus(codes.Ok, "Itinerary populated")
}

// SelectCity fetches the city and replaces the current selection. Selecting
// the already-selected id is a no-op that must not re-enter Loading.
func (s *ServiceImpl) SelectCity(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "SelectCity", trace.WithAttributes(
		attribute.Int64("city.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SelectCity"), slog.Int64("cityID", id))

	s.mu.Lock()
	if s.st.current != nil && s.st.current.ID == id {
		s.mu.Unlock()
		span.SetStatus(codes.Ok, "Already selected")
		return nil
	}
	gen := s.gen
	s.dispatchLocked(loading{on: true})
	s.mu.Unlock()

	city, err := s.store.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.dispatchLocked(loading{on: false})

	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "City fetch failed")
		return fmt.Errorf("failed to select city %d: %w", id, err)
	}

	s.dispatchLocked(citySelected{city: city})
	span.SetStatus(codes.Ok, "City selected")
	return nil
}

// CreateCity persists the city and appends the store's returned
// representation to the sequence, selecting it. On failure the sequence is
// left untouched; there is no optimistic insert.
func (s *ServiceImpl) CreateCity(ctx context.Context, city types.City) (types.City, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateCity", trace.WithAttributes(
		attribute.String("city.name", city.CityName),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateCity"), slog.String("cityName", city.CityName))

	gen := s.beginLoading()

	created, err := s.store.Create(ctx, city)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return types.City{}, nil
	}
	s.dispatchLocked(loading{on: false})

	if err != nil {
		l.ErrorContext(ctx, "Failed to create city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "City creation failed")
		return types.City{}, fmt.Errorf("failed to create city: %w", err)
	}

	s.dispatchLocked(cityAdded{city: created})
	l.InfoContext(ctx, "City created", slog.Int64("cityID", created.ID))
	span.SetAttributes(attribute.Int64("city.id", created.ID))
	span.SetStatus(codes.Ok, "City created")
	return created, nil
}

// DeleteCity removes the city from the sequence only after store
// confirmation. Selection is cleared unconditionally on success.
func (s *ServiceImpl) DeleteCity(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteCity", trace.WithAttributes(
		attribute.Int64("city.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteCity"), slog.Int64("cityID", id))

	gen := s.beginLoading()

	err := s.store.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.dispatchLocked(loading{on: false})

	if err != nil {
		l.ErrorContext(ctx, "Failed to delete city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "City deletion failed")
		return fmt.Errorf("failed to delete city %d: %w", id, err)
	}

	s.dispatchLocked(cityRemoved{id: id})
	l.InfoContext(ctx, "City deleted")
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}

// Snapshot returns a defensive copy of the current model.
func (s *ServiceImpl) Snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.snapshot()
}

// Subscribe registers an observer. Each state transition delivers a fresh
// snapshot; slow observers miss intermediate states rather than block the
// manager.
func (s *ServiceImpl) Subscribe() <-chan types.Snapshot {
	ch := make(chan types.Snapshot, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *ServiceImpl) Unsubscribe(ch <-chan types.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if sub == ch {
			delete(s.subs, sub)
			close(sub)
			return
		}
	}
}

// BootstrapErrors exposes initial-fetch failures that are otherwise
// swallowed. The channel is buffered; it never blocks Bootstrap.
func (s *ServiceImpl) BootstrapErrors() <-chan error {
	return s.bootErrs
}

// Reset discards the model and invalidates all in-flight completions.
func (s *ServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.st = state{}
	s.publishLocked()
}

// beginLoading captures the generation the operation was issued against and
// raises the mutation flag.
func (s *ServiceImpl) beginLoading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen
	s.dispatchLocked(loading{on: true})
	return gen
}

// dispatchLocked runs one reducer step and publishes the result. Callers
// hold s.mu.
func (s *ServiceImpl) dispatchLocked(cmd command) {
	s.st = apply(s.st, cmd)
	s.publishLocked()
}

func (s *ServiceImpl) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.st.snapshot()
	for sub := range s.subs {
		select {
		case sub <- snap:
		default:
			// Observer still holds an older snapshot; replace it.
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- snap:
			default:
			}
		}
	}
}
