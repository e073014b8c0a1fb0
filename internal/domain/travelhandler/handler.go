// Package travelhandler exposes the itinerary core as a JSON REST surface.
// UI events (map clicks mirrored as query coordinates, list selections, form
// submits) arrive here and are routed into the position resolver, the
// creation workflow and the itinerary manager.
package travelhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/wanderlog-api/internal/domain/itinerary"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/position"
	"github.com/FACorreiaa/wanderlog-api/internal/domain/trip"
	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

type Handler struct {
	logger    *slog.Logger
	itinerary itinerary.Service
	trips     trip.Service
	resolver  *position.Resolver
}

func NewHandler(itin itinerary.Service, trips trip.Service, resolver *position.Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		itinerary: itin,
		trips:     trips,
		resolver:  resolver,
	}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/itinerary", h.getItinerary)
	mux.HandleFunc("GET /v1/cities", h.listCities)
	mux.HandleFunc("GET /v1/cities/{id}", h.getCity)
	mux.HandleFunc("POST /v1/cities", h.createCity)
	mux.HandleFunc("DELETE /v1/cities/{id}", h.deleteCity)
	mux.HandleFunc("GET /v1/geocode", h.beginTrip)
	mux.HandleFunc("GET /v1/position", h.getPosition)
	mux.HandleFunc("POST /v1/position/locate", h.locate)
}

// getItinerary returns the full observer snapshot.
func (h *Handler) getItinerary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.itinerary.Snapshot())
}

// listCities returns the ordered city sequence.
func (h *Handler) listCities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.itinerary.Snapshot().Cities)
}

// getCity selects the city and returns the selection.
func (h *Handler) getCity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid city id")
		return
	}

	if err := h.itinerary.SelectCity(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	snap := h.itinerary.Snapshot()
	if snap.CurrentCity == nil {
		h.writeError(w, http.StatusNotFound, "city not found")
		return
	}
	h.writeJSON(w, http.StatusOK, snap.CurrentCity)
}

// createCity submits a confirmed draft through the creation workflow.
func (h *Handler) createCity(w http.ResponseWriter, r *http.Request) {
	var draft trip.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.trips.Submit(r.Context(), draft)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	// The Location header is the navigation target for the UI.
	w.Header().Set("Location", fmt.Sprintf("/v1/cities/%d", created.ID))
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteCity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid city id")
		return
	}

	if err := h.itinerary.DeleteCity(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// beginTrip pushes the mirrored location query into the resolver and starts
// the creation workflow, returning either a prompt, the not-a-city message
// or a pre-populated draft.
func (h *Handler) beginTrip(w http.ResponseWriter, r *http.Request) {
	h.resolver.ApplyURLQuery(r.URL.Query())

	form, err := h.trips.Begin(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, form)
}

type positionResponse struct {
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	GeolocationStatus string  `json:"geolocationStatus"`
	GeolocationError  string  `json:"geolocationError,omitempty"`
}

// getPosition resolves the authoritative map focus for the mirrored query.
func (h *Handler) getPosition(w http.ResponseWriter, r *http.Request) {
	h.resolver.ApplyURLQuery(r.URL.Query())

	focus := h.resolver.Resolve()
	status, geoErr := h.resolver.GeolocationStatus()
	h.writeJSON(w, http.StatusOK, positionResponse{
		Lat:               focus.Lat,
		Lng:               focus.Lng,
		GeolocationStatus: status.String(),
		GeolocationError:  geoErr,
	})
}

// locate triggers the one-shot device geolocation request. The acquisition
// outlives the request, so it runs on an uncancelable context.
func (h *Handler) locate(w http.ResponseWriter, r *http.Request) {
	err := h.resolver.RequestGeolocation(context.WithoutCancel(r.Context()))
	status, geoErr := h.resolver.GeolocationStatus()
	resp := map[string]string{"geolocationStatus": status.String()}
	if geoErr != "" {
		resp["geolocationError"] = geoErr
	}

	switch {
	case errors.Is(err, types.ErrUnsupportedGeolocation):
		h.writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, types.ErrAcquisitionInProgress):
		h.writeJSON(w, http.StatusConflict, resp)
	default:
		h.writeJSON(w, http.StatusAccepted, resp)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *types.ValidationError
	switch {
	case errors.Is(err, types.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "city not found")
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	default:
		h.writeError(w, http.StatusBadGateway, err.Error())
	}
}
