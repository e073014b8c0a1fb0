package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

// fakeStoreServer is an in-memory stand-in for the remote cities collection.
type fakeStoreServer struct {
	mu     sync.Mutex
	cities []types.City
	nextID int64
}

func (f *fakeStoreServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cities", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.cities)
	})
	mux.HandleFunc("GET /cities/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, c := range f.cities {
			if c.ID == id {
				json.NewEncoder(w).Encode(c)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("POST /cities", func(w http.ResponseWriter, r *http.Request) {
		var city types.City
		if err := json.NewDecoder(r.Body).Decode(&city); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.nextID != 0 {
			city.ID = f.nextID
			f.nextID = 0
		}
		f.cities = append(f.cities, city)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(city)
	})
	mux.HandleFunc("DELETE /cities/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, c := range f.cities {
			if c.ID == id {
				f.cities = append(f.cities[:i], f.cities[i+1:]...)
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

func setupStoreClientTest(t *testing.T) (*HTTPClient, *fakeStoreServer) {
	t.Helper()
	fake := &fakeStoreServer{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewHTTPClient(srv.URL, srv.Client(), logger), fake
}

func sampleCity(id int64) types.City {
	return types.City{
		ID:       id,
		CityName: "Lisbon",
		Country:  "Portugal",
		Emoji:    "🇵🇹",
		Date:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Notes:    "pastel de nata",
		Position: types.Position{Lat: 38.72, Lng: -9.14},
	}
}

func TestHTTPClient_List(t *testing.T) {
	client, fake := setupStoreClientTest(t)
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		cities, err := client.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, cities)
	})

	t.Run("returns cities in store order", func(t *testing.T) {
		fake.cities = []types.City{sampleCity(1), sampleCity(2)}

		cities, err := client.List(ctx)
		require.NoError(t, err)
		require.Len(t, cities, 2)
		assert.Equal(t, int64(1), cities[0].ID)
		assert.Equal(t, int64(2), cities[1].ID)
	})
}

func TestHTTPClient_Get(t *testing.T) {
	client, fake := setupStoreClientTest(t)
	ctx := context.Background()
	fake.cities = []types.City{sampleCity(7)}

	t.Run("found", func(t *testing.T) {
		city, err := client.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Lisbon", city.CityName)
	})

	t.Run("absent id maps to ErrNotFound", func(t *testing.T) {
		_, err := client.Get(ctx, 999)
		assert.ErrorIs(t, err, types.ErrNotFound)

		var storeErr *types.StoreError
		assert.False(t, errors.As(err, &storeErr), "a lookup miss must not be a StoreError")
	})
}

func TestHTTPClient_CreateRoundTrip(t *testing.T) {
	client, fake := setupStoreClientTest(t)
	ctx := context.Background()

	paris := types.City{
		ID:       1714500000000,
		CityName: "Paris",
		Country:  "France",
		Emoji:    "🇫🇷",
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Notes:    "",
		Position: types.Position{Lat: 48.85, Lng: 2.35},
	}

	t.Run("store may reassign the id", func(t *testing.T) {
		fake.nextID = 42

		created, err := client.Create(ctx, paris)
		require.NoError(t, err)
		assert.Equal(t, int64(42), created.ID)

		// Every field except the id round-trips through a fetch.
		fetched, err := client.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, paris.CityName, fetched.CityName)
		assert.Equal(t, paris.Country, fetched.Country)
		assert.Equal(t, paris.Emoji, fetched.Emoji)
		assert.True(t, paris.Date.Equal(fetched.Date), "date must round-trip to the same instant")
		assert.Equal(t, paris.Notes, fetched.Notes)
		assert.Equal(t, paris.Position, fetched.Position)
	})
}

func TestHTTPClient_Delete(t *testing.T) {
	client, fake := setupStoreClientTest(t)
	ctx := context.Background()
	fake.cities = []types.City{sampleCity(1), sampleCity(2)}

	t.Run("success", func(t *testing.T) {
		require.NoError(t, client.Delete(ctx, 1))
		cities, err := client.List(ctx)
		require.NoError(t, err)
		require.Len(t, cities, 1)
		assert.Equal(t, int64(2), cities[0].ID)
	})

	t.Run("absent id maps to ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, client.Delete(ctx, 1), types.ErrNotFound)
	})
}

func TestHTTPClient_TransportFailures(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	t.Run("server error becomes StoreError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, srv.Client(), logger)
		_, err := client.List(ctx)

		var storeErr *types.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "list", storeErr.Op)
	})

	t.Run("unreachable host becomes StoreError", func(t *testing.T) {
		client := NewHTTPClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, logger)
		_, err := client.List(ctx)

		var storeErr *types.StoreError
		require.ErrorAs(t, err, &storeErr)
	})

	t.Run("malformed body becomes StoreError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, srv.Client(), logger)
		_, err := client.List(ctx)

		var storeErr *types.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.True(t, strings.Contains(err.Error(), "decode"))
	})
}
