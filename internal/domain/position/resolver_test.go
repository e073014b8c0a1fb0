package position

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wanderlog-api/internal/types"
)

type fakeLocator struct {
	focus   types.MapFocus
	err     error
	release chan struct{}
}

func (f *fakeLocator) CurrentPosition(ctx context.Context) (types.MapFocus, error) {
	if f.release != nil {
		<-f.release
	}
	return f.focus, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func query(lat, lng string) url.Values {
	q := url.Values{}
	if lat != "" {
		q.Set("lat", lat)
	}
	if lng != "" {
		q.Set("lng", lng)
	}
	return q
}

func waitForTerminal(t *testing.T, r *Resolver) Status {
	t.Helper()
	var status Status
	require.Eventually(t, func() bool {
		status, _ = r.GeolocationStatus()
		return status != StatusAcquiring
	}, time.Second, 5*time.Millisecond)
	return status
}

func TestResolver_Precedence(t *testing.T) {
	t.Run("url beats a prior geolocation fix", func(t *testing.T) {
		r := NewResolver(&fakeLocator{focus: types.MapFocus{Lat: 30, Lng: 40}}, testLogger())

		require.NoError(t, r.RequestGeolocation(context.Background()))
		assert.Equal(t, StatusAvailable, waitForTerminal(t, r))

		r.ApplyURLQuery(query("10", "20"))
		assert.Equal(t, types.MapFocus{Lat: 10, Lng: 20}, r.Resolve())
	})

	t.Run("fix applies when url is absent", func(t *testing.T) {
		r := NewResolver(&fakeLocator{focus: types.MapFocus{Lat: 30, Lng: 40}}, testLogger())

		require.NoError(t, r.RequestGeolocation(context.Background()))
		waitForTerminal(t, r)

		assert.Equal(t, types.MapFocus{Lat: 30, Lng: 40}, r.Resolve())
	})

	t.Run("default applies when both are absent", func(t *testing.T) {
		r := NewResolver(nil, testLogger())
		assert.Equal(t, DefaultFocus, r.Resolve())
	})

	t.Run("clearing the url restores the fix", func(t *testing.T) {
		r := NewResolver(&fakeLocator{focus: types.MapFocus{Lat: 30, Lng: 40}}, testLogger())
		require.NoError(t, r.RequestGeolocation(context.Background()))
		waitForTerminal(t, r)

		r.ApplyURLQuery(query("10", "20"))
		r.ApplyURLQuery(url.Values{})
		assert.Equal(t, types.MapFocus{Lat: 30, Lng: 40}, r.Resolve())
	})
}

func TestResolver_ApplyURLQuery(t *testing.T) {
	r := NewResolver(nil, testLogger())

	t.Run("non-numeric coordinates are not provided", func(t *testing.T) {
		r.ApplyURLQuery(query("abc", "20"))
		_, ok := r.URLFocus()
		assert.False(t, ok)
		assert.Equal(t, DefaultFocus, r.Resolve())
	})

	t.Run("one missing component is not provided", func(t *testing.T) {
		r.ApplyURLQuery(query("10", ""))
		_, ok := r.URLFocus()
		assert.False(t, ok)
	})

	t.Run("both numeric components are authoritative", func(t *testing.T) {
		r.ApplyURLQuery(query("10", "20"))
		focus, ok := r.URLFocus()
		require.True(t, ok)
		assert.Equal(t, types.MapFocus{Lat: 10, Lng: 20}, focus)
	})
}

func TestResolver_Geolocation(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported without a locator", func(t *testing.T) {
		r := NewResolver(nil, testLogger())

		err := r.RequestGeolocation(ctx)
		assert.ErrorIs(t, err, types.ErrUnsupportedGeolocation)

		status, msg := r.GeolocationStatus()
		assert.Equal(t, StatusUnsupported, status)
		assert.NotEmpty(t, msg)
	})

	t.Run("device failure is terminal with its message", func(t *testing.T) {
		r := NewResolver(&fakeLocator{err: errors.New("user denied geolocation")}, testLogger())

		require.NoError(t, r.RequestGeolocation(ctx))
		assert.Equal(t, StatusFailed, waitForTerminal(t, r))

		_, msg := r.GeolocationStatus()
		assert.Equal(t, "user denied geolocation", msg)
		assert.Equal(t, DefaultFocus, r.Resolve(), "a failed fix must not move the focus")
	})

	t.Run("concurrent request is rejected while acquiring", func(t *testing.T) {
		release := make(chan struct{})
		r := NewResolver(&fakeLocator{focus: types.MapFocus{Lat: 1, Lng: 2}, release: release}, testLogger())

		require.NoError(t, r.RequestGeolocation(ctx))
		assert.ErrorIs(t, r.RequestGeolocation(ctx), types.ErrAcquisitionInProgress)

		close(release)
		assert.Equal(t, StatusAvailable, waitForTerminal(t, r))
	})

	t.Run("a held fix makes further requests no-ops", func(t *testing.T) {
		r := NewResolver(&fakeLocator{focus: types.MapFocus{Lat: 1, Lng: 2}}, testLogger())

		require.NoError(t, r.RequestGeolocation(ctx))
		waitForTerminal(t, r)

		require.NoError(t, r.RequestGeolocation(ctx))
		status, _ := r.GeolocationStatus()
		assert.Equal(t, StatusAvailable, status)
	})
}
