package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"radarmap/internal/http/middleware"
	"radarmap/internal/model"
	"radarmap/internal/service"
	serviceMocks "radarmap/internal/service/mocks"
	"radarmap/internal/web"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newViewsApp(t *testing.T) *fiber.App {
	t.Helper()
	assets, err := web.Load("")
	require.NoError(t, err)
	return fiber.New(fiber.Config{
		Views:        web.NewViews(assets.Templates, false),
		ErrorHandler: ErrorHandler(),
	})
}

func TestIndex(t *testing.T) {
	app := newViewsApp(t)
	app.Get("/", Index(true, 500*time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMETextHTMLCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "iNav Radar")
	assert.Regexp(t, `pollMs:\s+500`, string(body))
	assert.Regexp(t, `enabled:\s+true`, string(body))
}

func TestStatic(t *testing.T) {
	static := fstest.MapFS{
		"css/map.css": {Data: []byte("body{}")},
		"js/map.js":   {Data: []byte("void 0;")},
	}
	app := fiber.New()
	app.Use("/static", Static(static, true))

	cases := []struct {
		path   string
		status int
	}{
		{"/static/css/map.css", http.StatusOK},
		{"/static/js/map.js", http.StatusOK},
		{"/static/css", http.StatusNotFound},
		{"/static/", http.StatusNotFound},
		{"/static/missing.css", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := newViewsApp(t)
	app.Use(middleware.RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret detail") })

	t.Run("html not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		req.Header.Set(fiber.HeaderAccept, "text/html")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "<h1>404</h1>")
		assert.Contains(t, string(body), "resource not found")
	})

	t.Run("api not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-1")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "req-1", body.RequestID)
	})

	t.Run("internal error is not leaked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		req.Header.Set(fiber.HeaderAccept, "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), "secret detail")
		assert.Contains(t, string(body), "INTERNAL_ERROR")
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(fiber.HeaderAccept, "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestErrorHandler_NoViews(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(fiber.HeaderAccept, "text/html")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "resource not found", string(body))
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mockSvc := new(serviceMocks.MockRadarService)
	mockSvc.On("Snapshot").Return(model.Snapshot{Online: true})

	app := fiber.New()
	app.Get("/health", HealthCheck(db, mockSvc, true))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "active", body["radar"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestHealthCheck_NoDatabase(t *testing.T) {
	mockSvc := new(serviceMocks.MockRadarService)
	mockSvc.On("Snapshot").Return(model.Snapshot{Online: false})

	t.Run("radar offline", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil, mockSvc, true))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "offline", body["radar"])
	})

	t.Run("radar disabled", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil, mockSvc, false))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "disabled", body["radar"])
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mockSvc := new(serviceMocks.MockRadarService)
	mockSvc.On("Snapshot").Return(model.Snapshot{
		Online:      true,
		MyID:        "A1",
		Count:       3,
		CountActive: 2,
		UpdatedAt:   &now,
	})

	app := fiber.New()
	app.Get("/api/status", Status(mockSvc, true))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "active", body.Radar)
	assert.Equal(t, "A1", body.MyID)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, 2, body.CountActive)
	require.NotNil(t, body.UpdatedAt)
	assert.True(t, now.Equal(*body.UpdatedAt))
}

func TestListPeers(t *testing.T) {
	t.Run("before first report", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockRadarService)
		mockSvc.On("Snapshot").Return(model.Snapshot{})

		app := fiber.New()
		app.Get("/api/peers", ListPeers(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"data":[],"online":false}`, string(body))
	})

	t.Run("with peers", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockRadarService)
		mockSvc.On("Snapshot").Return(model.Snapshot{
			Online: true,
			Peers:  []model.Peer{{ID: "B", Name: "WING", Lat: 50.1, Lon: 8.6}},
		})

		app := fiber.New()
		app.Get("/api/peers", ListPeers(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers", nil))

		var body peersResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Online)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "WING", body.Data[0].Name)
	})
}

func TestPeerTrack(t *testing.T) {
	mockSvc := new(serviceMocks.MockRadarService)
	app := fiber.New()
	app.Get("/api/peers/:id/track", PeerTrack(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.TrackResult{
			Items: []model.TrackPoint{{PeerID: "B", Lat: 1, Lon: 2}},
			Total: 1,
		}
		mockSvc.On("Track", mock.Anything, "B", 10, 5).Return(expected, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers/B/track?limit=10&offset=5", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.TrackResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		mockSvc.On("Track", mock.Anything, "B", 100, 0).Return(&service.TrackResult{Items: []model.TrackPoint{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers/B/track", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers/B/track?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers/B/track?offset=x", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_OFFSET", body.Error.Code)
	})

	t.Run("history disabled", func(t *testing.T) {
		mockSvc.On("Track", mock.Anything, "B", 100, 0).Return(nil, service.ErrHistoryDisabled).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers/B/track", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "HISTORY_DISABLED", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Track", mock.Anything, "B", 100, 0).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/peers/B/track", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestLatestArchive(t *testing.T) {
	mockSvc := new(serviceMocks.MockRadarService)
	app := fiber.New()
	app.Get("/api/archive/latest", LatestArchive(mockSvc))

	t.Run("redirect", func(t *testing.T) {
		mockSvc.On("LatestArchiveURL", mock.Anything).Return("http://minio:9000/radarmap/snapshots/x.json?sig=1", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/archive/latest", nil))

		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "http://minio:9000/radarmap/snapshots/x.json?sig=1", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("nothing archived", func(t *testing.T) {
		mockSvc.On("LatestArchiveURL", mock.Anything).Return("", service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/archive/latest", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("archive disabled", func(t *testing.T) {
		mockSvc.On("LatestArchiveURL", mock.Anything).Return("", service.ErrArchiveDisabled).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/archive/latest", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "ARCHIVE_DISABLED", body.Error.Code)
	})

	mockSvc.AssertExpectations(t)
}
