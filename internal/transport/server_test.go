package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasplanners/internal/config"
	"fasplanners/internal/database"
	"fasplanners/internal/domain"
	"fasplanners/internal/services"
	"fasplanners/internal/store"
	"fasplanners/internal/tracking"
	"fasplanners/pkg/eventapi"
	apperrors "fasplanners/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Fas Exclusive Planners API", Version: "test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://fasplanners.co.tz"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		},
		Submission: config.SubmissionConfig{
			TrackingCodeAttempts: 5,
			MaxImages:            5,
			MaxImageBytes:        1 << 20,
			MaxBodyBytes:         1 << 20,
		},
	}
}

// codeList hands out codes in order
type codeList []string

func (c *codeList) Generate() string {
	code := (*c)[0]
	if len(*c) > 1 {
		*c = (*c)[1:]
	}
	return code
}

type testAPI struct {
	handler http.Handler
	svc     *services.EventRequestService
}

func newTestAPI(t *testing.T, st store.EventRequestStore, codes tracking.Generator) *testAPI {
	t.Helper()

	if st == nil {
		conn, err := database.Open(config.DatabaseConfig{URL: "sqlite://:memory:"})
		require.NoError(t, err)
		require.NoError(t, database.Migrate(conn))
		t.Cleanup(func() {
			if sqlDB, err := conn.DB(); err == nil {
				sqlDB.Close()
			}
		})
		st = store.NewGormStore(conn)
	}

	cfg := testConfig()
	svc := services.NewEventRequestService(st, services.Options{Codes: codes, Limits: cfg.Submission})
	health := services.NewHealthService(cfg.App.Name, cfg.App.Version, nil)
	t.Cleanup(svc.Wait)

	return &testAPI{handler: NewHandler(cfg, NewEndpoints(svc, health)), svc: svc}
}

func (a *testAPI) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, eventapi.Envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env eventapi.Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestSubmitAndTrack(t *testing.T) {
	api := newTestAPI(t, nil, &codeList{"EVT-K7M2QP"})

	rec, env := api.do(t, http.MethodPost, "/api/event-requests", map[string]any{
		"name":          "Amina",
		"email":         "amina@example.com",
		"eventCategory": "social",
		"eventDate":     "",
		"menuSections":  map[string][]string{"appetizers": {"Item A"}, "grill": {}},
		"favouriteFood": "ignored",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "EVT-K7M2QP", env.TrackingCode)
	assert.Equal(t, "Event request submitted successfully", env.Message)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Amina", created["name"])
	assert.Equal(t, "new", created["status"])
	assert.Nil(t, created["event_date"])
	assert.Nil(t, created["phone"])
	sections := created["menu_sections"].(map[string]any)
	assert.Len(t, sections, len(eventapi.MenuSectionNames))
	assert.Equal(t, []any{"Item A"}, sections["appetizers"])
	assert.Equal(t, []any{}, sections["desserts"])

	rec, env = api.do(t, http.MethodGet, "/api/track-event?code=evt-k7m2qp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tracked map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &tracked))
	assert.Equal(t, "EVT-K7M2QP", tracked["tracking_code"])
	assert.Equal(t, "New Request", tracked["statusLabel"])
	assert.Equal(t, domain.StatusNew.Description(), tracked["statusDescription"])

	rec, env = api.do(t, http.MethodGet, "/api/track-event?code=EVT-ZZZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Event not found. Please check your tracking code.", env.Error)

	rec, env = api.do(t, http.MethodGet, "/api/track-event", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tracking code is required", env.Error)
}

func TestSubmitValidation(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rec, env := api.do(t, http.MethodPost, "/api/event-requests", map[string]any{"name": "Amina"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Name and email are required", env.Error)

	rec, env = api.do(t, http.MethodPost, "/api/event-requests", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, env = api.do(t, http.MethodPost, "/api/event-requests", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name and email are required", env.Error)

	rec, _ = api.do(t, http.MethodPost, "/api/event-requests", map[string]any{
		"name":    "Amina",
		"email":   "amina@example.com",
		"message": strings.Repeat("x", 2<<20),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec, env = api.do(t, http.MethodGet, "/api/event-requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestAdminEndpoints(t *testing.T) {
	api := newTestAPI(t, nil, &codeList{"EVT-AAAAA2", "EVT-BBBBB2"})

	for _, name := range []string{"Amina", "Juma"} {
		rec, _ := api.do(t, http.MethodPost, "/api/event-requests", map[string]any{"name": name, "email": "x@example.com"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, env := api.do(t, http.MethodGet, "/api/event-requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []domain.EventRequest
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 2)
	first := all[len(all)-1]
	assert.Equal(t, "EVT-AAAAA2", first.TrackingCode)

	rec, env = api.do(t, http.MethodPatch, "/api/event-requests/"+itoa(first.ID)+"/status", map[string]string{"status": "converted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Status updated successfully", env.Message)

	rec, env = api.do(t, http.MethodGet, "/api/event-requests?status=converted", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var converted []domain.EventRequest
	require.NoError(t, json.Unmarshal(env.Data, &converted))
	require.Len(t, converted, 1)
	assert.Equal(t, first.ID, converted[0].ID)
	assert.Equal(t, domain.StatusConverted, converted[0].Status)

	rec, env = api.do(t, http.MethodGet, "/api/event-requests?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "invalid status")

	rec, env = api.do(t, http.MethodPatch, "/api/event-requests/"+itoa(first.ID)+"/notes", map[string]string{"notes": "Deposit received"})
	require.Equal(t, http.StatusOK, rec.Code)
	var noted domain.EventRequest
	require.NoError(t, json.Unmarshal(env.Data, &noted))
	require.NotNil(t, noted.Notes)
	assert.Equal(t, "Deposit received", *noted.Notes)

	rec, env = api.do(t, http.MethodGet, "/api/event-requests/"+itoa(first.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail domain.EventRequest
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "EVT-AAAAA2", detail.TrackingCode)

	rec, env = api.do(t, http.MethodGet, "/api/event-requests/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event request not found", env.Error)

	rec, _ = api.do(t, http.MethodGet, "/api/event-requests/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(t, http.MethodPatch, "/api/event-requests/"+itoa(first.ID)+"/status", map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = api.do(t, http.MethodGet, "/api/event-requests/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats eventapi.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, eventapi.Stats{Total: 2, New: 1, Converted: 1}, stats)
}

type brokenStore struct {
	store.EventRequestStore
}

func (brokenStore) Insert(context.Context, *domain.EventRequest) error {
	return apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to save event request", errors.New("connection refused"))
}

func TestServerErrorsAreGeneric(t *testing.T) {
	api := newTestAPI(t, brokenStore{}, nil)

	rec, env := api.do(t, http.MethodPost, "/api/event-requests", map[string]any{"name": "Amina", "email": "amina@example.com"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Failed to submit request", env.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHealthMetricsAndCORS(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health services.HealthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	preflight := httptest.NewRequest(http.MethodOptions, "/api/event-requests", nil)
	preflight.Header.Set("Origin", "https://fasplanners.co.tz")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://fasplanners.co.tz", rec.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/api/track-event?code=EVT-AAAAAA", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, foreign)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
