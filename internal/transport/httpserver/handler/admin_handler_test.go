package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"property-feed-service/internal/app/service"
	"property-feed-service/internal/domain"
	"property-feed-service/internal/infra/cache"
	"property-feed-service/internal/validator"
)

type fakeScheduler struct {
	triggerErr error
	updateErr  error
	state      domain.ScheduleState
	updated    []string
}

func (f *fakeScheduler) TriggerNow() (*service.RefreshResult, error) {
	if f.triggerErr != nil {
		return nil, f.triggerErr
	}
	return &service.RefreshResult{Feed: "feed.xml", Count: 12, Duration: time.Second}, nil
}

func (f *fakeScheduler) UpdateSchedule(expression string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, expression)
	f.state.Expression = expression
	return nil
}

func (f *fakeScheduler) Status() domain.ScheduleState {
	return f.state
}

func newAdminApp(t *testing.T, sched *fakeScheduler) (*fiber.App, domain.CacheStore) {
	t.Helper()

	store := cache.NewMemory(map[string]time.Duration{
		service.NamespaceProperties: 30 * time.Minute,
	}, zap.NewNop())

	h := NewAdminHandler(sched, store, validator.New(), zap.NewNop())

	app := fiber.New()
	admin := app.Group("/api/v1/admin")
	admin.Post("/refresh", h.TriggerRefresh)
	admin.Get("/refresh/status", h.RefreshStatus)
	admin.Put("/schedule", h.UpdateSchedule)
	admin.Post("/cache/:namespace/flush", h.FlushNamespace)

	return app, store
}

func TestAdminHandler_TriggerRefresh(t *testing.T) {
	app, _ := newAdminApp(t, &fakeScheduler{})

	req := httptest.NewRequest("POST", "/api/v1/admin/refresh", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, float64(12), got["count"])
}

func TestAdminHandler_TriggerRefresh_Conflict(t *testing.T) {
	app, _ := newAdminApp(t, &fakeScheduler{triggerErr: domain.ErrRefreshRunning})

	req := httptest.NewRequest("POST", "/api/v1/admin/refresh", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAdminHandler_UpdateSchedule(t *testing.T) {
	sched := &fakeScheduler{state: domain.ScheduleState{Expression: "0 6 * * *"}}
	app, _ := newAdminApp(t, sched)

	body := bytes.NewBufferString(`{"expression": "30 5 * * *"}`)
	req := httptest.NewRequest("PUT", "/api/v1/admin/schedule", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"30 5 * * *"}, sched.updated)
}

func TestAdminHandler_UpdateSchedule_InvalidExpression(t *testing.T) {
	sched := &fakeScheduler{state: domain.ScheduleState{Expression: "0 6 * * *"}}
	app, _ := newAdminApp(t, sched)

	body := bytes.NewBufferString(`{"expression": "not a cron"}`)
	req := httptest.NewRequest("PUT", "/api/v1/admin/schedule", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, sched.updated, "invalid expression must not reach the scheduler")
}

func TestAdminHandler_FlushNamespace(t *testing.T) {
	app, store := newAdminApp(t, &fakeScheduler{})

	ctx := httptest.NewRequest("POST", "/", nil).Context()
	require.NoError(t, store.Set(ctx, service.NamespaceProperties, "snapshot", []byte("[]"), 0))

	req := httptest.NewRequest("POST", "/api/v1/admin/cache/properties/flush", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := store.Get(ctx, service.NamespaceProperties, "snapshot")
	require.NoError(t, err)
	assert.Nil(t, data, "flush should empty the namespace")
}

func TestAdminHandler_FlushNamespace_Unknown(t *testing.T) {
	app, _ := newAdminApp(t, &fakeScheduler{})

	req := httptest.NewRequest("POST", "/api/v1/admin/cache/nope/flush", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
