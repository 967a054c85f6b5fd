package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

func TestSettingsHandler_Get(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decodeData[services.SettingsView](t, body)
	assert.Equal(t, models.IsolationCombined, view.Isolation)
	assert.Equal(t, 3, view.Projects)
	require.NotEmpty(t, view.Reliability)
	assert.Equal(t, "official_gov", view.Reliability[0].Key)
}

func TestSettingsHandler_IsolationPersistsInSession(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPut, "/settings/isolation", IsolationRequest{Isolation: "military"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "military", decodeData[IsolationRequest](t, body).Isolation)

	_, body = env.do(t, http.MethodGet, "/settings", nil)
	assert.Equal(t, models.IsolationMilitary, decodeData[services.SettingsView](t, body).Isolation)

	_, body = env.do(t, http.MethodGet, "/projects/PRJ-001/overview", nil)
	overview := decodeData[services.Overview](t, body)
	assert.Equal(t, "Military Only", overview.ViewLabel)
	assert.Len(t, overview.Feed, 6)

	// A query parameter overrides the stored toggle for one request.
	_, body = env.do(t, http.MethodGet, "/projects/PRJ-001/overview?isolation=combined", nil)
	assert.Equal(t, "Combined View", decodeData[services.Overview](t, body).ViewLabel)

	_, body = env.do(t, http.MethodGet, "/projects/PRJ-001/overview", nil)
	assert.Equal(t, "Military Only", decodeData[services.Overview](t, body).ViewLabel)
}

func TestSettingsHandler_IsolationValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPut, "/settings/isolation", IsolationRequest{Isolation: "public"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", decodeError(t, body)["error"])
}

func TestSettingsHandler_Reset(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/projects", CreateProjectRequest{Name: "Temporary"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/projects/PRJ-001/ingest/military", MilitaryReportRequest{FileName: "log.txt", Text: "All clear."})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/settings/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Demo data reset", decodeData[services.Notice](t, body).Title)

	_, body = env.do(t, http.MethodGet, "/projects", nil)
	assert.Len(t, decodeData[services.ProjectList](t, body).Projects, 3)

	_, body = env.do(t, http.MethodGet, "/projects/PRJ-001/ingest", nil)
	assert.Empty(t, decodeData[services.IngestView](t, body).Staged)
}
