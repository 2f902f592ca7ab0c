package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillforge/internal/engine"
	"github.com/abhisek/skillforge/internal/graphview"
	"github.com/abhisek/skillforge/internal/observability"
	"github.com/abhisek/skillforge/internal/platform/logger"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func chainCatalog() skillgraph.Catalog {
	return skillgraph.Catalog{
		Skills: []skillgraph.Skill{
			{ID: "A", Name: "Skill A", Category: skillgraph.CategoryProgramming, Difficulty: 1, EstimatedHours: 5},
			{ID: "B", Name: "Skill B", Category: skillgraph.CategoryProgramming, Difficulty: 2, EstimatedHours: 5},
			{ID: "C", Name: "Skill C", Category: skillgraph.CategoryBackend, Difficulty: 3, EstimatedHours: 5},
		},
		Edges: []skillgraph.Edge{
			{SkillID: "B", PrerequisiteID: "A", Weight: 1},
			{SkillID: "C", PrerequisiteID: "B", Weight: 1},
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	metrics := observability.NewMetrics()
	svc, err := engine.New(engine.Deps{
		Catalog:  st.CatalogRepo(),
		Learners: st.LearnerRepo(),
		Metrics:  metrics,
	}, engine.DefaultOptions())
	require.NoError(t, err)
	_, err = svc.ImportCatalog(context.Background(), chainCatalog())
	require.NoError(t, err)

	log := logger.NewNop()
	return NewRouter(RouterConfig{
		Logger:        log,
		Metrics:       metrics,
		SkillHandler:  NewSkillHandler(log, svc),
		HealthHandler: NewHealthHandler(st),
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	do(t, r, http.MethodPost, "/users/u1", nil)
	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skillforge_recompute_total")
	assert.Contains(t, w.Body.String(), `route="/users/:id"`)
}

func TestProvisionAndGraph(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/users/u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resultResponse](t, w)
	assert.Equal(t, "u1", res.UserID)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "A", res.Recommendations[0].SkillID)

	w = do(t, r, http.MethodGet, "/users/u1/skill-graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[graphview.View](t, w)
	require.Len(t, view.Nodes, 3)
	require.Len(t, view.Edges, 2)
	byID := map[string]graphview.Node{}
	for _, n := range view.Nodes {
		byID[n.ID] = n
	}
	assert.True(t, byID["A"].IsUnlocked)
	assert.False(t, byID["C"].IsUnlocked)

	w = do(t, r, http.MethodGet, "/users/u1/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skill_id":"A"`)

	w = do(t, r, http.MethodGet, "/users/u1/readiness", nil)
	require.Equal(t, http.StatusOK, w.Code)
	score := decode[readiness.Score](t, w)
	assert.Equal(t, 1, score.SkillsTracked)
}

func TestRecordActivityUnlocks(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/users/u1", nil)

	var res resultResponse
	for range 7 {
		w := do(t, r, http.MethodPost, "/users/u1/activities", map[string]any{
			"title":       "kata",
			"skill_ids":   []string{"A"},
			"performance": 0.5,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res = decode[resultResponse](t, w)
	}
	// 7 * 10 = 70 reaches the threshold.
	assert.Equal(t, []string{"B"}, res.NewlyUnlocked)

	w := do(t, r, http.MethodGet, "/users/u1/activities?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	acts := decode[struct {
		Activities []store.ActivityRecord `json:"activities"`
	}](t, w)
	assert.Len(t, acts.Activities, 3)

	w = do(t, r, http.MethodGet, "/users/u1/events?skill=B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"unlocked"`)

	w = do(t, r, http.MethodGet, "/users/u1/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]engine.ReviewItem](t, w)
	require.Len(t, reviews, 1)
	assert.Equal(t, "A", reviews[0].SkillID)
	assert.Equal(t, "Skill A", reviews[0].Name)
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/users/u1", nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown learner", http.MethodGet, "/users/ghost/skill-graph", nil, http.StatusNotFound, CodeNotFound},
		{"unknown skill", http.MethodPost, "/users/u1/activities", map[string]any{"skill_ids": []string{"zzz"}}, http.StatusNotFound, CodeNotFound},
		{"locked skill", http.MethodPost, "/users/u1/activities", map[string]any{"skill_ids": []string{"C"}}, http.StatusConflict, CodeInvalidState},
		{"missing skills", http.MethodPost, "/users/u1/activities", map[string]any{"title": "x"}, http.StatusBadRequest, CodeBadRequest},
		{"bad performance", http.MethodPost, "/users/u1/activities", map[string]any{"skill_ids": []string{"A"}, "performance": 3}, http.StatusBadRequest, CodeBadRequest},
		{"bad signal", http.MethodPut, "/users/u1/signals", map[string]any{"goal_progress": 101}, http.StatusBadRequest, CodeBadRequest},
		{"bad limit", http.MethodGet, "/users/u1/events?limit=-1", nil, http.StatusBadRequest, CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			env := decode[ErrorEnvelope](t, w)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestClassifyIntegrity(t *testing.T) {
	_, err := skillgraph.New(skillgraph.Catalog{
		Skills: []skillgraph.Skill{{ID: "A", Name: "A", Difficulty: 1, EstimatedHours: 1}},
		Edges:  []skillgraph.Edge{{SkillID: "A", PrerequisiteID: "missing"}},
	})
	require.Error(t, err)
	status, code := classify(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, CodeDataIntegrity, code)

	status, code = classify(engine.ErrNotReady)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, CodeNotReady, code)
}

func TestSignalsAndCatalog(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/users/u1", nil)

	w := do(t, r, http.MethodPut, "/users/u1/signals", map[string]any{"goal_progress": 100, "interview_score": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resultResponse](t, w)
	assert.Equal(t, 100, res.Readiness.GoalProgress)
	assert.Equal(t, 30, res.Readiness.PlacementReadiness)

	w = do(t, r, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cat := decode[skillgraph.Catalog](t, w)
	assert.Len(t, cat.Skills, 3)
	assert.Len(t, cat.Edges, 2)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/catalog", strings.NewReader(""))
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
