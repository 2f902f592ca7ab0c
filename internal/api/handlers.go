package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillforge/internal/engine"
	"github.com/abhisek/skillforge/internal/graphview"
	"github.com/abhisek/skillforge/internal/platform/logger"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/store"
)

// Engine is the part of *engine.Service the HTTP surface uses.
type Engine interface {
	Graph() *skillgraph.Graph
	SeedFoundation(ctx context.Context, userID string) (*engine.Result, error)
	Recompute(ctx context.Context, userID string) (*engine.Result, error)
	RecordActivity(ctx context.Context, a engine.Activity) (*engine.Result, error)
	GraphView(ctx context.Context, userID string) (graphview.View, error)
	Recommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error)
	Readiness(ctx context.Context, userID string) (readiness.Score, error)
	Reviews(ctx context.Context, userID string) ([]engine.ReviewItem, error)
	SetSignals(ctx context.Context, userID string, sig readiness.Signals) (*engine.Result, error)
	Events(ctx context.Context, userID string, opts store.QueryOpts) ([]store.SkillEventRecord, error)
	Activities(ctx context.Context, userID string, limit int) ([]store.ActivityRecord, error)
}

// SkillHandler serves the learner and catalog routes.
type SkillHandler struct {
	log    *logger.Logger
	engine Engine
}

func NewSkillHandler(log *logger.Logger, eng Engine) *SkillHandler {
	return &SkillHandler{
		log:    log.With("handler", "SkillHandler"),
		engine: eng,
	}
}

// resultResponse is the body returned by every operation that recomputes.
type resultResponse struct {
	UserID          string                     `json:"user_id"`
	NewlyUnlocked   []string                   `json:"newly_unlocked"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Readiness       readiness.Score            `json:"readiness"`
	Warnings        []string                   `json:"warnings,omitempty"`
	ComputedAt      time.Time                  `json:"computed_at"`
}

func newResultResponse(res *engine.Result) resultResponse {
	out := resultResponse{
		UserID:          res.UserID,
		NewlyUnlocked:   res.NewlyUnlocked,
		Recommendations: res.Recommendations,
		Readiness:       res.Readiness,
		ComputedAt:      res.ComputedAt,
	}
	if out.NewlyUnlocked == nil {
		out.NewlyUnlocked = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []recommend.Recommendation{}
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return out
}

func (h *SkillHandler) fail(c *gin.Context, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", "user_id", c.Param("id"), "error", err)
	}
	_ = c.Error(err)
	respondError(c, status, code, err)
}

// POST /users/:id
func (h *SkillHandler) Provision(c *gin.Context) {
	res, err := h.engine.SeedFoundation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Provision", err)
		return
	}
	respondOK(c, newResultResponse(res))
}

// POST /users/:id/skill-graph/recompute
func (h *SkillHandler) Recompute(c *gin.Context) {
	res, err := h.engine.Recompute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Recompute", err)
		return
	}
	respondOK(c, newResultResponse(res))
}

// GET /users/:id/skill-graph
func (h *SkillHandler) GetSkillGraph(c *gin.Context) {
	view, err := h.engine.GraphView(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "GetSkillGraph", err)
		return
	}
	respondOK(c, view)
}

// GET /users/:id/recommendations
func (h *SkillHandler) GetRecommendations(c *gin.Context) {
	recs, err := h.engine.Recommendations(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "GetRecommendations", err)
		return
	}
	respondOK(c, gin.H{"recommendations": recs})
}

// GET /users/:id/readiness
func (h *SkillHandler) GetReadiness(c *gin.Context) {
	score, err := h.engine.Readiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "GetReadiness", err)
		return
	}
	respondOK(c, score)
}

// GET /users/:id/reviews
func (h *SkillHandler) GetReviews(c *gin.Context) {
	items, err := h.engine.Reviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "GetReviews", err)
		return
	}
	if items == nil {
		items = []engine.ReviewItem{}
	}
	respondOK(c, items)
}

type activityRequest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Kind        string     `json:"kind"`
	SkillIDs    []string   `json:"skill_ids" binding:"required,min=1"`
	CompletedAt *time.Time `json:"completed_at"`
	Performance *float64   `json:"performance"`
}

// POST /users/:id/activities
func (h *SkillHandler) RecordActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	a := engine.Activity{
		ID:          req.ID,
		UserID:      c.Param("id"),
		Title:       req.Title,
		Kind:        req.Kind,
		SkillIDs:    req.SkillIDs,
		Performance: req.Performance,
	}
	if req.CompletedAt != nil {
		a.CompletedAt = *req.CompletedAt
	}
	res, err := h.engine.RecordActivity(c.Request.Context(), a)
	if err != nil {
		h.fail(c, "RecordActivity", err)
		return
	}
	c.JSON(http.StatusCreated, newResultResponse(res))
}

// GET /users/:id/activities
func (h *SkillHandler) ListActivities(c *gin.Context) {
	limit, err := intQuery(c, "limit", 50)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	acts, err := h.engine.Activities(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.fail(c, "ListActivities", err)
		return
	}
	if acts == nil {
		acts = []store.ActivityRecord{}
	}
	respondOK(c, gin.H{"activities": acts})
}

// PUT /users/:id/signals
func (h *SkillHandler) PutSignals(c *gin.Context) {
	var sig readiness.Signals
	if err := c.ShouldBindJSON(&sig); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	res, err := h.engine.SetSignals(c.Request.Context(), c.Param("id"), sig)
	if err != nil {
		h.fail(c, "PutSignals", err)
		return
	}
	respondOK(c, newResultResponse(res))
}

type eventResponse struct {
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	SkillID   string    `json:"skill_id"`
	Kind      string    `json:"kind"`
	FromLevel int       `json:"from_level"`
	ToLevel   int       `json:"to_level"`
}

// GET /users/:id/events?limit=&after=&skill=
func (h *SkillHandler) ListEvents(c *gin.Context) {
	limit, err := intQuery(c, "limit", 100)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	after, err := intQuery(c, "after", 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	events, err := h.engine.Events(c.Request.Context(), c.Param("id"), store.QueryOpts{
		Limit:   limit,
		After:   int64(after),
		SkillID: c.Query("skill"),
	})
	if err != nil {
		h.fail(c, "ListEvents", err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			Sequence:  e.Sequence,
			Timestamp: e.Timestamp,
			SkillID:   e.SkillID,
			Kind:      e.Kind,
			FromLevel: e.FromLevel,
			ToLevel:   e.ToLevel,
		})
	}
	respondOK(c, gin.H{"events": out})
}

// GET /catalog
func (h *SkillHandler) GetCatalog(c *gin.Context) {
	g := h.engine.Graph()
	if g == nil {
		respondError(c, http.StatusServiceUnavailable, CodeNotReady, engine.ErrNotReady)
		return
	}
	respondOK(c, g.Catalog())
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("query parameter %s must be a non-negative integer", name)
	}
	return n, nil
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

// GET /healthz
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, CodeNotReady, err)
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
