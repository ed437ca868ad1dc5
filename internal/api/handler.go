package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"dietmind/internal/ghost"
	"dietmind/internal/metrics"
	"dietmind/internal/planner"
	"dietmind/internal/shared"

	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// Generator produces a plan for a profile.
type Generator interface {
	Generate(ctx context.Context, profile planner.Profile) (*planner.Result, error)
}

// PlanStore keeps generated plans.
type PlanStore interface {
	Save(ctx context.Context, res *planner.Result) error
	Get(ctx context.Context, id string) (*planner.Result, error)
	ListRecent(ctx context.Context, limit int) ([]planner.Result, error)
}

// MetricsRecorder records token usage of a generation.
type MetricsRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Publisher shares a plan outside the application.
type Publisher interface {
	PublishPlan(ctx context.Context, res *planner.Result) (*ghost.Post, error)
}

// Handler serves the diet plan endpoints.
type Handler struct {
	generator Generator
	plans     PlanStore
	metrics   MetricsRecorder
	publisher Publisher
	dataDir   string
}

// NewHandler creates a Handler. publisher may be nil when publishing is
// not configured.
func NewHandler(generator Generator, plans PlanStore, metrics MetricsRecorder, publisher Publisher, dataDir string) *Handler {
	return &Handler{
		generator: generator,
		plans:     plans,
		metrics:   metrics,
		publisher: publisher,
		dataDir:   dataDir,
	}
}

// Status reports that the service is up.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "DietMind backend is healthy"})
}

// Health reports process health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"system": metrics.GetSysHealth(h.dataDir),
	})
}

// GenerateMealPlan generates a plan for the profile in the request body.
// The five-section plan is returned when anything could be extracted;
// otherwise the generator's raw answer is returned as {"raw": ...}.
func (h *Handler) GenerateMealPlan(c *gin.Context) {
	var profile planner.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.generator.Generate(c.Request.Context(), profile)
	if errors.Is(err, planner.ErrInvalidProfile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("Error generating meal plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate meal plan"})
		return
	}

	if err := h.metrics.RecordMeta(res.Meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", res.Meta.AgentName, err)
	}
	if err := h.plans.Save(c.Request.Context(), res); err != nil {
		log.Printf("Warning: failed to save meal plan %s: %v", res.ID, err)
	}

	c.Header("X-Plan-ID", res.ID)
	if res.Fallback {
		log.Printf("Plan %s: no sections recognized, returning raw answer", res.ID)
		c.JSON(http.StatusOK, gin.H{"raw": res.Raw})
		return
	}
	c.JSON(http.StatusOK, res.Plan)
}

// ListMealPlans returns the most recent plans.
func (h *Handler) ListMealPlans(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	plans, err := h.plans.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log.Printf("Error listing meal plans: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list meal plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetMealPlan returns a stored plan.
func (h *Handler) GetMealPlan(c *gin.Context) {
	res, ok := h.loadPlan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// PublishMealPlan publishes a stored plan to Ghost.
func (h *Handler) PublishMealPlan(c *gin.Context) {
	if h.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing is not configured"})
		return
	}

	res, ok := h.loadPlan(c)
	if !ok {
		return
	}
	if res.Fallback {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "plan has no structured content to publish"})
		return
	}

	post, err := h.publisher.PublishPlan(c.Request.Context(), res)
	if err != nil {
		log.Printf("Error publishing meal plan %s: %v", res.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to publish meal plan"})
		return
	}

	log.Printf("Published meal plan %s as post %s", res.ID, post.ID)
	c.JSON(http.StatusCreated, gin.H{"id": post.ID, "title": post.Title, "url": post.URL})
}

func (h *Handler) loadPlan(c *gin.Context) (*planner.Result, bool) {
	res, err := h.plans.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, planner.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal plan not found"})
		return nil, false
	}
	if err != nil {
		log.Printf("Error loading meal plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load meal plan"})
		return nil, false
	}
	return res, true
}
