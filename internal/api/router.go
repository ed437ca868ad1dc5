package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions configures the outer surface of the API.
type RouterOptions struct {
	// AllowedOrigins lists CORS origins. Empty or "*" allows all.
	AllowedOrigins []string
	// StaticDir holds the built frontend. It is served only when it
	// contains an index.html.
	StaticDir string
}

// NewRouter wires the handler into a gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/generate-meal-plan", h.GenerateMealPlan)
		api.GET("/meal-plans", h.ListMealPlans)
		api.GET("/meal-plans/:id", h.GetMealPlan)
		api.POST("/meal-plans/:id/publish", h.PublishMealPlan)
	}

	index := filepath.Join(opts.StaticDir, "index.html")
	if _, err := os.Stat(index); opts.StaticDir != "" && err == nil {
		r.NoRoute(serveSPA(opts.StaticDir, index))
	} else {
		r.GET("/", h.Status)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-Plan-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// serveSPA serves files from dir and falls back to index.html so client
// side routes resolve. Unknown API routes still get a JSON 404.
func serveSPA(dir, index string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	}
}
