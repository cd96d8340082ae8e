package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/agiletrack/internal/filter"
	"github.com/zulandar/agiletrack/internal/logger"
	"github.com/zulandar/agiletrack/internal/metrics"
	"github.com/zulandar/agiletrack/internal/models"
	"github.com/zulandar/agiletrack/internal/store"
	"gorm.io/gorm"
)

type handlers struct {
	db     *gorm.DB
	engine *metrics.Engine
	now    func() time.Time
	log    *logger.Logger
}

// registerRoutes sets up all dashboard routes on the Gin router. Every API
// route accepts the filter query parameters.
func registerRoutes(router *gin.Engine, h *handlers) {
	router.GET("/healthz", h.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/overview", h.handleOverview)
		api.GET("/projects", h.handleProjects)
		api.GET("/sprints", h.handleSprints)
		api.GET("/sprints/:id", h.handleSprintDetail)
		api.GET("/work-items", h.handleWorkItems)
		api.GET("/team", h.handleTeam)
		api.GET("/time-series", h.handleTimeSeries)
		api.GET("/velocity", h.handleVelocity)
		api.GET("/diagnostics", h.handleDiagnostics)
	}
}

func (h *handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// report loads the store and derives the dashboard for the request's filter.
// It writes the error response itself and reports false on failure.
func (h *handlers) report(c *gin.Context) (*metrics.Dashboard, bool) {
	snap, err := store.LoadSnapshot(h.db.WithContext(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	d, err := h.engine.Report(snap, filter.FromQuery(c.Request.URL.Query()), h.now())
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return d, true
}

// view loads the store and scopes it by the request's filter. The full
// snapshot is returned alongside for sprint delivery figures.
func (h *handlers) view(c *gin.Context) (all, v models.Snapshot, ok bool) {
	all, err := store.LoadSnapshot(h.db.WithContext(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return all, v, false
	}
	v, err = filter.Snapshot(all, filter.FromQuery(c.Request.URL.Query()), h.now())
	if err != nil {
		h.respondError(c, err)
		return all, v, false
	}
	return all, v, true
}

func (h *handlers) handleOverview(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generatedAt":        d.GeneratedAt,
		"filter":             d.Filter,
		"overview":           d.Overview,
		"statusDistribution": d.StatusDistribution,
	})
}

func (h *handlers) handleProjects(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": d.Projects})
}

func (h *handlers) handleSprints(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprints": d.Sprints})
}

func (h *handlers) handleSprintDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	all, v, ok := h.view(c)
	if !ok {
		return
	}

	var sprint *models.Sprint
	for i := range v.Sprints {
		if v.Sprints[i].ID == id {
			sprint = &v.Sprints[i]
			break
		}
	}
	if sprint == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found: " + c.Param("id")})
		return
	}

	summary, err := h.engine.Summary(*sprint, all.Tasks, all.Bugs, h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	inSprint := filter.Spec{filter.KeySprintID: c.Param("id")}
	tasks, err := filter.Tasks(v.Tasks, inSprint, h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	bugs, err := filter.Bugs(v.Bugs, inSprint, h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items, err := metrics.WorkItems(tasks, bugs, metrics.ViewAll)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprint": summary, "workItems": items})
}

func (h *handlers) handleWorkItems(c *gin.Context) {
	_, v, ok := h.view(c)
	if !ok {
		return
	}
	items, err := metrics.WorkItems(v.Tasks, v.Bugs, metrics.View(c.Query("view")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workItems": items})
}

func (h *handlers) handleTeam(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": d.Team})
}

func (h *handlers) handleTimeSeries(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeSeries": d.TimeSeries})
}

func (h *handlers) handleVelocity(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"velocity": d.Velocity})
}

func (h *handlers) handleDiagnostics(c *gin.Context) {
	d, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": d.Diagnostics, "total": d.Diagnostics.Total()})
}

// parseID converts a path parameter to a record id.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps bad filter or view input to 400 and anything else to 500.
func (h *handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, filter.ErrInvalidSpec) || errors.Is(err, metrics.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
