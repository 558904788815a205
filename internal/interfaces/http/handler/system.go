package handler

import (
	"context"
	"html/template"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheckTimeout bounds the database ping of /health
const healthCheckTimeout = 3 * time.Second

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueStats reports the PDF job queue load
type QueueStats func() (queued, running int)

// SystemHandler serves health, the docs landing redirect and the ReDoc page
type SystemHandler struct {
	BaseHandler
	db        Pinger
	stats     QueueStats
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. stats may be nil.
func NewSystemHandler(db Pinger, stats QueueStats, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		stats:     stats,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status    string          `json:"status" example:"healthy" enums:"healthy,unhealthy"`
	Database  string          `json:"database" example:"ok"`
	Version   string          `json:"version" example:"v1"`
	GoVersion string          `json:"go_version" example:"go1.25.5"`
	Uptime    string          `json:"uptime" example:"1h30m45s"`
	PDFQueue  *QueueStatsData `json:"pdf_queue,omitempty"`
}

// QueueStatsData is the PDF job queue load
type QueueStatsData struct {
	Queued  int `json:"queued" example:"0"`
	Running int `json:"running" example:"1"`
}

// Health godoc
//
//	@ID				getHealth
//	@Summary		Service health
//	@Description	Pings the database. Answers 503 when it is unreachable.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.stats != nil {
		queued, running := h.stats()
		resp.PDFQueue = &QueueStatsData{Queued: queued, Running: running}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	h.OK(c, resp)
}

// Root redirects the API root to the Swagger UI
func (h *SystemHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
}

var redocPage = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body { margin: 0; padding: 0; }</style>
</head>
<body>
<redoc spec-url="{{.SpecURL}}"></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>
`))

// ReDoc serves a ReDoc page rendering the generated schema
func (h *SystemHandler) ReDoc(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	_ = redocPage.Execute(c.Writer, struct{ Title, SpecURL string }{
		Title:   "Cookbook API",
		SpecURL: "/swagger/doc.json",
	})
}
