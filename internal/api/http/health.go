package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Mode      string    `json:"mode,omitempty"`
}

// ModeReporter exposes the current persistence mode.
type ModeReporter interface {
	GetPersistenceMode() domain.PersistenceMode
}

type HealthHandler struct {
	serviceName string
	version     string
	modes       ModeReporter
}

func NewHealthHandler(serviceName, version string, modes ModeReporter) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		modes:       modes,
	}
}

// HealthCheck answers 200 in both modes. Local mode is reported as degraded.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, mode := "healthy", ""
	if h.modes != nil {
		mode = string(h.modes.GetPersistenceMode())
		if mode == string(domain.ModeLocal) {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Mode:      mode,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
