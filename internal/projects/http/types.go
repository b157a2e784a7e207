package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/projectsync/internal/logging"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/service"
)

const modeHeader = "X-Persistence-Mode"

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	repo      *service.ProjectRepository
	modes     *service.ModeBroadcaster
	logger    *zap.Logger
	keepAlive time.Duration
}

func New(repo *service.ProjectRepository, modes *service.ModeBroadcaster, logger *zap.Logger) *Handler {
	return &Handler{
		repo:      repo,
		modes:     modes,
		logger:    logging.OrNop(logger),
		keepAlive: 15 * time.Second,
	}
}

type projectReq struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Data        map[string]any `json:"data"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
}

func (r projectReq) toProject() domain.Project {
	p := domain.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Data:        r.Data,
	}
	if r.CreatedAt != nil {
		p.CreatedAt = r.CreatedAt.UTC()
	}
	return p
}
