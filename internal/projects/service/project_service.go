package service

import (
	"context"
	"strings"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// ProjectRepository is the single entry point the application uses for project
// persistence. Callers never see which store served a request except through
// GetPersistenceMode.
type ProjectRepository struct {
	sync *SyncCoordinator
}

// NewProjectRepository creates a repository backed by the given coordinator
func NewProjectRepository(sync *SyncCoordinator) *ProjectRepository {
	return &ProjectRepository{sync: sync}
}

// ListProjects returns every project, newest first
func (r *ProjectRepository) ListProjects(ctx context.Context) []domain.Project {
	return r.sync.List(ctx)
}

// SaveProject creates or replaces a project and returns the stored copy
func (r *ProjectRepository) SaveProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.ID = strings.TrimSpace(p.ID)
	return r.sync.Save(ctx, p)
}

// DeleteProject removes a project
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrMissingID
	}
	return r.sync.Delete(ctx, id)
}

// GetProject returns a project and whether it exists
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (domain.Project, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Project{}, false
	}
	return r.sync.Get(ctx, id)
}

// GetPersistenceMode reports whether the last operation was served remotely or locally
func (r *ProjectRepository) GetPersistenceMode() domain.PersistenceMode {
	return r.sync.Mode()
}

// Sync pushes pending local mutations to the remote store
func (r *ProjectRepository) Sync(ctx context.Context) FlushResult {
	return r.sync.Flush(ctx)
}

// Pending lists the ids still waiting to be pushed to the remote store
func (r *ProjectRepository) Pending(ctx context.Context) (updates, deletes []string, err error) {
	return r.sync.Pending(ctx)
}

func (r *ProjectRepository) Status(ctx context.Context) Status {
	return r.sync.Status(ctx)
}

func (r *ProjectRepository) OnModeChange(fn ModeListener) {
	r.sync.OnModeChange(fn)
}
