package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// stampMode sets the persistence mode header for responses that never reach reply.
func (h *Handler) stampMode(c *gin.Context) {
	c.Header(modeHeader, string(h.repo.GetPersistenceMode()))
	c.Next()
}

// reply writes a JSON body with the mode observed after the operation ran.
func (h *Handler) reply(c *gin.Context, status int, body gin.H) {
	c.Header(modeHeader, string(h.repo.GetPersistenceMode()))
	c.JSON(status, body)
}

func (h *Handler) list(c *gin.Context) {
	items := h.repo.ListProjects(c.Request.Context())
	h.reply(c, http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	p, ok := h.repo.GetProject(c.Request.Context(), id)
	if !ok {
		h.reply(c, http.StatusNotFound, gin.H{"ok": false, "error": domain.ErrNotFound.Error()})
		return
	}
	h.reply(c, http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		h.reply(c, http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	h.store(c, http.StatusCreated, req)
}

func (h *Handler) save(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		h.reply(c, http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.ID != "" && strings.TrimSpace(req.ID) != id {
		h.reply(c, http.StatusBadRequest, gin.H{"ok": false, "error": "body id does not match path"})
		return
	}
	req.ID = id

	h.store(c, http.StatusOK, req)
}

func (h *Handler) store(c *gin.Context, status int, req projectReq) {
	ctx := c.Request.Context()
	if req.CreatedAt == nil && strings.TrimSpace(req.ID) != "" {
		// keep the stored creation time when the body leaves it out
		if existing, ok := h.repo.GetProject(ctx, req.ID); ok {
			createdAt := existing.CreatedAt
			req.CreatedAt = &createdAt
		}
	}

	p, err := h.repo.SaveProject(ctx, req.toProject())
	if err != nil {
		h.logger.Error("save project failed", zap.String("project_id", req.ID), zap.Error(err))
		h.reply(c, http.StatusServiceUnavailable, gin.H{"ok": false, "error": "project could not be saved"})
		return
	}
	h.reply(c, status, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	err := h.repo.DeleteProject(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrMissingID):
		h.reply(c, http.StatusBadRequest, gin.H{"ok": false, "error": "missing project id"})
	case err != nil:
		h.logger.Error("delete project failed", zap.String("project_id", id), zap.Error(err))
		h.reply(c, http.StatusServiceUnavailable, gin.H{"ok": false, "error": "project could not be deleted"})
	default:
		h.reply(c, http.StatusOK, gin.H{"ok": true})
	}
}

func (h *Handler) mode(c *gin.Context) {
	h.reply(c, http.StatusOK, gin.H{"ok": true, "mode": h.repo.GetPersistenceMode()})
}

func (h *Handler) sync(c *gin.Context) {
	ctx := c.Request.Context()
	res := h.repo.Sync(ctx)
	h.reply(c, http.StatusOK, gin.H{"ok": true, "result": res, "status": h.repo.Status(ctx)})
}

func (h *Handler) pending(c *gin.Context) {
	updates, deletes, err := h.repo.Pending(c.Request.Context())
	if err != nil {
		h.logger.Error("read pending queues failed", zap.Error(err))
		h.reply(c, http.StatusServiceUnavailable, gin.H{"ok": false, "error": "pending queues unavailable"})
		return
	}
	h.reply(c, http.StatusOK, gin.H{"ok": true, "updates": updates, "deletes": deletes})
}
