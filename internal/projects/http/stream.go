package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// streamMode streams persistence mode changes using Server-Sent Events (SSE)
func (h *Handler) streamMode(c *gin.Context) {
	if h.modes == nil {
		h.reply(c, http.StatusNotImplemented, gin.H{"ok": false, "error": "mode stream disabled"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.reply(c, http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	updates, cancel := h.modes.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	writeModeEvent(c, "initial", h.repo.GetPersistenceMode())
	flusher.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case mode, open := <-updates:
			if !open {
				return
			}
			writeModeEvent(c, "mode", mode)
			flusher.Flush()
		}
	}
}

func writeModeEvent(c *gin.Context, event string, mode domain.PersistenceMode) {
	data, _ := json.Marshal(gin.H{"mode": mode})
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
}
