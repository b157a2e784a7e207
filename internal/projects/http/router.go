package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.Use(h.stampMode)

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/mode", h.mode)
	rg.GET("/mode/stream", h.streamMode)
	rg.POST("/sync", h.sync)
	rg.GET("/sync/pending", h.pending)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.save)
	rg.DELETE("/:id", h.delete)
}
