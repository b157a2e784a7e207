package routes

import (
	"github.com/gin-gonic/gin"

	projecthttp "github.com/GoSim-25-26J-441/projectsync/internal/projects/http"
)

type V1Deps struct {
	Projects *projecthttp.Handler
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	projectsGroup := api.Group("/projects")
	dep.Projects.Register(projectsGroup)
}
