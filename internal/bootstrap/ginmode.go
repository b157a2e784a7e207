package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/projectsync/config"
)

// SetGinMode maps APP_ENV onto gin's mode. Other environments keep gin's default.
func SetGinMode(env string) {
	switch env {
	case config.EnvProduction:
		gin.SetMode(gin.ReleaseMode)
	case config.EnvTest:
		gin.SetMode(gin.TestMode)
	}
}
