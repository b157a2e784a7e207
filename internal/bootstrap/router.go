package bootstrap

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/GoSim-25-26J-441/projectsync/internal/api/http"
	"github.com/GoSim-25-26J-441/projectsync/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/projectsync/internal/api/http/routes"
	"github.com/GoSim-25-26J-441/projectsync/internal/logging"
	projecthttp "github.com/GoSim-25-26J-441/projectsync/internal/projects/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *zap.Logger
	App            *App
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	dep.Logger = logging.OrNop(dep.Logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.App.Repo)
	healthHandler.RegisterRoutes(r)

	r.Use(middleware.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))

	routes.RegisterV1(r, routes.V1Deps{
		Projects: projecthttp.New(dep.App.Repo, dep.App.Modes, dep.Logger.Named("http")),
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "X-Persistence-Mode"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") || len(origins) == 0 {
		// wildcard origins cannot be combined with credentials
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
