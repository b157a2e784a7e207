package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/projectsync/config"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

func projectFixture() domain.Project {
	return domain.Project{Title: "Intro Quiz", Type: "quiz", Data: map[string]any{"questions": "3"}}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: "0", AllowedOrigins: []string{"http://localhost:3000"}},
		Remote: config.RemoteConfig{Backend: config.RemoteMemory},
		Local: config.LocalConfig{
			Backend:   config.LocalBolt,
			BoltPath:  filepath.Join(t.TempDir(), "app.db"),
			KeyPrefix: "test",
		},
		Sync: config.SyncConfig{RemoteTimeout: time.Second},
	}
}

func TestNewApp_Bolt(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	saved, err := app.Repo.SaveProject(context.Background(), projectFixture())
	require.NoError(t, err)

	got, ok := app.Repo.GetProject(context.Background(), saved.ID)
	require.True(t, ok)
	assert.Equal(t, "Intro Quiz", got.Title)
}

func TestNewApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Local.Backend = config.LocalRedis
	host, port, ok := strings.Cut(mr.Addr(), ":")
	require.True(t, ok)
	cfg.Local.Redis.Host = host
	var err error
	cfg.Local.Redis.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	app, err := NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	_, err = app.Repo.SaveProject(context.Background(), projectFixture())
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:projects"))
}

func TestNewApp_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote.Backend = "dynamo"

	_, err := NewApp(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "dynamo")
}

func TestBuildRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := NewApp(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer app.Close()

	r := BuildRouter(RouterDeps{
		ServiceName:    "projectsync",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		App:            app,
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "remote", rr.Header().Get("X-Persistence-Mode"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
}

func TestCorsConfig(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)

	cfg = corsConfig([]string{"https://a.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
}

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode(config.EnvProduction)
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetGinMode(config.EnvTest)
	assert.Equal(t, gin.TestMode, gin.Mode())

	gin.SetMode(gin.DebugMode)
	SetGinMode(config.EnvDevelopment)
	assert.Equal(t, gin.DebugMode, gin.Mode())
}
