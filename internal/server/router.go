package server

import (
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/abilov/sanctuarypics/internal/config"
	"github.com/abilov/sanctuarypics/internal/metrics"
	"github.com/abilov/sanctuarypics/internal/photo"
)

// Dependencies groups the services and store handles required by the HTTP
// router. Store handles are nil when the corresponding backend is not in use.
type Dependencies struct {
	Config       config.Config
	Logger       *zap.Logger
	DB           *pgxpool.Pool
	BadgerDB     *badger.DB
	ObjectStore  *minio.Client
	PhotoService *photo.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(corsConfig(deps.Config.Server.AllowedOrigins)))

	metrics.InitMetrics()
	router.Use(metrics.Middleware())
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	registerHealthRoutes(router, deps)

	if deps.PhotoService != nil {
		photo.RegisterRoutes(router, deps.PhotoService)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
