// Package http wires the gin engine of the suitability API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/interfaces/http/handlers"
	"github.com/turtacn/suitability/internal/interfaces/http/middleware"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	logger        logger.Logger
	tracer        trace.Tracer
	metrics       service.Metrics
	gatherer      prometheus.Gatherer
	healthHandler *handlers.HealthHandler
	riskHandler   *handlers.RiskHandler
	tenantHandler *handlers.TenantConfigHandler
	setupOnce     sync.Once
	server        *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	tracer trace.Tracer,
	metrics service.Metrics,
	gatherer prometheus.Gatherer,
	healthHandler *handlers.HealthHandler,
	riskHandler *handlers.RiskHandler,
	tenantHandler *handlers.TenantConfigHandler,
) *Router {
	// 设置 Gin 模式
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	return &Router{
		engine:        engine,
		config:        cfg,
		logger:        log.WithComponent("http"),
		tracer:        tracer,
		metrics:       metrics,
		gatherer:      gatherer,
		healthHandler: healthHandler,
		riskHandler:   riskHandler,
		tenantHandler: tenantHandler,
		server: &http.Server{
			Addr:           cfg.Server.Addr(),
			Handler:        engine,
			ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20, // 1MB
		},
	}
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logging(r.logger))
	r.engine.Use(middleware.ObservabilityMiddleware(r.tracer, r.metrics))

	// CORS 配置
	corsConfig := cors.Config{
		AllowOrigins:  r.config.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 || (len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowCredentials = true
	}
	r.engine.Use(cors.New(corsConfig))

	// 健康检查路由
	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	// Pprof 性能分析（仅在非生产环境）
	if !r.config.Server.IsProduction() {
		pprof.Register(r.engine)
	}

	// API 路由组，/api 保留给旧客户端
	r.registerAPI(r.engine.Group("/api/v1"))
	r.registerAPI(r.engine.Group("/api"))

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
			"category":          "client",
		})
	})
}

func (r *Router) registerAPI(api *gin.RouterGroup) {
	api.GET("/health", r.healthHandler.HealthCheck)
	api.POST("/risk-profile", r.riskHandler.ComputeRiskProfile)
	api.GET("/tenants", r.tenantHandler.ListTenants)

	configs := api.Group("/risk-configuration")
	{
		configs.GET("", r.tenantHandler.GetAllConfigurations)
		// "validate" is reserved as a tenant id, see constants.ReservedTenantIDs.
		configs.POST("/validate", r.tenantHandler.ValidateCandidate)
		configs.GET("/:tenant", r.tenantHandler.GetConfiguration)
		configs.POST("/:tenant", r.tenantHandler.CreateConfiguration)
		configs.PUT("/:tenant", r.tenantHandler.UpdateConfiguration)
		configs.DELETE("/:tenant", r.tenantHandler.DeleteConfiguration)
		configs.GET("/:tenant/validation", r.tenantHandler.ValidateConfiguration)
		if r.tenantHandler.HasHistory() {
			configs.GET("/:tenant/history", r.tenantHandler.GetHistory)
		}
	}
}

// Handler returns the fully routed engine.
func (r *Router) Handler() http.Handler {
	r.setupOnce.Do(r.setupRoutes)
	return r.engine
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.setupOnce.Do(r.setupRoutes)

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", r.server.Addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}
