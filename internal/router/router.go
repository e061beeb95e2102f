package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/license-monitor/internal/handler"
	alerthandler "github.com/jwalitptl/license-monitor/internal/handler/alert"
	authhandler "github.com/jwalitptl/license-monitor/internal/handler/auth"
	"github.com/jwalitptl/license-monitor/internal/middleware"
	authsvc "github.com/jwalitptl/license-monitor/internal/service/auth"
	"github.com/jwalitptl/license-monitor/pkg/metrics"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine  *gin.Engine
	authSvc authsvc.Service
	authH   *authhandler.Handler
	alertH  *alerthandler.Handler
	apiH    []Handler
	h       *handler.Handler
}

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

// NewRouter builds the engine with the shared middleware chain. Session
// protection applies to the API group; auth endpoints and the cron-secret
// sweep trigger stay outside it.
func NewRouter(
	authSvc authsvc.Service,
	authH *authhandler.Handler,
	alertH *alerthandler.Handler,
	h *handler.Handler,
	m *metrics.Metrics,
	config Config,
	apiHandlers ...Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
	)
	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:  engine,
		authSvc: authSvc,
		authH:   authH,
		alertH:  alertH,
		apiH:    apiHandlers,
		h:       h,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// public: login flow and the scheduler-triggered sweep
	r.authH.RegisterRoutes(api)
	r.alertH.RegisterCheckRoute(api)

	protected := api.Group("")
	protected.Use(middleware.SessionAuth(r.authSvc))

	r.authH.RegisterSessionRoutes(protected)
	r.alertH.RegisterRoutes(protected)
	for _, h := range r.apiH {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	rg.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
