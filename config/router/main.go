package router

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/akeren/go-waitlist/internal/log"
	"github.com/akeren/go-waitlist/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// DefaultTimeoutDuration is the default request timeout.
const DefaultTimeoutDuration = 30 * time.Second

type RouterService struct {
	engine         *gin.Engine
	server         *http.Server
	logger         *log.Logger
	settings       HTTPSettings
	requestTimeout time.Duration
	registry       *prometheus.Registry

	handlerToControllerMap map[string]*RESTController
}

type RouterConfig struct {
	RequestTimeout time.Duration
	// Templates backs ServiceResult pages; nil disables HTML rendering.
	Templates *template.Template
	// Static is served under /static when set.
	Static fs.FS
}

func CreateRouterService(logger *log.Logger, routerConfig *RouterConfig) *RouterService {
	if routerConfig == nil {
		routerConfig = &RouterConfig{}
	}
	if routerConfig.RequestTimeout <= 0 {
		routerConfig.RequestTimeout = DefaultTimeoutDuration
	}

	settings := loadHTTPSettings(logger)
	if settings.GinMode != "" {
		logger.Info("Setting Gin mode", "mode", settings.GinMode)
		gin.SetMode(settings.GinMode)
	}

	ginRouter := gin.New()
	// Route on the escaped path so %2F inside a segment stays within one param.
	ginRouter.UseRawPath = true
	ginRouter.UnescapePathValues = true
	ginRouter.Use(gin.Recovery())

	if utils.IsTracingEnabled() {
		ginRouter.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	// Gin trusts every proxy unless told otherwise, which lets X-Forwarded-For spoof ClientIP().
	trustedProxies := parseTrustedProxies(settings.TrustedProxies)
	if err := ginRouter.SetTrustedProxies(trustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = ginRouter.SetTrustedProxies(nil)
	} else if trustedProxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}

	rs := &RouterService{
		engine:                 ginRouter,
		logger:                 logger,
		settings:               settings,
		requestTimeout:         routerConfig.RequestTimeout,
		handlerToControllerMap: make(map[string]*RESTController),
	}

	rs.mountMetrics()

	ginRouter.Use(
		rs.securityHeadersMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.timeoutMiddleware(),
		rs.correlationIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.requestLoggingMiddleware(),
	)

	if routerConfig.Templates != nil {
		ginRouter.SetHTMLTemplate(routerConfig.Templates)
	}
	if routerConfig.Static != nil {
		ginRouter.StaticFS("/static", http.FS(routerConfig.Static))
		logger.Info("Static assets mounted", "path", "/static")
	}

	ginRouter.HandleMethodNotAllowed = true
	ginRouter.RedirectTrailingSlash = true
	ginRouter.NoRoute(rs.fallbackHandler(http.StatusNotFound, "Route not found"))
	ginRouter.NoMethod(rs.fallbackHandler(http.StatusMethodNotAllowed, "Method not allowed"))

	rs.server = &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           rs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized")
	return rs
}

func (routerService *RouterService) fallbackHandler(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		correlatedLogger.Warn(message, "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(status, ErrorResult(status, message, nil).ToJSON())
	}
}

// Handler is the engine wrapped with form method override. Serve this, not the bare engine.
func (routerService *RouterService) Handler() http.Handler {
	return methodOverride(routerService.engine, routerService.settings.MaxBodyBytes)
}

// MetricsRegistry returns the registry behind /metrics, or nil when metrics are disabled.
func (routerService *RouterService) MetricsRegistry() prometheus.Registerer {
	if routerService.registry == nil {
		return nil
	}
	return routerService.registry
}

func (routerService *RouterService) Cleanup() {
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	routerService.logger.Info("Mounting controller",
		"name", controller.name,
		"path", controller.mountPoint,
	)

	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"handlers", controller.handlerCount,
	)
}

// RunHTTPServer blocks until the server stops. A graceful Shutdown returns nil.
func (routerService *RouterService) RunHTTPServer() error {
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}
