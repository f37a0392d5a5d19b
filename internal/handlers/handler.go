package handlers

import (
	"io/fs"
	"net/http"

	_ "aeroponic_tower/docs" // registers the OpenAPI description
	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/metrics"
	"aeroponic_tower/internal/service"
	"aeroponic_tower/web"

	"github.com/gin-gonic/gin"
	ghandlers "github.com/gorilla/handlers"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	assets   fs.FS
}

// NewHandler constructs a new HTTP handler with dependencies. A nil log
// discards output.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{services: services, log: log, assets: web.Files}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(h.requestIDMiddleware, h.requestLogger, h.recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health and metrics endpoints
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Device and dashboard endpoints
	h.registerReadingRoutes(router)

	// Live reading feed (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	// Landing page and its assets
	h.registerStaticRoutes(router)

	return router
}

// HTTPHandler wraps the router with open CORS, as browsers on other origins
// poll the hub, and with request duration metrics.
func (h *Handler) HTTPHandler() http.Handler {
	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
	)
	return cors(metrics.Middleware(h.InitRoutes()))
}

func (h *Handler) registerReadingRoutes(r *gin.Engine) {
	// Body example: {"temp":"22.5","humi":"60","lumi":"500"}
	r.POST("/update", h.update)
	r.GET("/data", h.current)
	r.GET("/historique", h.history)
	r.GET("/status", h.status)
}

func (h *Handler) registerStaticRoutes(r *gin.Engine) {
	files := http.FileServer(http.FS(h.assets))
	r.GET("/", gin.WrapH(files))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
