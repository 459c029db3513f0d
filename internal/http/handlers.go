package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"medidesk/internal/domain"
	"medidesk/internal/notification"
	"medidesk/internal/repository"
	"medidesk/internal/service"
	"medidesk/internal/ws"
)

const requestIDHeader = "X-Request-ID"

// Deps зависимости HTTP слоя. Hub может быть nil, тогда /ws не регистрируется.
type Deps struct {
	Reception   *service.ReceptionService
	Products    *service.ProductService
	Orders      *service.OrderService
	Feed        *notification.Feed
	Hub         *ws.Hub
	Log         zerolog.Logger
	CORSOrigins []string
}

type Server struct {
	engine    *gin.Engine
	reception *service.ReceptionService
	products  *service.ProductService
	orders    *service.OrderService
	feed      *notification.Feed
	hub       *ws.Hub
	log       zerolog.Logger
}

func NewServer(d Deps) *Server {
	r := gin.New()
	log := d.Log.With().Str("component", "http").Logger()
	r.Use(requestID(), requestLogger(log), recovery(log))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.CORSOrigins)))
	}
	s := &Server{
		engine:    r,
		reception: d.Reception,
		products:  d.Products,
		orders:    d.Orders,
		feed:      d.Feed,
		hub:       d.Hub,
		log:       log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		reception := v1.Group("/reception")
		reception.POST("", s.registerArrival)
		reception.GET("", s.listReception)
		reception.GET("/waiting", s.listWaiting)
		reception.GET("/stats/today", s.todayStats)
		reception.GET("/:id", s.getReception)
		reception.PUT("/:id", s.updateReception)
		reception.PATCH("/:id/status", s.updateReceptionStatus)
		reception.PATCH("/:id/assign", s.assignDoctor)
		reception.PATCH("/:id/complete", s.completeReception)
		reception.DELETE("/:id", s.cancelReception)

		pharmacy := v1.Group("/pharmacy")
		pharmacy.GET("/summary", s.pharmacySummary)

		products := pharmacy.Group("/products")
		products.POST("", s.createProduct)
		products.GET("", s.listProducts)
		products.GET("/low-stock", s.lowStock)
		products.GET("/export", s.exportProducts)
		products.GET("/:id", s.getProduct)
		products.PUT("/:id", s.updateProduct)
		products.DELETE("/:id", s.deleteProduct)
		products.PATCH("/:id/stock", s.restockProduct)

		orders := pharmacy.Group("/orders")
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrders)
		orders.GET("/open", s.openOrders)
		orders.GET("/pending", s.pendingOrders)
		orders.GET("/:id", s.getOrder)
		orders.PATCH("/:id/status", s.updateOrderStatus)
		orders.DELETE("/:id", s.cancelOrder)

		notifications := v1.Group("/notifications")
		notifications.GET("", s.listNotifications)
		notifications.GET("/unread", s.unreadNotifications)
		notifications.GET("/unread-count", s.unreadCount)
		notifications.PATCH("/read-all", s.markAllRead)
		notifications.PATCH("/:id/read", s.markRead)
		notifications.DELETE("/:id", s.deleteNotification)
		notifications.DELETE("", s.clearNotifications)

		if s.hub != nil {
			v1.GET("/ws", ws.ServeWS(s.hub))
		}
	}
}

// @Summary Liveness check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (s *Server) health(c *gin.Context) {
	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": clients})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("remote_ip", c.ClientIP()).
			Msg("request")
	}
}

func recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest отличает невалидные поля от нечитаемого тела
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
}

type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// bindPage читает page и limit; при ошибке ответ уже записан
func bindPage(c *gin.Context) (repository.Page, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination: " + err.Error()})
		return repository.Page{}, false
	}
	return repository.Page{Page: q.Page, Limit: q.Limit}, true
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
