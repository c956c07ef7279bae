package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	appsvc "message-api/internal/app"
	"message-api/internal/bootstrap"
	"message-api/internal/cache"
	"message-api/internal/platform/rabbitmq"
	"message-api/internal/repository"
	"message-api/internal/transport/http/handler"
	"message-api/internal/transport/http/middleware"
)

// NewHandler is the router wrapped in the CORS policy. This is what the
// server listens with.
func NewHandler(app *bootstrap.App) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: app.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(NewRouter(app))
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.RequestLogger(app.Logger), middleware.Recovery(app.Logger))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/", handler.Home)
	router.GET("/healthz", healthHandler.Check)

	messageService := appsvc.NewMessageService(
		repository.NewMessageRepository(app.DB),
		listCache(app),
		eventPublisher(app),
		app.Logger,
	)
	messageHandler := handler.NewMessageHandler(messageService, app.Logger)

	messages := router.Group("/messages")
	messages.GET("", messageHandler.List)
	messages.POST("", messageHandler.Create)
	messages.PATCH("/:id", messageHandler.Update)
	messages.DELETE("/:id", messageHandler.Delete)

	return router
}

// The service checks its optional collaborators against a nil interface, so
// a disabled dependency must not be passed as a typed nil pointer.
func listCache(app *bootstrap.App) appsvc.ListCache {
	if app.Redis == nil {
		return nil
	}
	return cache.NewListCache(app.Redis, time.Duration(app.Config.Redis.ListTTLSeconds)*time.Second)
}

func eventPublisher(app *bootstrap.App) appsvc.EventPublisher {
	if app.MQConn == nil {
		return nil
	}
	return rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.EventQueue)
}
