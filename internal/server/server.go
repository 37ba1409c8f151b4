package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"advisor-chat/handler"
)

// NewRouter exposes the chat relay over plain HTTP for local and container
// deployments. The contract matches the Lambda handler.
func NewRouter(relay handler.Relayer, frontendURL string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	if frontendURL != "" {
		headers := cors.DefaultConfig()
		headers.AllowOrigins = []string{frontendURL}
		headers.AllowMethods = []string{http.MethodPost, http.MethodOptions}
		headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept", handler.CorrelationHeader}
		headers.ExposeHeaders = []string{handler.CorrelationHeader}
		r.Use(cors.New(headers))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler(relay))
	}
	return r
}

func chatHandler(relay handler.Relayer) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := handler.CorrelationID(c.GetHeader(handler.CorrelationHeader))
		c.Header(handler.CorrelationHeader, correlationID)
		logger := slog.With("correlation_id", correlationID)

		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			logger.Error("chat relay failed", "reason", "read_body", "err", err)
			c.JSON(http.StatusInternalServerError, handler.ErrorResponse{Error: handler.GenericError})
			return
		}

		status, body := handler.Serve(c.Request.Context(), relay, logger, raw)
		c.JSON(status, body)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
