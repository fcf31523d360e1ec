package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showclub/showclub/internal/config"
	svcErr "github.com/showclub/showclub/internal/errors"
)

// StartHTTPServer boots the HTTP server and registers all provided services
func StartHTTPServer(cfg *config.Config, logger *slog.Logger, registrars ...Registrar) error {
	if cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(logger))

	// register all services
	for _, r := range registrars {
		r.Register(engine)
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return engine.Run(addr)
}

// RequestLogger tags every request with an id and logs method, path,
// status, and latency on completion.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Set("request_id", reqID)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// ParseID parses a path parameter as a uint64 user/review id. Ids are
// normalized here, at the boundary, never inside the core.
func ParseID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(name + " must be a valid id")
	}
	return id, nil
}

// RespondError writes a service error as JSON with its HTTP status.
func RespondError(c *gin.Context, err error) {
	c.JSON(svcErr.Status(err), gin.H{
		"code":  svcErr.Code(err),
		"error": err.Error(),
	})
}
