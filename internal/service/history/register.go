package history

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/showclub/showclub/internal/app"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/server"
)

// Registrar ties the history service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the history service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the watch-history routes to the engine
func (r *Registrar) Register(e *gin.Engine) {
	svc := NewService(r.appCtx)

	e.POST("/users/:id/watched", func(c *gin.Context) {
		userID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		var req MarkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondError(c, svcErr.ErrInvalidWatchPayload)
			return
		}
		if err := svc.MarkWatched(c.Request.Context(), userID, req); err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	e.GET("/users/:id/watched", func(c *gin.Context) {
		userID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		view, err := svc.GetHistory(c.Request.Context(), userID)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})
}
