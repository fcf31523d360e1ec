package activity

import (
	"github.com/gin-gonic/gin"

	"github.com/showclub/showclub/internal/app"
	"github.com/showclub/showclub/internal/server"
)

const defaultPageSize = 20

// Registrar ties the activity feed into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the activity feed
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the activity routes to the engine
func (r *Registrar) Register(e *gin.Engine) {
	svc := NewService(r.appCtx)

	e.GET("/users/:id/activity", func(c *gin.Context) {
		userID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}

		var token *string
		if v := c.Query("paginationToken"); v != "" {
			token = &v
		}

		feed, err := svc.ListActivity(c.Request.Context(), userID, token, defaultPageSize)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(200, feed)
	})
}
