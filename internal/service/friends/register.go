package friends

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/showclub/showclub/internal/app"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/server"
)

// Registrar ties the friends service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the friends service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

type sendRequestBody struct {
	TargetID uint64 `json:"targetId"`
}

// Register attaches the friendship routes to the engine
func (r *Registrar) Register(e *gin.Engine) {
	svc := NewService(r.appCtx)

	e.POST("/users/:id/friend-requests", func(c *gin.Context) {
		senderID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		var body sendRequestBody
		if err := c.ShouldBindJSON(&body); err != nil || body.TargetID == 0 {
			server.RespondError(c, svcErr.InvalidArgument("targetId must be a valid id"))
			return
		}
		if err := svc.SendFriendRequest(c.Request.Context(), senderID, body.TargetID); err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	e.POST("/users/:id/friend-requests/:requesterId/accept", func(c *gin.Context) {
		receiverID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		requesterID, err := server.ParseID(c, "requesterId")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		if err := svc.AcceptFriendRequest(c.Request.Context(), receiverID, requesterID); err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	e.DELETE("/users/:id/friend-requests/:requesterId", func(c *gin.Context) {
		receiverID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		requesterID, err := server.ParseID(c, "requesterId")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		if err := svc.RejectFriendRequest(c.Request.Context(), receiverID, requesterID); err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	e.GET("/users/:id/friends", func(c *gin.Context) {
		userID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		rel, err := svc.GetRelationships(c.Request.Context(), userID)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rel)
	})
}
