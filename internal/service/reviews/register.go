package reviews

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/showclub/showclub/internal/app"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/server"
	"github.com/showclub/showclub/internal/social"
)

// Registrar ties the reviews service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the reviews service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

type voteBody struct {
	VoterID uint64 `json:"voterId"`
	Action  string `json:"action"`
}

// Register attaches the review routes to the engine
func (r *Registrar) Register(e *gin.Engine) {
	svc := NewService(r.appCtx)

	e.POST("/reviews", func(c *gin.Context) {
		var in CreateReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			server.RespondError(c, svcErr.InvalidArgument("malformed review payload"))
			return
		}
		view, err := svc.CreateReview(c.Request.Context(), in)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	})

	e.GET("/reviews/:id", func(c *gin.Context) {
		reviewID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		view, err := svc.GetReview(c.Request.Context(), reviewID)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	e.POST("/reviews/:id/votes", func(c *gin.Context) {
		reviewID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		var body voteBody
		if err := c.ShouldBindJSON(&body); err != nil || body.VoterID == 0 {
			server.RespondError(c, svcErr.InvalidArgument("voterId must be a valid id"))
			return
		}
		result, err := svc.VoteReview(c.Request.Context(), reviewID, body.VoterID, social.VoteAction(body.Action))
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	e.GET("/reviews/:id/votes/count", func(c *gin.Context) {
		reviewID, err := server.ParseID(c, "id")
		if err != nil {
			server.RespondError(c, err)
			return
		}
		counts, err := svc.CountVotes(c.Request.Context(), reviewID)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, counts)
	})
}
