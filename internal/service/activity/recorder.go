package activity

import (
	"context"
	"encoding/json"

	"github.com/showclub/showclub/internal/app"
	"github.com/showclub/showclub/internal/db"
	"github.com/showclub/showclub/internal/repository"
	"github.com/showclub/showclub/internal/social"
)

// Recorder appends denormalized activity entries after successful social
// mutations. Strictly best-effort: the social state is the durable
// contract, the activity log is not, so failures here are logged and
// swallowed and must never fail the triggering mutation.
type Recorder struct {
	appCtx *app.AppContext
	repo   *repository.ActivityRepository
}

// NewRecorder creates a Recorder with dependencies from AppContext.
func NewRecorder(appCtx *app.AppContext) *Recorder {
	return &Recorder{
		appCtx: appCtx,
		repo:   repository.NewActivityRepository(appCtx.DB),
	}
}

// Record appends one activity entry. targetID may be 0 for events without
// a target; details, if non-nil, is stored as JSON.
func (r *Recorder) Record(ctx context.Context, userID uint64, kind social.EventKind, targetID uint64, details any) {
	entry := &db.Activity{
		UserID:    userID,
		EventKind: string(kind),
		TargetID:  targetID,
	}

	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			r.appCtx.Logger.Warn("activity details not serializable", "kind", kind, "err", err)
		} else {
			entry.Details = string(b)
		}
	}

	if err := r.repo.Record(ctx, entry); err != nil {
		r.appCtx.Logger.Warn("activity record failed", "user", userID, "kind", kind, "err", err)
	}
}
