package activity

import (
	"context"

	"github.com/showclub/showclub/internal/app"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/repository"
)

// Service exposes the read side of the activity log.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.ActivityRepository
}

// NewService creates a new activity feed service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewActivityRepository(appCtx.DB),
	}
}

// Entry is one activity feed item.
type Entry struct {
	ID        uint64 `json:"id"`
	EventKind string `json:"eventKind"`
	TargetID  uint64 `json:"targetId,omitempty"`
	Details   string `json:"details,omitempty"`
	Timestamp int64  `json:"unixTimestamp"`
}

// Feed is a page of a user's activity, newest first.
type Feed struct {
	Entries             []Entry `json:"entries"`
	NextPaginationToken string  `json:"nextPaginationToken,omitempty"`
}

// ListActivity returns a page of the user's activity.
func (s *Service) ListActivity(ctx context.Context, userID uint64, paginationToken *string, limit int) (*Feed, error) {
	s.appCtx.Logger.Debug("ListActivity called", "user", userID)

	activities, nextToken, err := s.repo.ListByUser(ctx, userID, paginationToken, limit)
	if err != nil {
		s.appCtx.Logger.Error("ListByUser failed", "err", err)
		return nil, svcErr.Map(err)
	}

	feed := &Feed{Entries: make([]Entry, 0, len(activities))}
	for _, a := range activities {
		feed.Entries = append(feed.Entries, Entry{
			ID:        a.ID,
			EventKind: a.EventKind,
			TargetID:  a.TargetID,
			Details:   a.Details,
			Timestamp: a.CreatedAt.UnixMilli(),
		})
	}
	if nextToken != nil {
		feed.NextPaginationToken = *nextToken
	}
	return feed, nil
}
