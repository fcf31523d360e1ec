package history

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/showclub/showclub/internal/app"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/repository"
	"github.com/showclub/showclub/internal/service/activity"
	"github.com/showclub/showclub/internal/social"
)

// Service implements the watch-history ledger. Each mark-watched call
// re-reads the user's history, merges via the pure engine, and persists the
// full replacement list, so retried and concurrent requests converge
// without duplicating episodes.
type Service struct {
	appCtx      *app.AppContext
	historyRepo *repository.HistoryRepository
	userRepo    *repository.UserRepository
	recorder    *activity.Recorder
	validate    *validator.Validate
}

// NewService creates a new history service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		historyRepo: repository.NewHistoryRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		recorder:    activity.NewRecorder(appCtx),
		validate:    validator.New(),
	}
}

// MarkRequest is a mark-watched payload for one show.
type MarkRequest struct {
	ShowID       uint64           `json:"showId" validate:"required"`
	ShowName     string           `json:"showName" validate:"required"`
	PosterPath   string           `json:"posterPath" validate:"required"`
	SeasonNumber int              `json:"seasonNumber" validate:"gte=0"`
	Episodes     []EpisodeRequest `json:"episodes" validate:"required,min=1,dive"`
}

// EpisodeRequest identifies one episode in a MarkRequest.
type EpisodeRequest struct {
	EpisodeID uint64 `json:"episodeId" validate:"required"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
}

// HistoryView is the wire shape of a user's watch history.
type HistoryView struct {
	WatchedHistory []social.WatchEntry `json:"watchedHistory"`
}

// MarkWatched records the given episodes as watched now.
//
// Behavior:
//   - rejects invalid payloads before any mutation (InvalidWatchPayload)
//   - merges into the existing ledger: re-marked episodes update in place,
//     the show entry moves to the front, the history stays capped
//   - persists the whole replacement list and bumps the user's updatedAt
func (s *Service) MarkWatched(ctx context.Context, userID uint64, req MarkRequest) error {
	s.appCtx.Logger.Debug("MarkWatched called", "user", userID, "show", req.ShowID, "episodes", len(req.Episodes))

	if err := s.validate.Struct(req); err != nil {
		return svcErr.ErrInvalidWatchPayload
	}

	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !ok {
		return svcErr.NotFound("user not found")
	}

	existing, err := s.historyRepo.GetHistory(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("GetHistory failed", "err", err)
		return svcErr.Map(err)
	}

	merged, err := social.MergeHistory(existing, toMarkInput(req), time.Now().UTC())
	if err != nil {
		return err
	}

	if err := s.historyRepo.ReplaceHistory(ctx, userID, merged); err != nil {
		s.appCtx.Logger.Error("ReplaceHistory failed", "err", err)
		return svcErr.Map(err)
	}

	s.recorder.Record(ctx, userID, social.EventEpisodesWatched, req.ShowID, map[string]any{
		"showName": req.ShowName,
		"episodes": len(req.Episodes),
	})
	return nil
}

// GetHistory returns the user's ranked watch history.
func (s *Service) GetHistory(ctx context.Context, userID uint64) (*HistoryView, error) {
	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.NotFound("user not found")
	}

	entries, err := s.historyRepo.GetHistory(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if entries == nil {
		entries = []social.WatchEntry{}
	}
	return &HistoryView{WatchedHistory: entries}, nil
}

func toMarkInput(req MarkRequest) social.MarkInput {
	in := social.MarkInput{
		ShowID:       req.ShowID,
		ShowName:     req.ShowName,
		PosterPath:   req.PosterPath,
		SeasonNumber: req.SeasonNumber,
	}
	for _, ep := range req.Episodes {
		in.Episodes = append(in.Episodes, social.EpisodeInput{
			EpisodeID: ep.EpisodeID,
			Number:    ep.Number,
			Name:      ep.Name,
		})
	}
	return in
}
