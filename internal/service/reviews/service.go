package reviews

import (
	"context"

	"github.com/showclub/showclub/internal/app"
	"github.com/showclub/showclub/internal/cache"
	"github.com/showclub/showclub/internal/db"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/repository"
	"github.com/showclub/showclub/internal/service/activity"
	"github.com/showclub/showclub/internal/social"
)

// Service implements review submission and the vote toggle. Votes are
// recomputed from a fresh read on every call and applied as one atomic
// delta, so concurrent identical requests stay idempotent and the last
// applied write wins for same-user races.
type Service struct {
	appCtx     *app.AppContext
	reviewRepo *repository.ReviewRepository
	userRepo   *repository.UserRepository
	recorder   *activity.Recorder
}

// NewService creates a new reviews service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		reviewRepo: repository.NewReviewRepository(appCtx.DB),
		userRepo:   repository.NewUserRepository(appCtx.DB),
		recorder:   activity.NewRecorder(appCtx),
	}
}

// CreateReviewInput is a review submission.
type CreateReviewInput struct {
	ShowID          uint64 `json:"showId"`
	AuthorID        uint64 `json:"authorId"`
	Rating          uint8  `json:"rating"`
	Content         string `json:"content"`
	ContainsSpoiler bool   `json:"containsSpoiler"`
}

// ReviewView is the wire shape of a review with its vote sets.
type ReviewView struct {
	ID              uint64   `json:"id"`
	ShowID          uint64   `json:"showId"`
	AuthorID        uint64   `json:"authorId"`
	Rating          uint8    `json:"rating"`
	Content         string   `json:"content"`
	ContainsSpoiler bool     `json:"containsSpoiler"`
	Likes           []uint64 `json:"likes"`
	Dislikes        []uint64 `json:"dislikes"`
}

// VoteResult is the outcome of a vote toggle.
type VoteResult struct {
	NewLikes    []uint64         `json:"newLikes"`
	NewDislikes []uint64         `json:"newDislikes"`
	EventKind   social.EventKind `json:"eventKind"`
}

// VoteCounts is the cached tally of a review's vote sets.
type VoteCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// CreateReview validates and stores a new review. Reviews are created once
// and mutated only through votes afterwards.
func (s *Service) CreateReview(ctx context.Context, in CreateReviewInput) (*ReviewView, error) {
	s.appCtx.Logger.Debug("CreateReview called", "show", in.ShowID, "author", in.AuthorID)

	if in.ShowID == 0 || in.AuthorID == 0 {
		return nil, svcErr.InvalidArgument("showId and authorId are required")
	}
	if in.Rating > 5 {
		return nil, svcErr.InvalidArgument("rating must be between 0 and 5")
	}
	if in.Content == "" {
		return nil, svcErr.InvalidArgument("content must not be empty")
	}

	ok, err := s.userRepo.Exists(ctx, in.AuthorID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.NotFound("user not found")
	}

	review := &db.Review{
		ShowID:          in.ShowID,
		AuthorID:        in.AuthorID,
		Rating:          in.Rating,
		Content:         in.Content,
		ContainsSpoiler: in.ContainsSpoiler,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		s.appCtx.Logger.Error("review create failed", "err", err)
		return nil, svcErr.Map(err)
	}

	s.recorder.Record(ctx, in.AuthorID, social.EventReviewCreate, review.ID, nil)

	return &ReviewView{
		ID:              review.ID,
		ShowID:          review.ShowID,
		AuthorID:        review.AuthorID,
		Rating:          review.Rating,
		Content:         review.Content,
		ContainsSpoiler: review.ContainsSpoiler,
		Likes:           []uint64{},
		Dislikes:        []uint64{},
	}, nil
}

// GetReview returns a review with its current vote sets.
func (s *Service) GetReview(ctx context.Context, reviewID uint64) (*ReviewView, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	likes, dislikes, err := s.reviewRepo.VoteSets(ctx, reviewID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &ReviewView{
		ID:              review.ID,
		ShowID:          review.ShowID,
		AuthorID:        review.AuthorID,
		Rating:          review.Rating,
		Content:         review.Content,
		ContainsSpoiler: review.ContainsSpoiler,
		Likes:           emptyIfNil(likes),
		Dislikes:        emptyIfNil(dislikes),
	}, nil
}

// VoteReview applies one voter's like/dislike toggle to a review.
//
// Behavior:
//   - recomputes the delta from freshly read state via social.ApplyVote
//   - persists it as a single atomic statement
//   - nudges the cached counters (+/- with TTL refresh)
//   - returns the review's new vote sets and the emitted event kind
func (s *Service) VoteReview(ctx context.Context, reviewID, voterID uint64, action social.VoteAction) (*VoteResult, error) {
	s.appCtx.Logger.Debug("VoteReview called", "review", reviewID, "voter", voterID, "action", action)

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	current, err := s.reviewRepo.GetVoteState(ctx, reviewID, voterID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	delta, kind, err := social.ApplyVote(current, review.AuthorID, voterID, action)
	if err != nil {
		return nil, err
	}

	if err := s.reviewRepo.ApplyVoteDelta(ctx, reviewID, voterID, delta); err != nil {
		s.appCtx.Logger.Error("ApplyVoteDelta failed", "err", err)
		return nil, svcErr.Map(err)
	}

	s.adjustCounters(ctx, reviewID, delta)

	likes, dislikes, err := s.reviewRepo.VoteSets(ctx, reviewID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	s.recorder.Record(ctx, voterID, kind, reviewID, nil)

	return &VoteResult{
		NewLikes:    emptyIfNil(likes),
		NewDislikes: emptyIfNil(dislikes),
		EventKind:   kind,
	}, nil
}

// CountVotes returns the review's vote tallies.
// Cache-first strategy:
//  1. Attempts to read both counters from Redis.
//  2. On any miss, falls back to the DB and repopulates both keys.
func (s *Service) CountVotes(ctx context.Context, reviewID uint64) (*VoteCounts, error) {
	likesKey := s.appCtx.RedisCache.KeyForReviewLikes(reviewID)
	dislikesKey := s.appCtx.RedisCache.KeyForReviewDislikes(reviewID)

	likes, okL, _ := s.appCtx.RedisCache.GetCount(ctx, likesKey)
	dislikes, okD, _ := s.appCtx.RedisCache.GetCount(ctx, dislikesKey)
	if okL && okD {
		return &VoteCounts{Likes: likes, Dislikes: dislikes}, nil
	}

	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		return nil, svcErr.Map(err)
	}

	likes, dislikes, err := s.reviewRepo.CountVotes(ctx, reviewID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.SetCount(ctx, likesKey, likes)
	_ = s.appCtx.RedisCache.SetCount(ctx, dislikesKey, dislikes)

	return &VoteCounts{Likes: likes, Dislikes: dislikes}, nil
}

// adjustCounters keeps the cached tallies in step with the applied delta.
// Best-effort: the DB fallback corrects any drift on the next cold read.
func (s *Service) adjustCounters(ctx context.Context, reviewID uint64, delta social.VoteDelta) {
	rc := s.appCtx.RedisCache
	likesKey := rc.KeyForReviewLikes(reviewID)
	dislikesKey := rc.KeyForReviewDislikes(reviewID)

	if delta.AddLike {
		_, _ = rc.Incr(ctx, likesKey)
	}
	if delta.RemoveLike {
		_, _ = rc.Decr(ctx, likesKey)
	}
	if delta.AddDislike {
		_, _ = rc.Incr(ctx, dislikesKey)
	}
	if delta.RemoveDislike {
		_, _ = rc.Decr(ctx, dislikesKey)
	}
	_ = rc.Client.Expire(ctx, likesKey, cache.CounterTTL).Err()
	_ = rc.Client.Expire(ctx, dislikesKey, cache.CounterTTL).Err()
}

func emptyIfNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
