package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/showclub/showclub/internal/db"
	"github.com/showclub/showclub/internal/social"
)

// ReviewRepository provides data access for reviews and their vote sets.
// A vote is a single row per (review, user); the composite PK makes the
// like/dislike partition exclusive at the storage layer.
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new repository bound to the given DB connection.
func NewReviewRepository(database *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: database}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *db.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// GetByID fetches a review by primary key.
func (r *ReviewRepository) GetByID(ctx context.Context, id uint64) (*db.Review, error) {
	var review db.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetVoteState returns the voter's current membership in the review's vote
// sets. Absence of a row means VoteNone.
func (r *ReviewRepository) GetVoteState(ctx context.Context, reviewID, userID uint64) (social.VoteState, error) {
	var vote db.ReviewVote
	err := r.db.WithContext(ctx).
		First(&vote, "review_id = ? AND user_id = ?", reviewID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return social.VoteNone, nil
	}
	if err != nil {
		return social.VoteNone, err
	}
	if vote.Liked {
		return social.VoteLiked, nil
	}
	return social.VoteDisliked, nil
}

// ApplyVoteDelta persists a computed vote delta as one atomic statement.
//
// Because a voter has at most one row per review, the delta collapses:
//   - an add (with or without the paired remove) is an upsert of the row's
//     liked flag, which also moves the voter across the partition in one
//     statement
//   - a bare remove is a conditional delete keyed on the current side, so a
//     stale delta computed from an outdated read deletes nothing rather
//     than clobbering a newer vote
func (r *ReviewRepository) ApplyVoteDelta(ctx context.Context, reviewID, userID uint64, delta social.VoteDelta) error {
	switch {
	case delta.AddLike:
		return r.upsertVote(ctx, reviewID, userID, true)
	case delta.AddDislike:
		return r.upsertVote(ctx, reviewID, userID, false)
	case delta.RemoveLike:
		return r.db.WithContext(ctx).
			Where("review_id = ? AND user_id = ? AND liked = true", reviewID, userID).
			Delete(&db.ReviewVote{}).Error
	case delta.RemoveDislike:
		return r.db.WithContext(ctx).
			Where("review_id = ? AND user_id = ? AND liked = false", reviewID, userID).
			Delete(&db.ReviewVote{}).Error
	default:
		return nil
	}
}

// VoteSets returns the review's like and dislike sets as user id slices,
// ascending.
func (r *ReviewRepository) VoteSets(ctx context.Context, reviewID uint64) (likes, dislikes []uint64, err error) {
	err = r.db.WithContext(ctx).
		Model(&db.ReviewVote{}).
		Where("review_id = ? AND liked = true", reviewID).
		Order("user_id ASC").
		Pluck("user_id", &likes).Error
	if err != nil {
		return nil, nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&db.ReviewVote{}).
		Where("review_id = ? AND liked = false", reviewID).
		Order("user_id ASC").
		Pluck("user_id", &dislikes).Error
	if err != nil {
		return nil, nil, err
	}
	return likes, dislikes, nil
}

// CountVotes returns the sizes of the review's vote sets. Used as the DB
// fallback behind the Redis counters.
func (r *ReviewRepository) CountVotes(ctx context.Context, reviewID uint64) (likes, dislikes int64, err error) {
	err = r.db.WithContext(ctx).
		Model(&db.ReviewVote{}).
		Where("review_id = ? AND liked = true", reviewID).
		Count(&likes).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&db.ReviewVote{}).
		Where("review_id = ? AND liked = false", reviewID).
		Count(&dislikes).Error
	return likes, dislikes, err
}

func (r *ReviewRepository) upsertVote(ctx context.Context, reviewID, userID uint64, liked bool) error {
	vote := db.ReviewVote{
		ReviewID: reviewID,
		UserID:   userID,
		Liked:    liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).
		Create(&vote).Error
}
