package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/showclub/showclub/internal/db"
	"github.com/showclub/showclub/internal/utils/pagination"
)

// ActivityRepository provides data access for the denormalized activity
// log. Append-only; the feed read is cursor-paginated.
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new repository bound to the given DB connection.
func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: database}
}

// Record appends one activity row.
func (r *ActivityRepository) Record(ctx context.Context, activity *db.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByUser returns a page of the user's activity, newest first.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListByUser(ctx, 42, nil, 20) // first 20 events for user 42
func (r *ActivityRepository) ListByUser(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Activity, *string, error) {
	var activities []db.Activity

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.LastID,
		)
	}

	if err := query.Find(&activities).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(activities) > limit {
		last := activities[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:      last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		activities = activities[:limit]
	}

	return activities, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
