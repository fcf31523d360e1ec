package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/showclub/showclub/internal/db"
	"github.com/showclub/showclub/internal/social"
)

// HistoryRepository persists a user's watch history. The merge algorithm
// computes the full replacement list, so writes swap the user's rows
// wholesale inside one transaction; reads return the ranked ledger ready
// for a prefix query.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new repository bound to the given DB connection.
func NewHistoryRepository(database *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: database}
}

// GetHistory loads the user's watch history, most recently watched show
// first. Bounded by the history cap, so loading it whole is cheap.
func (r *HistoryRepository) GetHistory(ctx context.Context, userID uint64) ([]social.WatchEntry, error) {
	var rows []db.WatchEntry
	err := r.db.WithContext(ctx).
		Preload("Episodes").
		Where("user_id = ?", userID).
		Order("last_watched_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]social.WatchEntry, 0, len(rows))
	for _, row := range rows {
		entry := social.WatchEntry{
			ShowID:        row.ShowID,
			ShowName:      row.ShowName,
			PosterPath:    row.PosterPath,
			LastWatchedAt: row.LastWatchedAt,
		}
		for _, ep := range row.Episodes {
			entry.Episodes = append(entry.Episodes, social.WatchedEpisode{
				EpisodeID:    ep.EpisodeID,
				Number:       ep.Number,
				Name:         ep.Name,
				SeasonNumber: ep.SeasonNumber,
				WatchedAt:    ep.WatchedAt,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReplaceHistory swaps the user's stored history for the merged list and
// bumps the user's updated_at marker, all in one transaction.
func (r *HistoryRepository) ReplaceHistory(ctx context.Context, userID uint64, entries []social.WatchEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("entry_id IN (?)",
				tx.Model(&db.WatchEntry{}).Select("id").Where("user_id = ?", userID)).
			Delete(&db.WatchedEpisode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&db.WatchEntry{}).Error; err != nil {
			return err
		}

		for _, entry := range entries {
			row := db.WatchEntry{
				UserID:        userID,
				ShowID:        entry.ShowID,
				ShowName:      entry.ShowName,
				PosterPath:    entry.PosterPath,
				LastWatchedAt: entry.LastWatchedAt,
			}
			for _, ep := range entry.Episodes {
				row.Episodes = append(row.Episodes, db.WatchedEpisode{
					EpisodeID:    ep.EpisodeID,
					Number:       ep.Number,
					Name:         ep.Name,
					SeasonNumber: ep.SeasonNumber,
					WatchedAt:    ep.WatchedAt,
				})
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return tx.Model(&db.User{}).
			Where("id = ?", userID).
			Update("updated_at", time.Now().UTC()).Error
	})
}
