package history_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/showclub/showclub/internal/app"
	"github.com/showclub/showclub/internal/cache"
	"github.com/showclub/showclub/internal/config"
	"github.com/showclub/showclub/internal/db"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/service/history"
	"github.com/showclub/showclub/internal/social"
)

func setupService(t *testing.T) (*history.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	require.NoError(t, gdb.Create(&db.User{
		ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x",
	}).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(gdb, redisCache, logger)
	return history.NewService(appCtx), gdb
}

func markRequest(showID uint64, season int, episodeIDs ...uint64) history.MarkRequest {
	req := history.MarkRequest{
		ShowID:       showID,
		ShowName:     fmt.Sprintf("Show %d", showID),
		PosterPath:   fmt.Sprintf("/posters/%d.jpg", showID),
		SeasonNumber: season,
	}
	for i, id := range episodeIDs {
		req.Episodes = append(req.Episodes, history.EpisodeRequest{
			EpisodeID: id,
			Number:    i + 1,
			Name:      fmt.Sprintf("Episode %d", i+1),
		})
	}
	return req
}

// Marking episodes 1 and 2, then re-marking episode 1, must leave exactly
// two episodes with episode 1's timestamp refreshed.
func TestMarkWatchedRemark(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.MarkWatched(ctx, 1, markRequest(10, 1, 101, 102)))

	view, err := svc.GetHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.WatchedHistory, 1)
	firstMark := view.WatchedHistory[0].LastWatchedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.MarkWatched(ctx, 1, markRequest(10, 1, 101)))

	view, err = svc.GetHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.WatchedHistory, 1)
	entry := view.WatchedHistory[0]
	require.Len(t, entry.Episodes, 2, "re-marking must not duplicate episodes")
	assert.True(t, entry.LastWatchedAt.After(firstMark))

	for _, ep := range entry.Episodes {
		if ep.EpisodeID == 101 {
			assert.True(t, ep.WatchedAt.After(firstMark))
		}
	}
}

func TestMarkWatchedValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// empty episode list
	req := markRequest(10, 1)
	assert.ErrorIs(t, svc.MarkWatched(ctx, 1, req), svcErr.ErrInvalidWatchPayload)

	// missing display metadata
	req = markRequest(10, 1, 101)
	req.PosterPath = ""
	assert.ErrorIs(t, svc.MarkWatched(ctx, 1, req), svcErr.ErrInvalidWatchPayload)

	req = markRequest(10, 1, 101)
	req.ShowName = ""
	assert.ErrorIs(t, svc.MarkWatched(ctx, 1, req), svcErr.ErrInvalidWatchPayload)

	// nothing was persisted
	view, err := svc.GetHistory(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.WatchedHistory)

	err = svc.MarkWatched(ctx, 99, markRequest(10, 1, 101))
	require.Error(t, err)
	assert.Equal(t, 404, svcErr.Status(err))
}

// Marking more shows than the cap keeps only the most recent ones, in
// descending order of lastWatchedAt.
func TestMarkWatchedCapAndRanking(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	total := social.HistoryLimit + 1
	for i := 1; i <= total; i++ {
		require.NoError(t, svc.MarkWatched(ctx, 1, markRequest(uint64(i), 1, uint64(i*1000))))
		time.Sleep(time.Millisecond)
	}

	view, err := svc.GetHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.WatchedHistory, social.HistoryLimit)

	assert.Equal(t, uint64(total), view.WatchedHistory[0].ShowID)
	for _, entry := range view.WatchedHistory {
		assert.NotEqual(t, uint64(1), entry.ShowID, "oldest show must be evicted")
	}
	for i := 1; i < len(view.WatchedHistory); i++ {
		assert.False(t, view.WatchedHistory[i-1].LastWatchedAt.Before(view.WatchedHistory[i].LastWatchedAt))
	}
}

// Each successful mark emits a best-effort activity entry.
func TestMarkWatchedRecordsActivity(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	require.NoError(t, svc.MarkWatched(ctx, 1, markRequest(10, 1, 101)))

	var activities []db.Activity
	require.NoError(t, gdb.Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, string(social.EventEpisodesWatched), activities[0].EventKind)
	assert.Equal(t, uint64(10), activities[0].TargetID)
	assert.Contains(t, activities[0].Details, "Show 10")
}
