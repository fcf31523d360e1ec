package activity_test

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
	"github.com/showclub/showclub/internal/service/activity"
	"github.com/showclub/showclub/internal/social"
)

func setupService(t *testing.T) (*activity.Service, *activity.Recorder) {
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

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(gdb, redisCache, logger)
	return activity.NewService(appCtx), activity.NewRecorder(appCtx)
}

// The feed pages newest-first; following the token walks the whole log with
// no gaps or repeats.
func TestListActivityPagination(t *testing.T) {
	ctx := context.Background()
	svc, recorder := setupService(t)

	const total = 25
	for i := 1; i <= total; i++ {
		recorder.Record(ctx, 1, social.EventReviewLike, uint64(i), nil)
	}

	page1, err := svc.ListActivity(ctx, 1, nil, 20)
	require.NoError(t, err)
	require.Len(t, page1.Entries, 20)
	require.NotEmpty(t, page1.NextPaginationToken)

	page2, err := svc.ListActivity(ctx, 1, &page1.NextPaginationToken, 20)
	require.NoError(t, err)
	require.Len(t, page2.Entries, 5)
	assert.Empty(t, page2.NextPaginationToken)

	seen := map[uint64]bool{}
	for _, e := range append(page1.Entries, page2.Entries...) {
		assert.False(t, seen[e.ID], "entry %d repeated across pages", e.ID)
		seen[e.ID] = true
	}
	assert.Len(t, seen, total)

	// newest first within the first page
	assert.Equal(t, uint64(total), page1.Entries[0].TargetID)
}

func TestListActivityScopedToUser(t *testing.T) {
	ctx := context.Background()
	svc, recorder := setupService(t)

	recorder.Record(ctx, 1, social.EventFriendRequest, 2, nil)
	recorder.Record(ctx, 2, social.EventFriendAccept, 1, nil)

	feed, err := svc.ListActivity(ctx, 1, nil, 20)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, string(social.EventFriendRequest), feed.Entries[0].EventKind)
}

func TestListActivityBadToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	bad := "not-a-token"
	_, err := svc.ListActivity(ctx, 1, &bad, 20)
	assert.Error(t, err)
}
