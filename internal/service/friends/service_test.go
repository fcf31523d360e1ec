package friends_test

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
	"github.com/showclub/showclub/internal/service/friends"
)

// setupService spins up an in-memory SQLite DB, applies migrations, seeds
// three users, starts a miniredis, and wires everything into a friends
// service. Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*friends.Service, *gorm.DB) {
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

	users := []db.User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x"},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x"},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x"},
	}
	require.NoError(t, gdb.Create(&users).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(gdb, redisCache, logger)
	return friends.NewService(appCtx), gdb
}

// A sends a request to B, B accepts: the pair must end up symmetric with
// both pending sets empty.
func TestSendAndAcceptFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.SendFriendRequest(ctx, 1, 2))

	rel1, err := svc.GetRelationships(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, rel1.Sent)
	assert.Empty(t, rel1.Friends)

	rel2, err := svc.GetRelationships(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, rel2.Received)

	require.NoError(t, svc.AcceptFriendRequest(ctx, 2, 1))

	rel1, err = svc.GetRelationships(ctx, 1)
	require.NoError(t, err)
	rel2, err = svc.GetRelationships(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, []uint64{2}, rel1.Friends)
	assert.Equal(t, []uint64{1}, rel2.Friends)
	assert.Empty(t, rel1.Sent)
	assert.Empty(t, rel1.Received)
	assert.Empty(t, rel2.Sent)
	assert.Empty(t, rel2.Received)
}

func TestSendFriendRequestConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	assert.ErrorIs(t, svc.SendFriendRequest(ctx, 1, 1), svcErr.ErrSelfRequest)

	require.NoError(t, svc.SendFriendRequest(ctx, 1, 2))
	assert.ErrorIs(t, svc.SendFriendRequest(ctx, 1, 2), svcErr.ErrAlreadyRequested)

	// reverse direction is also blocked while the request is open
	assert.ErrorIs(t, svc.SendFriendRequest(ctx, 2, 1), svcErr.ErrAlreadyRequested)

	require.NoError(t, svc.AcceptFriendRequest(ctx, 2, 1))
	assert.ErrorIs(t, svc.SendFriendRequest(ctx, 1, 2), svcErr.ErrAlreadyFriends)
}

func TestAcceptFriendRequestConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	assert.ErrorIs(t, svc.AcceptFriendRequest(ctx, 2, 1), svcErr.ErrNoSuchRequest)

	require.NoError(t, svc.SendFriendRequest(ctx, 1, 2))

	// the sender cannot accept their own request
	assert.ErrorIs(t, svc.AcceptFriendRequest(ctx, 1, 2), svcErr.ErrNoSuchRequest)

	require.NoError(t, svc.AcceptFriendRequest(ctx, 2, 1))

	// duplicate accept fails cleanly instead of double-adding
	assert.ErrorIs(t, svc.AcceptFriendRequest(ctx, 2, 1), svcErr.ErrAlreadyFriends)

	rel2, err := svc.GetRelationships(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, rel2.Friends)
}

func TestRejectFriendRequest(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.SendFriendRequest(ctx, 1, 2))
	require.NoError(t, svc.RejectFriendRequest(ctx, 2, 1))

	rel1, err := svc.GetRelationships(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rel1.Friends)
	assert.Empty(t, rel1.Sent)

	// pair is unrelated again, a fresh request is allowed
	require.NoError(t, svc.SendFriendRequest(ctx, 1, 2))

	assert.ErrorIs(t, svc.RejectFriendRequest(ctx, 2, 3), svcErr.ErrNoSuchRequest)
}

func TestUnknownUsersRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	err := svc.SendFriendRequest(ctx, 1, 99)
	require.Error(t, err)
	assert.Equal(t, 404, svcErr.Status(err))
}

// A crash between the two halves of the mirrored request write leaves the
// marker on the sender's side only. The next pair read heals it and the
// accept goes through.
func TestAcceptAfterPartialRequestWrite(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	require.NoError(t, gdb.Create(&db.FriendRequest{
		OwnerID: 1, OtherID: 2, Direction: db.DirectionSent,
	}).Error)

	require.NoError(t, svc.AcceptFriendRequest(ctx, 2, 1))

	rel1, err := svc.GetRelationships(ctx, 1)
	require.NoError(t, err)
	rel2, err := svc.GetRelationships(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, rel1.Friends)
	assert.Equal(t, []uint64{1}, rel2.Friends)
	assert.Empty(t, rel1.Sent)
	assert.Empty(t, rel2.Received)
}

// A one-sided friend edge is healed to a symmetric pair on the next read.
func TestOneSidedEdgeHealedOnRead(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	require.NoError(t, gdb.Create(&db.FriendEdge{UserID: 1, FriendID: 2}).Error)

	// any pair operation triggers the heal; the send itself must fail
	assert.ErrorIs(t, svc.SendFriendRequest(ctx, 1, 2), svcErr.ErrAlreadyFriends)

	rel2, err := svc.GetRelationships(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, rel2.Friends)
}
