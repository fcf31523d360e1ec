package social_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/social"
)

func markInput(showID uint64, season int, episodeIDs ...uint64) social.MarkInput {
	in := social.MarkInput{
		ShowID:       showID,
		ShowName:     fmt.Sprintf("Show %d", showID),
		PosterPath:   fmt.Sprintf("/posters/%d.jpg", showID),
		SeasonNumber: season,
	}
	for i, id := range episodeIDs {
		in.Episodes = append(in.Episodes, social.EpisodeInput{
			EpisodeID: id,
			Number:    i + 1,
			Name:      fmt.Sprintf("Episode %d", i+1),
		})
	}
	return in
}

func TestMergeHistory_CreatesEntry(t *testing.T) {
	now := time.Now().UTC()

	merged, err := social.MergeHistory(nil, markInput(10, 1, 101, 102), now)
	require.NoError(t, err)

	require.Len(t, merged, 1)
	assert.Equal(t, uint64(10), merged[0].ShowID)
	assert.Equal(t, now, merged[0].LastWatchedAt)
	require.Len(t, merged[0].Episodes, 2)
	assert.Equal(t, 1, merged[0].Episodes[0].SeasonNumber)
}

func TestMergeHistory_RemarkUpdatesInPlace(t *testing.T) {
	t0 := time.Now().UTC()
	t1 := t0.Add(time.Hour)

	merged, err := social.MergeHistory(nil, markInput(10, 1, 101, 102), t0)
	require.NoError(t, err)

	// re-mark episode 101 later, reattributed to season 2
	merged, err = social.MergeHistory(merged, markInput(10, 2, 101), t1)
	require.NoError(t, err)

	require.Len(t, merged, 1)
	require.Len(t, merged[0].Episodes, 2, "re-marking must not duplicate")
	assert.Equal(t, t1, merged[0].LastWatchedAt)

	var ep101 social.WatchedEpisode
	for _, ep := range merged[0].Episodes {
		if ep.EpisodeID == 101 {
			ep101 = ep
		}
	}
	assert.Equal(t, t1, ep101.WatchedAt)
	assert.Equal(t, 2, ep101.SeasonNumber)
}

func TestMergeHistory_RankingAndCap(t *testing.T) {
	var (
		history []social.WatchEntry
		err     error
	)
	base := time.Now().UTC()

	for i := 1; i <= social.HistoryLimit+1; i++ {
		history, err = social.MergeHistory(
			history,
			markInput(uint64(i), 1, uint64(i*1000)),
			base.Add(time.Duration(i)*time.Minute),
		)
		require.NoError(t, err)
	}

	require.Len(t, history, social.HistoryLimit)

	// the oldest show (1) was evicted; the newest is first
	assert.Equal(t, uint64(social.HistoryLimit+1), history[0].ShowID)
	for _, entry := range history {
		assert.NotEqual(t, uint64(1), entry.ShowID)
	}

	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].LastWatchedAt.Before(history[i].LastWatchedAt),
			"history must stay sorted by lastWatchedAt descending")
	}
}

func TestMergeHistory_RewatchMovesEntryToFront(t *testing.T) {
	base := time.Now().UTC()

	history, err := social.MergeHistory(nil, markInput(1, 1, 100), base)
	require.NoError(t, err)
	history, err = social.MergeHistory(history, markInput(2, 1, 200), base.Add(time.Minute))
	require.NoError(t, err)

	history, err = social.MergeHistory(history, markInput(1, 1, 101), base.Add(2*time.Minute))
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, uint64(1), history[0].ShowID)
	require.Len(t, history[0].Episodes, 2)
}

func TestMergeHistory_DoesNotMutateInput(t *testing.T) {
	t0 := time.Now().UTC()
	original, err := social.MergeHistory(nil, markInput(10, 1, 101), t0)
	require.NoError(t, err)

	_, err = social.MergeHistory(original, markInput(10, 2, 101, 102), t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, t0, original[0].LastWatchedAt)
	assert.Len(t, original[0].Episodes, 1)
	assert.Equal(t, 1, original[0].Episodes[0].SeasonNumber)
}

func TestMergeHistory_DuplicateIDsInPayloadCollapse(t *testing.T) {
	in := markInput(10, 1, 101, 101)
	merged, err := social.MergeHistory(nil, in, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, merged[0].Episodes, 1)
}

func TestValidateMarkInput(t *testing.T) {
	now := time.Now().UTC()

	bad := []social.MarkInput{
		{},
		{ShowID: 1, ShowName: "X", PosterPath: "/x.jpg"}, // no episodes
		{ShowID: 1, PosterPath: "/x.jpg", Episodes: []social.EpisodeInput{{EpisodeID: 1, Number: 1}}},                // no name
		{ShowID: 1, ShowName: "X", Episodes: []social.EpisodeInput{{EpisodeID: 1, Number: 1}}},                       // no poster
		{ShowID: 1, ShowName: "X", PosterPath: "/x.jpg", Episodes: []social.EpisodeInput{{EpisodeID: 0, Number: 1}}}, // zero episode id
	}
	for i, in := range bad {
		_, err := social.MergeHistory(nil, in, now)
		assert.ErrorIs(t, err, svcErr.ErrInvalidWatchPayload, "case %d", i)
	}
}
