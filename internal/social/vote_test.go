package social_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/social"
)

const (
	authorID = uint64(1)
	voterID  = uint64(2)
)

func TestApplyVote_DecisionTable(t *testing.T) {
	cases := []struct {
		name      string
		current   social.VoteState
		action    social.VoteAction
		wantDelta social.VoteDelta
		wantEvent social.EventKind
	}{
		{"none+like", social.VoteNone, social.ActionLike,
			social.VoteDelta{AddLike: true}, social.EventReviewLike},
		{"none+dislike", social.VoteNone, social.ActionDislike,
			social.VoteDelta{AddDislike: true}, social.EventReviewDislike},
		{"liked+like", social.VoteLiked, social.ActionLike,
			social.VoteDelta{RemoveLike: true}, social.EventReviewUnlike},
		{"liked+dislike", social.VoteLiked, social.ActionDislike,
			social.VoteDelta{RemoveLike: true, AddDislike: true}, social.EventReviewDislike},
		{"disliked+like", social.VoteDisliked, social.ActionLike,
			social.VoteDelta{RemoveDislike: true, AddLike: true}, social.EventReviewLike},
		{"disliked+dislike", social.VoteDisliked, social.ActionDislike,
			social.VoteDelta{RemoveDislike: true}, social.EventReviewUndislike},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delta, event, err := social.ApplyVote(tc.current, authorID, voterID, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.wantDelta, delta)
			assert.Equal(t, tc.wantEvent, event)
		})
	}
}

// Repeating the same action twice must return the voter to the original
// state.
func TestApplyVote_ToggleRoundTrip(t *testing.T) {
	delta, _, err := social.ApplyVote(social.VoteNone, authorID, voterID, social.ActionLike)
	require.NoError(t, err)

	state := delta.NextState(social.VoteNone)
	assert.Equal(t, social.VoteLiked, state)

	delta, event, err := social.ApplyVote(state, authorID, voterID, social.ActionLike)
	require.NoError(t, err)
	assert.Equal(t, social.EventReviewUnlike, event)
	assert.Equal(t, social.VoteNone, delta.NextState(state))
}

// Switching the action moves the voter across the partition in one step:
// the delta carries both the remove and the add.
func TestApplyVote_SwitchSides(t *testing.T) {
	delta, _, err := social.ApplyVote(social.VoteLiked, authorID, voterID, social.ActionDislike)
	require.NoError(t, err)

	assert.True(t, delta.RemoveLike)
	assert.True(t, delta.AddDislike)
	assert.False(t, delta.AddLike)
	assert.Equal(t, social.VoteDisliked, delta.NextState(social.VoteLiked))
}

func TestApplyVote_SelfVoteForbidden(t *testing.T) {
	for _, action := range []social.VoteAction{social.ActionLike, social.ActionDislike} {
		delta, _, err := social.ApplyVote(social.VoteNone, authorID, authorID, action)
		assert.ErrorIs(t, err, svcErr.ErrSelfVoteForbidden)
		assert.True(t, delta.IsNoop())
	}
}

func TestApplyVote_UnknownAction(t *testing.T) {
	_, _, err := social.ApplyVote(social.VoteNone, authorID, voterID, "meh")
	assert.Error(t, err)
}
