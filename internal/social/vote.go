package social

import (
	svcErr "github.com/showclub/showclub/internal/errors"
)

// VoteAction is the caller's intent: like or dislike.
type VoteAction string

const (
	ActionLike    VoteAction = "like"
	ActionDislike VoteAction = "dislike"
)

// VoteState is the voter's current membership in the review's vote sets.
// The sets are exclusive: a voter is in at most one.
type VoteState int

const (
	VoteNone VoteState = iota
	VoteLiked
	VoteDisliked
)

// EventKind names the activity event emitted for a vote outcome.
type EventKind string

const (
	EventReviewCreate    EventKind = "review_create"
	EventReviewLike      EventKind = "review_like"
	EventReviewUnlike    EventKind = "review_unlike"
	EventReviewDislike   EventKind = "review_dislike"
	EventReviewUndislike EventKind = "review_undislike"
)

// VoteDelta is the computed mutation: at most one add and one remove per
// set, so the whole delta can be applied as a single atomic update.
type VoteDelta struct {
	AddLike       bool
	RemoveLike    bool
	AddDislike    bool
	RemoveDislike bool
}

// IsNoop reports whether the delta changes nothing.
func (d VoteDelta) IsNoop() bool {
	return !d.AddLike && !d.RemoveLike && !d.AddDislike && !d.RemoveDislike
}

// ApplyVote computes the vote mutation for one voter acting on one review.
//
// Strict toggle semantics: repeating the same action unsets it, switching
// the action while voted moves the voter across the exclusive partition in
// a single step.
//
//	current    | like                    | dislike
//	-----------+-------------------------+------------------------
//	none       | +like       review_like | +dislike   review_dislike
//	liked      | -like     review_unlike | -like +dislike review_dislike
//	disliked   | -dislike +like  review_like | -dislike review_undislike
func ApplyVote(current VoteState, authorID, voterID uint64, action VoteAction) (VoteDelta, EventKind, error) {
	if voterID == authorID {
		return VoteDelta{}, "", svcErr.ErrSelfVoteForbidden
	}

	switch action {
	case ActionLike:
		switch current {
		case VoteLiked:
			return VoteDelta{RemoveLike: true}, EventReviewUnlike, nil
		case VoteDisliked:
			return VoteDelta{RemoveDislike: true, AddLike: true}, EventReviewLike, nil
		default:
			return VoteDelta{AddLike: true}, EventReviewLike, nil
		}

	case ActionDislike:
		switch current {
		case VoteDisliked:
			return VoteDelta{RemoveDislike: true}, EventReviewUndislike, nil
		case VoteLiked:
			return VoteDelta{RemoveLike: true, AddDislike: true}, EventReviewDislike, nil
		default:
			return VoteDelta{AddDislike: true}, EventReviewDislike, nil
		}

	default:
		return VoteDelta{}, "", svcErr.InvalidArgument("action must be like or dislike")
	}
}

// NextState returns the voter's membership after the delta is applied.
// Used to keep cached counters and returned vote sets consistent with the
// write without re-deriving the table.
func (d VoteDelta) NextState(current VoteState) VoteState {
	switch {
	case d.AddLike:
		return VoteLiked
	case d.AddDislike:
		return VoteDisliked
	case d.RemoveLike, d.RemoveDislike:
		return VoteNone
	default:
		return current
	}
}
