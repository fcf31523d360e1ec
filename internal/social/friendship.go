// Package social contains the pure state machines behind the engagement
// layer: friendship transitions, review vote toggling, and watch-history
// merging. Nothing in this package touches a datastore; every function maps
// (old state, input) to (new state or delta, error) so the invariants can be
// tested without infrastructure. Repositories apply the results atomically.
package social

import (
	svcErr "github.com/showclub/showclub/internal/errors"
)

// Activity events emitted by the friendship transitions.
const (
	EventFriendRequest EventKind = "friend_request"
	EventFriendAccept  EventKind = "friend_accept"
)

// PairState is the relationship state of an ordered user pair (A, B).
type PairState int

const (
	// Unrelated: no edges, no pending requests in either direction.
	Unrelated PairState = iota
	// PendingAtoB: A has asked B and the request is still open.
	PendingAtoB
	// PendingBtoA: B has asked A.
	PendingBtoA
	// Friends: the symmetric edge exists.
	Friends
)

// PairSnapshot is the pair's social state as read from both user records
// together. Each field corresponds to one marker row; a crash between the
// two halves of a mirrored write can leave any mirror pair one-sided.
type PairSnapshot struct {
	AFriendsB bool // B present in A's friend set
	BFriendsA bool // A present in B's friend set

	ASentToB       bool // B present in A's sent-request set
	BReceivedFromA bool // A present in B's received-request set

	BSentToA       bool
	AReceivedFromB bool
}

// State collapses the snapshot into the pair's logical state. A marker on
// either side of a mirror counts: one-sided writes still represent the
// relationship, they just need healing.
func (s PairSnapshot) State() PairState {
	switch {
	case s.AFriendsB || s.BFriendsA:
		return Friends
	case s.ASentToB || s.BReceivedFromA:
		return PendingAtoB
	case s.BSentToA || s.AReceivedFromB:
		return PendingBtoA
	default:
		return Unrelated
	}
}

// HealOp is a single repair action produced by Reconcile.
type HealOp int

const (
	HealAddSentAtoB HealOp = iota
	HealAddReceivedBfromA
	HealAddSentBtoA
	HealAddReceivedAfromB
	HealAddEdgeAtoB
	HealAddEdgeBtoA
	HealDropRequestsAtoB
	HealDropRequestsBtoA
)

// Reconcile computes the repairs needed to make the snapshot two-sided
// again. Friendship wins over pending requests: once any edge exists, stale
// request markers for the pair are dropped and the missing edge is added.
// Otherwise each one-sided request marker gets its mirror re-added.
func Reconcile(s PairSnapshot) []HealOp {
	var ops []HealOp

	if s.AFriendsB || s.BFriendsA {
		if !s.AFriendsB {
			ops = append(ops, HealAddEdgeAtoB)
		}
		if !s.BFriendsA {
			ops = append(ops, HealAddEdgeBtoA)
		}
		if s.ASentToB || s.BReceivedFromA {
			ops = append(ops, HealDropRequestsAtoB)
		}
		if s.BSentToA || s.AReceivedFromB {
			ops = append(ops, HealDropRequestsBtoA)
		}
		return ops
	}

	if s.ASentToB != s.BReceivedFromA {
		if s.ASentToB {
			ops = append(ops, HealAddReceivedBfromA)
		} else {
			ops = append(ops, HealAddSentAtoB)
		}
	}
	if s.BSentToA != s.AReceivedFromB {
		if s.BSentToA {
			ops = append(ops, HealAddReceivedAfromB)
		} else {
			ops = append(ops, HealAddSentBtoA)
		}
	}
	return ops
}

// Healed returns the snapshot as it will look after the Reconcile ops have
// been applied, so callers can validate transitions against repaired state
// without a second read.
func Healed(s PairSnapshot) PairSnapshot {
	if s.AFriendsB || s.BFriendsA {
		return PairSnapshot{AFriendsB: true, BFriendsA: true}
	}
	if s.ASentToB || s.BReceivedFromA {
		s.ASentToB = true
		s.BReceivedFromA = true
	}
	if s.BSentToA || s.AReceivedFromB {
		s.BSentToA = true
		s.AReceivedFromB = true
	}
	return s
}

// PlanSendRequest validates the sendRequest(A, B) transition against the
// snapshot. Valid only from Unrelated; an open request in the opposite
// direction also blocks a new one (the pair already has a pending state and
// B should accept instead).
func PlanSendRequest(a, b uint64, s PairSnapshot) error {
	if a == b {
		return svcErr.ErrSelfRequest
	}
	switch s.State() {
	case Friends:
		return svcErr.ErrAlreadyFriends
	case PendingAtoB, PendingBtoA:
		return svcErr.ErrAlreadyRequested
	}
	return nil
}

// PlanAcceptRequest validates acceptRequest(B, A), B accepting A's request.
// The receiver's side is authoritative: the transition is valid only when
// A is present in B's received set. A concurrent duplicate accept finds the
// marker already gone and fails with NoSuchRequest instead of double-adding.
func PlanAcceptRequest(b, a uint64, s PairSnapshot) error {
	if a == b {
		return svcErr.ErrSelfRequest
	}
	if s.State() == Friends {
		return svcErr.ErrAlreadyFriends
	}
	if !s.BReceivedFromA {
		return svcErr.ErrNoSuchRequest
	}
	return nil
}

// PlanRejectRequest validates rejectRequest(B, A), B declining A's request.
// Same precondition as accept; the effect removes the markers without
// adding edges.
func PlanRejectRequest(b, a uint64, s PairSnapshot) error {
	if a == b {
		return svcErr.ErrSelfRequest
	}
	if s.State() == Friends {
		return svcErr.ErrAlreadyFriends
	}
	if !s.BReceivedFromA {
		return svcErr.ErrNoSuchRequest
	}
	return nil
}
