package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/showclub/showclub/internal/db"
	"github.com/showclub/showclub/internal/social"
)

// FriendRepository provides data access for friend edges and request
// markers. A request from A to B is two marker rows (A's sent side, B's
// received side); a friendship is two edge rows. Each row write is a single
// atomic statement; only Accept coordinates several in a transaction.
type FriendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new repository bound to the given DB connection.
func NewFriendRepository(database *gorm.DB) *FriendRepository {
	return &FriendRepository{db: database}
}

// GetPairSnapshot reads both sides of the pair (a, b) in one pass so the
// caller can observe, and heal, one-sided state.
func (r *FriendRepository) GetPairSnapshot(ctx context.Context, a, b uint64) (social.PairSnapshot, error) {
	var snap social.PairSnapshot

	var edges []db.FriendEdge
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Find(&edges).Error
	if err != nil {
		return snap, err
	}
	for _, e := range edges {
		if e.UserID == a {
			snap.AFriendsB = true
		} else {
			snap.BFriendsA = true
		}
	}

	var markers []db.FriendRequest
	err = r.db.WithContext(ctx).
		Where("(owner_id = ? AND other_id = ?) OR (owner_id = ? AND other_id = ?)", a, b, b, a).
		Find(&markers).Error
	if err != nil {
		return snap, err
	}
	for _, m := range markers {
		switch {
		case m.OwnerID == a && m.Direction == db.DirectionSent:
			snap.ASentToB = true
		case m.OwnerID == b && m.Direction == db.DirectionReceived:
			snap.BReceivedFromA = true
		case m.OwnerID == b && m.Direction == db.DirectionSent:
			snap.BSentToA = true
		case m.OwnerID == a && m.Direction == db.DirectionReceived:
			snap.AReceivedFromB = true
		}
	}

	return snap, nil
}

// AddRequestMarkers writes the two sides of a new request from sender to
// receiver. The writes are sequential on purpose: each side is one atomic
// insert, and a failure between them leaves recoverable one-sided state
// that Heal repairs on the next pair read.
func (r *FriendRepository) AddRequestMarkers(ctx context.Context, sender, receiver uint64) error {
	if err := r.addMarker(ctx, sender, receiver, db.DirectionSent); err != nil {
		return err
	}
	return r.addMarker(ctx, receiver, sender, db.DirectionReceived)
}

// RemoveRequestMarkers deletes both sides of the request from sender to
// receiver. Idempotent: missing rows are not an error.
func (r *FriendRepository) RemoveRequestMarkers(ctx context.Context, sender, receiver uint64) error {
	return r.db.WithContext(ctx).
		Where("(owner_id = ? AND other_id = ? AND direction = ?) OR (owner_id = ? AND other_id = ? AND direction = ?)",
			sender, receiver, db.DirectionSent,
			receiver, sender, db.DirectionReceived).
		Delete(&db.FriendRequest{}).Error
}

// Accept turns the pending request from requester to receiver into a
// friendship: both request markers removed, both edges added, in one
// transaction. Duplicate edges are absorbed by OnConflict DoNothing so a
// concurrent accept cannot double-add.
func (r *FriendRepository) Accept(ctx context.Context, receiver, requester uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("(owner_id = ? AND other_id = ?) OR (owner_id = ? AND other_id = ?)",
				requester, receiver, receiver, requester).
			Delete(&db.FriendRequest{}).Error; err != nil {
			return err
		}
		if err := addEdge(tx, requester, receiver); err != nil {
			return err
		}
		return addEdge(tx, receiver, requester)
	})
}

// Heal applies the repair ops computed by social.Reconcile for the pair
// (a, b). Each op is an independent idempotent statement; the first failure
// aborts, leaving the rest for the next read.
func (r *FriendRepository) Heal(ctx context.Context, a, b uint64, ops []social.HealOp) error {
	for _, op := range ops {
		var err error
		switch op {
		case social.HealAddSentAtoB:
			err = r.addMarker(ctx, a, b, db.DirectionSent)
		case social.HealAddReceivedBfromA:
			err = r.addMarker(ctx, b, a, db.DirectionReceived)
		case social.HealAddSentBtoA:
			err = r.addMarker(ctx, b, a, db.DirectionSent)
		case social.HealAddReceivedAfromB:
			err = r.addMarker(ctx, a, b, db.DirectionReceived)
		case social.HealAddEdgeAtoB:
			err = addEdge(r.db.WithContext(ctx), a, b)
		case social.HealAddEdgeBtoA:
			err = addEdge(r.db.WithContext(ctx), b, a)
		case social.HealDropRequestsAtoB:
			err = r.RemoveRequestMarkers(ctx, a, b)
		case social.HealDropRequestsBtoA:
			err = r.RemoveRequestMarkers(ctx, b, a)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ListFriends returns the ids in the user's friend set, ascending.
func (r *FriendRepository) ListFriends(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.FriendEdge{}).
		Where("user_id = ?", userID).
		Order("friend_id ASC").
		Pluck("friend_id", &ids).Error
	return ids, err
}

// ListRequests returns the counterpart ids of the user's request markers
// for one direction, ascending.
func (r *FriendRepository) ListRequests(ctx context.Context, userID uint64, direction string) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.FriendRequest{}).
		Where("owner_id = ? AND direction = ?", userID, direction).
		Order("other_id ASC").
		Pluck("other_id", &ids).Error
	return ids, err
}

func (r *FriendRepository) addMarker(ctx context.Context, owner, other uint64, direction string) error {
	marker := db.FriendRequest{OwnerID: owner, OtherID: other, Direction: direction}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&marker).Error
}

func addEdge(tx *gorm.DB, userID, friendID uint64) error {
	edge := db.FriendEdge{UserID: userID, FriendID: friendID}
	return tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
}
