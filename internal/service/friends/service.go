package friends

import (
	"context"

	"github.com/showclub/showclub/internal/app"
	"github.com/showclub/showclub/internal/db"
	svcErr "github.com/showclub/showclub/internal/errors"
	"github.com/showclub/showclub/internal/repository"
	"github.com/showclub/showclub/internal/service/activity"
	"github.com/showclub/showclub/internal/social"
)

// Service implements the friendship lifecycle: request, accept, reject.
// Transitions are validated against a fresh two-sided read of the pair;
// one-sided state left behind by a crash between the halves of a mirrored
// write is healed on that read before validation (reconciliation-on-read).
type Service struct {
	appCtx     *app.AppContext
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
	recorder   *activity.Recorder
}

// NewService creates a new friends service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		friendRepo: repository.NewFriendRepository(appCtx.DB),
		userRepo:   repository.NewUserRepository(appCtx.DB),
		recorder:   activity.NewRecorder(appCtx),
	}
}

// Relationships is one user's view of their social graph. Wire names match
// the stored-document format, including the historical misspelling of
// "received", which existing clients depend on.
type Relationships struct {
	Friends  []uint64 `json:"friends"`
	Sent     []uint64 `json:"friendRequestsSent"`
	Received []uint64 `json:"friendRequestsRecieved"`
}

// SendFriendRequest opens a pending request from sender to target.
//
// Behavior:
//   - valid only when the pair is unrelated; duplicate sends, reverse
//     pending requests, and existing friendships fail with distinct errors
//   - writes the sender-side marker, then the receiver-side mirror; the two
//     writes are not transactional, a failure in between is healed on the
//     next read of the pair
func (s *Service) SendFriendRequest(ctx context.Context, senderID, targetID uint64) error {
	s.appCtx.Logger.Debug("SendFriendRequest called", "sender", senderID, "target", targetID)

	if senderID == targetID {
		return svcErr.ErrSelfRequest
	}
	if err := s.requireUsers(ctx, senderID, targetID); err != nil {
		return err
	}

	snap, err := s.loadHealedPair(ctx, senderID, targetID)
	if err != nil {
		return svcErr.Map(err)
	}
	if err := social.PlanSendRequest(senderID, targetID, snap); err != nil {
		return err
	}

	if err := s.friendRepo.AddRequestMarkers(ctx, senderID, targetID); err != nil {
		s.appCtx.Logger.Error("AddRequestMarkers failed", "err", err)
		return svcErr.Map(err)
	}

	s.recorder.Record(ctx, senderID, social.EventFriendRequest, targetID, nil)
	return nil
}

// AcceptFriendRequest completes the pending request from requester to
// receiver, making the pair friends on both sides.
//
// The receiver-side marker is authoritative; a request visible only on the
// sender's side is healed first, so acceptance survives a previously failed
// mirror write. A duplicate accept finds the marker consumed and fails with
// AlreadyFriends or NoSuchRequest instead of double-adding.
func (s *Service) AcceptFriendRequest(ctx context.Context, receiverID, requesterID uint64) error {
	s.appCtx.Logger.Debug("AcceptFriendRequest called", "receiver", receiverID, "requester", requesterID)

	if receiverID == requesterID {
		return svcErr.ErrSelfRequest
	}
	if err := s.requireUsers(ctx, receiverID, requesterID); err != nil {
		return err
	}

	// pair snapshot oriented requester → receiver
	snap, err := s.loadHealedPair(ctx, requesterID, receiverID)
	if err != nil {
		return svcErr.Map(err)
	}
	if err := social.PlanAcceptRequest(receiverID, requesterID, snap); err != nil {
		return err
	}

	if err := s.friendRepo.Accept(ctx, receiverID, requesterID); err != nil {
		s.appCtx.Logger.Error("Accept failed", "err", err)
		return svcErr.Map(err)
	}

	s.recorder.Record(ctx, receiverID, social.EventFriendAccept, requesterID, nil)
	return nil
}

// RejectFriendRequest declines the pending request from requester to
// receiver, removing both markers without creating a friendship.
func (s *Service) RejectFriendRequest(ctx context.Context, receiverID, requesterID uint64) error {
	s.appCtx.Logger.Debug("RejectFriendRequest called", "receiver", receiverID, "requester", requesterID)

	if receiverID == requesterID {
		return svcErr.ErrSelfRequest
	}

	snap, err := s.loadHealedPair(ctx, requesterID, receiverID)
	if err != nil {
		return svcErr.Map(err)
	}
	if err := social.PlanRejectRequest(receiverID, requesterID, snap); err != nil {
		return err
	}

	if err := s.friendRepo.RemoveRequestMarkers(ctx, requesterID, receiverID); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// GetRelationships returns the user's friend set and both pending-request
// sets.
func (s *Service) GetRelationships(ctx context.Context, userID uint64) (*Relationships, error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return nil, err
	}

	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	sent, err := s.friendRepo.ListRequests(ctx, userID, db.DirectionSent)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	received, err := s.friendRepo.ListRequests(ctx, userID, db.DirectionReceived)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	return &Relationships{
		Friends:  emptyIfNil(friends),
		Sent:     emptyIfNil(sent),
		Received: emptyIfNil(received),
	}, nil
}

// loadHealedPair reads the pair snapshot, applies any pending repairs, and
// returns the snapshot as repaired so transitions validate against healthy
// state. Repair failures are logged, not fatal: the next read tries again.
func (s *Service) loadHealedPair(ctx context.Context, a, b uint64) (social.PairSnapshot, error) {
	snap, err := s.friendRepo.GetPairSnapshot(ctx, a, b)
	if err != nil {
		return snap, err
	}
	if ops := social.Reconcile(snap); len(ops) > 0 {
		s.appCtx.Logger.Warn("healing one-sided pair state", "a", a, "b", b, "ops", len(ops))
		if err := s.friendRepo.Heal(ctx, a, b, ops); err != nil {
			s.appCtx.Logger.Error("pair heal failed", "a", a, "b", b, "err", err)
		}
		snap = social.Healed(snap)
	}
	return snap, nil
}

func (s *Service) requireUsers(ctx context.Context, ids ...uint64) error {
	for _, id := range ids {
		ok, err := s.userRepo.Exists(ctx, id)
		if err != nil {
			return svcErr.Map(err)
		}
		if !ok {
			return svcErr.NotFound("user not found")
		}
	}
	return nil
}

func emptyIfNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
