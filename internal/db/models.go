package db

import (
	"time"
)

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Request marker directions. A request from A to B is stored as two marker
// rows: (A, B, sent) on A's side and (B, A, received) on B's side. The two
// sides are written sequentially, not transactionally, so readers must
// tolerate a marker present on only one side (see social.Reconcile).
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// FriendRequest is one side's view of a pending friend request.
//
// Composite PK: (OwnerID, OtherID, Direction)
//   - A single marker per owner/other/direction (idempotent re-insert).
//
// Fields:
//   - OwnerID: the user whose record holds this marker.
//   - OtherID: the counterpart user.
//   - Direction: "sent" if OwnerID asked OtherID, "received" otherwise.
type FriendRequest struct {
	OwnerID   uint64    `gorm:"primaryKey;index:idx_req_owner_dir,priority:1"`
	OtherID   uint64    `gorm:"primaryKey"`
	Direction string    `gorm:"primaryKey;size:16;index:idx_req_owner_dir,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// FriendEdge is one side's view of an established friendship. A symmetric
// friendship is two rows, (A,B) and (B,A); the pair is healed on read if a
// crash left only one.
type FriendEdge struct {
	UserID    uint64    `gorm:"primaryKey"`
	FriendID  uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Review table
type Review struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	ShowID          uint64 `gorm:"not null;index"`
	AuthorID        uint64 `gorm:"not null;index"`
	Rating          uint8  `gorm:"not null"`
	Content         string `gorm:"type:text;not null"`
	ContainsSpoiler bool   `gorm:"default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// ReviewVote represents a user's vote on a review.
//
// Composite PK: (ReviewID, UserID)
//   - A single row per voter per review, so a user can never hold a like
//     and a dislike at the same time (overwrite guarantee).
//
// Indexes:
//   - idx_review_liked(review_id, liked) for vote-set and count reads.
type ReviewVote struct {
	ReviewID  uint64    `gorm:"primaryKey;index:idx_review_liked,priority:1"`
	UserID    uint64    `gorm:"primaryKey"`
	Liked     bool      `gorm:"not null;index:idx_review_liked,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// WatchEntry is a per-show record in a user's watch history. The history is
// replaced wholesale by the merge algorithm, which keeps it capped and
// sorted by last_watched_at descending.
type WatchEntry struct {
	ID            uint64           `gorm:"primaryKey;autoIncrement"`
	UserID        uint64           `gorm:"not null;uniqueIndex:idx_user_show,priority:1;index:idx_user_last_watched,priority:1"`
	ShowID        uint64           `gorm:"not null;uniqueIndex:idx_user_show,priority:2"`
	ShowName      string           `gorm:"size:255;not null"`
	PosterPath    string           `gorm:"size:255"`
	LastWatchedAt time.Time        `gorm:"not null;index:idx_user_last_watched,priority:2,sort:desc"`
	Episodes      []WatchedEpisode `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
}

// WatchedEpisode is one watched episode within a WatchEntry. The composite
// PK dedupes re-marks: marking the same episode again updates watched_at and
// season_number in place.
type WatchedEpisode struct {
	EntryID      uint64    `gorm:"primaryKey;autoIncrement:false"`
	EpisodeID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	Number       int       `gorm:"not null"`
	Name         string    `gorm:"size:255"`
	SeasonNumber int       `gorm:"not null"`
	WatchedAt    time.Time `gorm:"not null"`
}

// Activity is a denormalized, best-effort log entry written after each
// successful social mutation. Never read back by the mutation paths.
type Activity struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;index:idx_user_activity,priority:2,sort:desc"`
	UserID    uint64    `gorm:"not null;index:idx_user_activity,priority:1"`
	EventKind string    `gorm:"size:32;not null"`
	TargetID  uint64    `gorm:"default:0"`
	Details   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
