package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears all social tables.
//  2. Creates 20 users with hashed passwords.
//  3. Builds a friendship graph: accepted pairs plus some pending requests.
//  4. Creates ~30 reviews with a spread of like/dislike votes.
//  5. Gives each user a short watch history.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	tables := []string{
		"activities", "watched_episodes", "watch_entries",
		"review_votes", "reviews", "friend_edges", "friend_requests", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences (only for MySQL)
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE reviews AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE watch_entries AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE activities AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'reviews', 'watch_entries', 'activities')")
	}

	log.Println("Cleared existing data")

	// --- Seed Users ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Friendships ---
	// Every user befriends the next two, so the graph is connected. Both
	// mirror rows are written for each pair.
	for a := uint64(1); a <= 20; a++ {
		for _, b := range []uint64{a%20 + 1, (a+1)%20 + 1} {
			if a == b {
				continue
			}
			edges := []FriendEdge{
				{UserID: a, FriendID: b},
				{UserID: b, FriendID: a},
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&edges).Error; err != nil {
				return fmt.Errorf("failed to seed friendship: %w", err)
			}
		}
	}

	// A handful of open requests on top of the accepted graph.
	for i := 0; i < 8; i++ {
		from := uint64(r.Intn(20) + 1)
		to := uint64(r.Intn(20) + 1)
		if from == to {
			continue
		}
		var existing int64
		db.Model(&FriendEdge{}).
			Where("user_id = ? AND friend_id = ?", from, to).
			Count(&existing)
		if existing > 0 {
			continue
		}
		markers := []FriendRequest{
			{OwnerID: from, OtherID: to, Direction: DirectionSent},
			{OwnerID: to, OtherID: from, Direction: DirectionReceived},
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&markers).Error; err != nil {
			return fmt.Errorf("failed to seed friend request: %w", err)
		}
	}
	log.Println("Seeded friendship graph.")

	// --- Seed Reviews + Votes ---
	for i := 0; i < 30; i++ {
		authorID := uint64(r.Intn(20) + 1)
		review := Review{
			ShowID:   uint64(r.Intn(50) + 1),
			AuthorID: authorID,
			Rating:   uint8(r.Intn(5) + 1),
			Content:  fmt.Sprintf("Seed review %d: worth a watch.", i+1),
		}
		if err := db.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to seed review: %w", err)
		}

		// ~6 voters per review, likes ~70%
		for j := 0; j < 6; j++ {
			voterID := uint64(r.Intn(20) + 1)
			if voterID == authorID {
				continue
			}
			vote := ReviewVote{
				ReviewID: review.ID,
				UserID:   voterID,
				Liked:    r.Intn(100) < 70,
			}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
			}).Create(&vote).Error; err != nil {
				return fmt.Errorf("failed to seed vote: %w", err)
			}
		}
	}
	log.Println("Seeded 30 reviews with votes.")

	// --- Seed Watch History ---
	for userID := uint64(1); userID <= 20; userID++ {
		shows := r.Intn(5) + 1
		for s := 0; s < shows; s++ {
			showID := uint64(r.Intn(50) + 1)
			watchedAt := time.Now().Add(-time.Duration(r.Intn(720)) * time.Hour)
			entry := WatchEntry{
				UserID:        userID,
				ShowID:        showID,
				ShowName:      fmt.Sprintf("Show %d", showID),
				PosterPath:    fmt.Sprintf("/posters/%d.jpg", showID),
				LastWatchedAt: watchedAt,
			}
			for e := 0; e < r.Intn(4)+1; e++ {
				entry.Episodes = append(entry.Episodes, WatchedEpisode{
					EpisodeID:    showID*1000 + uint64(e+1),
					Number:       e + 1,
					Name:         fmt.Sprintf("Episode %d", e+1),
					SeasonNumber: 1,
					WatchedAt:    watchedAt,
				})
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to seed watch entry: %w", err)
			}
		}
	}
	log.Println("Seeded watch history.")

	return nil
}

// SeedMinimalTestData populates just enough for manual poking around: three
// users, one friendship, one open request, and a voted review.
func SeedMinimalTestData(db *gorm.DB) error {
	tables := []string{
		"activities", "watched_episodes", "watch_entries",
		"review_votes", "reviews", "friend_edges", "friend_requests", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	users := []User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x"},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x"},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x"},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	// user1 and user2 are friends; user3 has an open request to user1
	edges := []FriendEdge{
		{UserID: 1, FriendID: 2},
		{UserID: 2, FriendID: 1},
	}
	if err := db.Create(&edges).Error; err != nil {
		return err
	}
	markers := []FriendRequest{
		{OwnerID: 3, OtherID: 1, Direction: DirectionSent},
		{OwnerID: 1, OtherID: 3, Direction: DirectionReceived},
	}
	if err := db.Create(&markers).Error; err != nil {
		return err
	}

	review := Review{ID: 1, ShowID: 10, AuthorID: 1, Rating: 4, Content: "Solid pilot."}
	if err := db.Create(&review).Error; err != nil {
		return err
	}
	votes := []ReviewVote{
		{ReviewID: 1, UserID: 2, Liked: true},
		{ReviewID: 1, UserID: 3, Liked: false},
	}
	return db.Create(&votes).Error
}
