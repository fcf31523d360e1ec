package social

import (
	"sort"
	"time"

	svcErr "github.com/showclub/showclub/internal/errors"
)

// HistoryLimit caps a user's watch history. Entries ranked beyond the limit
// are evicted, not an error.
const HistoryLimit = 50

// EventEpisodesWatched is the activity event emitted after a successful
// history merge.
const EventEpisodesWatched EventKind = "episodes_watched"

// WatchedEpisode is one watched episode within a WatchEntry, unique per
// EpisodeID. JSON names match the stored-document format.
type WatchedEpisode struct {
	EpisodeID    uint64    `json:"episodeId"`
	Number       int       `json:"number"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"seasonNumber"`
	WatchedAt    time.Time `json:"watchedAt"`
}

// WatchEntry is the per-show record in a user's watch history.
type WatchEntry struct {
	ShowID        uint64           `json:"showId"`
	ShowName      string           `json:"showName"`
	PosterPath    string           `json:"posterPath"`
	LastWatchedAt time.Time        `json:"lastWatchedAt"`
	Episodes      []WatchedEpisode `json:"episodes"`
}

// EpisodeInput identifies one episode being marked watched.
type EpisodeInput struct {
	EpisodeID uint64
	Number    int
	Name      string
}

// MarkInput is a mark-watched request for one show.
type MarkInput struct {
	ShowID       uint64
	ShowName     string
	PosterPath   string
	SeasonNumber int
	Episodes     []EpisodeInput
}

// ValidateMarkInput rejects payloads before any mutation: empty episode
// list, missing show identity, or missing display metadata.
func ValidateMarkInput(in MarkInput) error {
	if in.ShowID == 0 || in.ShowName == "" || in.PosterPath == "" {
		return svcErr.ErrInvalidWatchPayload
	}
	if len(in.Episodes) == 0 {
		return svcErr.ErrInvalidWatchPayload
	}
	for _, ep := range in.Episodes {
		if ep.EpisodeID == 0 {
			return svcErr.ErrInvalidWatchPayload
		}
	}
	return nil
}

// MergeHistory returns the user's watch history after marking the input
// episodes watched at `now`. The input history is not mutated.
//
// Semantics:
//   - the show's entry is found or created, and its LastWatchedAt set to now
//   - episodes already in the entry get WatchedAt refreshed and
//     SeasonNumber overwritten in place (metadata corrections reattribute
//     episodes to a different season); new episodes are appended
//   - the history is re-sorted by LastWatchedAt descending and truncated to
//     HistoryLimit entries
//
// Re-marking is idempotent apart from timestamps, so retried requests never
// duplicate episodes or entries.
func MergeHistory(history []WatchEntry, in MarkInput, now time.Time) ([]WatchEntry, error) {
	if err := ValidateMarkInput(in); err != nil {
		return nil, err
	}

	merged := make([]WatchEntry, len(history))
	copy(merged, history)

	idx := -1
	for i := range merged {
		if merged[i].ShowID == in.ShowID {
			idx = i
			break
		}
	}

	if idx == -1 {
		merged = append(merged, WatchEntry{
			ShowID:        in.ShowID,
			ShowName:      in.ShowName,
			PosterPath:    in.PosterPath,
			LastWatchedAt: now,
			Episodes:      toWatchedEpisodes(in, now),
		})
	} else {
		entry := merged[idx]
		entry.LastWatchedAt = now
		entry.ShowName = in.ShowName
		entry.PosterPath = in.PosterPath
		entry.Episodes = append([]WatchedEpisode(nil), entry.Episodes...)

		for _, ep := range in.Episodes {
			pos := -1
			for i := range entry.Episodes {
				if entry.Episodes[i].EpisodeID == ep.EpisodeID {
					pos = i
					break
				}
			}
			if pos >= 0 {
				entry.Episodes[pos].WatchedAt = now
				entry.Episodes[pos].SeasonNumber = in.SeasonNumber
				entry.Episodes[pos].Number = ep.Number
				if ep.Name != "" {
					entry.Episodes[pos].Name = ep.Name
				}
			} else {
				entry.Episodes = append(entry.Episodes, WatchedEpisode{
					EpisodeID:    ep.EpisodeID,
					Number:       ep.Number,
					Name:         ep.Name,
					SeasonNumber: in.SeasonNumber,
					WatchedAt:    now,
				})
			}
		}
		merged[idx] = entry
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].LastWatchedAt.After(merged[j].LastWatchedAt)
	})

	if len(merged) > HistoryLimit {
		merged = merged[:HistoryLimit]
	}

	return merged, nil
}

func toWatchedEpisodes(in MarkInput, now time.Time) []WatchedEpisode {
	eps := make([]WatchedEpisode, 0, len(in.Episodes))
	seen := make(map[uint64]int, len(in.Episodes))
	for _, ep := range in.Episodes {
		if i, ok := seen[ep.EpisodeID]; ok {
			// duplicate ids within one payload collapse to the last one
			eps[i].Number = ep.Number
			if ep.Name != "" {
				eps[i].Name = ep.Name
			}
			continue
		}
		seen[ep.EpisodeID] = len(eps)
		eps = append(eps, WatchedEpisode{
			EpisodeID:    ep.EpisodeID,
			Number:       ep.Number,
			Name:         ep.Name,
			SeasonNumber: in.SeasonNumber,
			WatchedAt:    now,
		})
	}
	return eps
}
