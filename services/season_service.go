package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/job"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/leaderboard"
	"github.com/hoevejo/hoeve-Family-picks/utils"
)

// SeasonService performs the season-boundary rollover: archive the transient
// collections, fold the all-time board into lifetime aggregates, then reset
// the seasonal leaderboards. It runs collection by collection; a failure
// partway is recovered by re-running, since a fresh archive prefix and
// re-zeroing already-reset entries are both harmless.
type SeasonService struct {
	db *firestore.Client
}

func NewSeasonService(db *firestore.Client) *SeasonService {
	return &SeasonService{db: db}
}

var collectionsToWipe = []string{"games", "picks", "weeklyRecap"}

var leaderboardsToReset = []string{
	leaderboard.Regular,
	leaderboard.Postseason,
	leaderboard.AllTime,
}

// ResetForNewSeason archives and clears old data, updates the lifetime
// leaderboard, and zeroes the seasonal boards while keeping identity fields.
func (s *SeasonService) ResetForNewSeason(ctx context.Context) (*job.Result, error) {
	archivePrefix := fmt.Sprintf("archive-%d", time.Now().UnixMilli())
	log.Printf("Archiving and clearing old data under %s...", archivePrefix)

	_, err := s.db.Collection("config").Doc("lastArchive").Set(ctx, map[string]any{
		"prefix":    archivePrefix,
		"createdAt": time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record archive metadata: %w", err)
	}

	result := &job.Result{Success: true}

	for _, name := range collectionsToWipe {
		n, err := s.archiveAndWipe(ctx, archivePrefix, name)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			log.Printf("No data in %s to archive.", name)
			continue
		}
		result.ArchivedDocs += n
		log.Printf("Archived and cleared %s: %d docs", name, n)
	}

	merged, err := s.updateLifetime(ctx)
	if err != nil {
		return nil, err
	}
	result.LifetimeMerged = merged
	log.Println("Lifetime leaderboard updated.")

	for _, name := range leaderboardsToReset {
		n, err := s.resetLeaderboard(ctx, name)
		if err != nil {
			return nil, err
		}
		result.ResetEntries += n
		log.Printf("Reset %s: %d entries", name, n)
	}

	log.Println("All data reset and archived. Ready for a new season.")
	return result, nil
}

// archiveAndWipe copies every document of a collection into the archive
// namespace, committing all copies before any delete so a failure can never
// lose data.
func (s *SeasonService) archiveAndWipe(ctx context.Context, prefix, name string) (int, error) {
	iter := s.db.Collection(name).Documents(ctx)
	defer iter.Stop()

	archive := utils.NewBatchQueue(s.db)
	wipe := utils.NewBatchQueue(s.db)
	count := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to enumerate %s: %w", name, err)
		}

		archiveRef := s.db.Collection(prefix).Doc(name + "-" + doc.Ref.ID)
		if err := archive.Set(ctx, archiveRef, doc.Data()); err != nil {
			return 0, err
		}
		if err := wipe.Delete(ctx, doc.Ref); err != nil {
			return 0, err
		}
		count++
	}

	if err := archive.Flush(ctx); err != nil {
		return 0, fmt.Errorf("failed to archive %s: %w", name, err)
	}
	if err := wipe.Flush(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", name, err)
	}
	return count, nil
}

// updateLifetime folds each all-time entry into the lifetime aggregate:
// lifetimeTotal += seasonTotal, seasonsPlayed += 1, lastSeasonPoints.
func (s *SeasonService) updateLifetime(ctx context.Context) (int, error) {
	iter := s.db.Collection(leaderboard.AllTime).Documents(ctx)
	defer iter.Stop()

	queue := utils.NewBatchQueue(s.db)
	count := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to enumerate all-time leaderboard: %w", err)
		}

		var e leaderboard.Entry
		if err := doc.DataTo(&e); err != nil {
			return 0, fmt.Errorf("failed to decode all-time entry %s: %w", doc.Ref.ID, err)
		}

		lifetimeRef := s.db.Collection(leaderboard.Lifetime).Doc(e.UID)
		existing := leaderboard.LifetimeEntry{}
		snap, err := lifetimeRef.Get(ctx)
		switch {
		case err == nil:
			if err := snap.DataTo(&existing); err != nil {
				return 0, fmt.Errorf("failed to decode lifetime entry %s: %w", e.UID, err)
			}
		case status.Code(err) == codes.NotFound:
			// first season for this user
		default:
			return 0, fmt.Errorf("failed to read lifetime entry %s: %w", e.UID, err)
		}

		err = queue.Set(ctx, lifetimeRef, leaderboard.LifetimeEntry{
			UID:              e.UID,
			FullName:         e.FullName,
			ProfilePicture:   e.ProfilePicture,
			TotalPoints:      existing.TotalPoints + e.TotalPoints,
			SeasonsPlayed:    existing.SeasonsPlayed + 1,
			LastSeasonPoints: e.TotalPoints,
			UpdatedAt:        time.Now(),
		})
		if err != nil {
			return 0, err
		}
		count++
	}

	if err := queue.Flush(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

// resetLeaderboard zeroes every entry's points and ranks, keeping only the
// identity fields.
func (s *SeasonService) resetLeaderboard(ctx context.Context, name string) (int, error) {
	iter := s.db.Collection(name).Documents(ctx)
	defer iter.Stop()

	queue := utils.NewBatchQueue(s.db)
	count := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to enumerate %s: %w", name, err)
		}

		var e leaderboard.Entry
		if err := doc.DataTo(&e); err != nil {
			return 0, fmt.Errorf("failed to decode %s/%s: %w", name, doc.Ref.ID, err)
		}

		err = queue.Set(ctx, s.db.Collection(name).Doc(e.UID), leaderboard.Entry{
			UID:            e.UID,
			FullName:       e.FullName,
			ProfilePicture: e.ProfilePicture,
			SeasonResetAt:  time.Now(),
		})
		if err != nil {
			return 0, err
		}
		count++
	}

	if err := queue.Flush(ctx); err != nil {
		return 0, err
	}
	return count, nil
}
