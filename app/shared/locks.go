package shared

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AcquireTournamentLock serializes writers of one tournament for the rest of the transaction.
func AcquireTournamentLock(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) error {
	return acquireXactLock(ctx, db, "tournament:"+tournamentID.String())
}

// RankingLockKey identifies one (category, season) ranking partition.
type RankingLockKey struct {
	CategoryID uuid.UUID
	SeasonYear int
}

func (k RankingLockKey) String() string {
	return fmt.Sprintf("ranking:%s:%d", k.CategoryID, k.SeasonYear)
}

// AcquireRankingLocks locks each ranking partition, always in the same order so two
// transactions touching overlapping partitions cannot deadlock.
func AcquireRankingLocks(ctx context.Context, db bun.IDB, keys []RankingLockKey) error {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	slices.Sort(names)
	names = slices.Compact(names)

	for _, name := range names {
		if err := acquireXactLock(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}

func acquireXactLock(ctx context.Context, db bun.IDB, key string) error {
	// Callers outside a transaction (unit tests with fakes) pass nil.
	if db == nil {
		return nil
	}
	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx); err != nil {
		return fmt.Errorf("failed to acquire advisory lock %q: %w", key, StoreError(err))
	}
	return nil
}
