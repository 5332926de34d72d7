package resultsdomain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeasonBasis decides which calendar year a tournament's points count toward.
type SeasonBasis string

const (
	// SeasonCalendar uses the year of the moment the ranking is computed.
	SeasonCalendar SeasonBasis = "calendar"
	// SeasonTournamentEnd uses the year the tournament ended.
	SeasonTournamentEnd SeasonBasis = "tournament_end"
)

// ParseSeasonBasis validates a configured basis. Empty means SeasonCalendar.
func ParseSeasonBasis(s string) (SeasonBasis, error) {
	switch SeasonBasis(s) {
	case "", SeasonCalendar:
		return SeasonCalendar, nil
	case SeasonTournamentEnd:
		return SeasonTournamentEnd, nil
	}
	return "", fmt.Errorf("unknown season basis %q", s)
}

// SeasonYear returns the season a ranking computed at now for a tournament ending at end belongs to.
func (b SeasonBasis) SeasonYear(now, end time.Time) int {
	if b == SeasonTournamentEnd && !end.IsZero() {
		return end.UTC().Year()
	}
	return now.UTC().Year()
}

// SeasonBounds returns the half-open UTC interval [start, end) covering year.
func SeasonBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// RankingKey identifies one PlayerRanking row.
type RankingKey struct {
	PlayerID   uuid.UUID
	CategoryID uuid.UUID
	SeasonYear int
}
