package resultsdb

import (
	"time"

	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Match is one game between two teams. WinnerTeamID is only set once the match is decided.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID           uuid.UUID                 `bun:"id,pk,type:uuid"`
	TournamentID uuid.UUID                 `bun:"tournament_id,type:uuid,notnull"`
	PhaseType    resultsdomain.PhaseType   `bun:"phase_type,notnull"`
	RoundNumber  int                       `bun:"round_number,notnull,default:1"`
	Team1ID      uuid.UUID                 `bun:"team1_id,type:uuid,notnull"`
	Team2ID      uuid.UUID                 `bun:"team2_id,type:uuid,notnull"`
	WinnerTeamID *uuid.UUID                `bun:"winner_team_id,type:uuid"`
	Status       resultsdomain.MatchStatus `bun:"status,notnull"`
	UpdatedAt    time.Time                 `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// TournamentStats is one player's aggregate for one tournament. Rows are created by match
// recording; results processing only writes FinalPosition and PointsEarned.
type TournamentStats struct {
	bun.BaseModel `bun:"table:tournament_stats,alias:ts"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	TournamentID  uuid.UUID `bun:"tournament_id,type:uuid,notnull,unique:tournament_player"`
	PlayerID      uuid.UUID `bun:"player_id,type:uuid,notnull,unique:tournament_player"`
	MatchesPlayed int       `bun:"matches_played,notnull,default:0"`
	MatchesWon    int       `bun:"matches_won,notnull,default:0"`
	SetsWon       int       `bun:"sets_won,notnull,default:0"`
	SetsLost      int       `bun:"sets_lost,notnull,default:0"`
	GamesWon      int       `bun:"games_won,notnull,default:0"`
	GamesLost     int       `bun:"games_lost,notnull,default:0"`
	FinalPosition *int      `bun:"final_position"`
	PointsEarned  int       `bun:"points_earned,notnull,default:0"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// PlayerRanking is a player's season total in one category. Rows are never deleted.
type PlayerRanking struct {
	bun.BaseModel `bun:"table:player_rankings,alias:pr"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	PlayerID      uuid.UUID `bun:"player_id,type:uuid,notnull,unique:player_category_season"`
	CategoryID    uuid.UUID `bun:"category_id,type:uuid,notnull,unique:player_category_season"`
	SeasonYear    int       `bun:"season_year,notnull,unique:player_category_season"`
	CurrentPoints int       `bun:"current_points,notnull,default:0"`
	LastUpdated   time.Time `bun:"last_updated,notnull"`
}

// Key returns the ranking's unique key.
func (p *PlayerRanking) Key() resultsdomain.RankingKey {
	return resultsdomain.RankingKey{PlayerID: p.PlayerID, CategoryID: p.CategoryID, SeasonYear: p.SeasonYear}
}

// TeamRoster is a team with the two players behind its registrations.
type TeamRoster struct {
	TeamID     uuid.UUID                   `bun:"team_id"`
	CategoryID uuid.UUID                   `bun:"category_id"`
	Status     tournamentdomain.TeamStatus `bun:"status"`
	Player1ID  uuid.UUID                   `bun:"player1_id"`
	Player2ID  uuid.UUID                   `bun:"player2_id"`
}

// Players returns both player ids in registration order.
func (t TeamRoster) Players() [2]uuid.UUID {
	return [2]uuid.UUID{t.Player1ID, t.Player2ID}
}

// Active reports whether the team still counts for scoring and rankings.
func (t TeamRoster) Active() bool {
	return t.Status != tournamentdomain.TeamCancelled
}
