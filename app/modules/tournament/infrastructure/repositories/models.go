package tournamentdb

import (
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tournament is a scheduled competition and its lifecycle status.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID                uuid.UUID               `bun:"id,pk,type:uuid"`
	Name              string                  `bun:"name,notnull"`
	Type              tournamentdomain.Type   `bun:"type,notnull"`
	Status            tournamentdomain.Status `bun:"status,notnull"`
	RegistrationStart time.Time               `bun:"registration_start,notnull"`
	RegistrationEnd   time.Time               `bun:"registration_end,notnull"`
	TournamentStart   time.Time               `bun:"tournament_start,notnull"`
	TournamentEnd     time.Time               `bun:"tournament_end,notnull"`
	RankingPoints     int                     `bun:"ranking_points,notnull,default:0"`
	CreatedAt         time.Time               `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time               `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Schedule extracts the dates the status rules read.
func (t *Tournament) Schedule() tournamentdomain.Schedule {
	return tournamentdomain.Schedule{
		RegistrationStart: t.RegistrationStart,
		RegistrationEnd:   t.RegistrationEnd,
		TournamentStart:   t.TournamentStart,
		TournamentEnd:     t.TournamentEnd,
	}
}

// Team pairs two registrations in one category.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:tm"`

	ID              uuid.UUID                   `bun:"id,pk,type:uuid"`
	TournamentID    uuid.UUID                   `bun:"tournament_id,type:uuid,notnull"`
	CategoryID      uuid.UUID                   `bun:"category_id,type:uuid,notnull"`
	Registration1ID uuid.UUID                   `bun:"registration1_id,type:uuid,notnull"`
	Registration2ID uuid.UUID                   `bun:"registration2_id,type:uuid,notnull"`
	Status          tournamentdomain.TeamStatus `bun:"status,notnull,default:'ACTIVE'"`
	UpdatedAt       time.Time                   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Registration is one player's entry into a tournament category.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID           uuid.UUID                           `bun:"id,pk,type:uuid"`
	TournamentID uuid.UUID                           `bun:"tournament_id,type:uuid,notnull"`
	CategoryID   uuid.UUID                           `bun:"category_id,type:uuid,notnull"`
	PlayerID     uuid.UUID                           `bun:"player_id,type:uuid,notnull"`
	Status       tournamentdomain.RegistrationStatus `bun:"registration_status,notnull"`
	UpdatedAt    time.Time                           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Payments []*Payment `bun:"rel:has-many,join:id=registration_id"`
}

// PaymentStatuses lists the status of every payment loaded with the registration.
func (r *Registration) PaymentStatuses() []tournamentdomain.PaymentStatus {
	out := make([]tournamentdomain.PaymentStatus, 0, len(r.Payments))
	for _, p := range r.Payments {
		out = append(out, p.Status)
	}
	return out
}

// Payment is money received (or attempted) against a registration.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID             uuid.UUID                      `bun:"id,pk,type:uuid"`
	RegistrationID uuid.UUID                      `bun:"registration_id,type:uuid,notnull"`
	Amount         int64                          `bun:"amount,notnull"`
	Status         tournamentdomain.PaymentStatus `bun:"payment_status,notnull"`
	CreatedAt      time.Time                      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
