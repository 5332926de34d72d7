package tournamentdomain

// Status is the lifecycle state of a tournament.
type Status string

const (
	StatusDraft              Status = "DRAFT"
	StatusPublished          Status = "PUBLISHED"
	StatusRegistrationOpen   Status = "REGISTRATION_OPEN"
	StatusRegistrationClosed Status = "REGISTRATION_CLOSED"
	StatusInProgress         Status = "IN_PROGRESS"
	StatusCompleted          Status = "COMPLETED"
	StatusCancelled          Status = "CANCELLED"
)

func (s Status) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusRegistrationOpen, StatusRegistrationClosed,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// AutomaticStatuses are the statuses the date-driven sweep may move out of.
var AutomaticStatuses = []Status{
	StatusPublished,
	StatusRegistrationOpen,
	StatusRegistrationClosed,
}

// Type is the competition format of a tournament.
type Type string

const (
	TypeSingleElimination     Type = "SINGLE_ELIMINATION"
	TypeDoubleElimination     Type = "DOUBLE_ELIMINATION"
	TypeRoundRobin            Type = "ROUND_ROBIN"
	TypeSwiss                 Type = "SWISS"
	TypeGroupStageElimination Type = "GROUP_STAGE_ELIMINATION"
	TypeAmericano             Type = "AMERICANO"
	TypeAmericanoSocial       Type = "AMERICANO_SOCIAL"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSingleElimination, TypeDoubleElimination, TypeRoundRobin, TypeSwiss,
		TypeGroupStageElimination, TypeAmericano, TypeAmericanoSocial:
		return true
	}
	return false
}

// RegistrationStatus is the state of one player's entry.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationPaid      RegistrationStatus = "PAID"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
	RegistrationWaitlist  RegistrationStatus = "WAITLIST"
)

// TeamStatus is the state of a doubles pairing.
type TeamStatus string

const (
	TeamActive    TeamStatus = "ACTIVE"
	TeamCancelled TeamStatus = "CANCELLED"
)

// PaymentStatus is the state of one payment against a registration.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "PAID"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)
