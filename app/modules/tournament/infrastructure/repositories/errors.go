package tournamentdb

import "github.com/Black-And-White-Club/tournament-results/app/shared"

// Sentinel errors for the repository layer. They alias the shared taxonomy so
// service code can match on either.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = shared.ErrNotFound

	// ErrTransientStore indicates an infrastructure failure.
	ErrTransientStore = shared.ErrTransientStore
)
