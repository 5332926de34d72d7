package resultsdb

import "github.com/Black-And-White-Club/tournament-results/app/shared"

// Sentinel errors for the repository layer.
var (
	ErrNotFound       = shared.ErrNotFound
	ErrTransientStore = shared.ErrTransientStore
)
