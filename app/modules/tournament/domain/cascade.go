package tournamentdomain

// IsCancellationCandidate reports whether a registration in this status is
// unconfirmed and may be cancelled when the tournament starts.
func IsCancellationCandidate(status RegistrationStatus) bool {
	switch status {
	case RegistrationConfirmed, RegistrationPaid, RegistrationCancelled:
		return false
	}
	return true
}

// IsProtected reports whether any payment has cleared. A protected registration
// is never cancelled automatically, whatever its own status says.
func IsProtected(payments []PaymentStatus) bool {
	for _, p := range payments {
		if p == PaymentPaid {
			return true
		}
	}
	return false
}

// ShouldCancelRegistration combines the candidate and protection checks.
func ShouldCancelRegistration(status RegistrationStatus, payments []PaymentStatus) bool {
	return IsCancellationCandidate(status) && !IsProtected(payments)
}
