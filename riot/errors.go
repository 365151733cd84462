package riot

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrRateLimited             = errors.New("rate limited")
	ErrRegionNotFound          = errors.New("region not found")
	ErrUpstream                = errors.New("upstream error")
	ErrSecondFactorUnavailable = errors.New("second factor code unavailable")

	// ErrNotAvailable is returned when the night market is not running. It is
	// not a failure; callers should post nothing.
	ErrNotAvailable = errors.New("night market not available")
)

func upstreamf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstream, fmt.Sprintf(format, args...))
}

// UserMessage returns the text shown to an end user for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Your login is incorrect. Check the username and password."
	case errors.Is(err, ErrRateLimited):
		return "Riot is rate limiting logins. Wait a few minutes and try again."
	case errors.Is(err, ErrSecondFactorUnavailable):
		return "Two-factor authentication is enabled but no verification code was supplied."
	case errors.Is(err, ErrRegionNotFound):
		return "Could not determine the account region."
	case errors.Is(err, ErrNotAvailable):
		return "The night market is not available right now."
	default:
		return "Something went wrong while fetching the store."
	}
}
