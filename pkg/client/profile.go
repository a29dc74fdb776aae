package client

import "fmt"

// Profile selects how a Client attaches credentials to outgoing requests.
type Profile string

const (
	// ProfileStatic reads the token once at construction and sends that
	// snapshot on every request. Later changes to the stored token are not
	// observed.
	ProfileStatic Profile = "static"

	// ProfileLive asks the TokenProvider for the current token on every request.
	ProfileLive Profile = "live"

	// ProfileNone never sends an Authorization header.
	ProfileNone Profile = "none"
)

// Default base URLs per profile, used when neither configuration nor
// environment supplies one.
const (
	DefaultBaseURL    = "http://localhost/"
	DefaultAPIBaseURL = "http://localhost/api"
)

// Validate checks if the profile is a known profile.
func (p Profile) Validate() error {
	switch p {
	case ProfileStatic, ProfileLive, ProfileNone:
		return nil
	default:
		return fmt.Errorf("invalid profile: %s (must be static, live, or none)", p)
	}
}

// DefaultBaseURL returns the base URL a profile falls back to.
func (p Profile) DefaultBaseURL() string {
	if p == ProfileLive {
		return DefaultAPIBaseURL
	}
	return DefaultBaseURL
}

// UsesToken reports whether the profile reads a TokenProvider.
func (p Profile) UsesToken() bool {
	return p == ProfileStatic || p == ProfileLive
}

// ResolveBaseURL returns override when it is non-empty, otherwise the
// profile default.
func ResolveBaseURL(override string, p Profile) string {
	if override != "" {
		return override
	}
	return p.DefaultBaseURL()
}
