// Package profile computes how complete a member profile is and gates dashboard
// features on it.
package profile

import (
	"strings"

	"GHXPortal/internal/auth"
)

// Completion is the gate state for one user.
type Completion struct {
	Percentage    int      `json:"percentage"`
	Threshold     int      `json:"threshold"`
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missingFields"`
}

type field struct {
	name   string
	filled func(u *auth.User) bool
}

func nonEmpty(s string) bool { return strings.TrimSpace(s) != "" }

var trackedFields = []field{
	{"name", func(u *auth.User) bool { return nonEmpty(u.Name) }},
	{"organization", func(u *auth.User) bool { return nonEmpty(u.Profile.Organization) }},
	{"position", func(u *auth.User) bool { return nonEmpty(u.Profile.Position) }},
	{"bio", func(u *auth.User) bool { return nonEmpty(u.Profile.Bio) }},
	{"phone", func(u *auth.User) bool { return nonEmpty(u.Profile.Phone) }},
	{"location", func(u *auth.User) bool { return nonEmpty(u.Profile.Location) }},
	{"linkedinUrl", func(u *auth.User) bool { return nonEmpty(u.Profile.LinkedInURL) }},
	{"avatarUrl", func(u *auth.User) bool { return nonEmpty(u.Profile.AvatarURL) }},
	{"interests", func(u *auth.User) bool { return len(u.Profile.Interests) > 0 }},
}

// Compute rounds down, so 100 means every tracked field is filled.
func Compute(u *auth.User, threshold int) Completion {
	missing := []string{}
	filled := 0
	for _, f := range trackedFields {
		if f.filled(u) {
			filled++
		} else {
			missing = append(missing, f.name)
		}
	}
	pct := filled * 100 / len(trackedFields)
	return Completion{
		Percentage:    pct,
		Threshold:     threshold,
		Complete:      pct >= threshold,
		MissingFields: missing,
	}
}
