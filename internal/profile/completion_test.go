package profile

import (
	"testing"

	"GHXPortal/internal/auth"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	empty := &auth.User{}
	c := Compute(empty, 80)
	assert.Equal(t, 0, c.Percentage)
	assert.False(t, c.Complete)
	assert.Len(t, c.MissingFields, len(trackedFields))

	partial := &auth.User{
		Name: "Ada",
		Profile: auth.Profile{
			Organization: "Analytical Engines",
			Position:     "Founder",
			Bio:          "Writes programs",
			Phone:        "   ",
		},
	}
	c = Compute(partial, 40)
	assert.Equal(t, 44, c.Percentage) // 4 of 9, rounded down
	assert.True(t, c.Complete)
	assert.Contains(t, c.MissingFields, "phone")
	assert.NotContains(t, c.MissingFields, "bio")

	full := &auth.User{
		Name: "Ada",
		Profile: auth.Profile{
			Organization: "Analytical Engines",
			Position:     "Founder",
			Bio:          "Writes programs",
			Phone:        "+44 20 0000",
			Location:     "London",
			LinkedInURL:  "https://linkedin.com/in/ada",
			AvatarURL:    "https://cdn.example.com/ada.png",
			Interests:    []string{"fintech"},
		},
	}
	c = Compute(full, 100)
	assert.Equal(t, 100, c.Percentage)
	assert.True(t, c.Complete)
	assert.Empty(t, c.MissingFields)
}
