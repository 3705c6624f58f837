package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DemoEmail is the identity used for synthetic profiles when no real email
// is known (e.g. a verify fallback with the backend down).
const DemoEmail = "demo@learnkit.dev"

// RoleStudent is the default role for synthetic profiles.
const RoleStudent = "student"

// syntheticCreatedAt keeps fixture timestamps stable across calls.
var syntheticCreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Synthetic builds a deterministic stand-in profile for the given email.
// The same email always yields the same record.
func Synthetic(email string) *Profile {
	if email == "" {
		email = DemoEmail
	}
	nickname := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		nickname = email[:i]
	}
	return &Profile{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://learnkit.dev/users/"+email)).String(),
		Email:     email,
		Nickname:  nickname,
		Role:      RoleStudent,
		Verified:  true,
		CreatedAt: syntheticCreatedAt,
		UpdatedAt: syntheticCreatedAt,
	}
}
