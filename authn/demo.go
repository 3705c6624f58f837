package authn

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/learnkit/learnkit-go/session"
)

// DemoIssuer marks synthetic access tokens so they are recognizable as demo
// credentials anywhere they surface.
const DemoIssuer = "learnkit-demo"

// demoSigningKey only has to make demo tokens look like real JWTs; it
// protects nothing.
var demoSigningKey = []byte("learnkit-demo-signing-key")

// Fixed timestamps keep demo tokens byte-identical across calls for the
// same email.
var (
	demoIssuedAt  = jwt.NewNumericDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	demoExpiresAt = jwt.NewNumericDate(time.Date(2035, time.January, 1, 0, 0, 0, 0, time.UTC))
)

// DemoTokenPair builds the deterministic synthetic token pair issued when
// authentication falls back to demo mode. The access token is a signed JWT
// whose issuer is DemoIssuer and whose claims echo the submitted email.
func DemoTokenPair(email string) *oauth2.Token {
	sub := uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://learnkit.dev/users/"+email)).String()

	claims := jwt.MapClaims{
		"iss":   DemoIssuer,
		"sub":   sub,
		"email": email,
		"iat":   demoIssuedAt,
		"exp":   demoExpiresAt,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(demoSigningKey)
	if err != nil {
		// HS256 signing of a marshalable claims map cannot fail.
		panic(err)
	}

	refresh := "demo-refresh-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://learnkit.dev/refresh/"+email)).String()

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    session.TokenTypeBearer,
	}
}

// emailClaim extracts the email claim from a JWT without verifying it. The
// client holds no keys; claims are display/fallback material only.
func emailClaim(rawToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}
