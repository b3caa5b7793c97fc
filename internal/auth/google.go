package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrNoAudience = errors.New("no google client id configured for this device type")

// Identity is what a third-party provider vouches for.
type Identity struct {
	Name    string
	Email   string
	Subject string
}

type GoogleAudiences struct {
	Web        string
	IOSDev     string
	IOSProd    string
	Android    string
	Production bool
}

// For picks the OAuth client id matching the device the login came from.
func (a GoogleAudiences) For(deviceType string) string {
	switch deviceType {
	case "ios":
		if a.Production {
			return a.IOSProd
		}
		return a.IOSDev
	case "android":
		return a.Android
	default:
		return a.Web
	}
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type GoogleVerifier struct {
	audiences GoogleAudiences
	validate  validateFunc
}

func NewGoogleVerifier(audiences GoogleAudiences) *GoogleVerifier {
	return &GoogleVerifier{audiences: audiences, validate: idtoken.Validate}
}

// Verify checks a Google ID token minted for one of our client ids.
func (g *GoogleVerifier) Verify(ctx context.Context, deviceType, token string) (Identity, error) {
	audience := g.audiences.For(deviceType)
	if audience == "" {
		return Identity{}, ErrNoAudience
	}
	payload, err := g.validate(ctx, token, audience)
	if err != nil {
		return Identity{}, fmt.Errorf("verifying google token: %w", err)
	}

	id := Identity{Subject: payload.Subject}
	if v, ok := payload.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		id.Name = v
	}
	if id.Email == "" {
		return Identity{}, errors.New("google token has no email")
	}
	return id, nil
}
