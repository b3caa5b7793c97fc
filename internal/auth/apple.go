package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const appleAudience = "https://appleid.apple.com"

// AppleTokenURL is where authorization codes are exchanged.
const AppleTokenURL = "https://appleid.apple.com/auth/token"

type AppleConfig struct {
	PrivateKeyPath string
	KeyID          string
	TeamID         string
	BundleID       string
}

type AppleVerifier struct {
	cfg      AppleConfig
	client   *http.Client
	endpoint string
	now      func() time.Time
}

func NewAppleVerifier(cfg AppleConfig, client *http.Client) *AppleVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &AppleVerifier{cfg: cfg, client: client, endpoint: AppleTokenURL, now: time.Now}
}

// ClientSecret signs the short-lived ES256 JWT Apple wants in place of a
// static client secret.
func (a *AppleVerifier) ClientSecret() (string, error) {
	pem, err := os.ReadFile(a.cfg.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("reading apple key: %w", err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(pem)
	if err != nil {
		return "", fmt.Errorf("parsing apple key: %w", err)
	}

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    a.cfg.TeamID,
		Subject:   a.cfg.BundleID,
		Audience:  jwt.ClaimStrings{appleAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	})
	token.Header["kid"] = a.cfg.KeyID
	return token.SignedString(key)
}

type appleTokenResponse struct {
	IDToken          string `json:"id_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type appleClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify exchanges an authorization code from the app for Apple's id_token
// and reads the identity out of it. Apple only sends the user's name to the
// app, so it is passed through from the request.
func (a *AppleVerifier) Verify(ctx context.Context, code, name string) (Identity, error) {
	secret, err := a.ClientSecret()
	if err != nil {
		return Identity{}, err
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {a.cfg.BundleID},
		"client_secret": {secret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("calling apple: %w", err)
	}
	defer resp.Body.Close()

	var body appleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Identity{}, fmt.Errorf("decoding apple response: %w", err)
	}
	if body.Error != "" {
		return Identity{}, fmt.Errorf("apple rejected code: %s %s", body.Error, body.ErrorDescription)
	}
	if body.IDToken == "" {
		return Identity{}, errors.New("apple response has no id_token")
	}

	// The token came straight from Apple over TLS in exchange for our own
	// signed secret, so the signature is not re-checked here.
	claims := &appleClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(body.IDToken, claims); err != nil {
		return Identity{}, fmt.Errorf("parsing apple id_token: %w", err)
	}
	if claims.Email == "" {
		return Identity{}, errors.New("apple id_token has no email")
	}
	return Identity{Name: name, Email: claims.Email, Subject: claims.Subject}, nil
}
