package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)

	raw, err := tokens.Issue("42")
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.True(t, tokens.Authenticate(raw))
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	other := NewTokens("different", time.Hour)

	foreign, err := other.Issue("42")
	require.NoError(t, err)

	expired := NewTokens("s3cret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, err := expired.Issue("42")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: stale},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tokens.Verify(tc.token)
			require.ErrorIs(t, err, ErrInvalidToken)
			assert.False(t, tokens.Authenticate(tc.token))
		})
	}
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("123")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NoError(t, CheckPassword(hash, "correct horse"))
	require.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
	require.ErrorIs(t, CheckPassword("", "anything"), ErrPasswordMismatch)
}

func TestGoogleAudiences(t *testing.T) {
	a := GoogleAudiences{Web: "web", IOSDev: "ios-dev", IOSProd: "ios-prod", Android: "android"}

	assert.Equal(t, "web", a.For("web"))
	assert.Equal(t, "web", a.For(""))
	assert.Equal(t, "ios-dev", a.For("ios"))
	assert.Equal(t, "android", a.For("android"))

	a.Production = true
	assert.Equal(t, "ios-prod", a.For("ios"))
}

func TestGoogleVerifier(t *testing.T) {
	g := NewGoogleVerifier(GoogleAudiences{Web: "web-client"})
	g.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good" || audience != "web-client" {
			return nil, errors.New("bad token")
		}
		return &idtoken.Payload{
			Subject: "sub-1",
			Claims:  map[string]any{"email": "a@b.ie", "name": "Aoife"},
		}, nil
	}

	id, err := g.Verify(context.Background(), "web", "good")
	require.NoError(t, err)
	assert.Equal(t, Identity{Name: "Aoife", Email: "a@b.ie", Subject: "sub-1"}, id)

	_, err = g.Verify(context.Background(), "web", "bad")
	require.Error(t, err)

	_, err = g.Verify(context.Background(), "android", "good")
	require.ErrorIs(t, err, ErrNoAudience)
}

func writeAppleKey(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "AuthKey.p8")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))
	return path, key
}

func TestAppleClientSecret(t *testing.T) {
	path, key := writeAppleKey(t)
	a := NewAppleVerifier(AppleConfig{PrivateKeyPath: path, KeyID: "KID", TeamID: "TEAM", BundleID: "ie.wspace.game"}, nil)

	secret, err := a.ClientSecret()
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(secret, claims, func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
		jwt.WithAudience("https://appleid.apple.com"), jwt.WithIssuer("TEAM"))
	require.NoError(t, err)
	assert.Equal(t, "KID", token.Header["kid"])
	assert.Equal(t, "ie.wspace.game", claims.Subject)
}

func TestAppleVerify(t *testing.T) {
	path, _ := writeAppleKey(t)

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, appleClaims{
		Email:            "a@b.ie",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "apple-sub"},
	}).SignedString([]byte("apple"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_secret") == "" {
			_ = json.NewEncoder(w).Encode(appleTokenResponse{Error: "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(appleTokenResponse{IDToken: idToken})
	}))
	defer srv.Close()

	a := NewAppleVerifier(AppleConfig{PrivateKeyPath: path, KeyID: "KID", TeamID: "TEAM", BundleID: "bundle"}, srv.Client())
	a.endpoint = srv.URL

	id, err := a.Verify(context.Background(), "good-code", "Aoife")
	require.NoError(t, err)
	assert.Equal(t, Identity{Name: "Aoife", Email: "a@b.ie", Subject: "apple-sub"}, id)

	_, err = a.Verify(context.Background(), "bad-code", "")
	require.ErrorContains(t, err, "invalid_grant")
}
