package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/auth"
	"github.com/DoyleJ11/hotseat/internal/store"
)

type GoogleVerifier interface {
	Verify(ctx context.Context, deviceType, token string) (auth.Identity, error)
}

type AppleVerifier interface {
	Verify(ctx context.Context, code, name string) (auth.Identity, error)
}

type sessionUser struct {
	ID          uint   `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken,omitempty"`
}

type session struct {
	Token string      `json:"token"`
	User  sessionUser `json:"user"`
}

type authHandlers struct {
	users  UserStore
	tokens *auth.Tokens
	google GoogleVerifier
	apple  AppleVerifier
	log    *zap.Logger
}

// startSession issues a token, sets the "t" cookie and writes the session body.
func (h authHandlers) startSession(w http.ResponseWriter, u *store.User) {
	token, err := h.tokens.Issue(u.PublicID())
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		failMsg(w, http.StatusInternalServerError, "could not sign in")
		return
	}

	cookie := &http.Cookie{Name: sessionCookie, Value: token, Path: "/"}
	if ttl := h.tokens.TTL(); ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, cookie)

	su := sessionUser{ID: u.ID, Name: u.Name, Email: u.Email}
	if u.AccessToken != nil {
		su.AccessToken = *u.AccessToken
	}
	success(w, http.StatusOK, session{Token: token, User: su})
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
}

func (h authHandlers) signin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		failMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.FindByEmail(r.Context(), body.Email)
	if errors.Is(err, store.ErrNotFound) {
		failMsg(w, http.StatusUnauthorized, fmt.Sprintf("No user exists with the email %s", body.Email))
		return
	}
	if err != nil {
		failure(w, http.StatusUnauthorized, err)
		return
	}
	if err := auth.CheckPassword(u.HashedPassword, body.Password); err != nil {
		failure(w, http.StatusUnauthorized, err)
		return
	}
	h.startSession(w, u)
}

func (h authHandlers) signout(w http.ResponseWriter, r *http.Request) {
	accessToken := chi.URLParam(r, "accessToken")
	clearSession(w)
	if accessToken == "" {
		success(w, http.StatusOK, "Signed out")
		return
	}

	u, err := h.users.ClearAccessToken(r.Context(), accessToken)
	if err != nil {
		h.log.Debug("signout access token", zap.Error(err))
		failure(w, http.StatusOK, err)
		return
	}
	success(w, http.StatusOK, sessionUser{ID: u.ID, Name: u.Name, Email: u.Email})
}

func (h authHandlers) loginGoogle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	}
	if err := decodeBody(w, r, &body); err != nil || body.Token == "" {
		failMsg(w, http.StatusBadRequest, "token is required")
		return
	}

	id, err := h.google.Verify(r.Context(), chi.URLParam(r, "type"), body.Token)
	if err != nil {
		h.log.Debug("google login", zap.Error(err))
		failure(w, http.StatusUnauthorized, err)
		return
	}

	in := store.User{Name: id.Name, Email: id.Email, OAuthToken: id.Subject}
	if body.AccessToken != "" {
		in.AccessToken = &body.AccessToken
	}
	u, err := h.users.UpsertOAuth(r.Context(), in)
	if err != nil {
		failure(w, http.StatusUnauthorized, err)
		return
	}
	h.startSession(w, u)
}

func (h authHandlers) loginApple(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := decodeBody(w, r, &body); err != nil || body.Code == "" {
		failMsg(w, http.StatusBadRequest, "code is required")
		return
	}

	id, err := h.apple.Verify(r.Context(), body.Code, body.Name)
	if err != nil {
		h.log.Debug("apple login", zap.Error(err))
		failure(w, http.StatusUnauthorized, err)
		return
	}

	u, err := h.users.UpsertOAuth(r.Context(), store.User{Name: id.Name, Email: id.Email, OAuthToken: id.Subject})
	if err != nil {
		failure(w, http.StatusUnauthorized, err)
		return
	}
	h.startSession(w, u)
}
