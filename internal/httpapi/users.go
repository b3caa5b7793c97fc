package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/auth"
	"github.com/DoyleJ11/hotseat/internal/store"
)

// UserStore is the persistence the user and auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *store.User) error
	List(ctx context.Context) ([]store.User, error)
	Get(ctx context.Context, id uint) (*store.User, error)
	Update(ctx context.Context, id uint, upd store.UserUpdate) (*store.User, error)
	Delete(ctx context.Context, id uint) error
	FindByEmail(ctx context.Context, email string) (*store.User, error)
	UpsertOAuth(ctx context.Context, u store.User) (*store.User, error)
	ClearAccessToken(ctx context.Context, accessToken string) (*store.User, error)
}

var errBadID = errors.New("invalid user id")

type userBody struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// publicUser is what show returns: no tokens.
type publicUser struct {
	ID      uint   `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created string `json:"created"`
}

func toPublic(u *store.User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Email: u.Email, Created: u.CreatedAt.UTC().Format(time.RFC3339)}
}

func userID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return uint(id), nil
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

type userHandlers struct {
	users UserStore
	log   *zap.Logger
}

func (h userHandlers) create(w http.ResponseWriter, r *http.Request) {
	var body userBody
	if err := decodeBody(w, r, &body); err != nil {
		failMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		failMsg(w, http.StatusBadRequest, "Name is required")
		return
	}
	if body.Email == nil || strings.TrimSpace(*body.Email) == "" {
		failMsg(w, http.StatusBadRequest, "Email is required")
		return
	}
	if body.Password == nil {
		failMsg(w, http.StatusBadRequest, "Password is required")
		return
	}
	hash, err := auth.HashPassword(*body.Password)
	if err != nil {
		failure(w, http.StatusBadRequest, err)
		return
	}

	u := &store.User{Name: strings.TrimSpace(*body.Name), Email: *body.Email, HashedPassword: hash}
	if err := h.users.Create(r.Context(), u); err != nil {
		h.log.Debug("create user", zap.Error(err))
		failure(w, http.StatusBadRequest, err)
		return
	}
	success(w, http.StatusOK, u)
}

func (h userHandlers) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		failure(w, http.StatusBadRequest, err)
		return
	}
	out := make([]publicUser, 0, len(users))
	for i := range users {
		out = append(out, toPublic(&users[i]))
	}
	success(w, http.StatusOK, out)
}

func (h userHandlers) show(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		failure(w, http.StatusBadRequest, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		failure(w, statusFor(err), err)
		return
	}
	success(w, http.StatusOK, toPublic(u))
}

func (h userHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		failure(w, http.StatusBadRequest, err)
		return
	}
	var body userBody
	if err := decodeBody(w, r, &body); err != nil {
		failMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := store.UserUpdate{Name: body.Name, Email: body.Email}
	if body.Password != nil {
		hash, err := auth.HashPassword(*body.Password)
		if err != nil {
			failure(w, http.StatusBadRequest, err)
			return
		}
		upd.HashedPassword = &hash
	}

	u, err := h.users.Update(r.Context(), id, upd)
	if err != nil {
		failure(w, statusFor(err), err)
		return
	}
	success(w, http.StatusOK, u)
}

func (h userHandlers) remove(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		failure(w, http.StatusBadRequest, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		failure(w, statusFor(err), err)
		return
	}
	success(w, http.StatusOK, map[string]uint{"deleted": id})
}
