package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/DoyleJ11/hotseat/internal/hub"
)

const qrSize = 256

type gameHandlers struct {
	hub          *hub.Hub
	clientOrigin string
	log          *zap.Logger
}

// lobbies dumps every lobby. Only mounted in development.
func (h gameHandlers) lobbies(w http.ResponseWriter, r *http.Request) {
	snap, err := hub.Request(r.Context(), h.hub, func(reply chan map[string]game.Lobby) hub.HubMsg {
		return hub.Snapshot{Reply: reply}
	})
	if err != nil {
		failure(w, http.StatusServiceUnavailable, err)
		return
	}
	success(w, http.StatusOK, snap)
}

func (h gameHandlers) playerActive(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "name"), chi.URLParam(r, "id")
	active, err := hub.Request(r.Context(), h.hub, func(reply chan bool) hub.HubMsg {
		return hub.PlayerActive{Name: name, PlayerID: id, Reply: reply}
	})
	if err != nil {
		failure(w, http.StatusServiceUnavailable, err)
		return
	}
	success(w, http.StatusOK, map[string]bool{"active": active})
}

// joinURL is what the lobby QR code points phones at.
func joinURL(origin, lobby string) string {
	return fmt.Sprintf("%s/join/%s", strings.TrimRight(origin, "/"), lobby)
}

func (h gameHandlers) qr(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	players, err := hub.Request(r.Context(), h.hub, func(reply chan []game.Player) hub.HubMsg {
		return hub.GetPlayers{Name: name, Reply: reply}
	})
	if err != nil {
		failure(w, http.StatusServiceUnavailable, err)
		return
	}
	if players == nil {
		failure(w, http.StatusNotFound, game.ErrLobbyNotFound)
		return
	}

	png, err := qrcode.Encode(joinURL(h.clientOrigin, name), qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error("qr encode", zap.String("lobby", name), zap.Error(err))
		failMsg(w, http.StatusInternalServerError, "could not render code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
