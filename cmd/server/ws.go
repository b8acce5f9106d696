package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/slides/internal/auth"
	"github.com/inamate/slides/internal/collab"
)

type membershipChecker interface {
	CheckMembership(ctx context.Context, deckID, userID string) error
}

type wsHandler struct {
	hub     *collab.Hub
	auth    *auth.Service
	members membershipChecker
	origins []string
	logger  *slog.Logger
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deckID := mux.Vars(r)["deckId"]

	userID, displayName, status, msg := h.identify(r, deckID)
	if status != 0 {
		http.Error(w, msg, status)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(h.hub, conn, userID, displayName, deckID, uuid.NewString())
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// identify resolves the connecting user. The playground deck accepts
// anonymous users; every other deck needs a token for a member.
func (h *wsHandler) identify(r *http.Request, deckID string) (userID, displayName string, status int, msg string) {
	if deckID == playgroundDeckID {
		return "anon-" + uuid.NewString()[:8], "Anonymous", 0, ""
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		return "", "", http.StatusUnauthorized, "missing token"
	}

	userID, err := h.auth.ValidateToken(token)
	if err != nil {
		return "", "", http.StatusUnauthorized, "invalid token"
	}

	if err := h.members.CheckMembership(r.Context(), deckID, userID); err != nil {
		return "", "", http.StatusForbidden, "not a deck member"
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("load websocket user", "user", userID, "error", err)
		return "", "", http.StatusInternalServerError, "user not found"
	}
	return userID, user.DisplayName, 0, ""
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
