package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/persist"
	"github.com/inamate/slides/internal/store"
)

// Loader returns the latest document for a deck.
type Loader func(ctx context.Context, deckID string) (document.Document, error)

// SaverFactory returns the Saver a room's autosaver writes through.
type SaverFactory func(deckID string) persist.Saver

type Room struct {
	deckID   string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *DocumentState
	cancel   context.CancelFunc
	saver    *persist.Autosaver
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // deckID -> room
	register   chan *Client
	unregister chan *Client
	load       Loader
	newSaver   SaverFactory
	logger     *slog.Logger
	now        func() time.Time
	done       chan struct{}
}

func NewHub(load Loader, newSaver SaverFactory, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		load:       load,
		newSaver:   newSaver,
		logger:     logger,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Run serves registrations until ctx is cancelled, then closes every room and
// waits for pending snapshots to be written.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			close(h.done)
			h.shutdown()
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) openRoom(deckID string) (*Room, error) {
	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	doc, err := h.load(loadCtx, deckID)
	switch {
	case err == nil:
	case errors.Is(err, persist.ErrNotFound):
		doc = document.NewDefault()
		doc.ID = deckID
	case document.IsCorrupt(err):
		// Read failures still refuse the room so a stored deck is never
		// overwritten while the database is unreachable.
		h.logger.Warn("discarding unusable snapshot", "deck", deckID, "error", err)
		doc = document.NewDefault()
		doc.ID = deckID
	default:
		return nil, err
	}

	roomCtx, stop := context.WithCancel(context.Background())
	room := &Room{
		deckID:   deckID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		cancel:   stop,
	}
	opts := []store.Option{store.WithLogger(h.logger.With("deck", deckID))}
	if h.newSaver != nil {
		room.saver = persist.NewAutosaver(h.newSaver(deckID), h.logger.With("deck", deckID))
		go room.saver.Run(roomCtx)
		opts = append(opts, store.WithPersister(room.saver))
	}
	room.state = NewDocumentState(store.New(doc, opts...))
	return room, nil
}

func (h *Hub) closeRoom(room *Room) {
	room.cancel()
	if room.saver != nil {
		<-room.saver.Done()
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DeckID]
	if !ok {
		var err error
		room, err = h.openRoom(client.DeckID)
		if err != nil {
			h.mu.Unlock()
			h.logger.Error("open room", "deck", client.DeckID, "error", err)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "deck unavailable"}))
			client.closeSend()
			return
		}
		h.rooms[client.DeckID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, UserID: client.UserID}))
	h.sendSync(client, room)

	client.Send(room.presence.StateMessage())

	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.DeckID, joinMsg, client.ClientID)

	h.logger.Info("client joined", "user", client.UserID, "deck", client.DeckID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DeckID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DeckID)
	}
	h.mu.Unlock()

	if empty {
		h.closeRoom(room)
		h.logger.Info("room closed", "deck", client.DeckID)
		return
	}

	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.DeckID, leaveMsg, "")

	h.logger.Info("client left", "user", client.UserID, "deck", client.DeckID)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, room := range rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		h.closeRoom(room)
	}
	h.logger.Info("hub stopped", "rooms", len(rooms))
}

func (h *Hub) room(deckID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[deckID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeDocRequest:
		if room, ok := h.room(sender.DeckID); ok {
			h.sendSync(sender, room)
		}
	default:
		h.logger.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) sendSync(client *Client, room *Room) {
	doc, seq := room.state.Snapshot()
	data, err := document.Encode(doc)
	if err != nil {
		h.logger.Error("encode document for sync", "deck", room.deckID, "error", err)
		return
	}
	msg := newMessage(TypeDocSync, DocSyncPayload{Document: data, ServerSeq: seq})
	msg.Seq = seq
	client.Send(msg)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		h.logger.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{Reason: "invalid payload"}))
		return
	}
	room, ok := h.room(sender.DeckID)
	if !ok {
		return
	}

	// Ack and broadcast under the room's state lock so peers receive
	// operations in server sequence order.
	room.state.mu.Lock()
	defer room.state.mu.Unlock()

	applied, seq, err := room.state.applyLocked(submit.Operation)

	if err != nil {
		h.logger.Warn("rejected operation", "op", submit.Operation.Type, "user", sender.UserID, "error", err)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: submit.Operation.ID,
			Reason:      err.Error(),
		}))
		return
	}
	if applied.Type == store.OpElementRemove {
		room.presence.PruneElement(applied.ElementID)
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     applied.ID,
		ServerSeq:       seq,
		ServerTimestamp: h.now().UnixMilli(),
		Operation:       applied,
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: applied,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.DeckID, out, sender.ClientID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		h.logger.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.room(sender.DeckID)
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.DeckID, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(deckID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[deckID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
