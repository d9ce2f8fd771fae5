// Package ws – per-connection session handler.
//
// Each physical connection is driven by exactly two goroutines: a read pump
// (which also runs the envelope handlers, preserving inbound order) and a
// write pump owning every socket write, including the liveness pings. All
// connection-private state (principal, current room) belongs to the read
// goroutine; the hub registries are the only shared state it touches.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/talentwire/go-messaging-core/internal/domain"
	"github.com/talentwire/go-messaging-core/internal/services"
)

const (
	// writeWait bounds a single socket write, pings included.
	writeWait = 10 * time.Second

	// maxInboundBytes caps a single inbound frame.
	maxInboundBytes = 64 << 10

	// sendQueueSize is the per-connection outbound buffer. A slow consumer
	// that fills it has envelopes dropped rather than stalling fan-out.
	sendQueueSize = 64
)

// Authenticator resolves handshake credentials into a principal.
type Authenticator interface {
	Resolve(ctx context.Context, creds services.Credentials) (*domain.Principal, error)
}

// ConversationGateway is the slice of the conversation service the session
// handler needs.
type ConversationGateway interface {
	GetWithParticipants(ctx context.Context, id string) (*domain.Conversation, error)
	IsParticipant(c *domain.Conversation, identity domain.ConnIdentity) bool
	ListRecentMessages(ctx context.Context, conversationID string, limit int, before *time.Time) ([]domain.Message, error)
	CreateMessage(ctx context.Context, conversationID string, in services.NewMessage) (*domain.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
}

// Client orchestrates one physical connection end to end:
// authenticate → register → heartbeat + dispatch loops → cleanup.
type Client struct {
	hub     *Hub
	gateway ConversationGateway
	auth    Authenticator

	conn  *websocket.Conn
	creds services.Credentials
	log   zerolog.Logger

	pingInterval time.Duration
	pongWait     time.Duration

	send chan Envelope
	done chan struct{}
	once sync.Once

	// Owned by the read goroutine after authentication.
	principal     *domain.Principal
	identity      domain.ConnIdentity
	authenticated bool
	room          string
}

// NewClient wraps an upgraded connection. Run must be called to start the
// session.
func NewClient(hub *Hub, gateway ConversationGateway, auth Authenticator, conn *websocket.Conn, creds services.Credentials, pingInterval time.Duration, log zerolog.Logger) *Client {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		hub:          hub,
		gateway:      gateway,
		auth:         auth,
		conn:         conn,
		creds:        creds,
		log:          log,
		pingInterval: pingInterval,
		pongWait:     pingInterval * 2,
		send:         make(chan Envelope, sendQueueSize),
		done:         make(chan struct{}),
	}
}

// Run drives the session until the connection closes. It blocks; the caller
// dedicates a goroutine per connection.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	defer c.cleanup()

	// Greet immediately; authentication is derived from the handshake
	// cookies, no in-band handshake message is required.
	c.enqueue(Outbound(TypeConnectionEstablished, map[string]string{
		"message": "connection established, please authenticate",
	}))

	p, err := c.auth.Resolve(ctx, c.creds)
	if err != nil {
		c.sendError("authentication failed", CodeUnauthenticated)
		c.shutdown()
		// Let the write pump flush the error envelope; the read loop
		// below returns on the closed connection.
		c.discardUntilClosed()
		return
	}

	c.principal = p
	c.identity = p.Identity()
	c.authenticated = true
	c.log = c.log.With().
		Str("principal_kind", string(p.Kind)).
		Str("principal_id", p.ID).
		Logger()

	c.hub.Register(c)
	c.enqueue(Outbound(TypeAuthSuccess, map[string]string{
		"email": p.Email,
		"name":  p.Name,
	}))
	c.enqueue(Outbound(TypeOnlineUsersList, OnlineUsersPayload{Users: c.hub.OnlineUsers()}))
	c.hub.BroadcastAll(&c.identity, Outbound(TypeUserOnline, PresenceUser{Email: p.Email, Name: p.Name}))

	c.readPump(ctx)
}

// readPump processes inbound envelopes in arrival order until the socket
// closes or errors.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("read loop ended")
			}
			return
		}
		c.handleEnvelope(ctx, raw)
	}
}

// handleEnvelope dispatches one inbound frame.
func (c *Client) handleEnvelope(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("malformed envelope", CodeMalformed)
		return
	}
	wsMessagesIn.WithLabelValues(env.Type).Inc()

	if !c.authenticated && env.Type != TypeAuthenticate {
		c.sendError("not authenticated", CodeUnauthenticated)
		return
	}

	switch env.Type {
	case TypeAuthenticate:
		// Compatibility no-op: authentication already happened from the
		// handshake cookies.
	case TypeJoinConversation:
		c.handleJoin(ctx, env.Payload)
	case TypeSendMessage:
		c.handleSend(ctx, env.Payload)
	default:
		c.sendError("unknown envelope type", CodeUnknownType)
	}
}

// handleJoin implements join_conversation: membership check, atomic room
// switch, catch-up page, read marking, and the user_joined room event.
func (c *Client) handleJoin(ctx context.Context, payload json.RawMessage) {
	var req JoinConversationPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID == "" {
		c.sendError("malformed envelope", CodeMalformed)
		return
	}

	conv, ok := c.fetchAuthorized(ctx, req.ConversationID)
	if !ok {
		return
	}

	previous := c.room
	c.hub.JoinRoom(conv.ID, c.identity)
	c.room = conv.ID
	if previous != "" && previous != conv.ID {
		c.hub.BroadcastRoom(previous, &c.identity, Outbound(TypeUserLeft, RoomEventPayload{Email: c.principal.Email}))
	}

	msgs, err := c.gateway.ListRecentMessages(ctx, conv.ID, 0, nil)
	if err != nil {
		c.log.Error().Err(err).Str("conversation_id", conv.ID).Msg("catch-up pull failed")
		c.sendError("failed to join conversation", CodeInternal)
		return
	}
	c.enqueue(Outbound(TypeMessagesLoaded, MessagesLoadedPayload{
		ConversationID: conv.ID,
		Messages:       msgs,
	}))

	if _, err := c.gateway.MarkRead(ctx, conv.ID, c.principal.ID); err != nil {
		// Catch-up already went out; losing the receipts is recoverable
		// on the next join.
		c.log.Warn().Err(err).Str("conversation_id", conv.ID).Msg("mark read failed")
	}

	c.hub.BroadcastRoom(conv.ID, &c.identity, Outbound(TypeUserJoined, RoomEventPayload{Email: c.principal.Email}))
}

// handleSend implements send_message: membership check, persistence through
// the gateway, room broadcast excluding the sender, and the distinguished
// message_sent acknowledgment.
func (c *Client) handleSend(ctx context.Context, payload json.RawMessage) {
	var req SendMessagePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID == "" {
		c.sendError("malformed envelope", CodeMalformed)
		return
	}

	conv, ok := c.fetchAuthorized(ctx, req.ConversationID)
	if !ok {
		return
	}

	msg, err := c.gateway.CreateMessage(ctx, conv.ID, services.NewMessage{
		SenderKind:  c.principal.Kind,
		SenderID:    c.principal.ID,
		SenderEmail: c.principal.Email,
		ContentType: req.ContentType,
		Body:        req.Content,
		ReplyToID:   req.ReplyToID,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrConversationNotActive):
		c.sendError("conversation is not active", CodeInternal)
		return
	case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
		c.sendError(err.Error(), CodeMalformed)
		return
	default:
		c.log.Error().Err(err).Str("conversation_id", conv.ID).Msg("message create failed")
		c.sendError("failed to send message", CodeInternal)
		return
	}

	c.hub.BroadcastRoom(conv.ID, &c.identity, Outbound(TypeNewMessage, msg))
	c.enqueue(Outbound(TypeMessageSent, msg))
}

// fetchAuthorized loads the conversation and enforces participant
// membership, emitting the appropriate error envelope on failure.
func (c *Client) fetchAuthorized(ctx context.Context, conversationID string) (*domain.Conversation, bool) {
	conv, err := c.gateway.GetWithParticipants(ctx, conversationID)
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		c.sendError("conversation not found", CodeNotFound)
		return nil, false
	case err != nil:
		c.log.Error().Err(err).Str("conversation_id", conversationID).Msg("conversation fetch failed")
		c.sendError("internal error", CodeInternal)
		return nil, false
	}
	if !c.gateway.IsParticipant(conv, c.identity) {
		c.sendError("access denied to conversation", CodeAccessDenied)
		return nil, false
	}
	return conv, true
}

// writePump owns every write on the socket: queued envelopes and the
// recurring liveness ping. A failed write of either kind tears the
// connection down.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.shutdown()
				return
			}
			wsMessagesOut.WithLabelValues(env.Type).Inc()

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}

		case <-c.done:
			// Flush whatever is already queued so terminal error
			// envelopes reach the client, then say goodbye.
			for {
				select {
				case env := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteJSON(env); err != nil {
						return
					}
					wsMessagesOut.WithLabelValues(env.Type).Inc()
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// enqueue queues an envelope for delivery. Never blocks: a full queue or a
// finished session drops the envelope and counts the failure.
func (c *Client) enqueue(env Envelope) {
	select {
	case <-c.done:
		wsSendFailures.Inc()
		return
	default:
	}
	select {
	case c.send <- env:
	default:
		wsSendFailures.Inc()
	}
}

// sendError emits a structured error envelope.
func (c *Client) sendError(message string, code int) {
	c.enqueue(Outbound(TypeError, ErrorPayload{Message: message, Code: code}))
}

// shutdown signals both pumps to stop. Idempotent.
func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// closeSuperseded force-closes this connection because a newer connection
// registered under the same identity, or the hub is draining.
func (c *Client) closeSuperseded() {
	c.shutdown()
	_ = c.conn.Close()
}

// discardUntilClosed consumes inbound frames until the peer notices the
// close, keeping the TCP buffers drained.
func (c *Client) discardUntilClosed() {
	_ = c.conn.SetReadDeadline(time.Now().Add(writeWait))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// cleanup runs unconditionally when Run returns: room membership is
// released (with user_left fan-out), the registry entry is removed, and
// presence-offline goes out globally. A superseded connection skips all of
// it — the successor owns the identity by then.
func (c *Client) cleanup() {
	c.shutdown()

	if c.authenticated {
		if removed := c.hub.Unregister(c); removed {
			if c.room != "" {
				c.hub.LeaveRoom(c.room, c.identity)
				c.hub.BroadcastRoom(c.room, &c.identity, Outbound(TypeUserLeft, RoomEventPayload{Email: c.principal.Email}))
			}
			c.hub.BroadcastAll(&c.identity, Outbound(TypeUserOffline, PresenceUser{
				Email: c.principal.Email,
				Name:  c.principal.Name,
			}))
		}
	}
	_ = c.conn.Close()
}
