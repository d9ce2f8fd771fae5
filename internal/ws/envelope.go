// Package ws implements the real-time messaging transport: the hub owning
// the connection and room registries, the per-connection session handler,
// and the envelope codec exchanged over the socket.
//
// Every frame in both directions is a JSON envelope:
//
//	{ "type": "...", "payload": { ... } }
//
// This file defines the envelope types, their payload shapes, and the error
// codes surfaced to clients.
package ws

import "encoding/json"

// Inbound envelope types.
const (
	TypeAuthenticate     = "authenticate" // compatibility no-op once authenticated
	TypeJoinConversation = "join_conversation"
	TypeSendMessage      = "send_message"
)

// Outbound envelope types.
const (
	TypeConnectionEstablished = "connection_established"
	TypeAuthSuccess           = "authentication_success"
	TypeOnlineUsersList       = "online_users_list"
	TypeUserOnline            = "user_online"
	TypeUserOffline           = "user_offline"
	TypeUserJoined            = "user_joined"
	TypeUserLeft              = "user_left"
	TypeMessagesLoaded        = "messages_loaded"
	TypeNewMessage            = "new_message"
	TypeMessageSent           = "message_sent"
	TypeError                 = "error"
)

// Error codes carried by error envelopes. The taxonomy is closed; anything
// unexpected collapses to CodeInternal without leaking detail to the client.
const (
	CodeUnauthenticated = 4001 // not authenticated / auth failed
	CodeAccessDenied    = 4003 // not a participant of the conversation
	CodeNotFound        = 4004 // conversation not found
	CodeUnknownType     = 4006 // unknown envelope type
	CodeMalformed       = 4007 // malformed envelope
	CodeInternal        = 4500 // internal failure while joining or sending
)

// Envelope is the unit exchanged over the persistent channel. Payload stays
// raw on the inbound path so each handler decodes its own shape.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound builds an envelope with a marshalled payload. A payload that
// fails to marshal is a programming error; the envelope is sent without one
// rather than dropping the frame.
func Outbound(typ string, payload any) Envelope {
	env := Envelope{Type: typ}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			env.Payload = raw
		}
	}
	return env
}

// JoinConversationPayload is the inbound payload of join_conversation.
type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// SendMessagePayload is the inbound payload of send_message.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	ContentType    string `json:"contentType,omitempty"`
	ReplyToID      *string `json:"replyToId,omitempty"`
}

// PresenceUser is one entry of the global presence list.
type PresenceUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OnlineUsersPayload is the payload of online_users_list.
type OnlineUsersPayload struct {
	Users []PresenceUser `json:"users"`
}

// RoomEventPayload is the payload of user_joined / user_left.
type RoomEventPayload struct {
	Email string `json:"email"`
}

// MessagesLoadedPayload is the catch-up page delivered after a room join.
type MessagesLoadedPayload struct {
	ConversationID string `json:"conversationId"`
	Messages       any    `json:"messages"`
}

// ErrorPayload is the payload of error envelopes.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
