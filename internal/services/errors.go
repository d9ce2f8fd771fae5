// Package services defines the business logic of the messaging core. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; their
// translation into wire envelopes (error codes 4001, 4003, ...) is performed
// at the connection-handler layer.
package services

import "errors"

var (
	// ErrUnauthenticated indicates that no credential slot resolved to a
	// valid principal. Resolution is total: this is the only failure the
	// resolver ever reports.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConversationNotFound indicates that the requested conversation
	// does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNotParticipant is returned when a principal attempts to join or
	// send into a conversation it is not a member of.
	ErrNotParticipant = errors.New("not a participant of this conversation")

	// ErrConversationNotActive is returned when a non-system sender tries
	// to create a message against an archived or closed conversation.
	ErrConversationNotActive = errors.New("conversation is not active")

	// ErrEmptyMessage is returned when a send carries no body.
	ErrEmptyMessage = errors.New("message body is empty")

	// ErrMessageTooLong is returned when a message body exceeds the
	// configured maximum length.
	ErrMessageTooLong = errors.New("message body too long")
)
