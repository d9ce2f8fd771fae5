// Package services – ConversationService
//
// This file implements the conversation gateway: the only component that
// touches the persisted message store. It exposes membership checks, message
// creation with side-effect propagation (last-message pointer, notification
// hand-off), read-receipt accumulation, catch-up pages, and lifecycle
// transitions (archive/close).
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// conversation and sender identifiers.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talentwire/go-messaging-core/internal/domain"
	"github.com/talentwire/go-messaging-core/internal/repo"
)

// NewMessage carries the caller-supplied parts of a message to be created.
type NewMessage struct {
	SenderKind  domain.PrincipalKind
	SenderID    string
	SenderEmail string
	ContentType string
	Body        string
	ReplyToID   *string
	Attachments []domain.Attachment
}

// ConversationService coordinates conversation persistence and the
// notification hand-off.
type ConversationService struct {
	DB       *gorm.DB
	Notifier Notifier
	Log      zerolog.Logger

	// MaxBodyRunes caps message bodies; 0 disables the check.
	MaxBodyRunes int
	// CatchUpLimit is the default page size for recent-message pulls.
	CatchUpLimit int
}

// NewConversationService constructs a ConversationService with defaults.
func NewConversationService(db *gorm.DB, n Notifier, log zerolog.Logger) *ConversationService {
	return &ConversationService{
		DB:           db,
		Notifier:     n,
		Log:          log,
		MaxBodyRunes: 4000,
		CatchUpLimit: 50,
	}
}

// GetWithParticipants fetches a conversation and its participant list, or
// ErrConversationNotFound.
func (s *ConversationService) GetWithParticipants(ctx context.Context, id string) (*domain.Conversation, error) {
	c, err := repo.GetConversation(ctx, s.DB, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return c, nil
}

// IsParticipant reports whether identity is a member of the conversation.
// Pure membership check over the preloaded participant list; must be
// evaluated before any join or send is honored.
func (s *ConversationService) IsParticipant(c *domain.Conversation, identity domain.ConnIdentity) bool {
	for _, p := range c.Participants {
		if p.Kind == string(identity.Kind) && p.RefID == identity.ID {
			return true
		}
	}
	return false
}

// ListRecentMessages returns a newest-first catch-up page. A zero limit
// falls back to the configured default; a non-nil before cursor pages
// further back in history.
func (s *ConversationService) ListRecentMessages(ctx context.Context, conversationID string, limit int, before *time.Time) ([]domain.Message, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "ListRecentMessages",
		trace.WithAttributes(attribute.String("conversation.id", conversationID)),
	)
	defer span.End()

	if limit <= 0 {
		limit = s.CatchUpLimit
	}
	return repo.ListRecentMessages(ctx, s.DB, conversationID, limit, before)
}

// CreateMessage validates and persists a message, updating the
// conversation's last-message pointer in the same transaction and handing
// off notifications to the other participants afterwards.
//
// Contract: fails with ErrConversationNotActive when the conversation is
// archived or closed and the sender is not SYSTEM. The notification hand-off
// runs post-commit, is best-effort, and never blocks or fails the send.
func (s *ConversationService) CreateMessage(ctx context.Context, conversationID string, in NewMessage) (*domain.Message, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "CreateMessage",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("sender.kind", string(in.SenderKind)),
			attribute.String("sender.id", in.SenderID),
		),
	)
	defer span.End()

	in.Body = strings.TrimSpace(in.Body)
	if in.Body == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxBodyRunes > 0 && utf8.RuneCountInString(in.Body) > s.MaxBodyRunes {
		return nil, ErrMessageTooLong
	}
	if in.ContentType == "" {
		in.ContentType = domain.ContentText
	}

	conv, err := s.GetWithParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderKind:     string(in.SenderKind),
		SenderID:       in.SenderID,
		SenderEmail:    in.SenderEmail,
		ContentType:    in.ContentType,
		Body:           in.Body,
		ReplyToID:      in.ReplyToID,
		Attachments:    in.Attachments,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check status inside the transaction so a concurrent
		// archive/close cannot slip a human message into a closed
		// conversation.
		var status string
		if err := tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Pluck("status", &status).Error; err != nil {
			return err
		}
		if status != domain.ConversationActive && in.SenderKind != domain.SenderSystem {
			return ErrConversationNotActive
		}
		if err := repo.CreateMessage(ctx, tx, msg); err != nil {
			return err
		}
		return repo.TouchLastMessage(ctx, tx, conversationID, msg.ID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, conv, msg)
	return msg, nil
}

// notifyParticipants hands a new-message notification to every participant
// other than the sender. System and unknown participant kinds are skipped.
func (s *ConversationService) notifyParticipants(ctx context.Context, conv *domain.Conversation, msg *domain.Message) {
	for _, p := range conv.Participants {
		if p.Kind == msg.SenderKind && p.RefID == msg.SenderID {
			continue
		}
		kind, ok := recipientKind(p.Kind)
		if !ok {
			continue
		}
		dispatchNotification(ctx, s.Notifier, s.Log, Notification{
			RecipientKind: kind,
			RecipientID:   p.RefID,
			Title:         "New message",
			Body:          msg.Body,
			ActionURL:     "/conversations/" + conv.ID,
			Data: map[string]string{
				"conversation_id": conv.ID,
				"message_id":      msg.ID,
			},
		})
	}
}

// recipientKind maps a conversation participant kind onto the notification
// service's recipient taxonomy. Employer-kind participants map to the
// organization-user recipient kind.
func recipientKind(participantKind string) (string, bool) {
	switch domain.PrincipalKind(participantKind) {
	case domain.KindEmployer:
		return RecipientEmployer, true
	case domain.KindCandidate:
		return RecipientCandidate, true
	case domain.KindConsultant:
		return RecipientConsultant, true
	case domain.KindAdmin:
		return RecipientAdmin, true
	default:
		return "", false
	}
}

// MarkRead stamps a read receipt for every message in the conversation that
// readerID has not yet acknowledged and returns the count of messages newly
// marked. Re-invoking with the same reader is a no-op.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "MarkRead",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("reader.id", readerID),
		),
	)
	defer span.End()

	ids, err := repo.UnreadMessageIDs(ctx, s.DB, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return repo.CreateReadReceipts(ctx, s.DB, ids, readerID, time.Now().UTC())
}

// Archive transitions the conversation to ARCHIVED and appends a SYSTEM
// audit message carrying the reason.
func (s *ConversationService) Archive(ctx context.Context, conversationID, reason string) error {
	return s.transition(ctx, conversationID, domain.ConversationArchived, reason)
}

// Close transitions the conversation to CLOSED and appends a SYSTEM audit
// message carrying the reason.
func (s *ConversationService) Close(ctx context.Context, conversationID, reason string) error {
	return s.transition(ctx, conversationID, domain.ConversationClosed, reason)
}

// transition performs the one-way status change, then records the audit
// message. A failed audit append is logged but never rolls back the
// transition.
func (s *ConversationService) transition(ctx context.Context, conversationID, status, reason string) error {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "transition",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("status", status),
		),
	)
	defer span.End()

	if err := repo.UpdateConversationStatus(ctx, s.DB, conversationID, status); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrConversationNotFound
		}
		return err
	}

	body := "Conversation " + status
	if reason = strings.TrimSpace(reason); reason != "" {
		body += ": " + reason
	}
	if _, err := s.CreateMessage(ctx, conversationID, NewMessage{
		SenderKind: domain.SenderSystem,
		SenderID:   "system",
		Body:       body,
	}); err != nil {
		s.Log.Warn().
			Str("conversation_id", conversationID).
			Str("status", status).
			Err(err).
			Msg("audit message append failed")
	}
	return nil
}
