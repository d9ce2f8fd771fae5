package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

// captureNotifier records hand-offs and optionally fails them.
type captureNotifier struct {
	calls []Notification
	err   error
}

func (c *captureNotifier) Notify(_ context.Context, n Notification) error {
	c.calls = append(c.calls, n)
	return c.err
}

func newConvSvcDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("conv_svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(
		&domain.Conversation{}, &domain.Participant{},
		&domain.Message{}, &domain.Attachment{}, &domain.ReadReceipt{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedTwoPartyConversation creates an active conversation between cand-1 and
// emp-1 and returns its ID.
func seedTwoPartyConversation(t *testing.T, db *gorm.DB) string {
	t.Helper()
	conv := domain.Conversation{
		ID:     "c1",
		Status: domain.ConversationActive,
		Participants: []domain.Participant{
			{ID: "p1", Kind: string(domain.KindCandidate), RefID: "cand-1", Email: "c@example.com", Name: "Casey"},
			{ID: "p2", Kind: string(domain.KindEmployer), RefID: "emp-1", Email: "e@example.com", Name: "Erin"},
		},
	}
	if err := db.Create(&conv).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv.ID
}

func newConvTestService(db *gorm.DB, n Notifier) *ConversationService {
	return NewConversationService(db, n, zerolog.Nop())
}

func TestCreateMessage_PersistsAndNotifies(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	notifier := &captureNotifier{}
	svc := newConvTestService(db, notifier)

	msg, err := svc.CreateMessage(context.Background(), id, NewMessage{
		SenderKind:  domain.KindCandidate,
		SenderID:    "cand-1",
		SenderEmail: "c@example.com",
		Body:        "  hello there  ",
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.ID == "" || msg.Body != "hello there" || msg.ContentType != domain.ContentText {
		t.Fatalf("unexpected message: %+v", msg)
	}

	// Last-message pointer rides along in the same transaction.
	var conv domain.Conversation
	if err := db.First(&conv, "id = ?", id).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if conv.LastMessageID == nil || *conv.LastMessageID != msg.ID {
		t.Fatalf("last_message_id not updated: %v", conv.LastMessageID)
	}

	// Only the other participant is notified.
	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	n := notifier.calls[0]
	if n.RecipientKind != RecipientEmployer || n.RecipientID != "emp-1" {
		t.Fatalf("unexpected recipient: %+v", n)
	}
	if n.Data["conversation_id"] != id || n.Data["message_id"] != msg.ID {
		t.Fatalf("unexpected notification data: %+v", n.Data)
	}
}

func TestCreateMessage_EmptyBody(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})

	_, err := svc.CreateMessage(context.Background(), id, NewMessage{
		SenderKind: domain.KindCandidate, SenderID: "cand-1", Body: "   \n\t ",
	})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestCreateMessage_TooLong(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})
	svc.MaxBodyRunes = 10

	_, err := svc.CreateMessage(context.Background(), id, NewMessage{
		SenderKind: domain.KindCandidate, SenderID: "cand-1", Body: strings.Repeat("a", 11),
	})
	if !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestCreateMessage_UnknownConversation(t *testing.T) {
	db := newConvSvcDB(t)
	svc := newConvTestService(db, NopNotifier{})

	_, err := svc.CreateMessage(context.Background(), "missing", NewMessage{
		SenderKind: domain.KindCandidate, SenderID: "cand-1", Body: "hi",
	})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestCreateMessage_NotActiveRejectsHumans(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})

	if err := svc.Archive(context.Background(), id, "position filled"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	_, err := svc.CreateMessage(context.Background(), id, NewMessage{
		SenderKind: domain.KindCandidate, SenderID: "cand-1", Body: "hello?",
	})
	if !errors.Is(err, ErrConversationNotActive) {
		t.Fatalf("expected ErrConversationNotActive, got %v", err)
	}

	// SYSTEM messages still land in non-active conversations.
	if _, err := svc.CreateMessage(context.Background(), id, NewMessage{
		SenderKind: domain.SenderSystem, SenderID: "system", Body: "note",
	}); err != nil {
		t.Fatalf("system message into archived conversation: %v", err)
	}
}

func TestCreateMessage_NotifierFailureIsSwallowed(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	notifier := &captureNotifier{err: errors.New("downstream down")}
	svc := newConvTestService(db, notifier)

	msg, err := svc.CreateMessage(context.Background(), id, NewMessage{
		SenderKind: domain.KindEmployer, SenderID: "emp-1", Body: "offer attached",
	})
	if err != nil {
		t.Fatalf("CreateMessage must not surface notifier errors: %v", err)
	}
	if msg == nil || len(notifier.calls) != 1 {
		t.Fatalf("hand-off not attempted: msg=%v calls=%d", msg, len(notifier.calls))
	}
}

func TestMarkRead_CountsOnlyNewAndSkipsOwn(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})

	// Two from the employer, one from the candidate themselves.
	for i, in := range []NewMessage{
		{SenderKind: domain.KindEmployer, SenderID: "emp-1", Body: "one"},
		{SenderKind: domain.KindEmployer, SenderID: "emp-1", Body: "two"},
		{SenderKind: domain.KindCandidate, SenderID: "cand-1", Body: "three"},
	} {
		if _, err := svc.CreateMessage(context.Background(), id, in); err != nil {
			t.Fatalf("seed message %d: %v", i, err)
		}
	}

	n, err := svc.MarkRead(context.Background(), id, "cand-1")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 newly marked, got %d", n)
	}

	// Re-marking is a no-op.
	n, err = svc.MarkRead(context.Background(), id, "cand-1")
	if err != nil || n != 0 {
		t.Fatalf("expected idempotent re-mark, got n=%d err=%v", n, err)
	}
}

func TestListRecentMessages_DefaultLimit(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})
	svc.CatchUpLimit = 2

	for _, body := range []string{"one", "two", "three"} {
		if _, err := svc.CreateMessage(context.Background(), id, NewMessage{
			SenderKind: domain.KindEmployer, SenderID: "emp-1", Body: body,
		}); err != nil {
			t.Fatalf("seed message: %v", err)
		}
		time.Sleep(2 * time.Millisecond) // distinct created_at ordering
	}

	msgs, err := svc.ListRecentMessages(context.Background(), id, 0, nil)
	if err != nil {
		t.Fatalf("ListRecentMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "three" {
		t.Fatalf("expected newest 2 messages, got %+v", msgs)
	}
}

func TestArchive_AppendsAuditMessage(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})

	if err := svc.Archive(context.Background(), id, "position filled"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	var conv domain.Conversation
	if err := db.First(&conv, "id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if conv.Status != domain.ConversationArchived {
		t.Fatalf("status not archived: %q", conv.Status)
	}

	var audit domain.Message
	if err := db.First(&audit, "conversation_id = ? AND sender_kind = ?", id, string(domain.SenderSystem)).Error; err != nil {
		t.Fatalf("audit message missing: %v", err)
	}
	if audit.Body != "Conversation archived: position filled" {
		t.Fatalf("unexpected audit body: %q", audit.Body)
	}
}

func TestClose_OnTerminalConversation(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})

	if err := svc.Archive(context.Background(), id, ""); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	err := svc.Close(context.Background(), id, "cleanup")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for terminal conversation, got %v", err)
	}
}

func TestIsParticipant(t *testing.T) {
	db := newConvSvcDB(t)
	id := seedTwoPartyConversation(t, db)
	svc := newConvTestService(db, NopNotifier{})

	conv, err := svc.GetWithParticipants(context.Background(), id)
	if err != nil {
		t.Fatalf("GetWithParticipants: %v", err)
	}

	if !svc.IsParticipant(conv, domain.ConnIdentity{Kind: domain.KindCandidate, ID: "cand-1"}) {
		t.Fatal("cand-1 should be a participant")
	}
	if svc.IsParticipant(conv, domain.ConnIdentity{Kind: domain.KindEmployer, ID: "cand-1"}) {
		t.Fatal("kind mismatch must not match")
	}
	if svc.IsParticipant(conv, domain.ConnIdentity{Kind: domain.KindCandidate, ID: "cand-2"}) {
		t.Fatal("unknown id must not match")
	}
}
