// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model and its read receipts.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

// CreateMessage inserts a new message row together with its attachments.
// Attachment IDs and MessageID links are filled in here so callers only
// provide file metadata.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	for i := range m.Attachments {
		if m.Attachments[i].ID == "" {
			m.Attachments[i].ID = uuid.NewString()
		}
		m.Attachments[i].MessageID = m.ID
	}
	return db.WithContext(ctx).Create(m).Error
}

// ListRecentMessages returns the newest page of messages for a conversation,
// newest first, with attachments and read receipts preloaded. A non-zero
// before cursor restricts the page to messages created strictly earlier,
// which is how clients walk further back in history.
func ListRecentMessages(ctx context.Context, db *gorm.DB, conversationID string, limit int, before *time.Time) ([]domain.Message, error) {
	var out []domain.Message
	q := db.WithContext(ctx).
		Preload("Attachments").
		Preload("ReadBy").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC")
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, conversationID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conversationID).
		Scan(&total).Error
	return total, err
}

// UnreadMessageIDs returns the IDs of messages in the conversation that
// readerID has not yet acknowledged. Messages authored by the reader are
// excluded; a sender never acknowledges their own message.
func UnreadMessageIDs(ctx context.Context, db *gorm.DB, conversationID, readerID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, readerID).
		Where("id NOT IN (?)",
			db.Model(&domain.ReadReceipt{}).Select("message_id").Where("reader_id = ?", readerID),
		).
		Pluck("id", &ids).Error
	return ids, err
}

// CreateReadReceipts inserts one receipt per message ID for readerID. The
// unique (message_id, reader_id) index means concurrent markers can race;
// OnConflict DoNothing keeps the operation idempotent under that race.
func CreateReadReceipts(ctx context.Context, db *gorm.DB, messageIDs []string, readerID string, at time.Time) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	receipts := make([]domain.ReadReceipt, 0, len(messageIDs))
	for _, id := range messageIDs {
		receipts = append(receipts, domain.ReadReceipt{
			ID:        uuid.NewString(),
			MessageID: id,
			ReaderID:  readerID,
			ReadAt:    at,
		})
	}
	res := db.WithContext(ctx).
		Exec(buildReceiptInsert(len(receipts)), receiptArgs(receipts)...)
	return res.RowsAffected, res.Error
}

// buildReceiptInsert renders a multi-row INSERT OR IGNORE for receipts.
// GORM's clause.OnConflict works too, but the raw form keeps RowsAffected
// meaningful across drivers (only genuinely new receipts are counted).
func buildReceiptInsert(n int) string {
	sql := "INSERT OR IGNORE INTO message_read_receipts (id, message_id, reader_id, read_at) VALUES "
	for i := 0; i < n; i++ {
		if i > 0 {
			sql += ", "
		}
		sql += "(?, ?, ?, ?)"
	}
	return sql
}

func receiptArgs(receipts []domain.ReadReceipt) []any {
	args := make([]any, 0, len(receipts)*4)
	for _, r := range receipts {
		args = append(args, r.ID, r.MessageID, r.ReaderID, r.ReadAt)
	}
	return args
}

// GetMessage fetches a message by ID with attachments preloaded.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Preload("Attachments").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
