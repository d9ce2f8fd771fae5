// Package domain defines the persistence models for conversations, messages,
// and the session records consumed during authentication. These types are
// mapped with GORM and form the core data layer of the messaging service.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Conversation statuses. Transitions are one-way: an ACTIVE conversation may
// become ARCHIVED or CLOSED; both end states are terminal for human-authored
// messages.
const (
	ConversationActive   = "active"
	ConversationArchived = "archived"
	ConversationClosed   = "closed"
)

// Message content types.
const (
	ContentText = "text"
	ContentFile = "file"
)

// Conversation represents a persisted conversation between participants.
// It carries a pointer to its most recent message so conversation lists can
// be rendered without a per-row subquery.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Status: one of active/archived/closed (enforced by DB constraint).
//   - LastMessageID: optional pointer to the newest message.
//   - LastMessageAt: timestamp of the newest message, used for ordering.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Conversation struct {
	ID            string         `json:"id"              gorm:"type:char(36);primaryKey"`
	Status        string         `json:"status"          gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','archived','closed')"`
	LastMessageID *string        `json:"last_message_id,omitempty" gorm:"type:char(36)"`
	LastMessageAt *time.Time     `json:"last_message_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"               gorm:"index"`

	// Participants is the membership set of this conversation.
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Participant is one member of a conversation. Kind and RefID together
// identify the participant across the heterogeneous principal tables.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ConversationID: foreign key to the owning conversation (indexed).
//   - Kind: principal kind string (see PrincipalKind values).
//   - RefID: identifier of the underlying entity (employer, candidate, ...).
//   - Email / Name: denormalized display attributes captured at join time.
type Participant struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string         `json:"conversation_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_conv_member"`
	Kind           string         `json:"kind"            gorm:"type:varchar(16);not null;uniqueIndex:ux_conv_member"`
	RefID          string         `json:"ref_id"          gorm:"type:varchar(64);not null;uniqueIndex:ux_conv_member"`
	Email          string         `json:"email"           gorm:"type:varchar(255);not null"`
	Name           string         `json:"name"            gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for Participant.
func (Participant) TableName() string { return "conversation_participants" }

// Message represents a single utterance within a conversation. A message can
// only be created while its conversation is ACTIVE, except when the sender
// kind is SYSTEM (audit records for archive/close transitions).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ConversationID: foreign key to the owning conversation (indexed).
//   - SenderKind / SenderID / SenderEmail: author identity.
//   - ContentType: "text" or "file" (enforced by DB constraint).
//   - Body: full text content of the message.
//   - ReplyToID: optional reference to the message being replied to.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
//   - Conversation: FK association, ensures cascade delete/update.
type Message struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string         `json:"conversation_id" gorm:"type:char(36);not null;index:idx_conv_msgs,priority:1"`
	SenderKind     string         `json:"sender_kind"     gorm:"type:varchar(16);not null"`
	SenderID       string         `json:"sender_id"       gorm:"type:varchar(64);not null"`
	SenderEmail    string         `json:"sender_email"    gorm:"type:varchar(255)"`
	ContentType    string         `json:"content_type"    gorm:"type:varchar(16);not null;default:'text';check:content_type IN ('text','file')"`
	Body           string         `json:"body"            gorm:"type:text;not null"`
	ReplyToID      *string        `json:"reply_to_id,omitempty" gorm:"type:char(36)"`
	CreatedAt      time.Time      `json:"created_at"      gorm:"index:idx_conv_msgs,priority:2"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`

	// Attachments ride along with the message and are cascade-deleted.
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:MessageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// ReadBy accumulates one receipt per reader.
	ReadBy []ReadReceipt `json:"read_by,omitempty" gorm:"foreignKey:MessageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Attachment is a file reference carried by a message.
type Attachment struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	MessageID string         `json:"message_id" gorm:"type:char(36);not null;index"`
	FileName  string         `json:"file_name"  gorm:"type:varchar(255);not null"`
	FileURL   string         `json:"file_url"   gorm:"type:varchar(1024);not null"`
	FileSize  int64          `json:"file_size"`
	MimeType  string         `json:"mime_type"  gorm:"type:varchar(128)"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Attachment.
func (Attachment) TableName() string { return "message_attachments" }

// ReadReceipt records that a reader has acknowledged a message. The unique
// index on (message_id, reader_id) makes read-marking idempotent at the
// schema level: a second receipt for the same reader cannot exist.
type ReadReceipt struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	MessageID string    `json:"message_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_receipt_reader"`
	ReaderID  string    `json:"reader_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_receipt_reader"`
	ReadAt    time.Time `json:"read_at"`
}

// TableName returns the database table name for ReadReceipt.
func (ReadReceipt) TableName() string { return "message_read_receipts" }
