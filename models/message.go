package models

import "time"

// Message is one chat message inside a match. Immutable once created except
// for the read flag. CreatedAt doubles as the sort key, so messages come
// back from storage in send order; MessageID breaks rare timestamp ties.
type Message struct {
	MatchID    string     `dynamodbav:"matchId" json:"matchId"`     // Partition key
	CreatedAt  string     `dynamodbav:"createdAt" json:"createdAt"` // Sort key, TimestampLayout
	MessageID  string     `dynamodbav:"messageId" json:"messageId"`
	SenderID   string     `dynamodbav:"senderId" json:"senderId"` // User or persona id
	ReceiverID string     `dynamodbav:"receiverId" json:"receiverId"`
	Content    string     `dynamodbav:"content" json:"content"`
	IsRead     bool       `dynamodbav:"isRead" json:"isRead"`
	ReadAt     *time.Time `dynamodbav:"readAt,omitempty" json:"readAt,omitempty"`
}

// SentAt parses the stored timestamp. Zero time on malformed data.
func (m *Message) SentAt() time.Time {
	t, _ := time.Parse(time.RFC3339Nano, m.CreatedAt)
	return t
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"

// MessageIDIndex is the GSI resolving a message by its id
const MessageIDIndex = "messageId-index"
