package models

import "time"

// Pending reply statuses. The happy path runs pending, processing, done.
// Cancelled means the match was skipped before the due time, failed means
// delivery errored out.
const (
	ReplyStatusPending    = "pending"
	ReplyStatusProcessing = "processing"
	ReplyStatusDone       = "done"
	ReplyStatusCancelled  = "cancelled"
	ReplyStatusFailed     = "failed"
)

// PendingReply is a durably scheduled persona reply. Persisting the due time
// and payload means a process restart does not drop a promised reply; the
// dispatcher claims due items with a conditional status transition so each
// is delivered at most once.
type PendingReply struct {
	ReplyID          string    `dynamodbav:"replyId" json:"replyId"` // Partition key
	MatchID          string    `dynamodbav:"matchId" json:"matchId"`
	PersonaID        string    `dynamodbav:"personaId" json:"personaId"`
	RecipientID      string    `dynamodbav:"recipientId" json:"recipientId"`
	TriggerMessageID string    `dynamodbav:"triggerMessageId" json:"triggerMessageId"`
	DueAt            time.Time `dynamodbav:"dueAt" json:"dueAt"`
	Status           string    `dynamodbav:"status" json:"status"`
	Attempts         int       `dynamodbav:"attempts" json:"attempts"`
	CreatedAt        time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// PendingRepliesTable is the DynamoDB table name for scheduled persona replies
const PendingRepliesTable = "PendingReplies"
