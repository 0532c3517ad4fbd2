package models

import "time"

// Notification types pushed to real users. Persona ids never receive
// notifications.
const (
	NotificationRevealRequested = "reveal_requested"
	NotificationRevealAccepted  = "reveal_accepted"
)

// Notification is a stored, asynchronously delivered user notification.
type Notification struct {
	UserID         string    `dynamodbav:"userId" json:"userId"`       // Partition key
	CreatedAt      string    `dynamodbav:"createdAt" json:"createdAt"` // Sort key, TimestampLayout
	NotificationID string    `dynamodbav:"notificationId" json:"notificationId"`
	Type           string    `dynamodbav:"type" json:"type"`
	Title          string    `dynamodbav:"title" json:"title"`
	Body           string    `dynamodbav:"body" json:"body"`
	MatchID        string    `dynamodbav:"matchId,omitempty" json:"matchId,omitempty"`
	Read           bool      `dynamodbav:"read" json:"read"`
	SentAt         time.Time `dynamodbav:"sentAt" json:"sentAt"`
}

// NotificationsTable is the DynamoDB table name for notifications
const NotificationsTable = "Notifications"
