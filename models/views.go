package models

import "time"

// CounterpartView is the counterpart profile as rendered to one side of a
// match: anonymized pre-reveal (masked name, blurred photos), full after.
type CounterpartView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Age         int      `json:"age,omitempty"`
	City        string   `json:"city,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	Photos      []string `json:"photos,omitempty"`
	DistanceKm  float64  `json:"distanceKm"`
	IsAnonymous bool     `json:"isAnonymous"`
}

// MatchView is a match annotated with the counterpart rendering for the
// requesting user.
type MatchView struct {
	MatchID       string          `json:"matchId"`
	Status        string          `json:"status"`
	Reveal        RevealStatus    `json:"reveal"`
	Counterpart   CounterpartView `json:"counterpart"`
	LastMessageAt time.Time       `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// MessageView is a message annotated with resolved sender/receiver display
// data for transport and API responses.
type MessageView struct {
	Message
	SenderName    string `json:"senderName"`
	SenderPhoto   string `json:"senderPhoto,omitempty"`
	ReceiverName  string `json:"receiverName"`
	ReceiverPhoto string `json:"receiverPhoto,omitempty"`
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	MatchID       string          `json:"matchId"`
	Counterpart   CounterpartView `json:"counterpart"`
	LastMessage   *MessageView    `json:"lastMessage,omitempty"`
	UnreadCount   int             `json:"unreadCount"`
	LastMessageAt time.Time       `json:"lastMessageAt,omitempty"`
}

// BalanceView is the credit balance plus refresh timing returned by the
// ledger.
type BalanceView struct {
	Balance        int           `json:"balance"`
	NextRefreshAt  time.Time     `json:"nextRefreshAt"`
	UntilRefresh   time.Duration `json:"-"`
	UntilRefreshMs int64         `json:"untilRefreshMs"`
}
