package models

import "time"

// Match statuses. A match is never deleted, only status-transitioned.
const (
	MatchStatusActive    = "active"
	MatchStatusRevealed  = "revealed"
	MatchStatusSkipped   = "skipped"
	MatchStatusUnmatched = "unmatched"
)

// RevealStatus tracks the mutual-consent reveal protocol for one match.
// Invariant: IsRevealed is true exactly when both requested flags are true.
type RevealStatus struct {
	User1Requested   bool       `dynamodbav:"user1Requested" json:"user1Requested"`
	User1RequestedAt *time.Time `dynamodbav:"user1RequestedAt,omitempty" json:"user1RequestedAt,omitempty"`
	User2Requested   bool       `dynamodbav:"user2Requested" json:"user2Requested"`
	User2RequestedAt *time.Time `dynamodbav:"user2RequestedAt,omitempty" json:"user2RequestedAt,omitempty"`
	IsRevealed       bool       `dynamodbav:"isRevealed" json:"isRevealed"`
	RevealedAt       *time.Time `dynamodbav:"revealedAt,omitempty" json:"revealedAt,omitempty"`
}

// Match pairs a requesting user with either another user or a persona.
// PairKey is the partition key: one item per unordered pair, which is what
// enforces the single-live-match invariant under concurrent creation.
type Match struct {
	PairKey       string       `dynamodbav:"pairKey" json:"-"` // Partition key, canonical "p1#p2"
	MatchID       string       `dynamodbav:"matchId" json:"matchId"`
	User1ID       string       `dynamodbav:"user1Id" json:"user1Id"` // Canonical participant 1
	User2ID       string       `dynamodbav:"user2Id" json:"user2Id"` // May be a persona id
	Status        string       `dynamodbav:"status" json:"status"`
	Reveal        RevealStatus `dynamodbav:"reveal" json:"reveal"`
	LastMessageAt time.Time    `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time    `dynamodbav:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether id is one of the two participants.
func (m *Match) HasParticipant(id string) bool {
	return m.User1ID == id || m.User2ID == id
}

// CounterpartOf returns the other participant's id.
func (m *Match) CounterpartOf(id string) string {
	if m.User1ID == id {
		return m.User2ID
	}
	return m.User1ID
}

// SlotOf returns 1 or 2 for a participant, 0 for a non-participant.
func (m *Match) SlotOf(id string) int {
	switch id {
	case m.User1ID:
		return 1
	case m.User2ID:
		return 2
	}
	return 0
}

// RequestedBySlot reports whether the given participant slot has requested
// reveal.
func (m *Match) RequestedBySlot(slot int) bool {
	if slot == 1 {
		return m.Reveal.User1Requested
	}
	return m.Reveal.User2Requested
}

// Live reports whether the match still counts against the one-per-pair
// invariant.
func (m *Match) Live() bool {
	return m.Status != MatchStatusSkipped && m.Status != MatchStatusUnmatched
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"

// MatchIDIndex is the GSI resolving a match by its id
const MatchIDIndex = "matchId-index"
