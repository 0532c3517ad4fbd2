package services

import (
	"context"
	"time"

	"veil_server/models"
)

// The services consume narrow store interfaces instead of a concrete
// database handle so the DynamoDB implementations in repositories/ can be
// swapped for in-memory fakes in tests.

// UserStore is the persistence surface the match and chat engines need for
// user profiles.
type UserStore interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)

	// FindCandidates returns active users passing the seeker's preference
	// filter (gender, age range, same city), excluding the given ids and
	// anyone whose last activity predates activeSince.
	FindCandidates(ctx context.Context, seeker *models.UserProfile, exclude map[string]struct{}, activeSince time.Time) ([]models.UserProfile, error)

	// AppendMatched adds counterpartID to the user's matched list.
	// Idempotent: no duplicate entries.
	AppendMatched(ctx context.Context, userID, counterpartID string) error

	// AppendSkipped adds counterpartID to the user's skip list. Idempotent.
	AppendSkipped(ctx context.Context, userID, counterpartID string) error

	// ListActiveIDs returns ids of all matching-eligible users, used by the
	// nightly credit sweep.
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// CreditStore persists balances and the append-only transaction ledger.
type CreditStore interface {
	// Balance returns the cached balance and last refresh timestamp
	// (RFC3339, empty if never refreshed).
	Balance(ctx context.Context, userID string) (int, string, error)

	// Debit atomically decrements the balance, failing with
	// ErrInsufficientCredits (no mutation) when balance < amount.
	Debit(ctx context.Context, userID string, amount int) (int, error)

	// Credit atomically increments the balance.
	Credit(ctx context.Context, userID string, amount int) (int, error)

	// ResetBalance sets the balance to allotment and stamps refreshedAt,
	// on condition the stored refresh stamp is older than staleBefore.
	// Returns the previous balance, or ErrConflict when another caller
	// already refreshed.
	ResetBalance(ctx context.Context, userID string, allotment int, refreshedAt, staleBefore time.Time) (int, error)

	AppendTransaction(ctx context.Context, txn *models.CreditTransaction) error

	// ListTransactions returns entries newest first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)
}

// MatchStore persists matches keyed by canonical pair.
type MatchStore interface {
	GetByID(ctx context.Context, matchID string) (*models.Match, error)
	GetByPairKey(ctx context.Context, pairKey string) (*models.Match, error)

	// Create inserts the match, failing with ErrConflict when an item for
	// the same pair key already exists.
	Create(ctx context.Context, m *models.Match) error

	// Delete physically removes a match. Only used to roll back a
	// just-created match whose charge failed; settled matches are only
	// ever status-transitioned.
	Delete(ctx context.Context, pairKey string) error

	ListForUser(ctx context.Context, userID string) ([]models.Match, error)

	SetStatus(ctx context.Context, pairKey, status string) error

	// SetRevealRequested flips the slot's requested flag, failing with
	// ErrConflict when it is already set or the match is revealed.
	// Returns the updated match.
	SetRevealRequested(ctx context.Context, pairKey string, slot int, at time.Time) (*models.Match, error)

	// SetRevealed marks the match revealed, on condition both requested
	// flags are set and it is not yet revealed. ErrConflict otherwise.
	SetRevealed(ctx context.Context, pairKey string, at time.Time) (*models.Match, error)

	TouchLastMessage(ctx context.Context, pairKey string, at time.Time) error
}

// MessageStore persists chat messages per match.
type MessageStore interface {
	Append(ctx context.Context, msg *models.Message) error

	// ListByMatch returns up to limit messages newest first, skipping the
	// given number of newest entries.
	ListByMatch(ctx context.Context, matchID string, limit, skip int) ([]models.Message, error)

	GetByID(ctx context.Context, messageID string) (*models.Message, error)
	MarkRead(ctx context.Context, matchID, createdAt string, at time.Time) error
	LatestForMatch(ctx context.Context, matchID string) (*models.Message, error)
	CountUnread(ctx context.Context, matchID, receiverID string) (int, error)
}

// ReplyStore persists scheduled persona replies.
type ReplyStore interface {
	Enqueue(ctx context.Context, r *models.PendingReply) error

	// DuePending lists pending replies due at or before now, oldest first.
	DuePending(ctx context.Context, now time.Time, limit int) ([]models.PendingReply, error)

	// Claim transitions pending to processing, failing with ErrConflict when
	// another dispatcher won the claim.
	Claim(ctx context.Context, replyID string) error

	SetStatus(ctx context.Context, replyID, status string) error

	// CancelForMatch cancels all still-pending replies of a match and
	// returns how many were cancelled.
	CancelForMatch(ctx context.Context, matchID string) (int, error)
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	Append(ctx context.Context, n *models.Notification) error
}

// Broadcaster pushes realtime events; the socket server implements it.
type Broadcaster interface {
	ToMatch(matchID, event string, payload any)
	ToUser(userID, event string, payload any)
}

// ChatTurn is one turn of generation history. Role is "user" for the human
// and "model" for the persona's own prior messages.
type ChatTurn struct {
	Role    string
	Content string
}

// TextGenerator produces a persona reply. Implemented by the Gemini client;
// faked in tests.
type TextGenerator interface {
	Generate(ctx context.Context, system string, history []ChatTurn, message string) (string, error)
}

// PhotoResolver turns stored photo references into servable URLs. The blur
// variant never exposes the unblurred original.
type PhotoResolver interface {
	BlurredURL(ctx context.Context, ref string) (string, error)
	FullURL(ctx context.Context, ref string) (string, error)
}

// Presence answers whether a user currently has a realtime connection.
type Presence interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}
