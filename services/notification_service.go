package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veil_server/models"
)

// NotificationService persists notifications and pushes them over the
// user-scoped realtime channel when the target is connected. It refuses
// persona ids outright: synthetic profiles have no inbox.
type NotificationService struct {
	Store    NotificationStore
	Presence Presence
	Cast     Broadcaster
	Log      zerolog.Logger

	Now func() time.Time
}

func NewNotificationService(store NotificationStore, presence Presence, cast Broadcaster, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		Store:    store,
		Presence: presence,
		Cast:     cast,
		Log:      log.With().Str("service", "notifications").Logger(),
		Now:      time.Now,
	}
}

// Notify stores the notification and pushes it when the user is online.
// Delivery is best effort; failures are logged, never propagated, so a
// reveal action cannot fail on a notification hiccup.
func (s *NotificationService) Notify(ctx context.Context, userID, ntype, title, body, matchID string) {
	if models.IsPersonaID(userID) {
		return
	}

	n := &models.Notification{
		UserID:         userID,
		CreatedAt:      models.Timestamp(s.Now()),
		NotificationID: uuid.NewString(),
		Type:           ntype,
		Title:          title,
		Body:           body,
		MatchID:        matchID,
		SentAt:         s.Now(),
	}
	if err := s.Store.Append(ctx, n); err != nil {
		s.Log.Error().Err(err).Str("userId", userID).Str("type", ntype).Msg("failed to store notification")
		return
	}

	online, err := s.Presence.IsOnline(ctx, userID)
	if err != nil {
		s.Log.Warn().Err(err).Str("userId", userID).Msg("presence lookup failed, pushing anyway")
		online = true
	}
	if online {
		s.Cast.ToUser(userID, "notification", n)
	}
}
