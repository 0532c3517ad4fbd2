package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil_server/models"
)

func newNotificationFixture(online map[string]bool) (*NotificationService, *memNotificationStore, *memBroadcaster) {
	store := &memNotificationStore{}
	cast := &memBroadcaster{}
	svc := NewNotificationService(store, &fakePresence{online: online}, cast, zerolog.Nop())

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(&now)
	return svc, store, cast
}

func TestNotifyRefusesPersonaRecipients(t *testing.T) {
	svc, store, cast := newNotificationFixture(map[string]bool{"persona_jonas": true})

	svc.Notify(context.Background(), "persona_jonas", models.NotificationRevealRequested,
		"Reveal requested", "Your match wants to reveal profiles.", "m1")

	assert.Empty(t, store.items, "personas have no inbox")
	assert.Empty(t, cast.events)
}

func TestNotifyOfflineRecipientStoresWithoutPush(t *testing.T) {
	svc, store, cast := newNotificationFixture(nil)

	svc.Notify(context.Background(), "u_ben", models.NotificationRevealRequested,
		"Reveal requested", "Your match wants to reveal profiles.", "m1")

	require.Len(t, store.items, 1)
	n := store.items[0]
	assert.Equal(t, "u_ben", n.UserID)
	assert.Equal(t, models.NotificationRevealRequested, n.Type)
	assert.Equal(t, "m1", n.MatchID)
	assert.NotEmpty(t, n.NotificationID)
	assert.Equal(t, models.Timestamp(n.SentAt), n.CreatedAt)

	assert.Empty(t, cast.events, "offline recipients get no realtime push")
}

func TestNotifyOnlineRecipientStoresAndPushes(t *testing.T) {
	svc, store, cast := newNotificationFixture(map[string]bool{"u_ben": true})

	svc.Notify(context.Background(), "u_ben", models.NotificationRevealAccepted,
		"Reveal complete", "You both agreed to reveal your profiles.", "m1")

	require.Len(t, store.items, 1)
	events := cast.byEvent("notification")
	require.Len(t, events, 1)
	assert.Equal(t, "user:u_ben", events[0].Room)

	pushed, ok := events[0].Payload.(*models.Notification)
	require.True(t, ok)
	assert.Equal(t, store.items[0].NotificationID, pushed.NotificationID)
}
