package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veil_server/metrics"
	"veil_server/models"
)

// CounterpartViewer renders a counterpart profile per reveal state; the
// match service implements it.
type CounterpartViewer interface {
	CounterpartView(ctx context.Context, counterpartID string, revealed bool) (*models.CounterpartView, error)
}

// ReplyScheduler schedules a persona reply to a just-sent message; the
// persona reply service implements it. Must not block.
type ReplyScheduler interface {
	Schedule(ctx context.Context, match *models.Match, trigger *models.Message)
}

// ChatService is the ordered per-match message store plus realtime fan-out.
type ChatService struct {
	Users    UserStore
	Matches  MatchStore
	Messages MessageStore
	Personas *PersonaService
	Views    CounterpartViewer
	Replies  ReplyScheduler
	Cast     Broadcaster
	Photos   PhotoResolver
	Log      zerolog.Logger

	Now func() time.Time
}

func NewChatService(users UserStore, matches MatchStore, messages MessageStore, personas *PersonaService,
	views CounterpartViewer, replies ReplyScheduler, cast Broadcaster, photos PhotoResolver, log zerolog.Logger) *ChatService {
	return &ChatService{
		Users:    users,
		Matches:  matches,
		Messages: messages,
		Personas: personas,
		Views:    views,
		Replies:  replies,
		Cast:     cast,
		Photos:   photos,
		Log:      log.With().Str("service", "chat").Logger(),
		Now:      time.Now,
	}
}

// GetMessages returns a window of the match's messages in chronological
// order: the newest `limit` entries after skipping `skip`, re-sorted
// ascending for display.
func (s *ChatService) GetMessages(ctx context.Context, matchID, userID string, limit, skip int) ([]models.MessageView, error) {
	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 50
	}

	msgs, err := s.Messages.ListByMatch(ctx, matchID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	// Storage hands back newest first; flip to ascending.
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt == msgs[j].CreatedAt {
			return msgs[i].MessageID < msgs[j].MessageID
		}
		return msgs[i].CreatedAt < msgs[j].CreatedAt
	})

	views := make([]models.MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, *s.resolveMessage(ctx, match, &msgs[i]))
	}
	return views, nil
}

// SendMessage persists and broadcasts a message from userID to the other
// participant. When the receiver is a persona (or an AI-assisted user), a
// delayed reply is scheduled without blocking the send.
func (s *ChatService) SendMessage(ctx context.Context, matchID, userID, content string) (*models.MessageView, error) {
	return s.send(ctx, matchID, userID, content, true)
}

// DeliverPersonaMessage is the reply pipeline's entry point. It runs the
// same persistence and broadcast path as a human send, so a generated
// message is indistinguishable in storage and transport, but never
// schedules a further reply.
func (s *ChatService) DeliverPersonaMessage(ctx context.Context, matchID, senderID, content string) (*models.MessageView, error) {
	return s.send(ctx, matchID, senderID, content, false)
}

func (s *ChatService) send(ctx context.Context, matchID, senderID, content string, schedule bool) (*models.MessageView, error) {
	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(senderID) {
		return nil, ErrForbidden
	}
	if !match.Live() {
		return nil, ErrInvalidState
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	now := s.Now()
	msg := &models.Message{
		MatchID:    matchID,
		CreatedAt:  models.Timestamp(now),
		MessageID:  uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: match.CounterpartOf(senderID),
		Content:    content,
	}
	if err := s.Messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	if err := s.Matches.TouchLastMessage(ctx, match.PairKey, now); err != nil {
		s.Log.Error().Err(err).Str("matchId", matchID).Msg("failed to update lastMessageAt")
	}
	metrics.MessagesSent.WithLabelValues(string(models.Ref(senderID).Kind)).Inc()

	view := s.resolveMessage(ctx, match, msg)
	s.Cast.ToMatch(matchID, "message:new", view)

	if schedule && s.wantsGeneratedReply(ctx, msg.ReceiverID) {
		s.Replies.Schedule(ctx, match, msg)
	}
	return view, nil
}

func (s *ChatService) wantsGeneratedReply(ctx context.Context, receiverID string) bool {
	if models.IsPersonaID(receiverID) {
		return true
	}
	receiver, err := s.Users.Get(ctx, receiverID)
	return err == nil && receiver.AIAssisted
}

// MarkRead flags a message read. Only the addressee may do so.
func (s *ChatService) MarkRead(ctx context.Context, messageID, userID string) error {
	msg, err := s.Messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ReceiverID != userID {
		return ErrForbidden
	}
	if msg.IsRead {
		return nil
	}
	return s.Messages.MarkRead(ctx, msg.MatchID, msg.CreatedAt, s.Now())
}

// GetConversations lists one summary per non-skipped match, newest activity
// first.
func (s *ChatService) GetConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	if _, err := s.Users.Get(ctx, userID); err != nil {
		return nil, err
	}
	matches, err := s.Matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(matches))
	for i := range matches {
		match := &matches[i]
		if match.Status == models.MatchStatusSkipped {
			continue
		}

		counterpart, err := s.Views.CounterpartView(ctx, match.CounterpartOf(userID), match.Reveal.IsRevealed)
		if err != nil {
			s.Log.Error().Err(err).Str("matchId", match.MatchID).Msg("failed to resolve counterpart")
			continue
		}
		summary := models.ConversationSummary{
			MatchID:       match.MatchID,
			Counterpart:   *counterpart,
			LastMessageAt: match.LastMessageAt,
		}
		if last, err := s.Messages.LatestForMatch(ctx, match.MatchID); err == nil && last != nil {
			summary.LastMessage = s.resolveMessage(ctx, match, last)
		}
		if unread, err := s.Messages.CountUnread(ctx, match.MatchID, userID); err == nil {
			summary.UnreadCount = unread
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}

// resolveMessage annotates a message with display data for both ends,
// resolving each polymorphic id against the user store or the persona
// catalog. Names follow the match's reveal state so an anonymous match
// stays anonymous in transit.
func (s *ChatService) resolveMessage(ctx context.Context, match *models.Match, msg *models.Message) *models.MessageView {
	view := &models.MessageView{Message: *msg}
	view.SenderName, view.SenderPhoto = s.displayFor(ctx, msg.SenderID, match.Reveal.IsRevealed)
	view.ReceiverName, view.ReceiverPhoto = s.displayFor(ctx, msg.ReceiverID, match.Reveal.IsRevealed)
	return view
}

func (s *ChatService) displayFor(ctx context.Context, id string, revealed bool) (string, string) {
	var name, ref string
	if models.IsPersonaID(id) {
		persona, err := s.Personas.GetByID(id)
		if err != nil {
			return "", ""
		}
		name = persona.Name
		if len(persona.PhotoURLs) > 0 {
			ref = persona.PhotoURLs[0]
		}
	} else {
		user, err := s.Users.Get(ctx, id)
		if err != nil {
			return "", ""
		}
		name = user.Name
		if len(user.Photos) > 0 {
			ref = user.Photos[0]
		}
	}

	var photo string
	if ref != "" {
		var err error
		if revealed {
			photo, err = s.Photos.FullURL(ctx, ref)
		} else {
			photo, err = s.Photos.BlurredURL(ctx, ref)
		}
		if err != nil {
			photo = ""
		}
	}
	if !revealed {
		name = MaskName(name)
	}
	return name, photo
}
