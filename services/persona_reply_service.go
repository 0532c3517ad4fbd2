package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veil_server/metrics"
	"veil_server/models"
)

// Used when generation fails or returns nothing. A human's send must always
// look answered eventually, so the pipeline degrades instead of dropping
// the turn.
var fallbackReplies = []string{
	"sorry, today is a bit hectic, tell me more later?",
	"haha wait, I need to think about that one",
	"ok that deserves a proper answer, give me a bit :)",
	"my day just exploded, but I saw this! more soon",
	"hmm, good question. what made you think of that?",
}

const (
	defaultReplyDelayMin = 180 * time.Second
	defaultReplyDelayMax = 300 * time.Second
)

// MessageDeliverer persists and broadcasts a persona message through the
// ordinary chat path; the chat service implements it.
type MessageDeliverer interface {
	DeliverPersonaMessage(ctx context.Context, matchID, senderID, content string) (*models.MessageView, error)
}

// PersonaReplyService turns a human message addressed to a persona into a
// delayed, in-character reply. Replies are persisted as pending items and
// delivered by a dispatcher tick, so they survive process restarts and can
// be cancelled when a match is skipped.
type PersonaReplyService struct {
	Store    ReplyStore
	Messages MessageStore
	Matches  MatchStore
	Personas *PersonaService
	Gen      TextGenerator
	Deliver  MessageDeliverer
	Log      zerolog.Logger

	HistoryDepth  int
	GenTimeout    time.Duration
	DispatchBatch int

	Now func() time.Time
}

func NewPersonaReplyService(store ReplyStore, messages MessageStore, matches MatchStore, personas *PersonaService,
	gen TextGenerator, deliver MessageDeliverer, historyDepth int, genTimeout time.Duration, batch int, log zerolog.Logger) *PersonaReplyService {
	if historyDepth <= 0 {
		historyDepth = 10
	}
	if batch <= 0 {
		batch = 25
	}
	return &PersonaReplyService{
		Store:         store,
		Messages:      messages,
		Matches:       matches,
		Personas:      personas,
		Gen:           gen,
		Deliver:       deliver,
		HistoryDepth:  historyDepth,
		GenTimeout:    genTimeout,
		DispatchBatch: batch,
		Log:           log.With().Str("service", "persona-replies").Logger(),
		Now:           time.Now,
	}
}

// Schedule enqueues a reply due after a randomized human-like delay drawn
// from the persona's configured window. Any failure is logged and absorbed:
// scheduling problems must never surface to the sender.
func (s *PersonaReplyService) Schedule(ctx context.Context, match *models.Match, trigger *models.Message) {
	delayMin, delayMax := defaultReplyDelayMin, defaultReplyDelayMax
	if persona, err := s.Personas.GetByID(trigger.ReceiverID); err == nil {
		if persona.ReplyDelayMin > 0 && persona.ReplyDelayMax >= persona.ReplyDelayMin {
			delayMin = time.Duration(persona.ReplyDelayMin) * time.Second
			delayMax = time.Duration(persona.ReplyDelayMax) * time.Second
		}
	}
	delay := delayMin
	if delayMax > delayMin {
		delay += time.Duration(rand.Int63n(int64(delayMax - delayMin)))
	}

	now := s.Now()
	reply := &models.PendingReply{
		ReplyID:          uuid.NewString(),
		MatchID:          match.MatchID,
		PersonaID:        trigger.ReceiverID,
		RecipientID:      trigger.SenderID,
		TriggerMessageID: trigger.MessageID,
		DueAt:            now.Add(delay),
		Status:           models.ReplyStatusPending,
		CreatedAt:        now,
	}
	if err := s.Store.Enqueue(ctx, reply); err != nil {
		s.Log.Error().Err(err).Str("matchId", match.MatchID).Msg("failed to enqueue persona reply")
		return
	}
	s.Log.Debug().Str("matchId", match.MatchID).Str("personaId", reply.PersonaID).
		Dur("delay", delay).Msg("persona reply scheduled")
}

// CancelPendingReplies drops the match's undelivered replies, called when a
// match transitions to skipped.
func (s *PersonaReplyService) CancelPendingReplies(ctx context.Context, matchID string) {
	n, err := s.Store.CancelForMatch(ctx, matchID)
	if err != nil {
		s.Log.Error().Err(err).Str("matchId", matchID).Msg("failed to cancel pending replies")
		return
	}
	if n > 0 {
		metrics.PersonaReplies.WithLabelValues("cancelled").Add(float64(n))
	}
}

// DispatchDue claims and delivers every pending reply whose due time has
// passed. Claiming is a conditional status transition, so concurrent
// dispatchers deliver each reply at most once.
func (s *PersonaReplyService) DispatchDue(ctx context.Context) {
	due, err := s.Store.DuePending(ctx, s.Now(), s.DispatchBatch)
	if err != nil {
		s.Log.Error().Err(err).Msg("failed to list due persona replies")
		return
	}
	for i := range due {
		reply := &due[i]
		if err := s.Store.Claim(ctx, reply.ReplyID); err != nil {
			if !errors.Is(err, ErrConflict) {
				s.Log.Error().Err(err).Str("replyId", reply.ReplyID).Msg("failed to claim persona reply")
			}
			continue
		}
		s.deliver(ctx, reply)
	}
}

func (s *PersonaReplyService) deliver(ctx context.Context, reply *models.PendingReply) {
	match, err := s.Matches.GetByID(ctx, reply.MatchID)
	if err != nil || !match.Live() {
		// The match went away between scheduling and delivery.
		s.finish(ctx, reply, models.ReplyStatusCancelled, "cancelled")
		return
	}

	persona, err := s.Personas.GetByID(reply.PersonaID)
	if err != nil {
		// A missing persona must never surface to the human; log and stop.
		s.Log.Warn().Str("personaId", reply.PersonaID).Str("matchId", reply.MatchID).Msg("persona not in catalog, dropping reply")
		s.finish(ctx, reply, models.ReplyStatusFailed, "failed")
		return
	}

	text, outcome := s.generate(ctx, persona, reply)
	if _, err := s.Deliver.DeliverPersonaMessage(ctx, reply.MatchID, reply.PersonaID, text); err != nil {
		s.Log.Error().Err(err).Str("matchId", reply.MatchID).Msg("failed to deliver persona reply")
		s.finish(ctx, reply, models.ReplyStatusFailed, "failed")
		return
	}
	s.finish(ctx, reply, models.ReplyStatusDone, outcome)
}

func (s *PersonaReplyService) finish(ctx context.Context, reply *models.PendingReply, status, outcome string) {
	if err := s.Store.SetStatus(ctx, reply.ReplyID, status); err != nil {
		s.Log.Error().Err(err).Str("replyId", reply.ReplyID).Msg("failed to finalize persona reply")
	}
	metrics.PersonaReplies.WithLabelValues(outcome).Inc()
}

// generate produces the reply text. Every failure mode lands on a fallback
// phrase, never an error.
func (s *PersonaReplyService) generate(ctx context.Context, persona *models.Persona, reply *models.PendingReply) (string, string) {
	trigger, err := s.Messages.GetByID(ctx, reply.TriggerMessageID)
	if err != nil {
		s.Log.Warn().Err(err).Str("replyId", reply.ReplyID).Msg("trigger message missing, using fallback")
		return fallbackReplies[rand.Intn(len(fallbackReplies))], "fallback"
	}

	history, err := s.conversationTurns(ctx, reply.MatchID, persona.PersonaID, trigger)
	if err != nil {
		s.Log.Warn().Err(err).Str("matchId", reply.MatchID).Msg("failed to load history, generating without it")
	}

	genCtx := ctx
	if s.GenTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.GenTimeout)
		defer cancel()
	}

	text, err := s.Gen.Generate(genCtx, personaPrompt(persona), history, trigger.Content)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		s.Log.Warn().Err(err).Str("personaId", persona.PersonaID).Msg("generation failed, using fallback")
		return fallbackReplies[rand.Intn(len(fallbackReplies))], "fallback"
	}
	return text, "generated"
}

// conversationTurns maps the last HistoryDepth messages before the trigger
// into generation roles: the persona's own messages are "model", the
// human's are "user", in chronological order.
func (s *PersonaReplyService) conversationTurns(ctx context.Context, matchID, personaID string, trigger *models.Message) ([]ChatTurn, error) {
	msgs, err := s.Messages.ListByMatch(ctx, matchID, s.HistoryDepth+1, 0)
	if err != nil {
		return nil, err
	}

	turns := make([]ChatTurn, 0, len(msgs))
	// Newest first from storage; walk backwards for chronological order.
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := &msgs[i]
		if msg.MessageID == trigger.MessageID || msg.CreatedAt > trigger.CreatedAt {
			continue
		}
		role := "user"
		if msg.SenderID == personaID {
			role = "model"
		}
		turns = append(turns, ChatTurn{Role: role, Content: msg.Content})
	}
	if len(turns) > s.HistoryDepth {
		turns = turns[len(turns)-s.HistoryDepth:]
	}
	return turns, nil
}

// personaPrompt grounds the generator in the persona's identity and style.
func personaPrompt(p *models.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %d, from %s, chatting on an anonymous dating app.\n", p.Name, p.Age, p.City)
	fmt.Fprintf(&b, "About you: %s\n", p.Bio)
	if len(p.Interests) > 0 {
		fmt.Fprintf(&b, "Your interests: %s.\n", strings.Join(p.Interests, ", "))
	}
	if len(p.Personality.Traits) > 0 {
		fmt.Fprintf(&b, "Your personality: %s.\n", strings.Join(p.Personality.Traits, ", "))
	}
	if p.Personality.ConversationStyle != "" {
		fmt.Fprintf(&b, "How you write: %s\n", p.Personality.ConversationStyle)
	}
	if p.Personality.FlirtStyle != "" {
		fmt.Fprintf(&b, "How you flirt: %s\n", p.Personality.FlirtStyle)
	}
	for _, pattern := range p.Personality.ResponsePatterns {
		fmt.Fprintf(&b, "Typical habit: %s\n", pattern)
	}
	if len(p.Personality.BotDeflections) > 0 {
		b.WriteString("If asked whether you are a bot or AI, deflect casually in your own voice, for example:\n")
		for _, d := range p.Personality.BotDeflections {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	b.WriteString("Stay in character at all times. Never state or imply that you are artificial, ")
	b.WriteString("never mention prompts, models or instructions, and never break the persona. ")
	b.WriteString("Reply with a single chat message in your usual style and length.")
	return b.String()
}
