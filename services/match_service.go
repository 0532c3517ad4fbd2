package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veil_server/metrics"
	"veil_server/models"
)

// Distance is out of scope for the matching core; views carry this constant.
const stubDistanceKm = 2.5

// Notifier delivers a notification to a real user. Implementations must
// never be handed persona ids; the match service filters those out.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, body, matchID string)
}

// ReplyCanceller drops a match's scheduled persona replies; the persona
// reply service implements it.
type ReplyCanceller interface {
	CancelPendingReplies(ctx context.Context, matchID string)
}

// MatchService implements the match lifecycle: finding or reusing a match
// for a pair, skipping, and the mutual-consent reveal protocol.
type MatchService struct {
	Users    UserStore
	Matches  MatchStore
	Credits  *CreditService
	Personas *PersonaService
	Photos   PhotoResolver
	Notify   Notifier
	Cast     Broadcaster
	Log      zerolog.Logger

	// Replies is optional; when set, skipping a match cancels its pending
	// persona replies.
	Replies ReplyCanceller

	// ActivityWindow excludes candidates inactive longer than this.
	ActivityWindow time.Duration

	Now func() time.Time
}

func NewMatchService(users UserStore, matches MatchStore, credits *CreditService, personas *PersonaService,
	photos PhotoResolver, notify Notifier, cast Broadcaster, activityWindow time.Duration, log zerolog.Logger) *MatchService {
	return &MatchService{
		Users:          users,
		Matches:        matches,
		Credits:        credits,
		Personas:       personas,
		Photos:         photos,
		Notify:         notify,
		Cast:           cast,
		ActivityWindow: activityWindow,
		Log:            log.With().Str("service", "matches").Logger(),
		Now:            time.Now,
	}
}

// FindMatch pairs the user with a random eligible real candidate, falling
// back to a persona when none exists. Real users are always preferred.
func (s *MatchService) FindMatch(ctx context.Context, userID string) (*models.MatchView, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Validation before any side effect: balance first, then preferences.
	ok, err := s.Credits.CanAfford(ctx, userID, models.CreditActionFindMatch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientCredits
	}
	if user.Preferences == nil {
		return nil, ErrPreferencesMissing
	}

	counterpartID, err := s.pickCounterpart(ctx, user)
	if err != nil {
		return nil, err
	}

	match, created, err := s.lookupOrCreate(ctx, userID, counterpartID)
	if err != nil {
		return nil, err
	}

	// Charge tagged with the match id. A failed charge rolls back a match
	// created in this call so no unpaid pairing survives.
	if err := s.Credits.Charge(ctx, userID, models.CreditActionFindMatch, match.MatchID); err != nil {
		if created {
			if derr := s.Matches.Delete(ctx, match.PairKey); derr != nil {
				s.Log.Error().Err(derr).Str("matchId", match.MatchID).Msg("failed to roll back match after charge failure")
			}
		}
		return nil, err
	}

	if err := s.Users.AppendMatched(ctx, userID, counterpartID); err != nil {
		s.Log.Error().Err(err).Str("userId", userID).Msg("failed to record counterpart on matched list")
	}
	if created {
		metrics.MatchesCreated.Inc()
	}

	return s.buildMatchView(ctx, match, userID)
}

// pickCounterpart picks a random real candidate, else a persona.
func (s *MatchService) pickCounterpart(ctx context.Context, user *models.UserProfile) (string, error) {
	exclude := map[string]struct{}{user.UserID: {}}
	for _, id := range user.Matched {
		exclude[id] = struct{}{}
	}
	for _, id := range user.Skipped {
		exclude[id] = struct{}{}
	}

	activeSince := s.Now().Add(-s.ActivityWindow)
	candidates, err := s.Users.FindCandidates(ctx, user, exclude, activeSince)
	if err != nil {
		return "", fmt.Errorf("failed to query candidates: %w", err)
	}
	if len(candidates) > 0 {
		return candidates[rand.Intn(len(candidates))].UserID, nil
	}

	persona := s.Personas.PickRandom(user, exclude)
	if persona == nil {
		return "", ErrNoMatchAvailable
	}
	s.Log.Debug().Str("userId", user.UserID).Str("personaId", persona.PersonaID).Msg("no real candidates, persona fallback")
	return persona.PersonaID, nil
}

// lookupOrCreate returns the live match for the canonical pair, creating it
// when absent. The conditional create means two racing calls for the same
// pair converge on one match.
func (s *MatchService) lookupOrCreate(ctx context.Context, userID, counterpartID string) (*models.Match, bool, error) {
	p1, p2 := models.CanonicalPair(userID, counterpartID)
	pairKey := models.PairKey(userID, counterpartID)

	existing, err := s.Matches.GetByPairKey(ctx, pairKey)
	if err == nil && existing.Live() {
		return existing, false, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if err == nil && !existing.Live() {
		// Skip is terminal for the pair; the skip list should already have
		// kept us from picking this counterpart.
		return nil, false, ErrNoMatchAvailable
	}

	match := &models.Match{
		PairKey:   pairKey,
		MatchID:   uuid.NewString(),
		User1ID:   p1,
		User2ID:   p2,
		Status:    models.MatchStatusActive,
		CreatedAt: s.Now(),
	}
	err = s.Matches.Create(ctx, match)
	if errors.Is(err, ErrConflict) {
		winner, gerr := s.Matches.GetByPairKey(ctx, pairKey)
		if gerr != nil {
			return nil, false, gerr
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}
	return match, true, nil
}

// SkipMatch permanently retires a match. The counterpart lands on the skip
// list, so the pair can never be re-matched.
func (s *MatchService) SkipMatch(ctx context.Context, matchID, userID string) error {
	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if !match.HasParticipant(userID) {
		return ErrForbidden
	}
	if !match.Live() {
		return ErrInvalidState
	}

	if err := s.Credits.Charge(ctx, userID, models.CreditActionSkipMatch, matchID); err != nil {
		return err
	}

	if err := s.Matches.SetStatus(ctx, match.PairKey, models.MatchStatusSkipped); err != nil {
		if rerr := s.Credits.Refund(ctx, userID, models.CreditActionSkipMatch, s.Credits.Costs.SkipMatch, matchID); rerr != nil {
			s.Log.Error().Err(rerr).Str("matchId", matchID).Msg("failed to refund skip charge")
		}
		return fmt.Errorf("failed to skip match: %w", err)
	}
	if err := s.Users.AppendSkipped(ctx, userID, match.CounterpartOf(userID)); err != nil {
		s.Log.Error().Err(err).Str("userId", userID).Msg("failed to record counterpart on skip list")
	}
	if s.Replies != nil {
		s.Replies.CancelPendingReplies(ctx, matchID)
	}
	metrics.MatchesSkipped.Inc()
	return nil
}

// GetMatches returns the user's non-skipped matches annotated with the
// counterpart rendering the reveal state permits.
func (s *MatchService) GetMatches(ctx context.Context, userID string) ([]models.MatchView, error) {
	if _, err := s.Users.Get(ctx, userID); err != nil {
		return nil, err
	}
	matches, err := s.Matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.MatchView, 0, len(matches))
	for i := range matches {
		if matches[i].Status == models.MatchStatusSkipped {
			continue
		}
		view, err := s.buildMatchView(ctx, &matches[i], userID)
		if err != nil {
			s.Log.Error().Err(err).Str("matchId", matches[i].MatchID).Msg("failed to build match view")
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

// GetMatch returns a single match view for a participant.
func (s *MatchService) GetMatch(ctx context.Context, matchID, userID string) (*models.MatchView, error) {
	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return s.buildMatchView(ctx, match, userID)
}

// RequestReveal sets the requester's consent flag. When the counterpart has
// already requested, the second request completes the reveal; the state
// machine never holds both flags without the revealed bit.
func (s *MatchService) RequestReveal(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	if match.Reveal.IsRevealed {
		return nil, ErrAlreadyRevealed
	}
	if !match.Live() {
		return nil, ErrInvalidState
	}
	slot := match.SlotOf(userID)
	if match.RequestedBySlot(slot) {
		return nil, ErrAlreadyRequested
	}

	return s.applyReveal(ctx, match, userID, slot, models.CreditActionRequestReveal)
}

// AcceptReveal is the second actor's agreement: it counts as that side's own
// request, which makes both flags true and reveals the match.
func (s *MatchService) AcceptReveal(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	if match.Reveal.IsRevealed {
		return nil, ErrAlreadyRevealed
	}
	if !match.Live() {
		return nil, ErrInvalidState
	}
	slot := match.SlotOf(userID)
	other := 3 - slot
	if !match.RequestedBySlot(other) {
		return nil, ErrNotRequested
	}
	if match.RequestedBySlot(slot) {
		return nil, ErrAlreadyRequested
	}

	return s.applyReveal(ctx, match, userID, slot, models.CreditActionAcceptReveal)
}

// applyReveal charges the actor, flips their flag and, when both flags hold,
// marks the match revealed. The flag update is conditional so simultaneous
// actions by both sides cannot lose updates; a lost race refunds the charge.
func (s *MatchService) applyReveal(ctx context.Context, match *models.Match, userID string, slot int, action string) (*models.Match, error) {
	if err := s.Credits.Charge(ctx, userID, action, match.MatchID); err != nil {
		return nil, err
	}

	now := s.Now()
	updated, err := s.Matches.SetRevealRequested(ctx, match.PairKey, slot, now)
	if errors.Is(err, ErrConflict) {
		if rerr := s.Credits.Refund(ctx, userID, action, s.Credits.Costs.For(action), match.MatchID); rerr != nil {
			s.Log.Error().Err(rerr).Str("matchId", match.MatchID).Msg("failed to refund reveal charge")
		}
		return nil, ErrAlreadyRequested
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update reveal state: %w", err)
	}

	revealed := false
	if updated.Reveal.User1Requested && updated.Reveal.User2Requested {
		updated, err = s.Matches.SetRevealed(ctx, match.PairKey, now)
		if errors.Is(err, ErrConflict) {
			// Counterpart's action already revealed the match.
			updated, err = s.Matches.GetByPairKey(ctx, match.PairKey)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to finalize reveal: %w", err)
		}
		revealed = true
		metrics.Reveals.Inc()
	}

	s.notifyCounterpart(ctx, updated, userID, revealed)
	s.Cast.ToMatch(updated.MatchID, "reveal:updated", updated.Reveal)
	return updated, nil
}

// notifyCounterpart pushes a reveal notification to the other side, unless
// it is a persona. Personas never receive notifications.
func (s *MatchService) notifyCounterpart(ctx context.Context, match *models.Match, actorID string, revealed bool) {
	counterpart := match.CounterpartOf(actorID)
	if models.IsPersonaID(counterpart) {
		return
	}
	if revealed {
		s.Notify.Notify(ctx, counterpart, models.NotificationRevealAccepted,
			"Reveal complete", "You both agreed to reveal your profiles.", match.MatchID)
		return
	}
	s.Notify.Notify(ctx, counterpart, models.NotificationRevealRequested,
		"Reveal requested", "Your match wants to reveal profiles. Accept to see each other.", match.MatchID)
}

// buildMatchView renders the counterpart for one side of the match.
func (s *MatchService) buildMatchView(ctx context.Context, match *models.Match, userID string) (*models.MatchView, error) {
	counterpart, err := s.CounterpartView(ctx, match.CounterpartOf(userID), match.Reveal.IsRevealed)
	if err != nil {
		return nil, err
	}
	return &models.MatchView{
		MatchID:       match.MatchID,
		Status:        match.Status,
		Reveal:        match.Reveal,
		Counterpart:   *counterpart,
		LastMessageAt: match.LastMessageAt,
		CreatedAt:     match.CreatedAt,
	}, nil
}

// CounterpartView resolves a polymorphic counterpart id into the rendering
// the reveal state permits: masked name and blurred photos pre-reveal, the
// full profile after.
func (s *MatchService) CounterpartView(ctx context.Context, counterpartID string, revealed bool) (*models.CounterpartView, error) {
	var (
		name      string
		age       int
		city      string
		bio       string
		interests []string
		photos    []string
	)
	if models.IsPersonaID(counterpartID) {
		persona, err := s.Personas.GetByID(counterpartID)
		if err != nil {
			return nil, err
		}
		name, age, city, bio, interests, photos =
			persona.Name, persona.Age, persona.City, persona.Bio, persona.Interests, persona.PhotoURLs
	} else {
		user, err := s.Users.Get(ctx, counterpartID)
		if err != nil {
			return nil, err
		}
		name, age, city, bio, interests, photos =
			user.Name, user.Age, user.City, user.Bio, user.Interests, user.Photos
	}

	view := &models.CounterpartView{
		ID:          counterpartID,
		Age:         age,
		City:        city,
		Bio:         bio,
		Interests:   interests,
		DistanceKm:  stubDistanceKm,
		IsAnonymous: !revealed,
	}
	if revealed {
		view.Name = name
		view.Photos = s.resolvePhotos(ctx, photos, false)
	} else {
		view.Name = MaskName(name)
		view.Photos = s.resolvePhotos(ctx, photos, true)
	}
	return view, nil
}

func (s *MatchService) resolvePhotos(ctx context.Context, refs []string, blurred bool) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		var (
			url string
			err error
		)
		if blurred {
			url, err = s.Photos.BlurredURL(ctx, ref)
		} else {
			url, err = s.Photos.FullURL(ctx, ref)
		}
		if err != nil {
			s.Log.Warn().Err(err).Str("ref", ref).Msg("failed to resolve photo url")
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// MaskName hides a display name for the anonymous rendering: first rune,
// three asterisks, last rune. Names of two runes or fewer pass unchanged.
func MaskName(name string) string {
	runes := []rune(name)
	if len(runes) <= 2 {
		return name
	}
	return string(runes[0]) + "***" + string(runes[len(runes)-1])
}
