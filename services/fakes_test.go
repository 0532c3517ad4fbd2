package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"veil_server/models"
)

// In-memory store fakes shared by the service tests. They mirror the
// conditional-write semantics of the DynamoDB repositories, including the
// ErrConflict returns the services depend on.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.UserProfile
}

func newMemUserStore(users ...*models.UserProfile) *memUserStore {
	s := &memUserStore{users: make(map[string]*models.UserProfile)}
	for _, u := range users {
		s.users[u.UserID] = u
	}
	return s
}

func (s *memUserStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) FindCandidates(_ context.Context, seeker *models.UserProfile, exclude map[string]struct{}, activeSince time.Time) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UserProfile
	for _, c := range s.users {
		if c.UserID == seeker.UserID || !c.Active {
			continue
		}
		if _, skip := exclude[c.UserID]; skip {
			continue
		}
		if c.LastActiveAt.Before(activeSince) || c.City != seeker.City {
			continue
		}
		if seeker.Preferences != nil && !seeker.Preferences.Accepts(c.Gender, c.Age) {
			continue
		}
		if c.Preferences != nil && !c.Preferences.Accepts(seeker.Gender, seeker.Age) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *memUserStore) AppendMatched(_ context.Context, userID, counterpartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	if !u.HasMatched(counterpartID) {
		u.Matched = append(u.Matched, counterpartID)
	}
	return nil
}

func (s *memUserStore) AppendSkipped(_ context.Context, userID, counterpartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	if !u.HasSkipped(counterpartID) {
		u.Skipped = append(u.Skipped, counterpartID)
	}
	return nil
}

func (s *memUserStore) ListActiveIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, u := range s.users {
		if u.Active {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memCreditStore struct {
	mu       sync.Mutex
	users    *memUserStore
	txns     map[string][]models.CreditTransaction
	debitErr error // forced error for fault injection
}

func newMemCreditStore(users *memUserStore) *memCreditStore {
	return &memCreditStore{users: users, txns: make(map[string][]models.CreditTransaction)}
}

func (s *memCreditStore) Balance(ctx context.Context, userID string) (int, string, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, "", err
	}
	return u.Credits, u.LastCreditRefresh, nil
}

func (s *memCreditStore) Debit(ctx context.Context, userID string, amount int) (int, error) {
	if s.debitErr != nil {
		return 0, s.debitErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if u.Credits < amount {
		return 0, ErrInsufficientCredits
	}
	u.Credits -= amount
	return u.Credits, nil
}

func (s *memCreditStore) Credit(ctx context.Context, userID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	u.Credits += amount
	return u.Credits, nil
}

func (s *memCreditStore) ResetBalance(ctx context.Context, userID string, allotment int, refreshedAt, staleBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if u.LastCreditRefresh != "" {
		last, perr := time.Parse(time.RFC3339, u.LastCreditRefresh)
		if perr == nil && !last.Before(staleBefore) {
			return 0, ErrConflict
		}
	}
	previous := u.Credits
	u.Credits = allotment
	u.LastCreditRefresh = refreshedAt.UTC().Format(time.RFC3339)
	return previous, nil
}

func (s *memCreditStore) AppendTransaction(_ context.Context, txn *models.CreditTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns[txn.UserID] = append(s.txns[txn.UserID], *txn)
	return nil
}

func (s *memCreditStore) ListTransactions(_ context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.txns[userID]
	out := make([]models.CreditTransaction, 0, len(all))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// ledgerSum is the running sum of a user's transaction amounts, which must
// always equal the cached balance.
func (s *memCreditStore) ledgerSum(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, txn := range s.txns[userID] {
		sum += txn.Amount
	}
	return sum
}

type memMatchStore struct {
	mu     sync.Mutex
	byPair map[string]*models.Match
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{byPair: make(map[string]*models.Match)}
}

func (s *memMatchStore) GetByID(_ context.Context, matchID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.byPair {
		if m.MatchID == matchID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memMatchStore) GetByPairKey(_ context.Context, pairKey string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byPair[pairKey]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memMatchStore) Create(_ context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byPair[m.PairKey]; exists {
		return ErrConflict
	}
	cp := *m
	s.byPair[m.PairKey] = &cp
	return nil
}

func (s *memMatchStore) Delete(_ context.Context, pairKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byPair, pairKey)
	return nil
}

func (s *memMatchStore) ListForUser(_ context.Context, userID string) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.byPair {
		if m.HasParticipant(userID) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PairKey < out[j].PairKey })
	return out, nil
}

func (s *memMatchStore) SetStatus(_ context.Context, pairKey, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byPair[pairKey]
	if !ok {
		return ErrNotFound
	}
	m.Status = status
	return nil
}

func (s *memMatchStore) SetRevealRequested(_ context.Context, pairKey string, slot int, at time.Time) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byPair[pairKey]
	if !ok {
		return nil, ErrNotFound
	}
	if m.Reveal.IsRevealed || m.RequestedBySlot(slot) {
		return nil, ErrConflict
	}
	stamp := at
	if slot == 1 {
		m.Reveal.User1Requested = true
		m.Reveal.User1RequestedAt = &stamp
	} else {
		m.Reveal.User2Requested = true
		m.Reveal.User2RequestedAt = &stamp
	}
	cp := *m
	return &cp, nil
}

func (s *memMatchStore) SetRevealed(_ context.Context, pairKey string, at time.Time) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byPair[pairKey]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.Reveal.User1Requested || !m.Reveal.User2Requested || m.Reveal.IsRevealed {
		return nil, ErrConflict
	}
	stamp := at
	m.Reveal.IsRevealed = true
	m.Reveal.RevealedAt = &stamp
	m.Status = models.MatchStatusRevealed
	cp := *m
	return &cp, nil
}

func (s *memMatchStore) TouchLastMessage(_ context.Context, pairKey string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byPair[pairKey]
	if !ok {
		return ErrNotFound
	}
	m.LastMessageAt = at
	return nil
}

type memMessageStore struct {
	mu      sync.Mutex
	byMatch map[string][]models.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{byMatch: make(map[string][]models.Message)}
}

func (s *memMessageStore) Append(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMatch[msg.MatchID] = append(s.byMatch[msg.MatchID], *msg)
	sort.Slice(s.byMatch[msg.MatchID], func(i, j int) bool {
		return s.byMatch[msg.MatchID][i].CreatedAt < s.byMatch[msg.MatchID][j].CreatedAt
	})
	return nil
}

func (s *memMessageStore) ListByMatch(_ context.Context, matchID string, limit, skip int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asc := s.byMatch[matchID]
	desc := make([]models.Message, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		desc = append(desc, asc[i])
	}
	if skip >= len(desc) {
		return nil, nil
	}
	desc = desc[skip:]
	if limit > 0 && len(desc) > limit {
		desc = desc[:limit]
	}
	return desc, nil
}

func (s *memMessageStore) GetByID(_ context.Context, messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msgs := range s.byMatch {
		for i := range msgs {
			if msgs[i].MessageID == messageID {
				cp := msgs[i]
				return &cp, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (s *memMessageStore) MarkRead(_ context.Context, matchID, createdAt string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.byMatch[matchID]
	for i := range msgs {
		if msgs[i].CreatedAt == createdAt {
			stamp := at
			msgs[i].IsRead = true
			msgs[i].ReadAt = &stamp
			return nil
		}
	}
	return ErrNotFound
}

func (s *memMessageStore) LatestForMatch(ctx context.Context, matchID string) (*models.Message, error) {
	msgs, err := s.ListByMatch(ctx, matchID, 1, 0)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

func (s *memMessageStore) CountUnread(_ context.Context, matchID, receiverID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, msg := range s.byMatch[matchID] {
		if msg.ReceiverID == receiverID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

type memReplyStore struct {
	mu      sync.Mutex
	replies map[string]*models.PendingReply
}

func newMemReplyStore() *memReplyStore {
	return &memReplyStore{replies: make(map[string]*models.PendingReply)}
}

func (s *memReplyStore) Enqueue(_ context.Context, r *models.PendingReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.replies[r.ReplyID]; exists {
		return ErrConflict
	}
	cp := *r
	s.replies[r.ReplyID] = &cp
	return nil
}

func (s *memReplyStore) DuePending(_ context.Context, now time.Time, limit int) ([]models.PendingReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.PendingReply
	for _, r := range s.replies {
		if r.Status == models.ReplyStatusPending && !r.DueAt.After(now) {
			due = append(due, *r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memReplyStore) Claim(_ context.Context, replyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.replies[replyID]
	if !ok {
		return ErrNotFound
	}
	if r.Status != models.ReplyStatusPending {
		return ErrConflict
	}
	r.Status = models.ReplyStatusProcessing
	r.Attempts++
	return nil
}

func (s *memReplyStore) SetStatus(_ context.Context, replyID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.replies[replyID]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	return nil
}

func (s *memReplyStore) CancelForMatch(_ context.Context, matchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.replies {
		if r.MatchID == matchID && r.Status == models.ReplyStatusPending {
			r.Status = models.ReplyStatusCancelled
			n++
		}
	}
	return n, nil
}

func (s *memReplyStore) byStatus(status string) []models.PendingReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PendingReply
	for _, r := range s.replies {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out
}

type memNotificationStore struct {
	mu    sync.Mutex
	items []models.Notification
}

func (s *memNotificationStore) Append(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *n)
	return nil
}

// castEvent is one recorded broadcast.
type castEvent struct {
	Room    string
	Event   string
	Payload any
}

type memBroadcaster struct {
	mu     sync.Mutex
	events []castEvent
}

func (b *memBroadcaster) ToMatch(matchID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, castEvent{Room: "match:" + matchID, Event: event, Payload: payload})
}

func (b *memBroadcaster) ToUser(userID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, castEvent{Room: "user:" + userID, Event: event, Payload: payload})
}

func (b *memBroadcaster) byEvent(event string) []castEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []castEvent
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeGenerator struct {
	fn func(ctx context.Context, system string, history []ChatTurn, message string) (string, error)

	mu          sync.Mutex
	lastSystem  string
	lastHistory []ChatTurn
	lastMessage string
}

func (g *fakeGenerator) Generate(ctx context.Context, system string, history []ChatTurn, message string) (string, error) {
	g.mu.Lock()
	g.lastSystem = system
	g.lastHistory = history
	g.lastMessage = message
	g.mu.Unlock()
	if g.fn != nil {
		return g.fn(ctx, system, history, message)
	}
	return "hey! nice to hear from you", nil
}

// fakePhotos resolves photo refs into deterministic URLs so tests can assert
// blur routing.
type fakePhotos struct{}

func (fakePhotos) BlurredURL(_ context.Context, ref string) (string, error) {
	return "blur://" + ref, nil
}

func (fakePhotos) FullURL(_ context.Context, ref string) (string, error) {
	return "full://" + ref, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []models.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, userID, ntype, title, body, matchID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, models.Notification{UserID: userID, Type: ntype, Title: title, Body: body, MatchID: matchID})
}

type fakeCanceller struct {
	mu      sync.Mutex
	matches []string
}

func (c *fakeCanceller) CancelPendingReplies(_ context.Context, matchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = append(c.matches, matchID)
}

type fakeScheduler struct {
	mu       sync.Mutex
	triggers []models.Message
}

func (f *fakeScheduler) Schedule(_ context.Context, _ *models.Match, trigger *models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, *trigger)
}

type fakePresence struct {
	online map[string]bool
}

func (p *fakePresence) IsOnline(_ context.Context, userID string) (bool, error) {
	return p.online[userID], nil
}

// fixedClock returns a Now func pinned to t, adjustable through the pointer.
func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}
