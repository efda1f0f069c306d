package service

import (
	"context"
	"sync"
	"time"

	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/provider"
	"github.com/rizkyhp/medremind/internal/queue"
	"github.com/rizkyhp/medremind/internal/repository"
)

type fakeLogRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.LogEntry

	pending    []domain.LogEntry
	pendingErr error

	markTakenStock    int
	markTakenErr      error
	markNotTakenStock int
	markNotTakenErr   error

	upsertErr   error
	upsertCalls int

	markTakenCalls    []string
	markNotTakenCalls []string
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{entries: make(map[string]*domain.LogEntry)}
}

func (r *fakeLogRepo) put(entry domain.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := entry
	r.entries[entry.ID] = &copied
}

func (r *fakeLogRepo) Upsert(_ context.Context, e *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCalls++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	copied := *e
	r.entries[e.ID] = &copied
	return nil
}

func (r *fakeLogRepo) GetByID(_ context.Context, id string) (*domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *fakeLogRepo) GetPendingForDate(_ context.Context, _ time.Time, _ int) ([]domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingErr != nil {
		return nil, r.pendingErr
	}
	return append([]domain.LogEntry(nil), r.pending...), nil
}

func (r *fakeLogRepo) List(_ context.Context, _ repository.ListParams) ([]domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeLogRepo) MarkTaken(_ context.Context, id string, takenAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markTakenCalls = append(r.markTakenCalls, id)
	if r.markTakenErr != nil {
		return 0, r.markTakenErr
	}
	if entry, ok := r.entries[id]; ok {
		entry.TakenStatus = domain.StatusTaken
		at := takenAt
		entry.TakenAt = &at
	}
	return r.markTakenStock, nil
}

func (r *fakeLogRepo) MarkNotTaken(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markNotTakenCalls = append(r.markNotTakenCalls, id)
	if r.markNotTakenErr != nil {
		return 0, r.markNotTakenErr
	}
	if entry, ok := r.entries[id]; ok {
		entry.TakenStatus = domain.StatusNotTaken
		entry.TakenAt = nil
	}
	return r.markNotTakenStock, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile
	getErr   error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.UserProfile)}
}

func (r *fakeProfileRepo) put(profile domain.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := profile
	r.profiles[profile.UserID] = &copied
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *domain.UserProfile) error {
	r.put(*p)
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

type fakePushProvider struct {
	mu      sync.Mutex
	sent    []provider.PushMessage
	sendErr error
}

func (p *fakePushProvider) Send(_ context.Context, msg provider.PushMessage) (*provider.PushReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return nil, p.sendErr
	}
	p.sent = append(p.sent, msg)
	return &provider.PushReceipt{StatusCode: 200, TicketID: "ticket-1"}, nil
}

func (p *fakePushProvider) sentMessages() []provider.PushMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]provider.PushMessage(nil), p.sent...)
}

type fakeRateLimiter struct {
	mu        sync.Mutex
	waitCalls int
	waitErr   error
}

func (l *fakeRateLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func (l *fakeRateLimiter) Wait(context.Context, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waitCalls++
	return l.waitErr
}

// fakeScheduler records fire scheduling calls. It satisfies Armer,
// FireScheduler, and Forgetter.
type fakeScheduler struct {
	mu      sync.Mutex
	armed   map[string]time.Time
	rearmed map[string]time.Time
	forgot  []string
	armResp bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		armed:   make(map[string]time.Time),
		rearmed: make(map[string]time.Time),
		armResp: true,
	}
}

func (s *fakeScheduler) Arm(logID string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armResp {
		return false
	}
	if _, exists := s.armed[logID]; exists {
		return false
	}
	s.armed[logID] = at
	return true
}

func (s *fakeScheduler) Rearm(logID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rearmed[logID] = at
}

func (s *fakeScheduler) Forget(logID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgot = append(s.forgot, logID)
}

type fakePublisher struct {
	mu         sync.Mutex
	published  []queue.LogCreatedMessage
	publishErr error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, msg queue.LogCreatedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// fakeConsumer feeds a fixed set of messages to the handler, then blocks
// until the context is cancelled.
type fakeConsumer struct {
	mu       sync.Mutex
	messages []queue.LogCreatedMessage
	handled  int
}

func (c *fakeConsumer) Consume(ctx context.Context, _ string, handler queue.MessageHandler) error {
	c.mu.Lock()
	pending := c.messages
	c.messages = nil
	c.mu.Unlock()

	for _, msg := range pending {
		if err := handler(ctx, msg); err != nil {
			return err
		}
		c.mu.Lock()
		c.handled++
		c.mu.Unlock()
	}

	<-ctx.Done()
	return nil
}

func (c *fakeConsumer) Close() error { return nil }

func strPtr(s string) *string { return &s }
