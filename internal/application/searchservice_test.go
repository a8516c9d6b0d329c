package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyask/polyask/internal/application"
	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// --- Mock implementations ---

type stubProvider struct {
	id     string
	name   string
	search func(ctx context.Context, query, apiKey string) (string, error)
}

func (p *stubProvider) ID() string          { return p.id }
func (p *stubProvider) DisplayName() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query, apiKey string) (string, error) {
	return p.search(ctx, query, apiKey)
}

// summarizingProvider adds the Summarizer capability on top of stubProvider.
type summarizingProvider struct {
	stubProvider
	summarize func(ctx context.Context, answers []model.SourcedAnswer, apiKey string) (string, error)
}

func (p *summarizingProvider) Summarize(ctx context.Context, answers []model.SourcedAnswer, apiKey string) (string, error) {
	return p.summarize(ctx, answers, apiKey)
}

type stubRegistry struct {
	order       []string
	clients     map[string]driven.ProviderClient
	unavailable map[string]bool
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		clients:     make(map[string]driven.ProviderClient),
		unavailable: make(map[string]bool),
	}
}

func (r *stubRegistry) add(c driven.ProviderClient) *stubRegistry {
	r.order = append(r.order, c.ID())
	r.clients[c.ID()] = c
	return r
}

func (r *stubRegistry) Lookup(id string) (driven.ProviderClient, bool) {
	c, ok := r.clients[id]
	return c, ok
}

func (r *stubRegistry) Available(id string) bool {
	_, ok := r.clients[id]
	return ok && !r.unavailable[id]
}

func (r *stubRegistry) DisplayName(id string) string {
	if c, ok := r.clients[id]; ok {
		return c.DisplayName()
	}
	return id
}

func (r *stubRegistry) Descriptors() []model.ProviderDescriptor {
	out := make([]model.ProviderDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, model.ProviderDescriptor{
			ID:          id,
			DisplayName: r.clients[id].DisplayName(),
			Available:   !r.unavailable[id],
		})
	}
	return out
}

type stubCredStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newStubCredStore(keys map[string]string) *stubCredStore {
	if keys == nil {
		keys = make(map[string]string)
	}
	return &stubCredStore{keys: keys}
}

func (s *stubCredStore) SetKey(_ context.Context, providerID, plaintext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[providerID] = plaintext
	return nil
}

func (s *stubCredStore) GetKey(_ context.Context, providerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[providerID], nil
}

func (s *stubCredStore) List(_ context.Context) ([]model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Credential
	for id, key := range s.keys {
		out = append(out, model.Credential{ProviderID: id, Key: key})
	}
	return out, nil
}

func (s *stubCredStore) DeleteKey(_ context.Context, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, providerID)
	return nil
}

type stubHistory struct {
	mu      sync.Mutex
	records []model.SearchRecord
}

func (h *stubHistory) Append(_ context.Context, rec model.SearchRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]model.SearchRecord{rec}, h.records...)
	return nil
}

func (h *stubHistory) Load(_ context.Context) ([]model.SearchRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.SearchRecord, len(h.records))
	copy(out, h.records)
	return out, nil
}

func (h *stubHistory) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// echoProvider answers with a fixed string regardless of key.
func echoProvider(id, name, answer string) *stubProvider {
	return &stubProvider{
		id:   id,
		name: name,
		search: func(context.Context, string, string) (string, error) {
			return answer, nil
		},
	}
}

// liveStubProvider fails MissingCredential on an empty key, like a live
// adapter, and answers otherwise.
func liveStubProvider(id, name, answer string) *stubProvider {
	return &stubProvider{
		id:   id,
		name: name,
		search: func(_ context.Context, _ string, apiKey string) (string, error) {
			if apiKey == "" {
				return "", model.NewProviderError(id, model.ErrorKindMissingCredential, "No API key is configured for "+name+".")
			}
			return answer, nil
		},
	}
}

// --- Tests ---

func TestSearchService_PartialFailureIsolation(t *testing.T) {
	reg := newStubRegistry().
		add(echoProvider("openai", "ChatGPT", "answer from chatgpt")).
		add(&stubProvider{
			id:   "gemini",
			name: "Gemini",
			search: func(context.Context, string, string) (string, error) {
				return "", model.NewProviderError("gemini", model.ErrorKindProviderUnavailable, "Gemini is currently unavailable (HTTP 503).")
			},
		}).
		add(echoProvider("claude", "Claude", "answer from claude"))

	svc := application.NewSearchService(reg, newStubCredStore(nil), &stubHistory{}, nil)

	err := svc.Run(context.Background(), "a question", []string{"openai", "gemini", "claude"})
	require.NoError(t, err)

	snap := svc.Snapshot()
	assert.Equal(t, application.StateCompleted, snap.State)
	require.Len(t, snap.Answers, 3)

	assert.False(t, snap.Answers["openai"].Failed())
	assert.Equal(t, "answer from chatgpt", snap.Answers["openai"].Content)

	assert.True(t, snap.Answers["gemini"].Failed())
	assert.Contains(t, snap.Answers["gemini"].ErrMessage, "unavailable")
	assert.NotEmpty(t, snap.Answers["gemini"].Content, "failure records still carry display text")

	assert.False(t, snap.Answers["claude"].Failed())
}

func TestSearchService_EmptyInputGuards(t *testing.T) {
	reg := newStubRegistry().add(echoProvider("openai", "ChatGPT", "first answer"))
	history := &stubHistory{}
	svc := application.NewSearchService(reg, newStubCredStore(nil), history, nil)

	// Establish prior state.
	require.NoError(t, svc.Run(context.Background(), "first question", []string{"openai"}))
	before := svc.Snapshot()

	err := svc.Run(context.Background(), "   \t\n ", []string{"openai"})
	assert.ErrorIs(t, err, application.ErrNothingToSearch)

	err = svc.Run(context.Background(), "a question", nil)
	assert.ErrorIs(t, err, application.ErrNothingToSearch)

	after := svc.Snapshot()
	assert.Equal(t, before, after, "guard failures must leave prior state unchanged")
	assert.Equal(t, 1, history.len())
}

func TestSearchService_RejectsOverlappingInvocation(t *testing.T) {
	release := make(chan struct{})
	reg := newStubRegistry().add(&stubProvider{
		id:   "openai",
		name: "ChatGPT",
		search: func(ctx context.Context, _, _ string) (string, error) {
			<-release
			return "slow answer", nil
		},
	})

	svc := application.NewSearchService(reg, newStubCredStore(nil), &stubHistory{}, nil)

	require.NoError(t, svc.Start("a question", []string{"openai"}))
	assert.Equal(t, application.StateRunning, svc.Snapshot().State)

	err := svc.Start("another question", []string{"openai"})
	assert.ErrorIs(t, err, application.ErrSearchInFlight)

	close(release)
	require.Eventually(t, func() bool {
		return svc.Snapshot().State == application.StateCompleted
	}, 2*time.Second, 10*time.Millisecond)

	// Completed engines accept the next batch.
	require.NoError(t, svc.Run(context.Background(), "third question", []string{"openai"}))
}

func TestSearchService_IncrementalVisibility(t *testing.T) {
	release := make(chan struct{})
	reg := newStubRegistry().
		add(echoProvider("openai", "ChatGPT", "fast answer")).
		add(&stubProvider{
			id:   "claude",
			name: "Claude",
			search: func(ctx context.Context, _, _ string) (string, error) {
				<-release
				return "slow answer", nil
			},
		})

	svc := application.NewSearchService(reg, newStubCredStore(nil), &stubHistory{}, nil)
	require.NoError(t, svc.Start("a question", []string{"openai", "claude"}))

	// The fast provider's record becomes visible while the batch is still
	// running and the slow provider is unresolved.
	require.Eventually(t, func() bool {
		snap := svc.Snapshot()
		_, fastDone := snap.Answers["openai"]
		return fastDone && snap.State == application.StateRunning
	}, 2*time.Second, 5*time.Millisecond)

	snap := svc.Snapshot()
	_, slowDone := snap.Answers["claude"]
	assert.False(t, slowDone)

	close(release)
	require.Eventually(t, func() bool {
		return svc.Snapshot().State == application.StateCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, svc.Snapshot().Answers, 2)
}

func TestSearchService_MissingCredentialScenario(t *testing.T) {
	// Worked example: A has a valid credential and answers "42", B has no
	// credential on file.
	reg := newStubRegistry().
		add(liveStubProvider("openai", "ChatGPT", "42")).
		add(liveStubProvider("gemini", "Gemini", "unused"))

	creds := newStubCredStore(map[string]string{"openai": "sk-real"})
	svc := application.NewSearchService(reg, creds, &stubHistory{}, nil)

	require.NoError(t, svc.Run(context.Background(), "the question", []string{"openai", "gemini"}))

	snap := svc.Snapshot()
	assert.Equal(t, "42", snap.Answers["openai"].Content)
	assert.False(t, snap.Answers["openai"].Failed())

	assert.True(t, snap.Answers["gemini"].Failed())
	assert.Contains(t, snap.Answers["gemini"].ErrMessage, "No API key")
}

func TestSearchService_UnavailableProviderNeverDispatched(t *testing.T) {
	invoked := false
	reg := newStubRegistry().add(&stubProvider{
		id:   "perplexity",
		name: "Perplexity",
		search: func(context.Context, string, string) (string, error) {
			invoked = true
			return "should not happen", nil
		},
	})
	reg.unavailable["perplexity"] = true

	svc := application.NewSearchService(reg, newStubCredStore(nil), &stubHistory{}, nil)
	require.NoError(t, svc.Run(context.Background(), "q", []string{"perplexity"}))

	assert.False(t, invoked)
	rec := svc.Snapshot().Answers["perplexity"]
	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Content, "not yet available")
}

func TestSearchService_UnregisteredProviderRecorded(t *testing.T) {
	reg := newStubRegistry().add(echoProvider("openai", "ChatGPT", "ok"))
	svc := application.NewSearchService(reg, newStubCredStore(nil), &stubHistory{}, nil)

	require.NoError(t, svc.Run(context.Background(), "q", []string{"openai", "ghost"}))

	snap := svc.Snapshot()
	assert.False(t, snap.Answers["openai"].Failed())
	assert.True(t, snap.Answers["ghost"].Failed())
}

func TestSearchService_AppendsHistory(t *testing.T) {
	reg := newStubRegistry().
		add(echoProvider("openai", "ChatGPT", "answer a")).
		add(echoProvider("gemini", "Gemini", "answer b"))
	history := &stubHistory{}
	svc := application.NewSearchService(reg, newStubCredStore(nil), history, nil)

	require.NoError(t, svc.Run(context.Background(), "  padded question  ", []string{"gemini", "openai"}))

	records, err := history.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "padded question", rec.Query, "query is trimmed before dispatch")
	assert.False(t, rec.CreatedAt.IsZero())

	// Answers preserve selection order.
	require.Len(t, rec.Answers, 2)
	assert.Equal(t, "gemini", rec.Answers[0].ProviderID)
	assert.Equal(t, "openai", rec.Answers[1].ProviderID)
}

func TestSearchService_RunTwiceClearsPreviousBatch(t *testing.T) {
	reg := newStubRegistry().
		add(echoProvider("openai", "ChatGPT", "answer one")).
		add(echoProvider("gemini", "Gemini", "answer two"))
	svc := application.NewSearchService(reg, newStubCredStore(nil), &stubHistory{}, nil)

	require.NoError(t, svc.Run(context.Background(), "first", []string{"openai", "gemini"}))
	require.NoError(t, svc.Run(context.Background(), "second", []string{"openai"}))

	snap := svc.Snapshot()
	assert.Equal(t, "second", snap.Query)
	assert.Len(t, snap.Answers, 1, "previous batch's records are cleared on entry")
	_, stale := snap.Answers["gemini"]
	assert.False(t, stale)
}

func TestSearchService_HistoryFailureIsNotFatal(t *testing.T) {
	reg := newStubRegistry().add(echoProvider("openai", "ChatGPT", "ok"))
	svc := application.NewSearchService(reg, newStubCredStore(nil), &failingHistory{}, nil)

	require.NoError(t, svc.Run(context.Background(), "q", []string{"openai"}))
	assert.Equal(t, application.StateCompleted, svc.Snapshot().State)
}

type failingHistory struct{}

func (failingHistory) Append(context.Context, model.SearchRecord) error {
	return errors.New("disk full")
}

func (failingHistory) Load(context.Context) ([]model.SearchRecord, error) {
	return nil, nil
}
