// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// SearchState is the lifecycle of one search batch.
type SearchState string

const (
	StateIdle      SearchState = "idle"
	StateRunning   SearchState = "running"
	StateCompleted SearchState = "completed"
)

// ErrNothingToSearch is returned when the query is empty or no providers
// are selected. The previous batch's state is left untouched.
var ErrNothingToSearch = errors.New("nothing to search: empty query or no providers selected")

// ErrSearchInFlight is returned when a batch is started while another is
// still running. Overlapping batches would interleave writes to the answer
// map, so they are rejected rather than queued.
var ErrSearchInFlight = errors.New("a search is already in flight")

// Snapshot is a point-in-time copy of the current batch, safe for callers
// to read while the batch is still running. Answers fill in one by one as
// provider calls resolve; the map is complete only once State is
// StateCompleted.
type Snapshot struct {
	State    SearchState
	Query    string
	Selected []string
	Answers  map[string]model.AnswerRecord
	Summary  string
}

// SearchService is the aggregation engine: it fans one query out to every
// selected provider concurrently, accumulates answer records as calls
// resolve, runs the summarization policy over the successful answers, and
// appends the completed batch to history.
type SearchService struct {
	providers    driven.ProviderRegistry
	creds        driven.CredentialStore
	history      driven.HistoryStore
	summaryOrder []string

	mu       sync.Mutex
	state    SearchState
	query    string
	selected []string
	answers  map[string]model.AnswerRecord
	summary  string
}

// NewSearchService creates a SearchService. summaryOrder is the fixed
// summarizer candidate priority; nil selects DefaultSummaryOrder.
func NewSearchService(
	providers driven.ProviderRegistry,
	creds driven.CredentialStore,
	history driven.HistoryStore,
	summaryOrder []string,
) *SearchService {
	if summaryOrder == nil {
		summaryOrder = DefaultSummaryOrder
	}
	return &SearchService{
		providers:    providers,
		creds:        creds,
		history:      history,
		summaryOrder: summaryOrder,
		state:        StateIdle,
		answers:      make(map[string]model.AnswerRecord),
	}
}

// Run executes one search batch synchronously: dispatch, join, summarize,
// history append. It returns ErrNothingToSearch or ErrSearchInFlight
// without touching prior state when the entry guards fail.
func (s *SearchService) Run(ctx context.Context, query string, selected []string) error {
	q, ids, err := s.begin(query, selected)
	if err != nil {
		return err
	}
	s.execute(ctx, q, ids)
	return nil
}

// Start is the fire-and-forget variant of Run for driving adapters that
// poll Snapshot for progress. The guards run synchronously so the caller
// still learns about rejected invocations; the batch itself runs detached
// from the request context, since once dispatched all provider calls run
// to completion.
func (s *SearchService) Start(query string, selected []string) error {
	q, ids, err := s.begin(query, selected)
	if err != nil {
		return err
	}
	go s.execute(context.Background(), q, ids)
	return nil
}

// Snapshot returns a copy of the current batch state.
func (s *SearchService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[string]model.AnswerRecord, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	selected := make([]string, len(s.selected))
	copy(selected, s.selected)

	return Snapshot{
		State:    s.state,
		Query:    s.query,
		Selected: selected,
		Answers:  answers,
		Summary:  s.summary,
	}
}

// begin validates the invocation and, on success, claims the engine for a
// new batch: previous answers and summary are cleared and the state moves
// to Running. Guard failures leave all prior state untouched.
func (s *SearchService) begin(query string, selected []string) (string, []string, error) {
	q := strings.TrimSpace(query)
	if q == "" || len(selected) == 0 {
		return "", nil, ErrNothingToSearch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return "", nil, ErrSearchInFlight
	}

	ids := make([]string, len(selected))
	copy(ids, selected)

	s.state = StateRunning
	s.query = q
	s.selected = ids
	s.answers = make(map[string]model.AnswerRecord, len(ids))
	s.summary = ""

	return q, ids, nil
}

// execute runs the claimed batch to completion.
func (s *SearchService) execute(ctx context.Context, query string, selected []string) {
	start := time.Now()

	var g errgroup.Group
	for _, id := range selected {
		g.Go(func() error {
			rec := s.callProvider(ctx, id, query)

			s.mu.Lock()
			s.answers[id] = rec
			s.mu.Unlock()

			return nil
		})
	}
	// Join: every dispatched call resolves, success or failure. One slow or
	// failing provider never drops the others.
	_ = g.Wait()

	summary := s.summarize(ctx, s.successfulAnswers(selected))

	s.mu.Lock()
	s.summary = summary
	s.state = StateCompleted
	record := model.SearchRecord{
		ID:        ulid.Make().String(),
		Query:     query,
		Answers:   s.orderedAnswers(selected),
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	if err := s.history.Append(ctx, record); err != nil {
		slog.Warn("failed to append search to history", "error", err)
	}

	slog.Info("search batch complete",
		"providers", len(selected),
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// callProvider invokes one provider and converts the outcome, success or
// typed failure, into an immutable AnswerRecord.
func (s *SearchService) callProvider(ctx context.Context, id, query string) model.AnswerRecord {
	client, ok := s.providers.Lookup(id)
	if !ok {
		return failedAnswer(id, "This provider is not registered.",
			model.NewProviderError(id, model.ErrorKindProviderUnavailable, "provider not registered"))
	}
	if !s.providers.Available(id) {
		return failedAnswer(id, client.DisplayName()+" is not yet available.",
			model.NewProviderError(id, model.ErrorKindProviderUnavailable, "provider not available"))
	}

	// No key on file dispatches with the empty credential so the adapter
	// decides: mocks answer anyway, live adapters fail MissingCredential.
	key, err := s.creds.GetKey(ctx, id)
	if err != nil {
		slog.Warn("credential lookup failed, dispatching without key", "provider", id, "error", err)
		key = ""
	}

	content, err := client.Search(ctx, query, key)
	if err != nil {
		return failedAnswer(id, err.Error(), err)
	}

	return model.AnswerRecord{
		ProviderID: id,
		Content:    content,
		ProducedAt: time.Now().UTC(),
	}
}

// failedAnswer builds the error record for a provider call. Content carries
// a best-effort display message even in the failure case.
func failedAnswer(id, content string, err error) model.AnswerRecord {
	return model.AnswerRecord{
		ProviderID: id,
		Content:    content,
		ProducedAt: time.Now().UTC(),
		ErrMessage: err.Error(),
	}
}

// successfulAnswers returns the non-error answers in selection order,
// paired with their providers' display names. Error records are never
// summarized.
func (s *SearchService) successfulAnswers(selected []string) []model.SourcedAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.SourcedAnswer
	for _, id := range selected {
		rec, ok := s.answers[id]
		if !ok || rec.Failed() {
			continue
		}
		out = append(out, model.SourcedAnswer{
			DisplayName: s.providers.DisplayName(id),
			Content:     rec.Content,
		})
	}
	return out
}

// orderedAnswers returns all answer records in selection order. Callers
// must hold s.mu.
func (s *SearchService) orderedAnswers(selected []string) []model.AnswerRecord {
	out := make([]model.AnswerRecord, 0, len(selected))
	for _, id := range selected {
		if rec, ok := s.answers[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}
