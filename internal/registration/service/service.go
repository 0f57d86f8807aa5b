// Package service implements the conversation engine: it walks the flow
// table, owns the working set, and flushes snapshots.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"bhandara/internal/audit"
	"bhandara/internal/registration/flow"
	regmetrics "bhandara/internal/registration/metrics"
	"bhandara/internal/registration/models"
	dErrors "bhandara/pkg/domain-errors"
	"bhandara/pkg/platform/sentinel"
)

// Store is the engine's working set of conversations.
type Store interface {
	Create(ctx context.Context, rec *models.Conversation) error
	Get(ctx context.Context, id string) (*models.Conversation, error)
	Update(ctx context.Context, rec *models.Conversation) error
	All(ctx context.Context) ([]*models.Conversation, error)
}

// Snapshotter is the durable copy of the record set.
type Snapshotter interface {
	Load(ctx context.Context) ([]*models.Conversation, error)
	Save(ctx context.Context, records []*models.Conversation) error
}

// Auditor receives lifecycle events. Emit must never block.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the conversation engine. One instance per process; all state
// is injected so tests can build isolated engines.
type Service struct {
	store   Store
	snap    Snapshotter
	variant *flow.Variant
	logger  *slog.Logger
	metrics *regmetrics.Metrics
	auditor Auditor
	tracer  trace.Tracer

	// locks serializes Advance per conversation. Different conversations
	// proceed in parallel; the store's own lock covers map access.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides conversation id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithMetrics attaches domain metrics.
func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditor attaches the lifecycle event sink.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithTracer attaches an OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// New builds the engine for one flow variant.
func New(store Store, snap Snapshotter, variant *flow.Variant, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		snap:    snap,
		variant: variant,
		logger:  logger,
		tracer:  tracenoop.NewTracerProvider().Tracer("noop"),
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start allocates a new conversation at the start step and returns its id.
// A failed snapshot write is logged but does not fail the call.
func (s *Service) Start(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Start")
	defer span.End()

	rec := models.NewConversation(s.newID(), s.now())
	if err := s.store.Create(ctx, rec); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create conversation")
	}

	s.flush(ctx)
	if s.metrics != nil {
		s.metrics.ConversationsStarted.Inc()
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			ConversationID: rec.ID,
			Action:         audit.ActionStarted,
			Step:           models.StepStart,
		})
	}

	span.SetAttributes(attribute.String("conversation.id", rec.ID))
	return rec.ID, nil
}

// Advance feeds one input into the conversation. A validation rejection is
// returned as a normal StepResult with Error/ErrorStep set and leaves the
// record untouched; protocol failures (unknown id, terminal or unknown
// state) are returned as coded errors.
func (s *Service) Advance(ctx context.Context, id, input string) (*models.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Advance",
		trace.WithAttributes(attribute.String("conversation.id", id)))
	defer span.End()

	start := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveAdvance(time.Since(start))
		}
	}()

	unlock := s.lock(id)
	defer unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "Conversation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load conversation")
	}
	if rec.Terminal() {
		return nil, dErrors.Wrap(sentinel.ErrTerminal, dErrors.CodeInvalidState, "Conversation already "+string(rec.CurrentStep))
	}

	step, ok := s.variant.Step(rec.CurrentStep)
	if !ok {
		return nil, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvalidState, "Invalid conversation state")
	}
	span.SetAttributes(attribute.String("conversation.step", string(rec.CurrentStep)))

	if step.Validate != nil {
		if msg := step.Validate(input); msg != "" {
			if s.metrics != nil {
				s.metrics.ValidationFailures.WithLabelValues(string(rec.CurrentStep)).Inc()
			}
			if s.auditor != nil {
				s.auditor.Emit(ctx, audit.Event{
					ConversationID: rec.ID,
					Action:         audit.ActionRejected,
					Step:           rec.CurrentStep,
				})
			}
			// No store write, no flush: rejected input leaves the record as-is.
			return &models.StepResult{Error: msg, ErrorStep: rec.CurrentStep}, nil
		}
	}

	if step.Commit != nil {
		step.Commit(rec, input)
	}
	rec.CurrentStep = step.Next(input)

	result := s.resultFor(rec)
	if rec.CurrentStep == models.StepCompleted {
		rec.Fields[models.FieldRegistrationTimestamp] = s.now().Format(time.RFC3339)
		result.RegistrationData = rec.Fields.Clone()
	}

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update conversation")
	}
	s.flush(ctx)
	s.observeTransition(ctx, rec)

	return result, nil
}

// resultFor builds the success response for the step the record just moved
// into.
func (s *Service) resultFor(rec *models.Conversation) *models.StepResult {
	result := &models.StepResult{NextStep: rec.CurrentStep}

	switch rec.CurrentStep {
	case models.StepCompleted:
		result.NextStepMessage = "Registration completed successfully!"
		result.Message = "Registration completed"
		result.ConversationID = rec.ID
	case models.StepCancelled:
		result.NextStepMessage = "Registration cancelled"
		result.Message = "Registration cancelled"
	default:
		next, _ := s.variant.Step(rec.CurrentStep)
		result.NextStepMessage = next.Prompt
		result.Options = next.Options
		if rec.CurrentStep == models.StepConfirmation {
			result.RegistrationData = rec.Fields.Clone()
		}
	}
	return result
}

func (s *Service) observeTransition(ctx context.Context, rec *models.Conversation) {
	switch rec.CurrentStep {
	case models.StepCompleted:
		if s.metrics != nil {
			s.metrics.RegistrationsCompleted.Inc()
		}
		if s.auditor != nil {
			s.auditor.Emit(ctx, audit.Event{
				ConversationID: rec.ID,
				Action:         audit.ActionCompleted,
				Step:           rec.CurrentStep,
			})
		}
	case models.StepCancelled:
		if s.metrics != nil {
			s.metrics.RegistrationsCancelled.Inc()
		}
		if s.auditor != nil {
			s.auditor.Emit(ctx, audit.Event{
				ConversationID: rec.ID,
				Action:         audit.ActionCancelled,
				Step:           rec.CurrentStep,
			})
		}
	default:
		if s.auditor != nil {
			s.auditor.Emit(ctx, audit.Event{
				ConversationID: rec.ID,
				Action:         audit.ActionAdvanced,
				Step:           rec.CurrentStep,
			})
		}
	}
}

// List returns one page of completed registrations plus the pre-pagination
// total. Unknown sort keys leave the set unsorted; out-of-range skip/limit
// yield an empty page.
func (s *Service) List(ctx context.Context, q models.ListQuery) (*models.Page, error) {
	ctx, span := s.tracer.Start(ctx, "registration.List")
	defer span.End()

	all, err := s.store.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list conversations")
	}

	completed := make([]models.Fields, 0)
	for _, rec := range all {
		if rec.CurrentStep == models.StepCompleted {
			completed = append(completed, rec.Fields.Clone())
		}
	}

	if q.SortBy == "timestamp" {
		desc := q.SortOrder == "desc"
		sort.SliceStable(completed, func(i, j int) bool {
			a := timestampOf(completed[i])
			b := timestampOf(completed[j])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	total := len(completed)
	skip, limit := q.Skip, q.Limit
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	span.SetAttributes(attribute.Int("registrations.total", total))
	return &models.Page{
		Registrations: completed[skip:end],
		TotalCount:    total,
		Skip:          q.Skip,
		Limit:         q.Limit,
	}, nil
}

func timestampOf(fields models.Fields) string {
	ts, _ := fields[models.FieldRegistrationTimestamp].(string)
	return ts
}

// flush writes the full record set to the snapshot backend. Failures are
// logged and counted, never propagated: a storage hiccup must not block the
// conversational flow.
func (s *Service) flush(ctx context.Context) {
	records, err := s.store.All(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to collect records for snapshot", "error", err)
		return
	}
	if err := s.snap.Save(ctx, records); err != nil {
		if s.metrics != nil {
			s.metrics.SnapshotSaveFailures.Inc()
		}
		s.logger.WarnContext(ctx, "snapshot save failed, continuing", "error", err)
	}
}

func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}
