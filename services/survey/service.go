// Package survey ties the provider integrations together: it runs
// login/eligibility validation, stashes fetched interaction snapshots,
// and serves a non-repeating randomized sequence of interactions to
// the survey frontend.
package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"voicesurvey-backend/lib/interaction"
	"voicesurvey-backend/lib/telemetry"
	"voicesurvey-backend/lib/validation"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/survey")

type Provider string

const (
	ProviderAlexa     Provider = "alexa"
	ProviderAssistant Provider = "assistant"
)

var (
	ErrUnknownProvider = fmt.Errorf("unknown provider")
	ErrNoSession       = fmt.Errorf("unknown session id")
)

// Validator is the provider-facing entry point; both scraper clients
// satisfy it.
type Validator interface {
	Validate(ctx context.Context) validation.Result
}

type Service struct {
	store      snapshotStore
	validators map[Provider]Validator
	probe      *resty.Client

	mu       sync.Mutex
	rnd      *rand.Rand
	sessions map[string]*interaction.Session
}

func NewService(database *sql.DB, validators map[Provider]Validator) *Service {
	probe := resty.New()
	probe.SetTimeout(time.Second * 15)
	telemetry.InstrumentResty(probe, "services/survey/probe")

	return &Service{
		store:      snapshotStore{db: database},
		validators: validators,
		probe:      probe,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions:   map[string]*interaction.Session{},
	}
}

// Validate runs one provider's login/eligibility check. On a logged-in
// result the normalized interactions are stashed so a later session
// can render them without refetching.
func (s *Service) Validate(ctx context.Context, provider Provider) (validation.Result, error) {
	ctx, span := tracer.Start(ctx, "Validate")
	defer span.End()

	validator, ok := s.validators[provider]
	if !ok {
		return validation.Result{}, ErrUnknownProvider
	}

	result := validator.Validate(ctx)
	if result.Status != validation.StatusLoggedIn {
		return result, nil
	}

	payload, err := json.Marshal(result.Interactions)
	if err != nil {
		return validation.Result{}, err
	}
	err = s.store.Save(ctx, provider, payload, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stash interaction snapshot")
		return validation.Result{}, err
	}
	return result, nil
}

// StartSession loads the stashed snapshot for a provider, filters out
// low-value records, orders them recordings-first and opens a fresh
// sampling session. Starting a new session is the only way to reset
// the seen set.
func (s *Service) StartSession(ctx context.Context, provider Provider) (id string, remaining int, err error) {
	ctx, span := tracer.Start(ctx, "StartSession")
	defer span.End()

	payload, err := s.store.Load(ctx, provider)
	if err != nil {
		return "", 0, err
	}
	var list []interaction.Interaction
	err = json.Unmarshal(payload, &list)
	if err != nil {
		return "", 0, fmt.Errorf("stored snapshot is unreadable: %w", err)
	}

	list = interaction.Filter(ctx, s.probe, list)

	s.mu.Lock()
	defer s.mu.Unlock()

	interaction.Order(s.rnd, list)
	id = uuid.NewString()
	s.sessions[id] = interaction.NewSession(s.rnd, list)
	return id, len(list), nil
}

// Next returns one not-yet-seen interaction from the session, failing
// with interaction.ErrAllSeen once the session is exhausted.
func (s *Service) Next(ctx context.Context, sessionID string) (interaction.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return interaction.Interaction{}, ErrNoSession
	}
	return session.Next()
}

// EndSession drops the session's sampling state.
func (s *Service) EndSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
