package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jimezsa/prepsite/internal/api"
	"github.com/jimezsa/prepsite/internal/store"
	"github.com/rs/zerolog"
)

// Remote is the authoritative account API.
type Remote interface {
	SubscriptionStatus(ctx context.Context) (api.SubscriptionStatus, error)
	QuestionnaireStatus(ctx context.Context) (api.QuestionnaireStatus, error)
	SubmitQuestionnaire(ctx context.Context, sub api.QuestionnaireSubmission) (api.SubmitResult, error)
}

// Cache holds the non-authoritative local copy of submitted answers.
type Cache interface {
	GetJSON(ctx context.Context, scope store.Scope, key string, out any) error
	PutJSON(ctx context.Context, scope store.Scope, key string, v any) error
}

// CachedAnswers is the local mirror of one submission.
type CachedAnswers struct {
	SubmissionID string    `json:"submission_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Answers      Answers   `json:"answers"`
}

// Status is the two-tier questionnaire state. Completed always comes from
// the API; Prefill only seeds the wizard.
type Status struct {
	Completed bool           `json:"completed"`
	Prefill   *CachedAnswers `json:"prefill,omitempty"`
}

type Plan struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Interval string   `json:"interval"`
	Note     string   `json:"note,omitempty"`
	Features []string `json:"features"`
}

// TrialNote is printed under the plans.
const TrialNote = "All plans include a 3-day free trial. No credit card required to start."

func Plans() []Plan {
	return []Plan{
		{
			Name:     "Monthly",
			Price:    "$25",
			Interval: "month",
			Features: []string{"50 credits per day", "All features included", "Interview video guides", "5% off coaching services"},
		},
		{
			Name:     "Annual",
			Price:    "$199",
			Interval: "year",
			Note:     "Save 33%",
			Features: []string{"65 credits per day", "All features included", "Interview video guides", "15% off coaching services", "Premium community access"},
		},
	}
}

// Decision is the gate outcome.
type Decision struct {
	Access                bool                   `json:"access"`
	Subscription          api.SubscriptionStatus `json:"subscription"`
	QuestionnaireRequired bool                   `json:"questionnaire_required"`
	Plans                 []Plan                 `json:"plans,omitempty"`
}

type Gate struct {
	remote Remote
	cache  Cache
	logger zerolog.Logger
	now    func() time.Time
}

// NewGate builds a gate. cache may be nil.
func NewGate(remote Remote, cache Cache, logger zerolog.Logger) *Gate {
	return &Gate{remote: remote, cache: cache, logger: logger, now: time.Now}
}

// Status asks the API first. A remote failure is returned as is and the
// cached copy never stands in for it.
func (g *Gate) Status(ctx context.Context) (Status, error) {
	remote, err := g.remote.QuestionnaireStatus(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("questionnaire status: %w", err)
	}
	return Status{Completed: remote.QuestionnaireCompleted, Prefill: g.cached(ctx)}, nil
}

func (g *Gate) cached(ctx context.Context) *CachedAnswers {
	if g.cache == nil {
		return nil
	}
	var cached CachedAnswers
	err := g.cache.GetJSON(ctx, store.ScopeLocal, store.KeyQuestionnaireAnswers, &cached)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			g.logger.Warn().Err(err).Msg("ignore cached questionnaire answers")
		}
		return nil
	}
	return &cached
}

// Submit posts answers and mirrors them locally once the API accepts them.
func (g *Gate) Submit(ctx context.Context, answers Answers) (CachedAnswers, error) {
	sub, err := answers.Submission()
	if err != nil {
		return CachedAnswers{}, err
	}
	res, err := g.remote.SubmitQuestionnaire(ctx, sub)
	if err != nil {
		return CachedAnswers{}, fmt.Errorf("submit questionnaire: %w", err)
	}
	if !res.Success {
		return CachedAnswers{}, fmt.Errorf("submit questionnaire: %w: server did not confirm", api.ErrUnavailable)
	}

	mirror := CachedAnswers{
		SubmissionID: uuid.NewString(),
		SubmittedAt:  g.now().UTC(),
		Answers:      answers.clone(),
	}
	if g.cache != nil {
		if err := g.cache.PutJSON(ctx, store.ScopeLocal, store.KeyQuestionnaireAnswers, mirror); err != nil {
			g.logger.Warn().Err(err).Msg("mirror questionnaire answers")
		}
	}
	g.logger.Debug().Str("submission_id", mirror.SubmissionID).Msg("questionnaire submitted")
	return mirror, nil
}

// Decide runs the gate: an active subscription grants access, otherwise the
// plans are offered, after the questionnaire when the API says it is still
// pending.
func (g *Gate) Decide(ctx context.Context) (Decision, error) {
	sub, err := g.remote.SubscriptionStatus(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("subscription status: %w", err)
	}
	if sub.HasActiveSubscription {
		return Decision{Access: true, Subscription: sub}, nil
	}

	status, err := g.remote.QuestionnaireStatus(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("questionnaire status: %w", err)
	}
	return Decision{
		Subscription:          sub,
		QuestionnaireRequired: !status.QuestionnaireCompleted,
		Plans:                 Plans(),
	}, nil
}
