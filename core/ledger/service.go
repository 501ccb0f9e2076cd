package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
)

// MaxEventLogLimit caps a single event-log read. There is no pagination
// cursor: the log view is a finite newest-first window.
const MaxEventLogLimit = 50

var (
	// errors
	ErrWeightNotFound = errors.New("action weight not found")

	submittedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staffboard_score_events_submitted_total",
		Help: "Score events accepted and persisted.",
	})
	rejectedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffboard_score_events_rejected_total",
		Help: "Score event submissions rejected, by reason.",
	}, []string{"reason"})
)

// UnknownActionError reports a submission naming an action with no
// registered weight. A lookup miss, not a retryable fault.
type UnknownActionError struct {
	Action string
}

func (e UnknownActionError) Error() string {
	return fmt.Sprintf("no point weight registered for action %q", e.Action)
}

// IsUnknownAction reports whether err (or its cause) is an UnknownActionError.
func IsUnknownAction(err error) bool {
	_, ok := errors.Cause(err).(UnknownActionError)
	return ok
}

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event, exec ...core.DBExecutor) (Event, error)
		// QueryEvents returns at most limit events for the staff id, newest first.
		QueryEvents(ctx context.Context, staffID string, limit int, exec ...core.DBExecutor) ([]Event, error)
		// SumPoints returns the running score: the exact sum of points over
		// all events for the staff id (0 when there are none).
		SumPoints(ctx context.Context, staffID string, exec ...core.DBExecutor) (float64, error)

		GetActionWeight(ctx context.Context, action string, exec ...core.DBExecutor) (ActionWeight, error)
		UpsertActionWeight(ctx context.Context, w ActionWeight, exec ...core.DBExecutor) (ActionWeight, error)
		QueryActionWeights(ctx context.Context, exec ...core.DBExecutor) ([]ActionWeight, error)
		DeleteActionWeight(ctx context.Context, id string, exec ...core.DBExecutor) (int, error)
	}

	// TokenAuthenticator is the slice of the apitoken service the ledger
	// needs; satisfied by *apitoken.Service.
	TokenAuthenticator interface {
		Authenticate(ctx context.Context, secret string) (apitoken.Token, error)
		TouchLastUsed(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		tokens TokenAuthenticator
		logger core.Logger
	}
)

func NewService(repo Repository, tokens TokenAuthenticator, logger core.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Submit runs one event through the submission pipeline:
// token check -> action lookup -> persist -> async last-used touch.
// The insert is the only mutating step and is never skipped or silently
// retried; no partial event is ever persisted.
func (svc *Service) Submit(ctx context.Context, secret string, ne NewEvent) (Event, error) {
	tok, err := svc.tokens.Authenticate(ctx, secret)
	if err != nil {
		if errors.Cause(err) == apitoken.ErrUnauthorized {
			rejectedEvents.WithLabelValues("unauthorized").Inc()
		}
		return Event{}, err
	}

	weight, err := svc.repo.GetActionWeight(ctx, ne.Action)
	if err != nil {
		if errors.Cause(err) == ErrWeightNotFound {
			rejectedEvents.WithLabelValues("unknown_action").Inc()
			return Event{}, UnknownActionError{Action: ne.Action}
		}
		return Event{}, errors.Wrap(err, "looking up action weight")
	}

	points := weight.Weight
	if ne.Points != nil {
		points = *ne.Points
	}
	source := ne.Source
	if source == "" {
		source = tok.Source
	}

	ev := Event{
		StaffID:   ne.StaffID,
		Action:    ne.Action,
		Points:    points,
		Source:    source,
		Metadata:  ne.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	ev, err = svc.repo.CreateEvent(ctx, ev)
	if err != nil {
		return Event{}, errors.Wrap(err, "inserting score event")
	}
	submittedEvents.Inc()

	// bookkeeping off the request path; a failure never fails the submission
	go func(tokenID string) {
		tctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.tokens.TouchLastUsed(tctx, tokenID); err != nil {
			svc.logger.Warn("touching token last_used_at", err, map[string]interface{}{"token_id": tokenID})
		}
	}(tok.ID)

	return ev, nil
}

// Score is the unbounded running total for a staff member. No decay, no
// windowing, no cap: the ledger is monotonic-additive unless admins
// register negative-weight actions.
func (svc *Service) Score(ctx context.Context, staffID string) (float64, error) {
	return svc.repo.SumPoints(ctx, staffID)
}

// EventLog returns the newest events first, capped at MaxEventLogLimit.
func (svc *Service) EventLog(ctx context.Context, staffID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > MaxEventLogLimit {
		limit = MaxEventLogLimit
	}
	return svc.repo.QueryEvents(ctx, staffID, limit)
}

// Weight admin

func (svc *Service) UpsertWeight(ctx context.Context, uw UpsertWeight) (ActionWeight, error) {
	now := time.Now().UTC()
	w := ActionWeight{
		Action:      uw.Action,
		Weight:      uw.Weight,
		Description: nullStringFrom(uw.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.UpsertActionWeight(ctx, w)
}

func (svc *Service) QueryWeights(ctx context.Context) ([]ActionWeight, error) {
	return svc.repo.QueryActionWeights(ctx)
}

func (svc *Service) DeleteWeight(ctx context.Context, id string) (bool, error) {
	cnt, err := svc.repo.DeleteActionWeight(ctx, id)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
