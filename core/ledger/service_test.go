package ledger

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
)

type fakeRepo struct {
	seq     int
	events  []Event
	weights map[string]ActionWeight // by action
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{weights: make(map[string]ActionWeight)}
}

func (r *fakeRepo) CreateEvent(ctx context.Context, ev Event, _ ...core.DBExecutor) (Event, error) {
	r.seq++
	ev.ID = strconv.Itoa(r.seq)
	r.events = append(r.events, ev)
	return ev, nil
}

func (r *fakeRepo) QueryEvents(ctx context.Context, staffID string, limit int, _ ...core.DBExecutor) ([]Event, error) {
	var events []Event
	for i := len(r.events) - 1; i >= 0 && len(events) < limit; i-- {
		if r.events[i].StaffID == staffID {
			events = append(events, r.events[i])
		}
	}
	return events, nil
}

func (r *fakeRepo) SumPoints(ctx context.Context, staffID string, _ ...core.DBExecutor) (float64, error) {
	var sum float64
	for _, ev := range r.events {
		if ev.StaffID == staffID {
			sum += ev.Points
		}
	}
	return sum, nil
}

func (r *fakeRepo) GetActionWeight(ctx context.Context, action string, _ ...core.DBExecutor) (ActionWeight, error) {
	if w, ok := r.weights[action]; ok {
		return w, nil
	}
	return ActionWeight{}, ErrWeightNotFound
}

func (r *fakeRepo) UpsertActionWeight(ctx context.Context, w ActionWeight, _ ...core.DBExecutor) (ActionWeight, error) {
	if existing, ok := r.weights[w.Action]; ok {
		existing.Weight = w.Weight
		existing.Description = w.Description
		r.weights[w.Action] = existing
		return existing, nil
	}
	r.seq++
	w.ID = strconv.Itoa(r.seq)
	r.weights[w.Action] = w
	return w, nil
}

func (r *fakeRepo) QueryActionWeights(ctx context.Context, _ ...core.DBExecutor) ([]ActionWeight, error) {
	weights := make([]ActionWeight, 0, len(r.weights))
	for _, w := range r.weights {
		weights = append(weights, w)
	}
	return weights, nil
}

func (r *fakeRepo) DeleteActionWeight(ctx context.Context, id string, _ ...core.DBExecutor) (int, error) {
	for action, w := range r.weights {
		if w.ID == id {
			delete(r.weights, action)
			return 1, nil
		}
	}
	return 0, nil
}

// fakeAuth authenticates a single known secret.
type fakeAuth struct {
	secret  string
	token   apitoken.Token
	touched chan string
}

func (a *fakeAuth) Authenticate(ctx context.Context, secret string) (apitoken.Token, error) {
	if secret != a.secret {
		return apitoken.Token{}, apitoken.ErrUnauthorized
	}
	return a.token, nil
}

func (a *fakeAuth) TouchLastUsed(ctx context.Context, id string) error {
	if a.touched != nil {
		a.touched <- id
	}
	return nil
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func newTestService(repo *fakeRepo, auth *fakeAuth) *Service {
	return NewService(repo, auth, testLogger{})
}

func Test_ledgerService_Submit(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{
		secret:  "bdz_good",
		token:   apitoken.Token{ID: "tok1", Source: "discord", IsActive: true},
		touched: make(chan string, 1),
	}
	fPtr := func(f float64) *float64 { return &f }

	repo := newFakeRepo()
	if _, err := repo.UpsertActionWeight(ctx, ActionWeight{Action: "ticket_closed", Weight: 2.5}); err != nil {
		t.Fatalf("seeding weight failed: %v", err)
	}
	svc := newTestService(repo, auth)

	t.Run("weighted submission", func(t *testing.T) {
		ev, err := svc.Submit(ctx, "bdz_good", NewEvent{StaffID: "s1", Action: "ticket_closed"})
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if ev.Points != 2.5 {
			t.Errorf("points = %v, want weight 2.5", ev.Points)
		}
		if ev.Source != "discord" {
			t.Errorf("source = %q, want token default %q", ev.Source, "discord")
		}
		select {
		case id := <-auth.touched:
			if id != "tok1" {
				t.Errorf("touched token = %q, want tok1", id)
			}
		case <-time.After(2 * time.Second):
			t.Error("token last_used_at was never touched")
		}
	})

	t.Run("points override and explicit source", func(t *testing.T) {
		ev, err := svc.Submit(ctx, "bdz_good", NewEvent{
			StaffID: "s1", Action: "ticket_closed", Points: fPtr(-1), Source: "manual",
		})
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if ev.Points != -1 {
			t.Errorf("points = %v, want override -1", ev.Points)
		}
		if ev.Source != "manual" {
			t.Errorf("source = %q, want manual", ev.Source)
		}
	})

	t.Run("bad token persists nothing", func(t *testing.T) {
		before := len(repo.events)
		_, err := svc.Submit(ctx, "bdz_evil", NewEvent{StaffID: "s1", Action: "ticket_closed"})
		if errors.Cause(err) != apitoken.ErrUnauthorized {
			t.Fatalf("Submit() error = %v, want ErrUnauthorized", err)
		}
		if len(repo.events) != before {
			t.Error("rejected submission persisted an event")
		}
	})

	t.Run("unknown action persists nothing", func(t *testing.T) {
		before := len(repo.events)
		_, err := svc.Submit(ctx, "bdz_good", NewEvent{StaffID: "s1", Action: "lol"})
		if !IsUnknownAction(err) {
			t.Fatalf("Submit() error = %v, want UnknownActionError", err)
		}
		if len(repo.events) != before {
			t.Error("rejected submission persisted an event")
		}
	})
}

func Test_ledgerService_Score(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeAuth{})

	for _, pts := range []float64{3, -1} {
		if _, err := repo.CreateEvent(ctx, Event{StaffID: "s1", Points: pts}); err != nil {
			t.Fatalf("seeding event failed: %v", err)
		}
	}
	if _, err := repo.CreateEvent(ctx, Event{StaffID: "s2", Points: 100}); err != nil {
		t.Fatalf("seeding event failed: %v", err)
	}

	score, err := svc.Score(ctx, "s1")
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if score != 2 {
		t.Errorf("Score() = %v, want 2", score)
	}

	// no events is a zero score, not an error
	score, err = svc.Score(ctx, "nobody")
	if err != nil || score != 0 {
		t.Errorf("Score() = (%v, %v), want (0, nil)", score, err)
	}
}

func Test_ledgerService_EventLog(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeAuth{})

	for i := 0; i < MaxEventLogLimit+10; i++ {
		if _, err := repo.CreateEvent(ctx, Event{StaffID: "s1", Action: "spam"}); err != nil {
			t.Fatalf("seeding event failed: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: MaxEventLogLimit},
		{name: "explicit", limit: 10, want: 10},
		{name: "capped", limit: MaxEventLogLimit + 5, want: MaxEventLogLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := svc.EventLog(ctx, "s1", tt.limit)
			if err != nil {
				t.Fatalf("EventLog() failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("len(events) = %d, want %d", len(events), tt.want)
			}
		})
	}
}
