package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/ledger"
)

type ledgerRepository struct {
	db *ledgerTables
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *DB) *ledgerRepository {
	return &ledgerRepository{db: db.ledger}
}

func (repo *ledgerRepository) CreateEvent(ctx context.Context, ev ledger.Event, _ ...core.DBExecutor) (ledger.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ev.ID = uuid.New().String()
	stored := ev
	repo.db.events = append(repo.db.events, &stored)
	return ev, nil
}

func (repo *ledgerRepository) QueryEvents(ctx context.Context, staffID string, limit int, _ ...core.DBExecutor) ([]ledger.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var events []ledger.Event
	for _, ev := range repo.db.events {
		if ev.StaffID == staffID {
			events = append(events, *ev)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (repo *ledgerRepository) SumPoints(ctx context.Context, staffID string, _ ...core.DBExecutor) (float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sum float64
	for _, ev := range repo.db.events {
		if ev.StaffID == staffID {
			sum += ev.Points
		}
	}
	return sum, nil
}

func (repo *ledgerRepository) GetActionWeight(ctx context.Context, action string, _ ...core.DBExecutor) (ledger.ActionWeight, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if w, ok := repo.db.weights[action]; ok {
		return *w, nil
	}
	return ledger.ActionWeight{}, ledger.ErrWeightNotFound
}

func (repo *ledgerRepository) UpsertActionWeight(ctx context.Context, w ledger.ActionWeight, _ ...core.DBExecutor) (ledger.ActionWeight, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, ok := repo.db.weights[w.Action]; ok {
		existing.Weight = w.Weight
		existing.Description = w.Description
		existing.UpdatedAt = time.Now().UTC()
		return *existing, nil
	}
	w.ID = uuid.New().String()
	stored := w
	repo.db.weights[w.Action] = &stored
	return w, nil
}

func (repo *ledgerRepository) QueryActionWeights(ctx context.Context, _ ...core.DBExecutor) ([]ledger.ActionWeight, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	weights := make([]ledger.ActionWeight, 0, len(repo.db.weights))
	for _, w := range repo.db.weights {
		weights = append(weights, *w)
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i].Action < weights[j].Action })
	return weights, nil
}

func (repo *ledgerRepository) DeleteActionWeight(ctx context.Context, id string, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for action, w := range repo.db.weights {
		if w.ID == id {
			delete(repo.db.weights, action)
			return 1, nil
		}
	}
	return 0, nil
}
