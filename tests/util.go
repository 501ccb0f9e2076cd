package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/bdzone/staffboard/core/apitoken"
	"github.com/bdzone/staffboard/core/ledger"
	"github.com/bdzone/staffboard/core/staff"
)

func CreateStaff(
	t *testing.T,
	repo staff.Repository,
	name string,
	role staff.Role,
	rank string,
	scores map[string]float64,
	createdAt ...time.Time,
) staff.Staff {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	metrics := make(map[string]staff.Metric, len(scores))
	for key, score := range scores {
		metrics[key] = staff.NewMetric(role, key, score)
	}
	s := staff.Staff{
		Name:      name,
		Role:      role,
		Rank:      rank,
		Metrics:   metrics,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	s, err := staff.Enforce(s)
	if err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	s, err = repo.CreateStaff(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	return s
}

func CreateToken(t *testing.T, repo apitoken.Repository, name, source string, isActive bool) apitoken.Token {
	t.Helper()

	secret, err := apitoken.GenerateSecret()
	if err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}
	tok := apitoken.Token{
		Secret:    secret,
		Name:      name,
		Source:    source,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	}
	tok, err = repo.CreateToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}
	return tok
}

func CreateWeight(t *testing.T, repo ledger.Repository, action string, weight float64) ledger.ActionWeight {
	t.Helper()

	now := time.Now().UTC()
	w, err := repo.UpsertActionWeight(context.Background(), ledger.ActionWeight{
		Action:    action,
		Weight:    weight,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateWeight() failed: %v", err)
	}
	return w
}

func CreateEvent(
	t *testing.T,
	repo ledger.Repository,
	staffID, action string,
	points float64,
	createdAt ...time.Time,
) ledger.Event {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	ev, err := repo.CreateEvent(context.Background(), ledger.Event{
		StaffID:   staffID,
		Action:    action,
		Points:    points,
		Source:    "test",
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return ev
}
