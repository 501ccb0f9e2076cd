package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/staff"
)

type staffRepository struct {
	db *staffTables
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db.staff}
}

func (repo *staffRepository) partition(role staff.Role) map[string]*staff.Staff {
	switch role {
	case staff.RoleModerator:
		return repo.db.moderators
	case staff.RoleBuilder:
		return repo.db.builders
	default: // manager and owner share a partition
		return repo.db.managers
	}
}

func copyStaff(s staff.Staff) staff.Staff {
	metrics := make(map[string]staff.Metric, len(s.Metrics))
	for k, m := range s.Metrics {
		metrics[k] = m
	}
	s.Metrics = metrics
	return s
}

func (repo *staffRepository) QueryStaff(ctx context.Context, _ ...core.DBExecutor) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var all []staff.Staff
	for _, part := range []map[string]*staff.Staff{repo.db.moderators, repo.db.builders, repo.db.managers} {
		for _, s := range part {
			all = append(all, copyStaff(*s))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all, nil
}

func (repo *staffRepository) GetStaff(ctx context.Context, id string, _ ...core.DBExecutor) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, part := range []map[string]*staff.Staff{repo.db.moderators, repo.db.builders, repo.db.managers} {
		if s, ok := part[id]; ok {
			return copyStaff(*s), nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) CreateStaff(ctx context.Context, s staff.Staff, _ ...core.DBExecutor) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = uuid.New().String()
	stored := copyStaff(s)
	repo.partition(s.Role)[s.ID] = &stored
	return s, nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, s staff.Staff, _ ...core.DBExecutor) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	part := repo.partition(s.Role)
	if _, ok := part[s.ID]; !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	stored := copyStaff(s)
	part[s.ID] = &stored
	return s, nil
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, id string, role staff.Role, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	part := repo.partition(role)
	if _, ok := part[id]; !ok {
		return 0, nil
	}
	delete(part, id)
	return 1, nil
}
