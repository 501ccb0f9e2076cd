package staff

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
)

var (
	// errors
	ErrNotFound = errors.New("staff member not found")
)

type (
	// Repository persists staff across the three role partitions:
	// moderators, builders and managers (the latter tagged for owners).
	// Routing by role is the repository's duty; callers never name a
	// partition directly.
	Repository interface {
		QueryStaff(ctx context.Context, exec ...core.DBExecutor) ([]Staff, error)
		GetStaff(ctx context.Context, id string, exec ...core.DBExecutor) (Staff, error)
		CreateStaff(ctx context.Context, s Staff, exec ...core.DBExecutor) (Staff, error)
		UpdateStaff(ctx context.Context, s Staff, exec ...core.DBExecutor) (Staff, error)
		// DeleteStaff returns the number of deleted rows; deleting a
		// missing id is not an error.
		DeleteStaff(ctx context.Context, id string, role Role, exec ...core.DBExecutor) (int, error)
	}

	// AvatarCleaner reclaims stored avatar assets a staff member no longer
	// references. Failures are bookkeeping: logged, never surfaced.
	AvatarCleaner interface {
		Reclaim(ctx context.Context, staffID, keep string) error
	}

	Service struct {
		repo    Repository
		logger  core.Logger
		avatars AvatarCleaner
	}
)

func NewService(repo Repository, logger core.Logger, avatars AvatarCleaner) *Service {
	return &Service{repo: repo, logger: logger, avatars: avatars}
}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	now := time.Now().UTC()
	s := Staff{
		Name:      ns.Name,
		Role:      ns.Role,
		Rank:      ns.Rank,
		Avatar:    null.NewString(ns.Avatar, ns.Avatar != ""),
		Metrics:   scoresToMetrics(ns.Role, ns.Metrics),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s, err := Enforce(s)
	if err != nil {
		return Staff{}, err
	}

	s, err = svc.repo.CreateStaff(ctx, s)
	if err != nil {
		return Staff{}, err
	}
	svc.reclaimAvatars(s)
	return Enforce(s)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Staff, error) {
	all, err := svc.repo.QueryStaff(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Staff, 0, len(all))
	for _, s := range all {
		enforced, err := svc.enforceStored(s)
		if err != nil {
			// a single corrupt row must not take the whole listing down
			svc.logger.Error("dropping staff record from listing", err)
			continue
		}
		out = append(out, enforced)
	}
	return out, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Staff, error) {
	s, err := svc.repo.GetStaff(ctx, id)
	if err != nil {
		return Staff{}, err
	}
	return svc.enforceStored(s)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStaff) (Staff, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Staff{}, err
	}

	s := orig
	s.Name = us.Name
	s.Rank = us.Rank
	if us.Avatar != nil {
		s.Avatar = null.NewString(*us.Avatar, *us.Avatar != "")
	}
	for key, score := range us.Metrics {
		s.Metrics[key] = NewMetric(s.Role, key, score)
	}
	s.UpdatedAt = time.Now().UTC()

	if s, err = Enforce(s); err != nil {
		return Staff{}, err
	}
	if s, err = svc.repo.UpdateStaff(ctx, s); err != nil {
		return Staff{}, err
	}
	svc.reclaimAvatars(s)
	return Enforce(s)
}

// Delete removes the staff member from its role partition. It reports
// whether a row was actually deleted; zero matches is not an error.
func (svc *Service) Delete(ctx context.Context, id string, role Role) (bool, error) {
	cnt, err := svc.repo.DeleteStaff(ctx, id, role)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// enforceStored applies the policy to a row read from storage. Stored rows
// predating a rank-set change may carry a now-invalid rank; reads cannot
// reject what is already persisted, so the rank falls back to the role
// default and the repair is logged. A row the fallback cannot repair, such
// as one carrying an unknown role, is surfaced as an error.
func (svc *Service) enforceStored(s Staff) (Staff, error) {
	enforced, err := Enforce(s)
	if err == nil {
		return enforced, nil
	}

	svc.logger.Warn("stored staff record violates role-rank policy; repairing", err, map[string]interface{}{
		"staff_id": s.ID, "role": s.Role, "rank": s.Rank,
	})
	s.Rank = s.Role.DefaultRank()
	enforced, err = Enforce(s)
	if err != nil {
		return Staff{}, errors.Wrapf(err, "unrepairable staff record %s", s.ID)
	}
	return enforced, nil
}

// reclaimAvatars asks the avatar collaborator to drop stale assets.
// This is bookkeeping: a failure must never fail the write it follows.
func (svc *Service) reclaimAvatars(s Staff) {
	if svc.avatars == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.avatars.Reclaim(ctx, s.ID, s.Avatar.String); err != nil {
			svc.logger.Warn("reclaiming stale avatars", err, map[string]interface{}{"staff_id": s.ID})
		}
	}()
}

func scoresToMetrics(role Role, scores map[string]float64) map[string]Metric {
	metrics := make(map[string]Metric, len(scores))
	for key, score := range scores {
		metrics[key] = NewMetric(role, key, score)
	}
	return metrics
}
