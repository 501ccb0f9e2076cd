package sqlxrepos

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/staff"
)

type staffRepository struct {
	exec core.DBExecutor
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(exec core.DBExecutor) *staffRepository {
	return &staffRepository{exec: exec}
}

func (repo staffRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// Partition rows. Metric columns are snake_case; the in-memory metric keys
// are camelCase. The row structs are the one place the mapping lives.

type moderatorRow struct {
	ID                 string      `db:"id"`
	Name               string      `db:"name"`
	Rank               string      `db:"rank"`
	Avatar             null.String `db:"avatar"`
	Responsiveness     float64     `db:"responsiveness"`
	Fairness           float64     `db:"fairness"`
	Communication      float64     `db:"communication"`
	ConflictResolution float64     `db:"conflict_resolution"`
	RuleEnforcement    float64     `db:"rule_enforcement"`
	Engagement         float64     `db:"engagement"`
	Supportiveness     float64     `db:"supportiveness"`
	Adaptability       float64     `db:"adaptability"`
	Objectivity        float64     `db:"objectivity"`
	Initiative         float64     `db:"initiative"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

type builderRow struct {
	ID              string      `db:"id"`
	Name            string      `db:"name"`
	Rank            string      `db:"rank"`
	Avatar          null.String `db:"avatar"`
	Exterior        float64     `db:"exterior"`
	Interior        float64     `db:"interior"`
	Decoration      float64     `db:"decoration"`
	Effort          float64     `db:"effort"`
	Contribution    float64     `db:"contribution"`
	Communication   float64     `db:"communication"`
	Adaptability    float64     `db:"adaptability"`
	Cooperativeness float64     `db:"cooperativeness"`
	Creativity      float64     `db:"creativity"`
	Consistency     float64     `db:"consistency"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

type managerRow struct {
	ID                 string      `db:"id"`
	Name               string      `db:"name"`
	Rank               string      `db:"rank"`
	Avatar             null.String `db:"avatar"`
	IsOwner            bool        `db:"is_owner"`
	Responsiveness     float64     `db:"responsiveness"`
	Fairness           float64     `db:"fairness"`
	Communication      float64     `db:"communication"`
	ConflictResolution float64     `db:"conflict_resolution"`
	RuleEnforcement    float64     `db:"rule_enforcement"`
	Engagement         float64     `db:"engagement"`
	Supportiveness     float64     `db:"supportiveness"`
	Adaptability       float64     `db:"adaptability"`
	Objectivity        float64     `db:"objectivity"`
	Initiative         float64     `db:"initiative"`
	Exterior           float64     `db:"exterior"`
	Interior           float64     `db:"interior"`
	Decoration         float64     `db:"decoration"`
	Effort             float64     `db:"effort"`
	Contribution       float64     `db:"contribution"`
	Cooperativeness    float64     `db:"cooperativeness"`
	Creativity         float64     `db:"creativity"`
	Consistency        float64     `db:"consistency"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func metricScore(s staff.Staff, key string) float64 {
	if m, ok := s.Metrics[key]; ok {
		return m.Score
	}
	return staff.DefaultMetricScore
}

func (repo staffRepository) packModerator(s staff.Staff) moderatorRow {
	return moderatorRow{
		ID:                 s.ID,
		Name:               s.Name,
		Rank:               s.Rank,
		Avatar:             s.Avatar,
		Responsiveness:     metricScore(s, "responsiveness"),
		Fairness:           metricScore(s, "fairness"),
		Communication:      metricScore(s, "communication"),
		ConflictResolution: metricScore(s, "conflictResolution"),
		RuleEnforcement:    metricScore(s, "ruleEnforcement"),
		Engagement:         metricScore(s, "engagement"),
		Supportiveness:     metricScore(s, "supportiveness"),
		Adaptability:       metricScore(s, "adaptability"),
		Objectivity:        metricScore(s, "objectivity"),
		Initiative:         metricScore(s, "initiative"),
		CreatedAt:          s.CreatedAt.UTC(),
		UpdatedAt:          s.UpdatedAt.UTC(),
	}
}

func (repo staffRepository) unpackModerator(row moderatorRow) staff.Staff {
	scores := map[string]float64{
		"responsiveness":     row.Responsiveness,
		"fairness":           row.Fairness,
		"communication":      row.Communication,
		"conflictResolution": row.ConflictResolution,
		"ruleEnforcement":    row.RuleEnforcement,
		"engagement":         row.Engagement,
		"supportiveness":     row.Supportiveness,
		"adaptability":       row.Adaptability,
		"objectivity":        row.Objectivity,
		"initiative":         row.Initiative,
	}
	return unpackRow(row.ID, row.Name, staff.RoleModerator, row.Rank, row.Avatar, scores, row.CreatedAt, row.UpdatedAt)
}

func (repo staffRepository) packBuilder(s staff.Staff) builderRow {
	return builderRow{
		ID:              s.ID,
		Name:            s.Name,
		Rank:            s.Rank,
		Avatar:          s.Avatar,
		Exterior:        metricScore(s, "exterior"),
		Interior:        metricScore(s, "interior"),
		Decoration:      metricScore(s, "decoration"),
		Effort:          metricScore(s, "effort"),
		Contribution:    metricScore(s, "contribution"),
		Communication:   metricScore(s, "communication"),
		Adaptability:    metricScore(s, "adaptability"),
		Cooperativeness: metricScore(s, "cooperativeness"),
		Creativity:      metricScore(s, "creativity"),
		Consistency:     metricScore(s, "consistency"),
		CreatedAt:       s.CreatedAt.UTC(),
		UpdatedAt:       s.UpdatedAt.UTC(),
	}
}

func (repo staffRepository) unpackBuilder(row builderRow) staff.Staff {
	scores := map[string]float64{
		"exterior":        row.Exterior,
		"interior":        row.Interior,
		"decoration":      row.Decoration,
		"effort":          row.Effort,
		"contribution":    row.Contribution,
		"communication":   row.Communication,
		"adaptability":    row.Adaptability,
		"cooperativeness": row.Cooperativeness,
		"creativity":      row.Creativity,
		"consistency":     row.Consistency,
	}
	return unpackRow(row.ID, row.Name, staff.RoleBuilder, row.Rank, row.Avatar, scores, row.CreatedAt, row.UpdatedAt)
}

func (repo staffRepository) packManager(s staff.Staff) managerRow {
	return managerRow{
		ID:                 s.ID,
		Name:               s.Name,
		Rank:               s.Rank,
		Avatar:             s.Avatar,
		IsOwner:            s.Role == staff.RoleOwner,
		Responsiveness:     metricScore(s, "responsiveness"),
		Fairness:           metricScore(s, "fairness"),
		Communication:      metricScore(s, "communication"),
		ConflictResolution: metricScore(s, "conflictResolution"),
		RuleEnforcement:    metricScore(s, "ruleEnforcement"),
		Engagement:         metricScore(s, "engagement"),
		Supportiveness:     metricScore(s, "supportiveness"),
		Adaptability:       metricScore(s, "adaptability"),
		Objectivity:        metricScore(s, "objectivity"),
		Initiative:         metricScore(s, "initiative"),
		Exterior:           metricScore(s, "exterior"),
		Interior:           metricScore(s, "interior"),
		Decoration:         metricScore(s, "decoration"),
		Effort:             metricScore(s, "effort"),
		Contribution:       metricScore(s, "contribution"),
		Cooperativeness:    metricScore(s, "cooperativeness"),
		Creativity:         metricScore(s, "creativity"),
		Consistency:        metricScore(s, "consistency"),
		CreatedAt:          s.CreatedAt.UTC(),
		UpdatedAt:          s.UpdatedAt.UTC(),
	}
}

func (repo staffRepository) unpackManager(row managerRow) staff.Staff {
	// an untagged row in the managers partition is a manager
	role := staff.RoleManager
	if row.IsOwner {
		role = staff.RoleOwner
	}
	scores := map[string]float64{
		"responsiveness":     row.Responsiveness,
		"fairness":           row.Fairness,
		"communication":      row.Communication,
		"conflictResolution": row.ConflictResolution,
		"ruleEnforcement":    row.RuleEnforcement,
		"engagement":         row.Engagement,
		"supportiveness":     row.Supportiveness,
		"adaptability":       row.Adaptability,
		"objectivity":        row.Objectivity,
		"initiative":         row.Initiative,
		"exterior":           row.Exterior,
		"interior":           row.Interior,
		"decoration":         row.Decoration,
		"effort":             row.Effort,
		"contribution":       row.Contribution,
		"cooperativeness":    row.Cooperativeness,
		"creativity":         row.Creativity,
		"consistency":        row.Consistency,
	}
	return unpackRow(row.ID, row.Name, role, row.Rank, row.Avatar, scores, row.CreatedAt, row.UpdatedAt)
}

func unpackRow(
	id, name string,
	role staff.Role,
	rank string,
	avatar null.String,
	scores map[string]float64,
	createdAt, updatedAt time.Time,
) staff.Staff {
	metrics := make(map[string]staff.Metric, len(scores))
	for key, score := range scores {
		metrics[key] = staff.NewMetric(role, key, score)
	}
	return staff.Staff{
		ID:        id,
		Name:      name,
		Role:      role,
		Rank:      rank,
		Avatar:    avatar,
		Metrics:   metrics,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

const (
	moderatorCols = `id, name, rank, avatar,
		responsiveness, fairness, communication, conflict_resolution, rule_enforcement,
		engagement, supportiveness, adaptability, objectivity, initiative,
		created_at, updated_at`
	moderatorVals = `:id, :name, :rank, :avatar,
		:responsiveness, :fairness, :communication, :conflict_resolution, :rule_enforcement,
		:engagement, :supportiveness, :adaptability, :objectivity, :initiative,
		:created_at, :updated_at`

	builderCols = `id, name, rank, avatar,
		exterior, interior, decoration, effort, contribution,
		communication, adaptability, cooperativeness, creativity, consistency,
		created_at, updated_at`
	builderVals = `:id, :name, :rank, :avatar,
		:exterior, :interior, :decoration, :effort, :contribution,
		:communication, :adaptability, :cooperativeness, :creativity, :consistency,
		:created_at, :updated_at`

	managerCols = `id, name, rank, avatar, is_owner,
		responsiveness, fairness, communication, conflict_resolution, rule_enforcement,
		engagement, supportiveness, adaptability, objectivity, initiative,
		exterior, interior, decoration, effort, contribution,
		cooperativeness, creativity, consistency,
		created_at, updated_at`
	managerVals = `:id, :name, :rank, :avatar, :is_owner,
		:responsiveness, :fairness, :communication, :conflict_resolution, :rule_enforcement,
		:engagement, :supportiveness, :adaptability, :objectivity, :initiative,
		:exterior, :interior, :decoration, :effort, :contribution,
		:cooperativeness, :creativity, :consistency,
		:created_at, :updated_at`
)

// staffOrdering keeps the three partition queries listed the same way:
// oldest staff first.
var staffOrdering = core.DBOrdering{Field: "created_at", Ascending: true}

func (repo staffRepository) QueryStaff(ctx context.Context, exec ...core.DBExecutor) ([]staff.Staff, error) {
	exe := repo.getExec(exec)
	orderBy := " ORDER BY " + staffOrdering.String()
	var all []staff.Staff

	var mods []moderatorRow
	if err := exe.SelectContext(ctx, &mods, "SELECT "+moderatorCols+" FROM moderators"+orderBy); err != nil {
		return nil, errors.Wrap(err, "querying moderators")
	}
	for _, row := range mods {
		all = append(all, repo.unpackModerator(row))
	}

	var blds []builderRow
	if err := exe.SelectContext(ctx, &blds, "SELECT "+builderCols+" FROM builders"+orderBy); err != nil {
		return nil, errors.Wrap(err, "querying builders")
	}
	for _, row := range blds {
		all = append(all, repo.unpackBuilder(row))
	}

	var mgrs []managerRow
	if err := exe.SelectContext(ctx, &mgrs, "SELECT "+managerCols+" FROM managers"+orderBy); err != nil {
		return nil, errors.Wrap(err, "querying managers")
	}
	for _, row := range mgrs {
		all = append(all, repo.unpackManager(row))
	}

	// merge the three partitions into one global ordering
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all, nil
}

func (repo staffRepository) GetStaff(ctx context.Context, id string, exec ...core.DBExecutor) (staff.Staff, error) {
	if _, err := uuid.Parse(id); err != nil {
		return staff.Staff{}, staff.ErrNotFound
	}
	exe := repo.getExec(exec)

	var mod moderatorRow
	err := exe.GetContext(ctx, &mod, "SELECT "+moderatorCols+" FROM moderators WHERE id = $1", id)
	if err == nil {
		return repo.unpackModerator(mod), nil
	}
	if err != sql.ErrNoRows {
		return staff.Staff{}, errors.Wrap(err, "finding moderator by ID")
	}

	var bld builderRow
	err = exe.GetContext(ctx, &bld, "SELECT "+builderCols+" FROM builders WHERE id = $1", id)
	if err == nil {
		return repo.unpackBuilder(bld), nil
	}
	if err != sql.ErrNoRows {
		return staff.Staff{}, errors.Wrap(err, "finding builder by ID")
	}

	var mgr managerRow
	err = exe.GetContext(ctx, &mgr, "SELECT "+managerCols+" FROM managers WHERE id = $1", id)
	if err == nil {
		return repo.unpackManager(mgr), nil
	}
	if err != sql.ErrNoRows {
		return staff.Staff{}, errors.Wrap(err, "finding manager by ID")
	}

	return staff.Staff{}, staff.ErrNotFound
}

func (repo staffRepository) CreateStaff(ctx context.Context, s staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	s.ID = uuid.New().String()
	exe := repo.getExec(exec)

	var err error
	switch s.Role {
	case staff.RoleModerator:
		_, err = exe.NamedExecContext(ctx, "INSERT INTO moderators ("+moderatorCols+") VALUES ("+moderatorVals+")", repo.packModerator(s))
	case staff.RoleBuilder:
		_, err = exe.NamedExecContext(ctx, "INSERT INTO builders ("+builderCols+") VALUES ("+builderVals+")", repo.packBuilder(s))
	default: // manager and owner share the managers partition
		_, err = exe.NamedExecContext(ctx, "INSERT INTO managers ("+managerCols+") VALUES ("+managerVals+")", repo.packManager(s))
	}
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "inserting staff")
	}
	return s, nil
}

func (repo staffRepository) UpdateStaff(ctx context.Context, s staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	exe := repo.getExec(exec)

	var err error
	switch s.Role {
	case staff.RoleModerator:
		_, err = exe.NamedExecContext(ctx, `UPDATE moderators SET
			name = :name, rank = :rank, avatar = :avatar,
			responsiveness = :responsiveness, fairness = :fairness, communication = :communication,
			conflict_resolution = :conflict_resolution, rule_enforcement = :rule_enforcement,
			engagement = :engagement, supportiveness = :supportiveness, adaptability = :adaptability,
			objectivity = :objectivity, initiative = :initiative, updated_at = :updated_at
			WHERE id = :id`, repo.packModerator(s))
	case staff.RoleBuilder:
		_, err = exe.NamedExecContext(ctx, `UPDATE builders SET
			name = :name, rank = :rank, avatar = :avatar,
			exterior = :exterior, interior = :interior, decoration = :decoration,
			effort = :effort, contribution = :contribution, communication = :communication,
			adaptability = :adaptability, cooperativeness = :cooperativeness,
			creativity = :creativity, consistency = :consistency, updated_at = :updated_at
			WHERE id = :id`, repo.packBuilder(s))
	default:
		_, err = exe.NamedExecContext(ctx, `UPDATE managers SET
			name = :name, rank = :rank, avatar = :avatar, is_owner = :is_owner,
			responsiveness = :responsiveness, fairness = :fairness, communication = :communication,
			conflict_resolution = :conflict_resolution, rule_enforcement = :rule_enforcement,
			engagement = :engagement, supportiveness = :supportiveness, adaptability = :adaptability,
			objectivity = :objectivity, initiative = :initiative,
			exterior = :exterior, interior = :interior, decoration = :decoration,
			effort = :effort, contribution = :contribution, cooperativeness = :cooperativeness,
			creativity = :creativity, consistency = :consistency, updated_at = :updated_at
			WHERE id = :id`, repo.packManager(s))
	}
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "updating staff")
	}
	return s, nil
}

func (repo staffRepository) DeleteStaff(ctx context.Context, id string, role staff.Role, exec ...core.DBExecutor) (int, error) {
	table := "managers"
	switch role {
	case staff.RoleModerator:
		table = "moderators"
	case staff.RoleBuilder:
		table = "builders"
	}

	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return 0, errors.Wrap(err, "deleting staff")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted staff")
	}
	return int(cnt), nil
}
