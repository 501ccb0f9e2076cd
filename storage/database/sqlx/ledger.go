package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/ledger"
)

type ledgerRepository struct {
	exec core.DBExecutor
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(exec core.DBExecutor) *ledgerRepository {
	return &ledgerRepository{exec: exec}
}

func (repo ledgerRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type eventRow struct {
	ID        string    `db:"id"`
	StaffID   string    `db:"staff_id"`
	Action    string    `db:"action"`
	Points    float64   `db:"points"`
	Source    string    `db:"source"`
	Metadata  null.JSON `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}

func (repo ledgerRepository) packEvent(ev ledger.Event) (eventRow, error) {
	row := eventRow{
		ID:        ev.ID,
		StaffID:   ev.StaffID,
		Action:    ev.Action,
		Points:    ev.Points,
		Source:    ev.Source,
		CreatedAt: ev.CreatedAt.UTC(),
	}
	if len(ev.Metadata) > 0 {
		data, err := json.Marshal(ev.Metadata)
		if err != nil {
			return eventRow{}, errors.Wrap(err, "marshaling event metadata")
		}
		row.Metadata = null.JSONFrom(data)
	}
	return row, nil
}

func (repo ledgerRepository) unpackEvent(row eventRow) (ledger.Event, error) {
	ev := ledger.Event{
		ID:        row.ID,
		StaffID:   row.StaffID,
		Action:    row.Action,
		Points:    row.Points,
		Source:    row.Source,
		CreatedAt: row.CreatedAt,
	}
	if row.Metadata.Valid {
		if err := json.Unmarshal(row.Metadata.JSON, &ev.Metadata); err != nil {
			return ledger.Event{}, errors.Wrap(err, "unmarshaling event metadata")
		}
	}
	return ev, nil
}

func (repo ledgerRepository) CreateEvent(ctx context.Context, ev ledger.Event, exec ...core.DBExecutor) (ledger.Event, error) {
	ev.ID = uuid.New().String()
	row, err := repo.packEvent(ev)
	if err != nil {
		return ledger.Event{}, err
	}
	_, err = repo.getExec(exec).NamedExecContext(ctx,
		`INSERT INTO score_events (id, staff_id, action, points, source, metadata, created_at)
		 VALUES (:id, :staff_id, :action, :points, :source, :metadata, :created_at)`, row)
	if err != nil {
		return ledger.Event{}, errors.Wrap(err, "inserting score event")
	}
	return ev, nil
}

func (repo ledgerRepository) QueryEvents(ctx context.Context, staffID string, limit int, exec ...core.DBExecutor) ([]ledger.Event, error) {
	var rows []eventRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT id, staff_id, action, points, source, metadata, created_at
		 FROM score_events WHERE staff_id = $1 ORDER BY created_at DESC LIMIT $2`, staffID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying score events")
	}

	events := make([]ledger.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := repo.unpackEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (repo ledgerRepository) SumPoints(ctx context.Context, staffID string, exec ...core.DBExecutor) (float64, error) {
	var sum float64
	err := repo.getExec(exec).GetContext(ctx, &sum,
		"SELECT COALESCE(SUM(points), 0) FROM score_events WHERE staff_id = $1", staffID)
	if err != nil {
		return 0, errors.Wrap(err, "summing score events")
	}
	return sum, nil
}

type weightRow struct {
	ID          string      `db:"id"`
	Action      string      `db:"action"`
	Weight      float64     `db:"weight"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (repo ledgerRepository) unpackWeight(row weightRow) ledger.ActionWeight {
	return ledger.ActionWeight{
		ID:          row.ID,
		Action:      row.Action,
		Weight:      row.Weight,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo ledgerRepository) GetActionWeight(ctx context.Context, action string, exec ...core.DBExecutor) (ledger.ActionWeight, error) {
	var row weightRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT id, action, weight, description, created_at, updated_at
		 FROM action_weights WHERE action = $1`, action)
	if err != nil {
		if err == sql.ErrNoRows {
			return ledger.ActionWeight{}, ledger.ErrWeightNotFound
		}
		return ledger.ActionWeight{}, errors.Wrap(err, "finding action weight")
	}
	return repo.unpackWeight(row), nil
}

func (repo ledgerRepository) UpsertActionWeight(ctx context.Context, w ledger.ActionWeight, exec ...core.DBExecutor) (ledger.ActionWeight, error) {
	var row weightRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`INSERT INTO action_weights (id, action, weight, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (action) DO UPDATE
		 SET weight = EXCLUDED.weight, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
		 RETURNING id, action, weight, description, created_at, updated_at`,
		uuid.New().String(), w.Action, w.Weight, w.Description, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	if err != nil {
		return ledger.ActionWeight{}, errors.Wrap(err, "upserting action weight")
	}
	return repo.unpackWeight(row), nil
}

func (repo ledgerRepository) QueryActionWeights(ctx context.Context, exec ...core.DBExecutor) ([]ledger.ActionWeight, error) {
	var rows []weightRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		"SELECT id, action, weight, description, created_at, updated_at FROM action_weights ORDER BY action")
	if err != nil {
		return nil, errors.Wrap(err, "querying action weights")
	}

	weights := make([]ledger.ActionWeight, 0, len(rows))
	for _, row := range rows {
		weights = append(weights, repo.unpackWeight(row))
	}
	return weights, nil
}

func (repo ledgerRepository) DeleteActionWeight(ctx context.Context, id string, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM action_weights WHERE id = $1", id)
	if err != nil {
		return 0, errors.Wrap(err, "deleting action weight")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted action weights")
	}
	return int(cnt), nil
}
