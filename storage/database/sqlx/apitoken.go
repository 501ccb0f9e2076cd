package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
)

type tokenRepository struct {
	exec core.DBExecutor
}

var _ apitoken.Repository = (*tokenRepository)(nil) // interface compliance check

func NewTokenRepository(exec core.DBExecutor) *tokenRepository {
	return &tokenRepository{exec: exec}
}

func (repo tokenRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type tokenRow struct {
	ID         string    `db:"id"`
	Secret     string    `db:"token"`
	Name       string    `db:"name"`
	Source     string    `db:"source"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	LastUsedAt null.Time `db:"last_used_at"`
}

func (repo tokenRepository) pack(t apitoken.Token) tokenRow {
	return tokenRow{
		ID:         t.ID,
		Secret:     t.Secret,
		Name:       t.Name,
		Source:     t.Source,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt.UTC(),
		LastUsedAt: t.LastUsedAt,
	}
}

func (repo tokenRepository) unpack(row tokenRow) apitoken.Token {
	return apitoken.Token{
		ID:         row.ID,
		Secret:     row.Secret,
		Name:       row.Name,
		Source:     row.Source,
		IsActive:   row.IsActive,
		CreatedAt:  row.CreatedAt,
		LastUsedAt: row.LastUsedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to apitoken.ErrNotFound
func (repo tokenRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return apitoken.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo tokenRepository) CreateToken(ctx context.Context, t apitoken.Token, exec ...core.DBExecutor) (apitoken.Token, error) {
	t.ID = uuid.New().String()
	_, err := repo.getExec(exec).NamedExecContext(ctx,
		`INSERT INTO api_tokens (id, token, name, source, is_active, created_at, last_used_at)
		 VALUES (:id, :token, :name, :source, :is_active, :created_at, :last_used_at)`, repo.pack(t))
	if err != nil {
		return apitoken.Token{}, errors.Wrap(err, "inserting api token")
	}
	return t, nil
}

func (repo tokenRepository) GetToken(ctx context.Context, id string, exec ...core.DBExecutor) (apitoken.Token, error) {
	if _, err := uuid.Parse(id); err != nil {
		return apitoken.Token{}, apitoken.ErrNotFound
	}
	var row tokenRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		"SELECT id, token, name, source, is_active, created_at, last_used_at FROM api_tokens WHERE id = $1", id)
	if err != nil {
		return apitoken.Token{}, repo.trapNoRowsErr(err, "finding api token by ID")
	}
	return repo.unpack(row), nil
}

func (repo tokenRepository) GetTokenBySecret(ctx context.Context, secret string, exec ...core.DBExecutor) (apitoken.Token, error) {
	var row tokenRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		"SELECT id, token, name, source, is_active, created_at, last_used_at FROM api_tokens WHERE token = $1", secret)
	if err != nil {
		return apitoken.Token{}, repo.trapNoRowsErr(err, "finding api token by secret")
	}
	return repo.unpack(row), nil
}

func (repo tokenRepository) QueryTokens(ctx context.Context, exec ...core.DBExecutor) ([]apitoken.Token, error) {
	var rows []tokenRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		"SELECT id, token, name, source, is_active, created_at, last_used_at FROM api_tokens ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, "querying api tokens")
	}

	tokens := make([]apitoken.Token, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, repo.unpack(row))
	}
	return tokens, nil
}

func (repo tokenRepository) UpdateToken(ctx context.Context, t apitoken.Token, exec ...core.DBExecutor) (apitoken.Token, error) {
	_, err := repo.getExec(exec).NamedExecContext(ctx,
		`UPDATE api_tokens SET name = :name, source = :source, is_active = :is_active, last_used_at = :last_used_at
		 WHERE id = :id`, repo.pack(t))
	if err != nil {
		return apitoken.Token{}, errors.Wrap(err, "updating api token")
	}
	return t, nil
}

func (repo tokenRepository) TouchToken(ctx context.Context, id string, usedAt time.Time, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE api_tokens SET last_used_at = $2 WHERE id = $1", id, usedAt.UTC())
	return errors.Wrap(err, "touching api token")
}

func (repo tokenRepository) DeleteToken(ctx context.Context, id string, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM api_tokens WHERE id = $1", id)
	if err != nil {
		return 0, errors.Wrap(err, "deleting api token")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted api tokens")
	}
	return int(cnt), nil
}
