package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
)

type tokenRepository struct {
	db *tokenTable
}

var _ apitoken.Repository = (*tokenRepository)(nil) // interface compliance check

func NewTokenRepository(db *DB) *tokenRepository {
	return &tokenRepository{db: db.tokens}
}

func (repo *tokenRepository) CreateToken(ctx context.Context, t apitoken.Token, _ ...core.DBExecutor) (apitoken.Token, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	stored := t
	repo.db.table[t.ID] = &stored
	return t, nil
}

func (repo *tokenRepository) GetToken(ctx context.Context, id string, _ ...core.DBExecutor) (apitoken.Token, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return apitoken.Token{}, apitoken.ErrNotFound
}

func (repo *tokenRepository) GetTokenBySecret(ctx context.Context, secret string, _ ...core.DBExecutor) (apitoken.Token, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.table {
		if t.Secret == secret {
			return *t, nil
		}
	}
	return apitoken.Token{}, apitoken.ErrNotFound
}

func (repo *tokenRepository) QueryTokens(ctx context.Context, _ ...core.DBExecutor) ([]apitoken.Token, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tokens := make([]apitoken.Token, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tokens = append(tokens, *t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CreatedAt.Before(tokens[j].CreatedAt) })
	return tokens, nil
}

func (repo *tokenRepository) UpdateToken(ctx context.Context, t apitoken.Token, _ ...core.DBExecutor) (apitoken.Token, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return apitoken.Token{}, apitoken.ErrNotFound
	}
	stored := t
	repo.db.table[t.ID] = &stored
	return t, nil
}

func (repo *tokenRepository) TouchToken(ctx context.Context, id string, usedAt time.Time, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[id]
	if !ok {
		return apitoken.ErrNotFound
	}
	t.LastUsedAt = null.TimeFrom(usedAt.UTC())
	return nil
}

func (repo *tokenRepository) DeleteToken(ctx context.Context, id string, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return 0, nil
	}
	delete(repo.db.table, id)
	return 1, nil
}
