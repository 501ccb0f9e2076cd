package apitoken

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bdzone/staffboard/core"
)

type fakeRepo struct {
	seq   int
	table map[string]Token // by id
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{table: make(map[string]Token)}
}

func (r *fakeRepo) CreateToken(ctx context.Context, t Token, _ ...core.DBExecutor) (Token, error) {
	r.seq++
	t.ID = strconv.Itoa(r.seq)
	r.table[t.ID] = t
	return t, nil
}

func (r *fakeRepo) GetToken(ctx context.Context, id string, _ ...core.DBExecutor) (Token, error) {
	if t, ok := r.table[id]; ok {
		return t, nil
	}
	return Token{}, ErrNotFound
}

func (r *fakeRepo) GetTokenBySecret(ctx context.Context, secret string, _ ...core.DBExecutor) (Token, error) {
	for _, t := range r.table {
		if t.Secret == secret {
			return t, nil
		}
	}
	return Token{}, ErrNotFound
}

func (r *fakeRepo) QueryTokens(ctx context.Context, _ ...core.DBExecutor) ([]Token, error) {
	tokens := make([]Token, 0, len(r.table))
	for _, t := range r.table {
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *fakeRepo) UpdateToken(ctx context.Context, t Token, _ ...core.DBExecutor) (Token, error) {
	if _, ok := r.table[t.ID]; !ok {
		return Token{}, ErrNotFound
	}
	r.table[t.ID] = t
	return t, nil
}

func (r *fakeRepo) TouchToken(ctx context.Context, id string, usedAt time.Time, _ ...core.DBExecutor) error {
	t, ok := r.table[id]
	if !ok {
		return ErrNotFound
	}
	t.LastUsedAt.SetValid(usedAt)
	r.table[id] = t
	return nil
}

func (r *fakeRepo) DeleteToken(ctx context.Context, id string, _ ...core.DBExecutor) (int, error) {
	if _, ok := r.table[id]; !ok {
		return 0, nil
	}
	delete(r.table, id)
	return 1, nil
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func Test_tokenService_Authenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testLogger{})
	ctx := context.Background()

	active, err := svc.Create(ctx, NewToken{Name: "bot", Source: "discord"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	inactive, err := svc.Create(ctx, NewToken{Name: "old bot", Source: "discord"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = svc.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("SetActive() failed: %v", err)
	}

	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{name: "valid", secret: active.Secret},
		{name: "empty", wantErr: ErrUnauthorized},
		{name: "unknown", secret: "bdz_deadbeef", wantErr: ErrUnauthorized},
		// an inactive token looks exactly like a missing one
		{name: "inactive", secret: inactive.Secret, wantErr: ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := svc.Authenticate(ctx, tt.secret)
			if err != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && tok.ID != active.ID {
				t.Errorf("Authenticate() = %+v, want token %s", tok, active.ID)
			}
		})
	}
}

func Test_tokenService_QueryAllMasks(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testLogger{})
	ctx := context.Background()

	created, err := svc.Create(ctx, NewToken{Name: "bot", Source: "web"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !strings.HasPrefix(created.Secret, "bdz_") {
		t.Errorf("Create() secret %q not in full form", created.Secret)
	}

	tokens, err := svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	for _, tok := range tokens {
		if tok.Secret == created.Secret {
			t.Error("QueryAll() leaked a full secret")
		}
	}
}

func Test_tokenService_TouchLastUsed(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testLogger{})
	ctx := context.Background()

	created, err := svc.Create(ctx, NewToken{Name: "bot", Source: "web"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.LastUsedAt.Valid {
		t.Error("fresh token already has last_used_at")
	}

	if err = svc.TouchLastUsed(ctx, created.ID); err != nil {
		t.Fatalf("TouchLastUsed() failed: %v", err)
	}
	stored, err := repo.GetToken(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if !stored.LastUsedAt.Valid {
		t.Error("TouchLastUsed() did not set last_used_at")
	}
}

func Test_tokenService_Delete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testLogger{})
	ctx := context.Background()

	created, err := svc.Create(ctx, NewToken{Name: "bot", Source: "web"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, created.ID)
	if err != nil || !deleted {
		t.Errorf("Delete() = (%v, %v), want (true, nil)", deleted, err)
	}
	deleted, err = svc.Delete(ctx, created.ID)
	if err != nil || deleted {
		t.Errorf("Delete() = (%v, %v), want (false, nil)", deleted, err)
	}
}
