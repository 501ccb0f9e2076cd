package apitoken

import (
	"context"
	"errors"
	"time"

	"github.com/bdzone/staffboard/core"
)

var (
	// errors

	// ErrUnauthorized covers both a missing and an inactive token: callers
	// must not be able to tell which.
	ErrUnauthorized = errors.New("invalid token")
	ErrNotFound     = errors.New("api token not found")
)

type (
	Repository interface {
		CreateToken(ctx context.Context, t Token, exec ...core.DBExecutor) (Token, error)
		GetToken(ctx context.Context, id string, exec ...core.DBExecutor) (Token, error)
		GetTokenBySecret(ctx context.Context, secret string, exec ...core.DBExecutor) (Token, error)
		QueryTokens(ctx context.Context, exec ...core.DBExecutor) ([]Token, error)
		UpdateToken(ctx context.Context, t Token, exec ...core.DBExecutor) (Token, error)
		// TouchToken updates last_used_at only.
		TouchToken(ctx context.Context, id string, usedAt time.Time, exec ...core.DBExecutor) error
		DeleteToken(ctx context.Context, id string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create mints a new active token. The returned Token carries the full
// secret; this is the only code path that ever does.
func (svc *Service) Create(ctx context.Context, nt NewToken) (Token, error) {
	secret, err := GenerateSecret()
	if err != nil {
		return Token{}, err
	}
	t := Token{
		Secret:    secret,
		Name:      nt.Name,
		Source:    nt.Source,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateToken(ctx, t)
}

// Authenticate resolves a bearer secret to its token. A missing and an
// inactive token are indistinguishable to the caller.
func (svc *Service) Authenticate(ctx context.Context, secret string) (Token, error) {
	if secret == "" {
		return Token{}, ErrUnauthorized
	}
	t, err := svc.repo.GetTokenBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Token{}, ErrUnauthorized
		}
		return Token{}, err
	}
	if !t.IsActive {
		return Token{}, ErrUnauthorized
	}
	return t, nil
}

// TouchLastUsed records token usage. Best-effort bookkeeping; callers fire
// it off the request path and a failure never fails the request it follows.
func (svc *Service) TouchLastUsed(ctx context.Context, id string) error {
	return svc.repo.TouchToken(ctx, id, time.Now().UTC())
}

func (svc *Service) QueryAll(ctx context.Context) ([]Token, error) {
	tokens, err := svc.repo.QueryTokens(ctx)
	if err != nil {
		return nil, err
	}
	masked := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		masked = append(masked, t.Mask())
	}
	return masked, nil
}

// SetActive enables or disables a token without losing its history.
func (svc *Service) SetActive(ctx context.Context, id string, active bool) (Token, error) {
	t, err := svc.repo.GetToken(ctx, id)
	if err != nil {
		return Token{}, err
	}
	t.IsActive = active
	t, err = svc.repo.UpdateToken(ctx, t)
	if err != nil {
		return Token{}, err
	}
	return t.Mask(), nil
}

func (svc *Service) Delete(ctx context.Context, id string) (bool, error) {
	cnt, err := svc.repo.DeleteToken(ctx, id)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
