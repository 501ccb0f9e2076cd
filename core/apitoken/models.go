package apitoken

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
)

// Token gates the external score API. The secret is revealed in full
// exactly once, on creation; every subsequent read carries the masked form.
type Token struct {
	ID         string    `json:"id"`
	Secret     string    `json:"token"`
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	LastUsedAt null.Time `json:"last_used_at"`
}

// Mask replaces the secret with its display form. The full secret cannot
// be recovered from the result.
func (t Token) Mask() Token {
	t.Secret = MaskSecret(t.Secret)
	return t
}

// NewToken contains information needed to create a new Token.
type NewToken struct {
	Name   string `json:"name" validate:"required"`
	Source string `json:"source" validate:"required"`
}

func (nt *NewToken) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Source = core.CleanString(nt.Source, true /* lower */)
	return validate.Struct(nt)
}
