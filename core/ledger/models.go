package ledger

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
)

// Event is one append-only scoring entry. Events are never mutated or
// deleted in normal operation; the running score is their sum, which makes
// concurrent appends commutative and safe in any interleaving.
type Event struct {
	ID        string                 `json:"id"`
	StaffID   string                 `json:"staff_id"`
	Action    string                 `json:"action"`
	Points    float64                `json:"points"`
	Source    string                 `json:"source"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"` // UTC
}

// ActionWeight maps an action name to the point value applied to new
// events reporting it.
type ActionWeight struct {
	ID          string      `json:"id"`
	Action      string      `json:"action"`
	Weight      float64     `json:"weight"`
	Description null.String `json:"description"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewEvent is an incoming event submission. Points, when set, overrides the
// registered action weight.
type NewEvent struct {
	StaffID  string                 `json:"staff_id" validate:"required"`
	Action   string                 `json:"action" validate:"required"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata"`
	Points   *float64               `json:"points"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.StaffID = core.CleanString(ne.StaffID)
	ne.Action = core.CleanString(ne.Action, true /* lower */)
	ne.Source = core.CleanString(ne.Source, true /* lower */)
	return validate.Struct(ne)
}

// UpsertWeight registers or changes the point value of an action.
// A zero weight is valid (an action that only exists for its audit trail).
type UpsertWeight struct {
	Action      string  `json:"action" validate:"required"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

func (uw *UpsertWeight) Validate(validate *validator.Validate) error {
	uw.Action = core.CleanString(uw.Action, true /* lower */)
	uw.Description = core.CleanString(uw.Description)
	return validate.Struct(uw)
}

func nullStringFrom(s string) null.String {
	return null.NewString(s, s != "")
}
