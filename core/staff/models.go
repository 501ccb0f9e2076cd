package staff

import (
	"sort"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/bdzone/staffboard/core"
)

// Roles
const (
	RoleModerator Role = "moderator"
	RoleBuilder   Role = "builder"
	RoleManager   Role = "manager"
	RoleOwner     Role = "owner"
)

// Ranks
const (
	RankSrMod        = "Sr.Mod"
	RankMod          = "Mod"
	RankJrMod        = "Jr.Mod"
	RankTrialMod     = "Trial(Mod)"
	RankHeadBuilder  = "HeadBuilder"
	RankBuilder      = "Builder"
	RankTrialBuilder = "Trial Builder"
	RankManager      = "Manager"
	RankOwner        = "Owner"
)

var (
	AllRoles = []Role{RoleModerator, RoleBuilder, RoleManager, RoleOwner}

	moderatorMetricKeys = []string{
		"responsiveness", "fairness", "communication", "conflictResolution", "ruleEnforcement",
		"engagement", "supportiveness", "adaptability", "objectivity", "initiative",
	}
	builderMetricKeys = []string{
		"exterior", "interior", "decoration", "effort", "contribution",
		"communication", "adaptability", "cooperativeness", "creativity", "consistency",
	}
	// managerMetricKeys is the union of the moderator and builder schemas (18 keys).
	managerMetricKeys = unionKeys(moderatorMetricKeys, builderMetricKeys)

	roleMetricKeys = map[Role][]string{
		RoleModerator: moderatorMetricKeys,
		RoleBuilder:   builderMetricKeys,
		RoleManager:   managerMetricKeys,
		RoleOwner:     managerMetricKeys,
	}

	roleRanks = map[Role][]string{
		RoleModerator: {RankSrMod, RankMod, RankJrMod, RankTrialMod},
		RoleBuilder:   {RankHeadBuilder, RankBuilder, RankTrialBuilder},
		RoleManager:   {RankManager},
		RoleOwner:     {RankOwner},
	}

	// the lowest/trial tier, or the sole fixed rank for privileged roles
	roleDefaultRanks = map[Role]string{
		RoleModerator: RankTrialMod,
		RoleBuilder:   RankTrialBuilder,
		RoleManager:   RankManager,
		RoleOwner:     RankOwner,
	}
)

func unionKeys(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	union := make([]string, 0, len(a)+len(b))
	for _, keys := range [][]string{a, b} {
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				union = append(union, k)
			}
		}
	}
	return union
}

type Role string

func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Privileged reports whether the role is "immeasurable": its metrics and
// rank are fixed by policy, not earned.
func (r Role) Privileged() bool {
	return r == RoleManager || r == RoleOwner
}

func (r Role) MetricKeys() []string {
	return roleMetricKeys[r]
}

func (r Role) AllowedRanks() []string {
	return roleRanks[r]
}

func (r Role) DefaultRank() string {
	return roleDefaultRanks[r]
}

func (r Role) RankAllowed(rank string) bool {
	for _, allowed := range roleRanks[r] {
		if rank == allowed {
			return true
		}
	}
	return false
}

// Letter grades, best to worst.
const (
	GradeSSSPlus LetterGrade = "SSS+"
	GradeSPlus   LetterGrade = "S+"
	GradeS       LetterGrade = "S"
	GradeAPlus   LetterGrade = "A+"
	GradeA       LetterGrade = "A"
	GradeBPlus   LetterGrade = "B+"
	GradeB       LetterGrade = "B"
	GradeC       LetterGrade = "C"
	GradeD       LetterGrade = "D"
	GradeE       LetterGrade = "E"
	GradeEMinus  LetterGrade = "E-"

	// legacy spelling of GradeSSSPlus still found in old rows; accepted on
	// input, never emitted
	legacyGradeImmeasurable LetterGrade = "Immeasurable"
)

var gradeRanks = map[LetterGrade]int{
	GradeSSSPlus: 11,
	GradeSPlus:   10,
	GradeS:       9,
	GradeAPlus:   8,
	GradeA:       7,
	GradeBPlus:   6,
	GradeB:       5,
	GradeC:       4,
	GradeD:       3,
	GradeE:       2,
	GradeEMinus:  1,
}

type LetterGrade string

// Rank orders grades for display/sorting; higher is better. Unknown grades
// rank lowest.
func (g LetterGrade) Rank() int {
	return gradeRanks[g.Normalize()]
}

// Normalize collapses the legacy "Immeasurable" alias to SSS+.
func (g LetterGrade) Normalize() LetterGrade {
	if g == legacyGradeImmeasurable {
		return GradeSSSPlus
	}
	return g
}

// Metric is a single named performance measurement. Score is the source of
// truth; Grade is re-derived on every transformation and never
// independently authoritative.
type Metric struct {
	Key   string      `json:"key"`
	Score float64     `json:"score"`
	Grade LetterGrade `json:"grade"`
}

type Staff struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Role         Role              `json:"role"`
	Rank         string            `json:"rank"`
	Avatar       null.String       `json:"avatar"`
	Metrics      map[string]Metric `json:"metrics"`
	OverallScore float64           `json:"overall_score"`
	OverallGrade LetterGrade       `json:"overall_grade"`
	CreatedAt    time.Time         `json:"created_at"` // UTC
	UpdatedAt    time.Time         `json:"updated_at"` // UTC
}

// SortByGrade orders a staff listing leaderboard-style: best overall grade
// first, ties broken by overall score.
func SortByGrade(list []Staff) {
	sort.SliceStable(list, func(i, j int) bool {
		gi, gj := list[i].OverallGrade.Rank(), list[j].OverallGrade.Rank()
		if gi != gj {
			return gi > gj
		}
		return list[i].OverallScore > list[j].OverallScore
	})
}

// NewStaff contains information needed to create a new Staff member.
// Unsupplied metric scores default to DefaultMetricScore; privileged roles
// ignore supplied scores entirely.
type NewStaff struct {
	Name    string             `json:"name" validate:"required"`
	Role    Role               `json:"role" validate:"required,staffrole"`
	Rank    string             `json:"rank"`
	Avatar  string             `json:"avatar"`
	Metrics map[string]float64 `json:"metrics" validate:"omitempty,dive,score"`
}

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Role = Role(core.CleanString(string(ns.Role), true /* lower */))
	ns.Rank = core.CleanString(ns.Rank)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return checkMetricKeys(ns.Role, ns.Metrics)
}

// UpdateStaff defines what information may be provided to modify an
// existing Staff member. Role is immutable: a role change moves the record
// across storage partitions and is done as a delete + create.
type UpdateStaff struct {
	Name    string             `json:"name"`
	Rank    string             `json:"rank"`
	Avatar  *string            `json:"avatar"`
	Metrics map[string]float64 `json:"metrics" validate:"omitempty,dive,score"`
}

func (us *UpdateStaff) Validate(orig Staff, validate *validator.Validate) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	rank := core.CleanString(us.Rank)
	if rank != "" {
		us.Rank = rank
	} else {
		us.Rank = orig.Rank
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return checkMetricKeys(orig.Role, us.Metrics)
}

func checkMetricKeys(role Role, metrics map[string]float64) error {
	if !role.Valid() {
		return nil // caught by the staffrole tag
	}
	for key := range metrics {
		if !hasKey(role.MetricKeys(), key) {
			return core.NewFieldError("metrics", "unknown metric "+key+" for role "+string(role))
		}
	}
	return nil
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

var (
	staffRoleTag  = "staffrole"
	staffRoleText = "must be one of: moderator, builder, manager, owner"
)

// InitValidators registers staff-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(staffRoleTag, func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, staffRoleTag, staffRoleText)
}
