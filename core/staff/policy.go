package staff

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core"
)

// Enforce is the Role-Rank Policy: the single place the role/rank/metric
// invariants are asserted. It is applied at every boundary crossing
// (read-from-store, pre-write and on the value a write returns) so no call
// site can leak a record that violates them.
//
// Behavior:
//  1. an unset rank gets the role's default rank;
//  2. a rank outside the role's allowed set is rejected with a field-level
//     validation error naming the allowed set (never silently coerced);
//  3. privileged roles (manager, owner) win over any caller-supplied
//     values: rank is forced to the sole allowed value and every metric in
//     the role's schema is replaced with a synthetic maximal one;
//  4. measurable roles get their full metric schema populated (missing
//     keys seeded with DefaultMetricScore, unknown keys dropped), grades
//     re-derived and the overall score/grade recomputed.
//
// Enforce is idempotent: enforcing an already-enforced record yields the
// same record.
func Enforce(s Staff) (Staff, error) {
	if !s.Role.Valid() {
		return Staff{}, errors.Errorf("unknown staff role %q", s.Role)
	}

	if s.Role.Privileged() {
		s.Rank = s.Role.DefaultRank()
	} else {
		if s.Rank == "" {
			s.Rank = s.Role.DefaultRank()
		} else if !s.Role.RankAllowed(s.Rank) {
			return Staff{}, core.NewFieldError("rank",
				fmt.Sprintf("invalid rank for %s; allowed: %s", s.Role, strings.Join(s.Role.AllowedRanks(), ", ")))
		}
	}

	metrics := make(map[string]Metric, len(s.Role.MetricKeys()))
	for _, key := range s.Role.MetricKeys() {
		score := DefaultMetricScore
		if m, ok := s.Metrics[key]; ok {
			score = m.Score
		}
		metrics[key] = NewMetric(s.Role, key, score)
	}
	s.Metrics = metrics

	score, grade, err := Aggregate(s.Role, s.Metrics)
	if err != nil {
		return Staff{}, errors.Wrap(err, "aggregating metrics")
	}
	s.OverallScore = score
	s.OverallGrade = grade
	return s, nil
}
