package staff

import (
	"errors"

	"github.com/bdzone/staffboard/core"
)

// DefaultMetricScore seeds metrics that were not supplied on creation.
const DefaultMetricScore = 5.0

// PrivilegedScore is the fixed score of every metric on an immeasurable role.
const PrivilegedScore = 10.0

// ErrNoMetrics indicates a measurable staff record reached aggregation with
// an empty metric set; construction must always populate the role's full
// key schema, so this is a construction bug, not a runtime condition.
var ErrNoMetrics = errors.New("staff record has no metrics")

// grade thresholds: inclusive lower bounds, checked best to worst
var gradeThresholds = []struct {
	min   float64
	grade LetterGrade
}{
	{9.5, GradeSPlus},
	{8.5, GradeS},
	{7.5, GradeAPlus},
	{6.5, GradeA},
	{5.5, GradeBPlus},
	{4.5, GradeB},
	{3.5, GradeC},
	{2.5, GradeD},
	{1.0, GradeE},
}

// ClassifyScore maps a numeric score to a letter grade. Total over all
// inputs: anything below the lowest threshold is E-.
func ClassifyScore(score float64) LetterGrade {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return GradeEMinus
}

// ClassifyFor is the role-aware classifier: privileged roles grade SSS+
// unconditionally, bypassing the thresholds. Every call site with role
// context goes through here so the override is applied exactly once.
func ClassifyFor(role Role, score float64) LetterGrade {
	if role.Privileged() {
		return GradeSSSPlus
	}
	return ClassifyScore(score)
}

// NewMetric builds a metric with its grade derived from the score and role.
func NewMetric(role Role, key string, score float64) Metric {
	if role.Privileged() {
		score = PrivilegedScore
	}
	return Metric{Key: key, Score: score, Grade: ClassifyFor(role, score)}
}

// Aggregate computes the overall score and grade for a metric set.
// Privileged roles aggregate to (10, SSS+) regardless of input; otherwise
// the overall score is the arithmetic mean rounded to one decimal.
func Aggregate(role Role, metrics map[string]Metric) (float64, LetterGrade, error) {
	if role.Privileged() {
		return PrivilegedScore, GradeSSSPlus, nil
	}
	if len(metrics) == 0 {
		return 0, "", ErrNoMetrics
	}

	var sum float64
	for _, m := range metrics {
		sum += m.Score
	}
	score := core.Round1(sum / float64(len(metrics)))
	return score, ClassifyFor(role, score), nil
}
