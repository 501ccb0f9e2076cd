package staff

import (
	"testing"
)

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		score float64
		want  LetterGrade
	}{
		{10, GradeSPlus},
		{9.5, GradeSPlus},
		{9.4, GradeS},
		{8.5, GradeS},
		{8.4, GradeAPlus},
		{7.5, GradeAPlus},
		{6.5, GradeA},
		{5.5, GradeBPlus},
		{5, GradeB},
		{4.5, GradeB},
		{3.5, GradeC},
		{2.5, GradeD},
		{1.5, GradeE},
		{1, GradeE},
		{0.9, GradeEMinus},
		{0, GradeEMinus},
	}
	for _, tt := range tests {
		if got := ClassifyScore(tt.score); got != tt.want {
			t.Errorf("ClassifyScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestClassifyFor(t *testing.T) {
	// privileged roles bypass the thresholds entirely
	for _, role := range []Role{RoleManager, RoleOwner} {
		if got := ClassifyFor(role, 0); got != GradeSSSPlus {
			t.Errorf("ClassifyFor(%v, 0) = %v, want %v", role, got, GradeSSSPlus)
		}
	}
	if got := ClassifyFor(RoleModerator, 9.5); got != GradeSPlus {
		t.Errorf("ClassifyFor(moderator, 9.5) = %v, want %v", got, GradeSPlus)
	}
}

func TestNewMetric(t *testing.T) {
	m := NewMetric(RoleBuilder, "exterior", 7.5)
	if m.Score != 7.5 || m.Grade != GradeAPlus {
		t.Errorf("NewMetric() = %+v, want score 7.5 grade A+", m)
	}

	// supplied scores are meaningless for privileged roles
	m = NewMetric(RoleOwner, "exterior", 2)
	if m.Score != PrivilegedScore || m.Grade != GradeSSSPlus {
		t.Errorf("NewMetric() = %+v, want score 10 grade SSS+", m)
	}
}

func TestAggregate(t *testing.T) {
	metrics := func(role Role, scores ...float64) map[string]Metric {
		m := make(map[string]Metric, len(scores))
		for i, score := range scores {
			m[role.MetricKeys()[i]] = NewMetric(role, role.MetricKeys()[i], score)
		}
		return m
	}

	tests := []struct {
		name      string
		role      Role
		metrics   map[string]Metric
		wantScore float64
		wantGrade LetterGrade
		wantErr   error
	}{
		{
			name: "top moderator", role: RoleModerator,
			metrics:   metrics(RoleModerator, 9, 9, 9, 9, 9, 9, 9, 9, 9, 10),
			wantScore: 9.1, wantGrade: GradeS,
		},
		{
			name: "mean is rounded to one decimal", role: RoleBuilder,
			metrics:   metrics(RoleBuilder, 7, 8, 8), // 7.666...
			wantScore: 7.7, wantGrade: GradeAPlus,
		},
		{
			name: "grade boundary", role: RoleModerator,
			metrics:   metrics(RoleModerator, 9.5, 9.5),
			wantScore: 9.5, wantGrade: GradeSPlus,
		},
		{
			name: "all defaults", role: RoleBuilder,
			metrics:   metrics(RoleBuilder, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5),
			wantScore: 5, wantGrade: GradeB,
		},
		{
			name: "privileged ignores metrics", role: RoleOwner,
			metrics:   nil,
			wantScore: PrivilegedScore, wantGrade: GradeSSSPlus,
		},
		{name: "no metrics", role: RoleModerator, wantErr: ErrNoMetrics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, grade, err := Aggregate(tt.role, tt.metrics)
			if err != tt.wantErr {
				t.Fatalf("Aggregate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if score != tt.wantScore {
				t.Errorf("Aggregate() score = %v, want %v", score, tt.wantScore)
			}
			if grade != tt.wantGrade {
				t.Errorf("Aggregate() grade = %v, want %v", grade, tt.wantGrade)
			}
		})
	}
}

func TestLetterGradeNormalize(t *testing.T) {
	if got := LetterGrade("Immeasurable").Normalize(); got != GradeSSSPlus {
		t.Errorf("Normalize() = %v, want %v", got, GradeSSSPlus)
	}
	if got := GradeA.Normalize(); got != GradeA {
		t.Errorf("Normalize() = %v, want %v", got, GradeA)
	}
	if LetterGrade("Immeasurable").Rank() != GradeSSSPlus.Rank() {
		t.Error("legacy alias must rank as SSS+")
	}
}

func TestSortByGrade(t *testing.T) {
	list := []Staff{
		{Name: "low", OverallScore: 5, OverallGrade: GradeB},
		{Name: "owner", OverallScore: 10, OverallGrade: GradeSSSPlus},
		{Name: "high", OverallScore: 5.4, OverallGrade: GradeB},
	}
	SortByGrade(list)

	want := []string{"owner", "high", "low"}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Name, name)
		}
	}
}
